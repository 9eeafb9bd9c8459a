package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:8000" {
		t.Errorf("Addr = %q, want 0.0.0.0:8000", cfg.Addr())
	}
	if cfg.StorageBackend != BackendJSONL {
		t.Errorf("StorageBackend = %q, want jsonl", cfg.StorageBackend)
	}
	if cfg.QdrantCollection != "scicon_products" {
		t.Errorf("QdrantCollection = %q", cfg.QdrantCollection)
	}
	if cfg.SearchTopK != 6 {
		t.Errorf("SearchTopK = %d, want 6", cfg.SearchTopK)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9100" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
	if cfg.StorageBackend != BackendSQLite {
		t.Errorf("StorageBackend = %q, want sqlite", cfg.StorageBackend)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel = %v, want debug", cfg.SlogLevel())
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		c := &Config{LogLevel: tt.in}
		if got := c.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
