package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// StorageBackend selects where the conversation event log lives.
type StorageBackend string

const (
	BackendJSONL  StorageBackend = "jsonl"
	BackendSQLite StorageBackend = "sqlite"
)

type Config struct {
	// Server
	Host     string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port     int    `env:"SERVER_PORT" envDefault:"8000"`
	APIToken string `env:"API_TOKEN"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Event log storage
	StorageBackend StorageBackend `env:"STORAGE_BACKEND" envDefault:"jsonl"`
	EventLogPath   string         `env:"EVENT_LOG_PATH" envDefault:"data/events.jsonl"`
	DataDir        string         `env:"DATA_DIR" envDefault:"data"`

	// OpenAI
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	OpenAIModel    string `env:"OPENAI_MODEL" envDefault:"gpt-4.1-mini"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-large"`

	// Qdrant
	QdrantURL        string `env:"QDRANT_URL" envDefault:"http://localhost:6333"`
	QdrantAPIKey     string `env:"QDRANT_API_KEY"`
	QdrantCollection string `env:"QDRANT_PRODUCTS_COLLECTION" envDefault:"scicon_products"`
	SearchTopK       int    `env:"SEARCH_TOP_K" envDefault:"6"`

	// Spare parts
	SparePartsCSV string `env:"SPAREPARTS_CSV" envDefault:"data/spare_parts.csv"`
}

// Load reads configuration from the environment, layering an optional .env
// file underneath. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}
	if cfg.StorageBackend != BackendJSONL && cfg.StorageBackend != BackendSQLite {
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
	return cfg, nil
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SlogLevel maps the configured level string to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
