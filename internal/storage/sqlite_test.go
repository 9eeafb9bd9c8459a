package storage

import (
	"context"
	"testing"

	"github.com/scicon/advisor/internal/eventlog"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreAppendAndSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "a", eventlog.SessionStart, map[string]any{"query": "ciao"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(ctx, "b", eventlog.SessionStart, nil); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(ctx, "a", eventlog.AnswerGiven, map[string]any{
		"question_id": "Q1",
		"raw_answer":  "strada",
		"normalized":  "strada",
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	events, err := s.Session(ctx, "a")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != eventlog.SessionStart {
		t.Errorf("first event = %q, want %q", events[0].Type, eventlog.SessionStart)
	}
	if events[1].String("normalized") != "strada" {
		t.Errorf("data lost: %+v", events[1].Data)
	}
	if events[0].Timestamp.IsZero() {
		t.Error("timestamp not persisted")
	}
}

func TestStoreEmptySession(t *testing.T) {
	s := openTestStore(t)

	events, err := s.Session(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("got %d events, want 0", len(events))
	}
}

func TestStoreCountEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Append(ctx, "a", eventlog.AssistantMessage, map[string]any{"text": "ciao"}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.CountEvents()
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if n != 3 {
		t.Errorf("CountEvents = %d, want 3", n)
	}
}

func TestStoreMigrationsAreIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
