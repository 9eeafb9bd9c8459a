package eventlog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileLogAppendAndSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log := NewFileLog(path)
	ctx := context.Background()

	if err := log.Append(ctx, "a", SessionStart, map[string]any{"query": "ciao"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := log.Append(ctx, "b", SessionStart, map[string]any{"query": "altro"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := log.Append(ctx, "a", QuestionAsked, map[string]any{"question_id": "Q1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	events, err := log.Session(ctx, "a")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != SessionStart || events[1].Type != QuestionAsked {
		t.Errorf("events out of order: %v, %v", events[0].Type, events[1].Type)
	}
	if events[0].String("query") != "ciao" {
		t.Errorf("data lost: %+v", events[0].Data)
	}
	if events[1].String("question_id") != "Q1" {
		t.Errorf("data lost: %+v", events[1].Data)
	}
}

func TestFileLogMissingFile(t *testing.T) {
	log := NewFileLog(filepath.Join(t.TempDir(), "nope.jsonl"))

	events, err := log.Session(context.Background(), "a")
	if err != nil {
		t.Fatalf("Session on missing file: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("got %d events, want 0", len(events))
	}
}

func TestFileLogSkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log := NewFileLog(path)
	ctx := context.Background()

	if err := log.Append(ctx, "a", SessionStart, nil); err != nil {
		t.Fatal(err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("{not json at all\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := log.Append(ctx, "a", AnswerGiven, map[string]any{"question_id": "Q1"}); err != nil {
		t.Fatal(err)
	}

	events, err := log.Session(ctx, "a")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (corrupt line skipped)", len(events))
	}
}

func TestEventString(t *testing.T) {
	e := Event{Data: map[string]any{"s": "x", "n": 7}}
	if got := e.String("s"); got != "x" {
		t.Errorf("String(s) = %q, want x", got)
	}
	if got := e.String("n"); got != "" {
		t.Errorf("String(n) = %q, want empty for non-string", got)
	}
	if got := e.String("missing"); got != "" {
		t.Errorf("String(missing) = %q, want empty", got)
	}
}
