package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileLog is the reference Log implementation: one JSON object per line,
// appended to a single file. Reads scan the whole file and filter by session.
// Corrupt lines are skipped; a missing file means "no events yet".
type FileLog struct {
	path string

	mu sync.Mutex // serializes appends to keep lines whole
}

// NewFileLog creates a FileLog writing to path. The parent directory is
// created on first append, not here.
func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

func (l *FileLog) Append(ctx context.Context, sessionID string, typ Type, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	ev := Event{
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		Type:      typ,
		Data:      data,
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening event log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending event: %w", err)
	}
	return nil
}

func (l *FileLog) Session(ctx context.Context, sessionID string) ([]Event, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			slog.Debug("skipping corrupt event log line", "error", err)
			continue
		}
		if ev.SessionID == sessionID {
			events = append(events, ev)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}
	return events, nil
}
