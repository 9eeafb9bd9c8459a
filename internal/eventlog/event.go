package eventlog

import (
	"context"
	"time"
)

// Type labels a session event. The set is closed: every event the advisor
// writes carries one of these labels, and readers switch on them exhaustively.
type Type string

const (
	SessionStart          Type = "session_start"
	IntentDetected        Type = "intent_detected"
	FlowDetected          Type = "flow_detected"
	AssistantMessage      Type = "assistant_message"
	QuestionAsked         Type = "question_asked"
	AnswerGiven           Type = "answer_given"
	RecommendationCreated Type = "recommendation_generated"
	SupportVariantUnknown Type = "support_variant_unknown"
	SupportLinksResolved  Type = "support_links_resolved"
)

// Event is one appended record. Events are never mutated or deleted; the log
// is the sole source of truth for conversation state.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id"`
	Type      Type           `json:"event_type"`
	Data      map[string]any `json:"data"`
}

// Log is the append-only event store the advisor derives all session state
// from. Session returns a session's events in append (chronological) order;
// a session with no events yields an empty slice, not an error.
type Log interface {
	Append(ctx context.Context, sessionID string, typ Type, data map[string]any) error
	Session(ctx context.Context, sessionID string) ([]Event, error)
}

// String returns a Data value as a string, or "" when absent or not a string.
func (e Event) String(key string) string {
	v, _ := e.Data[key].(string)
	return v
}
