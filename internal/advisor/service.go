// Package advisor implements the conversational product advisor: intent
// routing, the per-flow question state machine, answer normalization, profile
// reconstruction from the event log, and weighted catalog scoring.
//
// The advisor keeps no in-memory session state. Every call re-derives the
// conversation's position by replaying the session's events, which makes
// reads idempotent and concurrent sessions trivially independent.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/scicon/advisor/internal/catalog"
	"github.com/scicon/advisor/internal/eventlog"
	"github.com/scicon/advisor/internal/spareparts"
)

// Classification is the external intent classifier's verdict on free text.
type Classification struct {
	Primary    string
	Secondary  string
	Confidence string
	Reasoning  string
}

// Classifier is the external intent classification service. Implementations
// may fail; the advisor substitutes a fixed default and never surfaces the
// failure to the user.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// Rand abstracts randomness so tests can pin phrasing selection. Phrasing
// variety never influences normalization, scoring, or state transitions.
type Rand interface {
	Intn(n int) int
}

// Service runs the advisor state machine over an event log.
type Service struct {
	log      eventlog.Log
	classify Classifier
	catalog  []catalog.Entry
	parts    *spareparts.Cache
	rng      Rand
}

// New creates a Service. Passing nil rng uses a time-seeded source.
func New(log eventlog.Log, classifier Classifier, cat []catalog.Entry, parts *spareparts.Cache, rng Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		log:      log,
		classify: classifier,
		catalog:  cat,
		parts:    parts,
		rng:      rng,
	}
}

// pick selects one phrasing variant.
func (s *Service) pick(variants []string) string {
	return variants[s.rng.Intn(len(variants))]
}

// StepResult is the outcome of processing one answer: either a next question,
// or a terminal recommendation / support resolution.
type StepResult struct {
	SessionID        string
	AssistantMessage string
	NextQuestionID   QuestionID
	NextQuestion     string
	Recommendation   *Recommendation
	Support          *SupportOutcome
}

// Terminal reports whether the conversation reached its final step.
func (r StepResult) Terminal() bool {
	return r.Recommendation != nil || r.Support != nil
}

// CurrentFlow resolves the session's active flow from the event log.
func (s *Service) CurrentFlow(ctx context.Context, sessionID string) (Flow, error) {
	events, err := s.log.Session(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("reading session %s: %w", sessionID, err)
	}
	return flowFromEvents(events), nil
}

// Profile rebuilds the session's profile from the event log.
func (s *Service) Profile(ctx context.Context, sessionID string) (Profile, error) {
	events, err := s.log.Session(ctx, sessionID)
	if err != nil {
		return Profile{}, fmt.Errorf("reading session %s: %w", sessionID, err)
	}
	return buildProfile(sessionID, events), nil
}

// ProcessAnswer is the top-level state-machine transition: it resolves the
// handler to invoke purely from (current flow, last question asked) and runs
// it. An unexpected combination restarts the flow's first question instead of
// failing — a replayed or partially written log never dead-ends the user.
func (s *Service) ProcessAnswer(ctx context.Context, sessionID, answer string) (StepResult, error) {
	events, err := s.log.Session(ctx, sessionID)
	if err != nil {
		return StepResult{}, fmt.Errorf("reading session %s: %w", sessionID, err)
	}

	flow := flowFromEvents(events)
	lastQ := lastQuestionFromEvents(events)

	switch flow {
	case FlowRX:
		switch lastQ {
		case Q1RX:
			return s.rxFirstAnswer(ctx, sessionID, answer)
		case Q2RX:
			return s.rxSecondAnswer(ctx, sessionID, answer)
		case Q3RX:
			return s.rxThirdAnswer(ctx, sessionID, answer)
		default:
			return s.restartFlow(ctx, sessionID, flow)
		}

	case FlowSupport:
		switch lastQ {
		case SupQ1:
			return s.supportIssueAnswer(ctx, sessionID, answer)
		case SupQ2:
			return s.supportModelAnswer(ctx, sessionID, answer)
		case SupQ2Variant:
			return s.supportVariantAnswer(ctx, sessionID, answer, events)
		case SupQ3:
			return s.supportPriorityAnswer(ctx, sessionID, answer)
		default:
			return s.restartFlow(ctx, sessionID, flow)
		}

	default:
		// Sport flow, plus the not-yet-built compare/budget/info flows,
		// which follow the sport question sequence.
		switch lastQ {
		case Q1:
			return s.sportFirstAnswer(ctx, sessionID, answer)
		case Q2:
			return s.sportSecondAnswer(ctx, sessionID, answer)
		case Q3:
			return s.sportThirdAnswer(ctx, sessionID, answer)
		default:
			return s.restartFlow(ctx, sessionID, flow)
		}
	}
}

// restartFlow re-asks the flow's first question. Reached when the resolved
// (flow, question) pair has no handler, e.g. after replaying a truncated log.
func (s *Service) restartFlow(ctx context.Context, sessionID string, flow Flow) (StepResult, error) {
	slog.Warn("no handler for resolved conversation state, restarting flow",
		"session_id", sessionID, "flow", flow)

	qid, question := firstQuestion(flow)
	msg := "Riprendiamo un attimo il filo, così posso aiutarti al meglio."

	if err := s.log.Append(ctx, sessionID, eventlog.AssistantMessage, map[string]any{"text": msg}); err != nil {
		return StepResult{}, err
	}
	if err := s.log.Append(ctx, sessionID, eventlog.QuestionAsked, map[string]any{
		"question_id": string(qid),
		"text":        question,
	}); err != nil {
		return StepResult{}, err
	}

	return StepResult{
		SessionID:        sessionID,
		AssistantMessage: msg,
		NextQuestionID:   qid,
		NextQuestion:     question,
	}, nil
}

// logAnswer appends the answer_given event for a question.
func (s *Service) logAnswer(ctx context.Context, sessionID string, qid QuestionID, raw, normalized string) error {
	return s.log.Append(ctx, sessionID, eventlog.AnswerGiven, map[string]any{
		"question_id": string(qid),
		"raw_answer":  raw,
		"normalized":  normalized,
	})
}

// logExchange appends the assistant message followed by the next question.
func (s *Service) logExchange(ctx context.Context, sessionID, msg string, qid QuestionID, question string) error {
	if err := s.log.Append(ctx, sessionID, eventlog.AssistantMessage, map[string]any{"text": msg}); err != nil {
		return err
	}
	return s.log.Append(ctx, sessionID, eventlog.QuestionAsked, map[string]any{
		"question_id": string(qid),
		"text":        question,
	})
}
