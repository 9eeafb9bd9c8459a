package advisor

import (
	"strings"

	"github.com/scicon/advisor/internal/eventlog"
)

// Profile is the derived summary of all answers given in a session. It is
// rebuilt from the event log on every request and never persisted on its own.
// Empty string means "not answered yet".
type Profile struct {
	SessionID string
	Flow      Flow

	Terrain        string
	LightCondition string
	SportPriority  string

	RXPrescriptionStatus string
	RXSolutionChoice     string
	RXPriority           string

	SupportIssue          string
	SupportModel          string
	SupportPriority       string
	SupportVariantUnknown bool
}

// buildProfile replays answer_given events in chronological order. Later
// answers to the same question overwrite earlier ones, so a user revisiting a
// question updates the profile without any log compaction. When an event
// carries no normalized value, the raw answer is re-normalized on the spot.
func buildProfile(sessionID string, events []eventlog.Event) Profile {
	p := Profile{
		SessionID: sessionID,
		Flow:      flowFromEvents(events),
	}

	for _, ev := range events {
		switch ev.Type {
		case eventlog.SupportVariantUnknown:
			p.SupportVariantUnknown = true
		case eventlog.AnswerGiven:
			raw := strings.TrimSpace(ev.String("raw_answer"))
			normalized := strings.TrimSpace(ev.String("normalized"))

			switch QuestionID(ev.String("question_id")) {
			case Q1:
				p.Terrain = orNormalize(normalized, raw, normalizeTerrain)
			case Q2:
				p.LightCondition = orNormalize(normalized, raw, normalizeLightCondition)
			case Q3:
				p.SportPriority = orNormalize(normalized, raw, normalizeSportPriority)
			case Q1RX:
				p.RXPrescriptionStatus = orNormalize(normalized, raw, normalizeRxPrescriptionStatus)
			case Q2RX:
				p.RXSolutionChoice = orNormalize(normalized, raw, normalizeRxSolutionChoice)
			case Q3RX:
				p.RXPriority = orNormalize(normalized, raw, normalizeRxPriority)
			case SupQ1:
				p.SupportIssue = orNormalize(normalized, raw, normalizeSupportIssue)
			case SupQ2, SupQ2Variant:
				p.SupportModel = orNormalize(normalized, raw, normalizeSupportModel)
			case SupQ3:
				p.SupportPriority = orNormalize(normalized, raw, normalizeSupportPriority)
			}
		}
	}

	return p
}

func orNormalize(normalized, raw string, fn func(string) string) string {
	if normalized != "" {
		return normalized
	}
	return fn(raw)
}
