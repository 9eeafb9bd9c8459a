package advisor

import "github.com/scicon/advisor/internal/eventlog"

// Conversation state is a pure function of the session's event history:
// replaying the same log always resolves the same flow and question. There is
// no session record to mutate or fall out of sync.

// flowFromEvents resolves the session's active flow: the newest flow_detected
// event wins. Sessions with no such event default to the sport flow.
func flowFromEvents(events []eventlog.Event) Flow {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type != eventlog.FlowDetected {
			continue
		}
		if f := events[i].String("flow"); f != "" {
			return Flow(f)
		}
		return FlowSport
	}
	return FlowSport
}

// lastQuestionFromEvents resolves the most recently asked question. Returns
// "" when no question has been asked yet.
func lastQuestionFromEvents(events []eventlog.Event) QuestionID {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == eventlog.QuestionAsked {
			return QuestionID(events[i].String("question_id"))
		}
	}
	return ""
}
