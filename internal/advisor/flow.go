package advisor

// Flow is one branch of the conversational state machine. The enumeration is
// closed; the dispatcher switches on it exhaustively.
type Flow string

const (
	FlowSport   Flow = "sport_flow"
	FlowRX      Flow = "rx_flow"
	FlowCompare Flow = "compare_flow"
	FlowBudget  Flow = "budget_flow"
	FlowInfo    Flow = "info_flow"
	FlowSupport Flow = "support_flow"
)

// QuestionID labels the question last asked in a flow. It is the state label
// of the conversation state machine.
type QuestionID string

const (
	Q1 QuestionID = "Q1"
	Q2 QuestionID = "Q2"
	Q3 QuestionID = "Q3"

	Q1RX QuestionID = "Q1_RX"
	Q2RX QuestionID = "Q2_RX"
	Q3RX QuestionID = "Q3_RX"

	SupQ1        QuestionID = "SUP_Q1"
	SupQ2        QuestionID = "SUP_Q2"
	SupQ2Variant QuestionID = "SUP_Q2_VARIANT"
	SupQ3        QuestionID = "SUP_Q3"
)

// RouteIntent maps a detected intent label to a conversation flow. Total over
// all strings: anything unrecognized lands on the sport flow.
func RouteIntent(intentPrimary string) Flow {
	switch intentPrimary {
	case "valutazione", "riduzione_rischio", "affidabilità_tecnica", "upgrade_miglioramento":
		return FlowSport
	case "comparazione":
		return FlowCompare
	case "budget":
		return FlowBudget
	case "prescrizione_ottica":
		return FlowRX
	case "info_lenti", "info_montatura":
		return FlowInfo
	case "post_vendita_supporto":
		return FlowSupport
	default:
		return FlowSport
	}
}
