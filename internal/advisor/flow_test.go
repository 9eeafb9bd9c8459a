package advisor

import "testing"

func TestRouteIntent(t *testing.T) {
	tests := []struct {
		intent string
		want   Flow
	}{
		{"valutazione", FlowSport},
		{"riduzione_rischio", FlowSport},
		{"affidabilità_tecnica", FlowSport},
		{"upgrade_miglioramento", FlowSport},
		{"comparazione", FlowCompare},
		{"budget", FlowBudget},
		{"prescrizione_ottica", FlowRX},
		{"info_lenti", FlowInfo},
		{"info_montatura", FlowInfo},
		{"post_vendita_supporto", FlowSupport},
		{"", FlowSport},
		{"qualcosa_di_strano", FlowSport},
	}
	for _, tt := range tests {
		if got := RouteIntent(tt.intent); got != tt.want {
			t.Errorf("RouteIntent(%q) = %q, want %q", tt.intent, got, tt.want)
		}
	}
}

func TestFirstQuestionPerFlow(t *testing.T) {
	tests := []struct {
		flow Flow
		want QuestionID
	}{
		{FlowSport, Q1},
		{FlowCompare, Q1},
		{FlowBudget, Q1},
		{FlowInfo, Q1},
		{FlowRX, Q1RX},
		{FlowSupport, SupQ1},
	}
	for _, tt := range tests {
		qid, question := firstQuestion(tt.flow)
		if qid != tt.want {
			t.Errorf("firstQuestion(%q) id = %q, want %q", tt.flow, qid, tt.want)
		}
		if question == "" {
			t.Errorf("firstQuestion(%q) returned empty question text", tt.flow)
		}
	}
}
