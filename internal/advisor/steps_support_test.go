package advisor

import (
	"context"
	"strings"
	"testing"
)

func startSupportSession(t *testing.T, svc *Service) string {
	t.Helper()
	start, err := svc.StartSession(context.Background(), "ho un problema con i miei occhiali")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if start.NextQuestionID != SupQ1 {
		t.Fatalf("support session first question = %q, want %q", start.NextQuestionID, SupQ1)
	}
	return start.SessionID
}

func TestSupportFlowResolvedWalkthrough(t *testing.T) {
	svc, _ := newTestService(Classification{Primary: "post_vendita_supporto"})
	ctx := context.Background()
	sid := startSupportSession(t, svc)

	step, err := svc.ProcessAnswer(ctx, sid, "si è graffiata la lente")
	if err != nil {
		t.Fatalf("SUP_Q1 answer: %v", err)
	}
	if step.NextQuestionID != SupQ2 {
		t.Fatalf("after SUP_Q1: next = %q, want %q", step.NextQuestionID, SupQ2)
	}

	// "aerotrail" prefixes two database models, so the variant branch opens.
	step, err = svc.ProcessAnswer(ctx, sid, "un aerotrail")
	if err != nil {
		t.Fatalf("SUP_Q2 answer: %v", err)
	}
	if step.NextQuestionID != SupQ2Variant {
		t.Fatalf("after ambiguous SUP_Q2: next = %q, want %q", step.NextQuestionID, SupQ2Variant)
	}
	if !strings.Contains(step.NextQuestion, "Aerotrail Standard") ||
		!strings.Contains(step.NextQuestion, "Aerotrail Photochromic") {
		t.Fatalf("variant question missing candidates: %q", step.NextQuestion)
	}

	step, err = svc.ProcessAnswer(ctx, sid, "aerotrail standard")
	if err != nil {
		t.Fatalf("SUP_Q2_VARIANT answer: %v", err)
	}
	if step.NextQuestionID != SupQ3 {
		t.Fatalf("after variant choice: next = %q, want %q", step.NextQuestionID, SupQ3)
	}

	step, err = svc.ProcessAnswer(ctx, sid, "urgente, mi serve subito")
	if err != nil {
		t.Fatalf("SUP_Q3 answer: %v", err)
	}
	if !step.Terminal() || step.Support == nil {
		t.Fatal("expected terminal support outcome")
	}
	if !step.Support.Resolved {
		t.Fatalf("outcome not resolved: %+v", step.Support)
	}
	if step.Support.Model != "Aerotrail Standard" {
		t.Errorf("model = %q, want Aerotrail Standard", step.Support.Model)
	}
	if step.Support.Issue != "lente_ricambio" {
		t.Errorf("issue = %q, want lente_ricambio", step.Support.Issue)
	}
	if len(step.Support.Links) != 1 || step.Support.Links[0] != "https://shop.example/aerotrail-std-lente" {
		t.Errorf("links = %v, want the aerotrail standard lens link", step.Support.Links)
	}
	if !strings.Contains(step.AssistantMessage, "https://shop.example/aerotrail-std-lente") {
		t.Errorf("terminal message missing link: %q", step.AssistantMessage)
	}
}

func TestSupportFlowExactModelSkipsVariantBranch(t *testing.T) {
	svc, _ := newTestService(Classification{Primary: "post_vendita_supporto"})
	ctx := context.Background()
	sid := startSupportSession(t, svc)

	if _, err := svc.ProcessAnswer(ctx, sid, "il nasello si è staccato"); err != nil {
		t.Fatal(err)
	}

	// Exact database key (case-insensitive) is accepted without disambiguation.
	step, err := svc.ProcessAnswer(ctx, sid, "aeroshade")
	if err != nil {
		t.Fatal(err)
	}
	if step.NextQuestionID != SupQ3 {
		t.Fatalf("after exact model: next = %q, want %q", step.NextQuestionID, SupQ3)
	}

	step, err = svc.ProcessAnswer(ctx, sid, "con calma, non urgente")
	if err != nil {
		t.Fatal(err)
	}
	if !step.Support.Resolved {
		t.Fatalf("outcome not resolved: %+v", step.Support)
	}
	if step.Support.Model != "Aeroshade" || step.Support.Issue != "nasello" {
		t.Errorf("outcome = %+v, want Aeroshade/nasello", step.Support)
	}
	if step.Support.Priority != "non_urgente" {
		t.Errorf("priority = %q, want non_urgente", step.Support.Priority)
	}
}

func TestSupportFlowDontKnowModel(t *testing.T) {
	svc, log := newTestService(Classification{Primary: "post_vendita_supporto"})
	ctx := context.Background()
	sid := startSupportSession(t, svc)

	if _, err := svc.ProcessAnswer(ctx, sid, "problema con una vite"); err != nil {
		t.Fatal(err)
	}

	step, err := svc.ProcessAnswer(ctx, sid, "non lo so, non ricordo")
	if err != nil {
		t.Fatal(err)
	}
	if step.NextQuestionID != SupQ3 {
		t.Fatalf("after don't-know: next = %q, want %q (variant branch skipped)", step.NextQuestionID, SupQ3)
	}

	p, err := svc.Profile(ctx, sid)
	if err != nil {
		t.Fatal(err)
	}
	if !p.SupportVariantUnknown {
		t.Error("SupportVariantUnknown flag not set")
	}

	step, err = svc.ProcessAnswer(ctx, sid, "mi serve un ricambio")
	if err != nil {
		t.Fatal(err)
	}
	if step.Support == nil {
		t.Fatal("expected terminal support outcome")
	}
	if step.Support.Resolved {
		t.Fatalf("outcome unexpectedly resolved: %+v", step.Support)
	}
	if !strings.Contains(step.AssistantMessage, "Non ho trovato una corrispondenza esatta") {
		t.Errorf("unresolved message = %q, want clarification text", step.AssistantMessage)
	}

	// The don't-know branch must leave a trace in the log.
	found := false
	for _, typ := range log.typesFor(sid) {
		if typ == "support_variant_unknown" {
			found = true
		}
	}
	if !found {
		t.Error("support_variant_unknown event not appended")
	}
}

func TestSupportVariantWrongAnswerReprompts(t *testing.T) {
	svc, _ := newTestService(Classification{Primary: "post_vendita_supporto"})
	ctx := context.Background()
	sid := startSupportSession(t, svc)

	if _, err := svc.ProcessAnswer(ctx, sid, "lente rotta"); err != nil {
		t.Fatal(err)
	}
	step, err := svc.ProcessAnswer(ctx, sid, "aerotrail")
	if err != nil {
		t.Fatal(err)
	}
	if step.NextQuestionID != SupQ2Variant {
		t.Fatalf("expected variant branch, got %q", step.NextQuestionID)
	}

	// An answer matching no candidate re-prompts the same sub-state.
	step, err = svc.ProcessAnswer(ctx, sid, "quello blu")
	if err != nil {
		t.Fatal(err)
	}
	if step.NextQuestionID != SupQ2Variant {
		t.Fatalf("wrong variant answer: next = %q, want re-prompted %q", step.NextQuestionID, SupQ2Variant)
	}
	if !strings.Contains(step.NextQuestion, "Aerotrail Photochromic") {
		t.Errorf("re-prompt lost candidates: %q", step.NextQuestion)
	}
}

func TestSupportVariantListIsShortestFirst(t *testing.T) {
	svc, _ := newTestService(Classification{Primary: "post_vendita_supporto"})
	ctx := context.Background()
	sid := startSupportSession(t, svc)

	if _, err := svc.ProcessAnswer(ctx, sid, "lente"); err != nil {
		t.Fatal(err)
	}
	step, err := svc.ProcessAnswer(ctx, sid, "aerotrail")
	if err != nil {
		t.Fatal(err)
	}

	std := strings.Index(step.NextQuestion, "Aerotrail Standard")
	photo := strings.Index(step.NextQuestion, "Aerotrail Photochromic")
	if std < 0 || photo < 0 {
		t.Fatalf("candidates missing from question: %q", step.NextQuestion)
	}
	if std > photo {
		t.Errorf("candidates not shortest-first: %q", step.NextQuestion)
	}
}
