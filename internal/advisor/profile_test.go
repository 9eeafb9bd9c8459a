package advisor

import (
	"testing"

	"github.com/scicon/advisor/internal/eventlog"
)

func answerEv(qid QuestionID, raw, normalized string) eventlog.Event {
	return ev(eventlog.AnswerGiven, map[string]any{
		"question_id": string(qid),
		"raw_answer":  raw,
		"normalized":  normalized,
	})
}

func TestBuildProfileCollectsAnswers(t *testing.T) {
	events := []eventlog.Event{
		ev(eventlog.FlowDetected, map[string]any{"flow": "sport_flow"}),
		answerEv(Q1, "gravel", "gravel"),
		answerEv(Q2, "cambia spesso", "variabile"),
		answerEv(Q3, "protezione", "protezione"),
	}

	p := buildProfile("s1", events)
	if p.Flow != FlowSport {
		t.Errorf("Flow = %q, want %q", p.Flow, FlowSport)
	}
	if p.Terrain != "gravel" || p.LightCondition != "variabile" || p.SportPriority != "protezione" {
		t.Errorf("profile = %+v, want gravel/variabile/protezione", p)
	}
}

func TestBuildProfileLastWriteWins(t *testing.T) {
	events := []eventlog.Event{
		answerEv(Q1, "strada", "strada"),
		answerEv(Q1, "gravel", "gravel"),
	}
	p := buildProfile("s1", events)
	if p.Terrain != "gravel" {
		t.Errorf("Terrain = %q, want %q (later answer must win)", p.Terrain, "gravel")
	}
}

func TestBuildProfileRenormalizesRawWhenNormalizedMissing(t *testing.T) {
	events := []eventlog.Event{
		answerEv(Q1, "faccio soprattutto mtb", ""),
		answerEv(Q2, "la luce è stabile", "  "),
	}
	p := buildProfile("s1", events)
	if p.Terrain != "mtb" {
		t.Errorf("Terrain = %q, want re-normalized %q", p.Terrain, "mtb")
	}
	if p.LightCondition != "stabile" {
		t.Errorf("LightCondition = %q, want re-normalized %q", p.LightCondition, "stabile")
	}
}

func TestBuildProfileSupportFields(t *testing.T) {
	events := []eventlog.Event{
		ev(eventlog.FlowDetected, map[string]any{"flow": "support_flow"}),
		answerEv(SupQ1, "lente graffiata", "lente"),
		answerEv(SupQ2, "aerotrail", "aerotrail"),
		answerEv(SupQ2Variant, "Aerotrail Standard", "Aerotrail Standard"),
		answerEv(SupQ3, "urgente", "urgente"),
	}
	p := buildProfile("s1", events)
	if p.SupportIssue != "lente" {
		t.Errorf("SupportIssue = %q, want %q", p.SupportIssue, "lente")
	}
	// The variant answer overwrites the base model.
	if p.SupportModel != "Aerotrail Standard" {
		t.Errorf("SupportModel = %q, want %q", p.SupportModel, "Aerotrail Standard")
	}
	if p.SupportPriority != "urgente" {
		t.Errorf("SupportPriority = %q, want %q", p.SupportPriority, "urgente")
	}
}

func TestBuildProfileVariantUnknownFlag(t *testing.T) {
	events := []eventlog.Event{
		answerEv(SupQ2, "non lo so", "modello_non_specificato"),
		ev(eventlog.SupportVariantUnknown, map[string]any{"unknown": true}),
	}
	p := buildProfile("s1", events)
	if !p.SupportVariantUnknown {
		t.Error("SupportVariantUnknown = false, want true")
	}
	if p.SupportModel != "modello_non_specificato" {
		t.Errorf("SupportModel = %q, want %q", p.SupportModel, "modello_non_specificato")
	}
}

func TestBuildProfileIdempotent(t *testing.T) {
	events := []eventlog.Event{
		ev(eventlog.FlowDetected, map[string]any{"flow": "rx_flow"}),
		answerEv(Q1RX, "sì", "presente"),
		answerEv(Q2RX, "clip", "clip_in"),
		answerEv(Q3RX, "campo visivo", "campo_visivo"),
	}
	first := buildProfile("s1", events)
	second := buildProfile("s1", events)
	if first != second {
		t.Errorf("profiles differ across replays: %+v vs %+v", first, second)
	}
}
