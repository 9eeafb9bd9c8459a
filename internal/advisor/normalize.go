package advisor

import "strings"

// Answer normalizers. Each maps free text to a canonical category value via
// case-insensitive substring matching against small keyword sets. They are
// total: unmatched input falls back to a per-normalizer default, except the
// priority normalizers, which return "" (unknown) so the profile field can
// stay unset. Keyword sets and defaults are load-bearing — they decide how
// ambiguous answers route — so changes here change conversation behavior.

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// normalizeTerrain maps an answer to strada, gravel or mtb. Default: strada.
func normalizeTerrain(answer string) string {
	a := strings.ToLower(answer)
	switch {
	case strings.Contains(a, "strad"):
		return "strada"
	case strings.Contains(a, "grav"), strings.Contains(a, "ghia"):
		return "gravel"
	case strings.Contains(a, "mtb"), strings.Contains(a, "mountain"):
		return "mtb"
	}
	return "strada"
}

// normalizeRxPrescriptionStatus maps an answer to presente or mancante.
// Unmatched input defaults to presente to keep the flow moving.
func normalizeRxPrescriptionStatus(answer string) string {
	a := strings.ToLower(answer)
	yes := []string{"si", "sì", "yes", "ce l'ho", "ce lho", "ce l ho", "già", "gia", "recent"}
	no := []string{"no", "non ancora", "devo farla", "devo rifarla", "vecchia", "scaduta"}

	if containsAny(a, yes) {
		return "presente"
	}
	if containsAny(a, no) {
		return "mancante"
	}
	return "presente"
}

// normalizeRxSolutionChoice maps an answer to clip_in, sport_rx or non_so.
// Default: non_so.
func normalizeRxSolutionChoice(answer string) string {
	a := strings.ToLower(answer)
	switch {
	case containsAny(a, []string{"clip", "inserto", "insert"}):
		return "clip_in"
	case containsAny(a, []string{"sport", "dedicat", "lenti graduate"}):
		return "sport_rx"
	case containsAny(a, []string{"non so", "guidami", "decidi tu"}):
		return "non_so"
	}
	return "non_so"
}

// normalizeLightCondition maps an answer to variabile or stabile.
// "sole" together with "ombra" counts as variabile. Default: variabile.
func normalizeLightCondition(answer string) string {
	a := strings.ToLower(answer)
	variabile := []string{
		"varia", "cambia", "ombra", "bosco", "boschi",
		"tramonto", "altalenante", "spesso diversa", "continuamente",
	}
	stabile := []string{
		"stabile", "sempre uguale", "quasi sempre uguale",
		"costante", "simile", "non cambia molto",
	}

	if containsAny(a, variabile) {
		return "variabile"
	}
	if containsAny(a, stabile) {
		return "stabile"
	}
	if strings.Contains(a, "sole") && strings.Contains(a, "ombra") {
		return "variabile"
	}
	return "variabile"
}

// normalizeSportPriority maps an answer to protezione, ventilazione or
// comfort. Returns "" when nothing matches: the priority may stay unknown.
func normalizeSportPriority(answer string) string {
	if answer == "" {
		return ""
	}
	a := strings.ToLower(answer)
	switch {
	case containsAny(a, []string{"protez", "occhi", "sicurezz"}):
		return "protezione"
	case containsAny(a, []string{"ventil", "appann"}):
		return "ventilazione"
	case containsAny(a, []string{"comfort", "lungo", "ore"}):
		return "comfort"
	}
	return ""
}

// normalizeRxPriority maps an answer to campo_visivo, comfort, stabilita or
// estetica. Returns "" when nothing matches.
func normalizeRxPriority(answer string) string {
	if answer == "" {
		return ""
	}
	a := strings.ToLower(answer)
	switch {
	case containsAny(a, []string{"campo", "ampio", "visiv"}):
		return "campo_visivo"
	case containsAny(a, []string{"leggerezza", "leggero", "comfort"}):
		return "comfort"
	case containsAny(a, []string{"stabil", "muove", "gioco", "inserto"}):
		return "stabilita"
	case containsAny(a, []string{"estetica", "look", "stile"}):
		return "estetica"
	}
	return ""
}

// normalizeSupportIssue maps a support answer to a macro issue category.
// Default: non_specificato.
func normalizeSupportIssue(answer string) string {
	a := strings.ToLower(answer)
	switch {
	case containsAny(a, []string{"lente", "lenti", "graffi", "fotocromat"}):
		return "lente"
	case containsAny(a, []string{"montatura", "asta", "telaio", "rott"}):
		return "montatura"
	case containsAny(a, []string{"vite", "viti", "allent"}):
		return "viti"
	case containsAny(a, []string{"nasello", "naso", "gommin"}):
		return "nasello"
	case containsAny(a, []string{"clip", "inserto", "aggancio"}):
		return "clip"
	}
	return "non_specificato"
}

// knownModelBases are the model-family substrings recognized in free text,
// normalized to the base model name used for spare-parts lookups.
var knownModelBases = []string{"aeroshade", "aerotrail", "aerowing", "aerocomfort"}

// normalizeSupportModel extracts a known base model name from free text.
// Default: modello_non_specificato.
func normalizeSupportModel(answer string) string {
	a := strings.ToLower(answer)
	for _, base := range knownModelBases {
		if strings.Contains(a, base) {
			return base
		}
	}
	return "modello_non_specificato"
}

// normalizeSupportPriority maps a support answer to urgente, ricambio,
// assistenza or non_urgente. The non-urgent check runs first, because
// "urgente" is a substring of "non urgente". Default: non_specificato.
func normalizeSupportPriority(answer string) string {
	a := strings.ToLower(answer)
	switch {
	case containsAny(a, []string{"non urgente", "non è urgente", "con calma", "quando possibile"}):
		return "non_urgente"
	case containsAny(a, []string{"urgente", "urgenza", "subito", "prima possibile"}):
		return "urgente"
	case containsAny(a, []string{"ricambio", "ricambi", "pezzo", "sostituire", "sostituzione"}):
		return "ricambio"
	case containsAny(a, []string{"assistenza", "riparazione", "riparare", "supporto"}):
		return "assistenza"
	}
	return "non_specificato"
}

// dontKnowPhrases mark a support model answer as "I don't know".
var dontKnowPhrases = []string{"non lo so", "non so", "non ricordo", "nessuna idea", "boh"}

// isDontKnow reports whether a support answer declines to name a model.
func isDontKnow(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	if a == "" {
		return true
	}
	return containsAny(a, dontKnowPhrases)
}
