package spareparts

import "strings"

// Model and issue resolution. Both functions are pure and deterministic:
// candidates are scanned in the database's insertion order and the first
// match wins within each tier, so results are reproducible for a given
// source file.

// ResolveModel maps a model name (raw or normalized) to a database key.
// Resolution order:
//  1. exact key match, case-sensitive
//  2. exact key match, case-insensitive
//  3. prefix match; with multiple candidates and an issue hint, candidates
//     carrying the hinted issue are preferred, shortest key winning ties
//  4. shortest key among all prefix candidates
//
// Returns "" when no tier matches.
func ResolveModel(modelInput string, db *DB, issueHint string) string {
	input := strings.TrimSpace(modelInput)
	if input == "" || db == nil || db.Len() == 0 {
		return ""
	}

	if db.HasModel(input) {
		return input
	}
	if key, ok := db.ModelFold(input); ok {
		return key
	}

	candidates := db.PrefixMatches(input)
	if len(candidates) == 0 {
		return ""
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	if issueHint != "" {
		var withIssue []string
		for _, key := range candidates {
			if hasIssue(db, key, issueHint) {
				withIssue = append(withIssue, key)
			}
		}
		if len(withIssue) > 0 {
			return shortestKey(withIssue)
		}
	}

	return shortestKey(candidates)
}

func hasIssue(db *DB, model, issue string) bool {
	for _, key := range db.Issues(model) {
		if strings.EqualFold(key, issue) {
			return true
		}
	}
	return false
}

// shortestKey returns the shortest string; the first one wins on equal length.
func shortestKey(keys []string) string {
	best := keys[0]
	for _, k := range keys[1:] {
		if len(k) < len(best) {
			best = k
		}
	}
	return best
}

// issuePatterns maps each macro issue category to the keywords that imply it.
var issuePatterns = map[string][]string{
	"lente":     {"lente", "lenti", "graffi", "fotocromat", "visier"},
	"montatura": {"montatura", "asta", "telaio", "rott"},
	"viti":      {"vite", "viti", "allent"},
	"nasello":   {"nasello", "naso", "gommin"},
	"clip":      {"clip", "inserto", "aggancio"},
}

// issueCategories fixes the scan order over issuePatterns; map iteration
// order would make resolution non-deterministic.
var issueCategories = []string{"lente", "montatura", "viti", "nasello", "clip"}

// ResolveIssue maps a user-described issue to one of the model's issue keys.
// Resolution order:
//  1. exact key match (case-insensitive)
//  2. macro category inferred from keyword patterns, matched against keys
//  3. substring containment of the user input in a key
//  4. token-split fallback: input split on "_" and "-", tokens of length >= 3
//     matched as substrings of a key
//
// issueKeys must be in the database's natural order; the first match wins.
// Returns "" when no tier matches.
func ResolveIssue(userIssue string, issueKeys []string) string {
	input := strings.ToLower(strings.TrimSpace(userIssue))
	if input == "" || len(issueKeys) == 0 {
		return ""
	}

	for _, key := range issueKeys {
		if strings.EqualFold(key, input) {
			return key
		}
	}

	for _, category := range issueCategories {
		if !matchesAny(input, issuePatterns[category]) {
			continue
		}
		for _, key := range issueKeys {
			if strings.Contains(strings.ToLower(key), category) {
				return key
			}
		}
	}

	for _, key := range issueKeys {
		if strings.Contains(strings.ToLower(key), input) {
			return key
		}
	}

	tokens := strings.FieldsFunc(input, func(r rune) bool { return r == '_' || r == '-' })
	for _, tok := range tokens {
		if len(tok) < 3 {
			continue
		}
		for _, key := range issueKeys {
			if strings.Contains(strings.ToLower(key), tok) {
				return key
			}
		}
	}

	return ""
}

func matchesAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
