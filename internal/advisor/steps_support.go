package advisor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/scicon/advisor/internal/eventlog"
	"github.com/scicon/advisor/internal/spareparts"
)

// Support flow: SUP_Q1 issue → SUP_Q2 model (with the SUP_Q2_VARIANT
// disambiguation side-branch) → SUP_Q3 priority → spare-parts resolution.

// SupportOutcome is the support flow's terminal result.
type SupportOutcome struct {
	Model    string
	Issue    string
	Priority string
	Links    []string
	Resolved bool
}

func (s *Service) supportIssueAnswer(ctx context.Context, sessionID, answer string) (StepResult, error) {
	normalized := normalizeSupportIssue(answer)

	if err := s.logAnswer(ctx, sessionID, SupQ1, answer, normalized); err != nil {
		return StepResult{}, err
	}

	var base string
	if normalized == "non_specificato" {
		base = s.pick([]string{
			"Ok, vediamo insieme di cosa si tratta.",
			"Va bene, capiamo meglio il problema strada facendo.",
		})
	} else {
		base = s.pick([]string{
			"Ok, ho capito il tipo di problema.",
			"Chiaro, grazie: questo mi aiuta già a restringere i ricambi giusti.",
			"Perfetto, annotato il problema.",
		})
	}

	connector := s.pick([]string{
		" Adesso mi serve sapere su quale modello intervenire.",
		" Ora dimmi il modello, così cerco il ricambio corretto.",
	})

	msg := base + connector
	if err := s.logExchange(ctx, sessionID, msg, SupQ2, questionSupportModel); err != nil {
		return StepResult{}, err
	}

	return StepResult{
		SessionID:        sessionID,
		AssistantMessage: msg,
		NextQuestionID:   SupQ2,
		NextQuestion:     questionSupportModel,
	}, nil
}

// supportModelAnswer handles the model question. Branching, in order:
// unknown answer skips disambiguation entirely; an exact database key is
// accepted verbatim; a base-name prefix matching several variants opens the
// SUP_Q2_VARIANT side-branch; a single variant is accepted silently; no
// variant at all proceeds with the base name unresolved.
func (s *Service) supportModelAnswer(ctx context.Context, sessionID, answer string) (StepResult, error) {
	db, err := s.parts.Get()
	if err != nil {
		return StepResult{}, err
	}

	trimmed := strings.TrimSpace(answer)

	if isDontKnow(trimmed) {
		if err := s.logAnswer(ctx, sessionID, SupQ2, answer, "modello_non_specificato"); err != nil {
			return StepResult{}, err
		}
		if err := s.log.Append(ctx, sessionID, eventlog.SupportVariantUnknown, map[string]any{"unknown": true}); err != nil {
			return StepResult{}, err
		}

		msg := s.pick([]string{
			"Nessun problema, proviamo a risolvere anche senza il modello esatto.",
			"Va bene, vediamo comunque come aiutarti anche senza il nome preciso del modello.",
		})
		return s.askSupportPriority(ctx, sessionID, msg)
	}

	if key, ok := db.ModelFold(trimmed); ok {
		if err := s.logAnswer(ctx, sessionID, SupQ2, answer, key); err != nil {
			return StepResult{}, err
		}
		msg := s.pick([]string{
			fmt.Sprintf("Perfetto, %s: lo conosco bene.", key),
			fmt.Sprintf("Ottimo, ho trovato %s nel database ricambi.", key),
		})
		return s.askSupportPriority(ctx, sessionID, msg)
	}

	base := normalizeSupportModel(trimmed)
	candidates := db.PrefixMatches(base)

	switch len(candidates) {
	case 0:
		if err := s.logAnswer(ctx, sessionID, SupQ2, answer, base); err != nil {
			return StepResult{}, err
		}
		msg := "Non ho trovato il modello esatto tra i ricambi, ma proviamo comunque a risolvere."
		return s.askSupportPriority(ctx, sessionID, msg)

	case 1:
		if err := s.logAnswer(ctx, sessionID, SupQ2, answer, candidates[0]); err != nil {
			return StepResult{}, err
		}
		msg := fmt.Sprintf("Perfetto, dovrebbe trattarsi di %s.", candidates[0])
		return s.askSupportPriority(ctx, sessionID, msg)

	default:
		if err := s.logAnswer(ctx, sessionID, SupQ2, answer, base); err != nil {
			return StepResult{}, err
		}
		return s.askVariantChoice(ctx, sessionID, candidates)
	}
}

// supportVariantAnswer handles the disambiguation sub-state: only an exact
// (case-insensitive) candidate name advances; anything else re-prompts with
// the same re-filtered list.
func (s *Service) supportVariantAnswer(ctx context.Context, sessionID, answer string, events []eventlog.Event) (StepResult, error) {
	db, err := s.parts.Get()
	if err != nil {
		return StepResult{}, err
	}

	// The candidate list is re-derived from the logged base model, so a
	// reloaded spare-parts source is picked up transparently.
	base := buildProfile(sessionID, events).SupportModel
	candidates := db.PrefixMatches(base)

	trimmed := strings.TrimSpace(answer)
	for _, c := range candidates {
		if strings.EqualFold(c, trimmed) {
			if err := s.logAnswer(ctx, sessionID, SupQ2Variant, answer, c); err != nil {
				return StepResult{}, err
			}
			msg := fmt.Sprintf("Perfetto, %s.", c)
			return s.askSupportPriority(ctx, sessionID, msg)
		}
	}

	return s.askVariantChoice(ctx, sessionID, candidates)
}

// askVariantChoice prompts (or re-prompts) the variant disambiguation
// question, listing candidates shortest-first.
func (s *Service) askVariantChoice(ctx context.Context, sessionID string, candidates []string) (StepResult, error) {
	sorted := make([]string, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) < len(sorted[j]) })

	var b strings.Builder
	b.WriteString("Ho trovato più varianti possibili. Quale di queste è la tua? Copia il nome esatto:")
	for _, c := range sorted {
		b.WriteString("\n- ")
		b.WriteString(c)
	}
	question := b.String()

	msg := "Mi serve un'informazione in più sul modello preciso."
	if err := s.logExchange(ctx, sessionID, msg, SupQ2Variant, question); err != nil {
		return StepResult{}, err
	}

	return StepResult{
		SessionID:        sessionID,
		AssistantMessage: msg,
		NextQuestionID:   SupQ2Variant,
		NextQuestion:     question,
	}, nil
}

// askSupportPriority moves the conversation to the final support question.
func (s *Service) askSupportPriority(ctx context.Context, sessionID, msg string) (StepResult, error) {
	if err := s.logExchange(ctx, sessionID, msg, SupQ3, questionSupportPriority); err != nil {
		return StepResult{}, err
	}
	return StepResult{
		SessionID:        sessionID,
		AssistantMessage: msg,
		NextQuestionID:   SupQ3,
		NextQuestion:     questionSupportPriority,
	}, nil
}

// supportPriorityAnswer is the support flow's terminal step: it resolves the
// collected model and issue against the spare-parts database. An unresolved
// reference is a first-class conversational outcome — the user is asked to
// clarify, never shown an error.
func (s *Service) supportPriorityAnswer(ctx context.Context, sessionID, answer string) (StepResult, error) {
	normalized := normalizeSupportPriority(answer)

	if err := s.logAnswer(ctx, sessionID, SupQ3, answer, normalized); err != nil {
		return StepResult{}, err
	}

	events, err := s.log.Session(ctx, sessionID)
	if err != nil {
		return StepResult{}, fmt.Errorf("reading session %s: %w", sessionID, err)
	}
	profile := buildProfile(sessionID, events)

	db, err := s.parts.Get()
	if err != nil {
		return StepResult{}, err
	}

	outcome := SupportOutcome{
		Model:    profile.SupportModel,
		Issue:    profile.SupportIssue,
		Priority: profile.SupportPriority,
	}

	modelKey := spareparts.ResolveModel(profile.SupportModel, db, profile.SupportIssue)
	if modelKey != "" {
		outcome.Model = modelKey
		if issueKey := spareparts.ResolveIssue(profile.SupportIssue, db.Issues(modelKey)); issueKey != "" {
			outcome.Issue = issueKey
			outcome.Links = db.Links(modelKey, issueKey)
		}
	}
	outcome.Resolved = len(outcome.Links) > 0

	var msg string
	if outcome.Resolved {
		if err := s.log.Append(ctx, sessionID, eventlog.SupportLinksResolved, map[string]any{
			"model": outcome.Model,
			"issue": outcome.Issue,
			"links": outcome.Links,
		}); err != nil {
			return StepResult{}, err
		}

		var b strings.Builder
		if normalized == "urgente" {
			b.WriteString("Capito, vediamo di risolvere in fretta. ")
		}
		fmt.Fprintf(&b, "Per %s (%s) ho trovato questi ricambi:", outcome.Model, outcome.Issue)
		for _, link := range outcome.Links {
			b.WriteString("\n- ")
			b.WriteString(link)
		}
		b.WriteString("\n\nSe il ricambio non corrisponde, scrivici e ti mettiamo in contatto con l'assistenza.")
		msg = b.String()
	} else {
		msg = "Non ho trovato una corrispondenza esatta per il tuo modello o per il problema che mi hai descritto. " +
			"Puoi darmi qualche dettaglio in più (nome completo del modello o tipo di ricambio)? " +
			"In alternativa ti metto in contatto diretto con l'assistenza SCICON."
	}

	return StepResult{
		SessionID:        sessionID,
		AssistantMessage: msg,
		Support:          &outcome,
	}, nil
}
