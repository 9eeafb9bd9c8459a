package advisor

import (
	"context"
	"fmt"
)

// RX flow: Q1_RX prescription status → Q2_RX solution choice → Q3_RX
// priority → recommendation.

func (s *Service) rxFirstAnswer(ctx context.Context, sessionID, answer string) (StepResult, error) {
	normalized := normalizeRxPrescriptionStatus(answer)

	if err := s.logAnswer(ctx, sessionID, Q1RX, answer, normalized); err != nil {
		return StepResult{}, err
	}

	var base string
	if normalized == "presente" {
		base = s.pick([]string{
			"Perfetto, avere una prescrizione recente ci semplifica molto la scelta.",
			"Ottimo, con una prescrizione aggiornata possiamo pensare a soluzioni RX più precise.",
			"Bene, una prescrizione recente è un'ottima base per scegliere la soluzione RX giusta.",
		})
	} else {
		base = s.pick([]string{
			"Nessun problema, anche senza una prescrizione aggiornata possiamo comunque ragionare sulle soluzioni RX più sensate.",
			"Va benissimo, possiamo comunque orientarti su una soluzione RX e poi potrai far aggiornare la prescrizione dall'ottico.",
			"Tranquillo, anche senza un dato super aggiornato possiamo capire quale tipo di soluzione RX ti si adatta meglio.",
		})
	}

	connector := s.pick([]string{
		" Adesso ti chiedo che tipo di soluzione ti sembra più adatta.",
		" A questo punto ti faccio una domanda sul tipo di soluzione che preferisci.",
		" Ora vediamo che tipo di configurazione RX ti può essere più comoda.",
	})

	msg := base + connector
	if err := s.logExchange(ctx, sessionID, msg, Q2RX, questionRxChoice); err != nil {
		return StepResult{}, err
	}

	return StepResult{
		SessionID:        sessionID,
		AssistantMessage: msg,
		NextQuestionID:   Q2RX,
		NextQuestion:     questionRxChoice,
	}, nil
}

func (s *Service) rxSecondAnswer(ctx context.Context, sessionID, answer string) (StepResult, error) {
	normalized := normalizeRxSolutionChoice(answer)

	if err := s.logAnswer(ctx, sessionID, Q2RX, answer, normalized); err != nil {
		return StepResult{}, err
	}

	var base string
	switch normalized {
	case "clip_in":
		base = s.pick([]string{
			"Perfetto, gli inserti ottici / clip-in ti permettono di usare la stessa montatura sia con che senza correzione.",
			"Ok, con un inserto ottico puoi avere una base sportiva SCICON e la parte graduata solo dove serve.",
			"Bene, la soluzione clip-in ti dà flessibilità e ti permette di gestire meglio cambi di utilizzo.",
		})
	case "sport_rx":
		base = s.pick([]string{
			"Ottimo, una soluzione sportiva con lenti graduate dedicate ti dà un'esperienza molto pulita in bici.",
			"Perfetto, con una soluzione sport RX avrai una lente dedicata e una visione più simile a un occhiale tradizionale.",
			"Chiaro, puntare su una soluzione sport RX ti dà un setup più integrato e lineare.",
		})
	default:
		base = s.pick([]string{
			"Nessun problema, ti aiuto io a capire quale configurazione RX ha più senso per te.",
			"Va bene, possiamo valutare insieme pro e contro tra clip-in e soluzioni sport RX.",
			"Tranquillo, ti guiderò passo passo nella scelta della soluzione RX più adatta.",
		})
	}

	connector := s.pick([]string{
		" Adesso ho un'ultima domanda su cosa conta di più per te.",
		" A questo punto mi serve solo un'ultima informazione sulla tua priorità.",
		" Prima di restringere le opzioni RX, ti faccio ancora una domanda sulla tua priorità.",
	})

	msg := base + connector
	if err := s.logExchange(ctx, sessionID, msg, Q3RX, questionRxPriority); err != nil {
		return StepResult{}, err
	}

	return StepResult{
		SessionID:        sessionID,
		AssistantMessage: msg,
		NextQuestionID:   Q3RX,
		NextQuestion:     questionRxPriority,
	}, nil
}

// rxThirdAnswer is the RX flow's terminal step.
func (s *Service) rxThirdAnswer(ctx context.Context, sessionID, answer string) (StepResult, error) {
	normalized := normalizeRxPriority(answer)

	if err := s.logAnswer(ctx, sessionID, Q3RX, answer, normalized); err != nil {
		return StepResult{}, err
	}

	rec, err := s.Recommend(ctx, sessionID)
	if err != nil {
		return StepResult{}, err
	}

	msg := rec.Explanation
	if rec.Primary != nil {
		msg += fmt.Sprintf("\n\n👉 Configurazione principale: **%s**", rec.Primary.Name)
	}
	if rec.Secondary != nil {
		msg += fmt.Sprintf("\n➕ Seconda opzione RX: **%s**", rec.Secondary.Name)
	}
	msg += "\n\nSe vuoi, possiamo entrare più nel dettaglio su lenti, spessori o alternative di montatura."

	if err := s.logRecommendation(ctx, sessionID, rec); err != nil {
		return StepResult{}, err
	}

	return StepResult{
		SessionID:        sessionID,
		AssistantMessage: msg,
		Recommendation:   &rec,
	}, nil
}
