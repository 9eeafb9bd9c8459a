package advisor

import (
	"context"
	"fmt"

	"github.com/scicon/advisor/internal/eventlog"
)

// Sport flow: Q1 terrain → Q2 light → Q3 priority → recommendation.

func (s *Service) sportFirstAnswer(ctx context.Context, sessionID, answer string) (StepResult, error) {
	normalized := normalizeTerrain(answer)

	if err := s.logAnswer(ctx, sessionID, Q1, answer, normalized); err != nil {
		return StepResult{}, err
	}

	var base string
	switch normalized {
	case "strada":
		base = s.pick([]string{
			"Perfetto, quindi principalmente uscite su strada.",
			"Ok, quindi parliamo soprattutto di uscite su asfalto.",
			"Bene, quindi il tuo uso principale è su strada.",
		})
	case "gravel":
		base = s.pick([]string{
			"Ottimo, quindi fai soprattutto uscite gravel: terreni misti e sterrato.",
			"Perfetto, quindi ti muovi principalmente su percorsi gravel.",
			"Chiaro, quindi sei più orientato al gravel, tra sterrato e tratti misti.",
		})
	case "mtb":
		base = s.pick([]string{
			"Chiaro, quindi usi gli occhiali soprattutto in MTB.",
			"Perfetto, quindi parliamo di percorsi MTB, spesso con luce che cambia.",
			"Ok, quindi il tuo contesto principale è la MTB, con boschi e sentieri.",
		})
	default:
		base = "Perfetto."
	}

	followup := s.pick([]string{
		" Per completare il quadro ho un'altra domanda veloce.",
		" Ti chiedo ancora una cosa per essere più preciso nel consiglio.",
		" Facciamo ancora un passaggio così posso stringere bene il cerchio.",
	})

	msg := base + followup
	if err := s.logExchange(ctx, sessionID, msg, Q2, questionLight); err != nil {
		return StepResult{}, err
	}

	return StepResult{
		SessionID:        sessionID,
		AssistantMessage: msg,
		NextQuestionID:   Q2,
		NextQuestion:     questionLight,
	}, nil
}

func (s *Service) sportSecondAnswer(ctx context.Context, sessionID, answer string) (StepResult, error) {
	normalized := normalizeLightCondition(answer)

	if err := s.logAnswer(ctx, sessionID, Q2, answer, normalized); err != nil {
		return StepResult{}, err
	}

	var base, reasoning string
	if normalized == "variabile" {
		base = s.pick([]string{
			"Perfetto, quindi affronti condizioni di luce molto variabili.",
			"Ok, quindi passi spesso da pieno sole a zone d'ombra.",
			"Bene, quindi la luce durante le tue uscite cambia parecchio.",
		})
		reasoning = s.pick([]string{
			"In questi casi una lente fotocromatica o comunque molto versatile ti evita di trovarti scoperto nelle transizioni.",
			"Questo tipo di situazione premia lenti in grado di adattarsi bene ai cambi di luce.",
			"Per questo scenario ha senso orientarsi su lenti che gestiscono bene il passaggio da luce forte a zone più buie.",
		})
	} else {
		base = s.pick([]string{
			"Ottimo, quindi la luce è abbastanza stabile durante le tue uscite.",
			"Perfetto, quindi non hai grandi cambi di luce lungo il percorso.",
			"Chiaro, quindi pedali in condizioni di luce piuttosto costanti.",
		})
		reasoning = s.pick([]string{
			"Questo ci permette di considerare lenti più specifiche per quella condizione, lavorando meglio su contrasto e protezione.",
			"In questi casi si può puntare su lenti fisse ottimizzate per il tipo di luce che incontri più spesso.",
			"Questo scenario apre la strada a lenti dedicate, senza bisogno di soluzioni troppo ibride.",
		})
	}

	connector := s.pick([]string{
		" Adesso ho un'ultima domanda per capire cosa conta davvero per te.",
		" A questo punto mi serve solo un'ultima informazione sulla tua priorità.",
		" Prima di suggerirti qualcosa di concreto, ti faccio ancora una domanda sulla tua priorità.",
	})

	msg := base + " " + reasoning + connector
	if err := s.logExchange(ctx, sessionID, msg, Q3, questionSportPriority); err != nil {
		return StepResult{}, err
	}

	return StepResult{
		SessionID:        sessionID,
		AssistantMessage: msg,
		NextQuestionID:   Q3,
		NextQuestion:     questionSportPriority,
	}, nil
}

// sportThirdAnswer is the sport flow's terminal step: it logs the priority
// answer and closes with the scored recommendation.
func (s *Service) sportThirdAnswer(ctx context.Context, sessionID, answer string) (StepResult, error) {
	normalized := normalizeSportPriority(answer)

	if err := s.logAnswer(ctx, sessionID, Q3, answer, normalized); err != nil {
		return StepResult{}, err
	}

	rec, err := s.Recommend(ctx, sessionID)
	if err != nil {
		return StepResult{}, err
	}

	msg := rec.Explanation
	if rec.Primary != nil {
		msg += fmt.Sprintf("\n\n👉 Scelta principale: **%s**", rec.Primary.Name)
	}
	if rec.Secondary != nil {
		msg += fmt.Sprintf("\n➕ Seconda opzione: **%s**", rec.Secondary.Name)
	}
	msg += "\n\nSe vuoi, possiamo affinare ancora il consiglio confrontando questi modelli o aggiungendo il budget."

	if err := s.logRecommendation(ctx, sessionID, rec); err != nil {
		return StepResult{}, err
	}

	return StepResult{
		SessionID:        sessionID,
		AssistantMessage: msg,
		Recommendation:   &rec,
	}, nil
}

func (s *Service) logRecommendation(ctx context.Context, sessionID string, rec Recommendation) error {
	data := map[string]any{
		"flow_type":   string(rec.Flow),
		"explanation": rec.Explanation,
	}
	if rec.Primary != nil {
		data["primary_product"] = rec.Primary.ID
	}
	if rec.Secondary != nil {
		data["secondary_product"] = rec.Secondary.ID
	}
	return s.log.Append(ctx, sessionID, eventlog.RecommendationCreated, data)
}
