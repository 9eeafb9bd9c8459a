package advisor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/scicon/advisor/internal/eventlog"
)

// Question texts per flow. The question id is the state label; the text is
// what the user sees.
const (
	questionTerrain = "Le tue uscite sono principalmente su strada, gravel o MTB?"
	questionLight   = "La luce cambia molto durante le tue uscite " +
		"(ombre/sole, boschi, tramonto), oppure è abbastanza stabile?"
	questionSportPriority = "Se dovessi scegliere una priorità, cosa conta di più per te?\n" +
		"- massima protezione degli occhi\n" +
		"- ventilazione / anti-appannamento\n" +
		"- comfort nel lungo periodo"

	questionRxStatus = "Hai già una prescrizione oculistica recente (indicativamente non più vecchia di 1-2 anni)?"
	questionRxChoice = "La soluzione che ti sembra più adatta qual è?\n" +
		"- inserto ottico / clip-in da montare sugli occhiali\n" +
		"- occhiali sportivi con lenti graduate dedicate\n" +
		"- non lo so, guidami tu"
	questionRxPriority = "Se dovessi scegliere una priorità per la soluzione RX, cosa conta di più per te?\n" +
		"- campo visivo il più ampio possibile\n" +
		"- leggerezza e comfort\n" +
		"- stabilità in movimento (nessun gioco o movimento dell'inserto)\n" +
		"- estetica / look complessivo"

	questionSupportIssue = "Che tipo di problema stai riscontrando? " +
		"(lente, montatura, viti, nasello, clip / inserto)"
	questionSupportModel = "Su quale modello SCICON ti serve assistenza? " +
		"Se non lo ricordi, scrivi pure \"non lo so\"."
	questionSupportPriority = "Quanto è urgente la cosa? Ti serve un ricambio, " +
		"assistenza diretta, oppure è una richiesta non urgente?"
)

// firstQuestion returns the opening question for a flow. Flows without their
// own question sequence start from the sport flow's first question.
func firstQuestion(flow Flow) (QuestionID, string) {
	switch flow {
	case FlowRX:
		return Q1RX, questionRxStatus
	case FlowSupport:
		return SupQ1, questionSupportIssue
	default:
		return Q1, questionTerrain
	}
}

// SessionStart is the result of opening a new advisor session.
type SessionStart struct {
	SessionID        string
	IntentPrimary    string
	IntentSecondary  string
	AssistantMessage string
	NextQuestion     string
	NextQuestionID   QuestionID
}

// StartSession opens a new session: classifies the user's opening text,
// routes it to a flow, and asks the flow's first question. Classifier
// failures fall back to the default intent and never reach the user.
func (s *Service) StartSession(ctx context.Context, query string) (SessionStart, error) {
	sessionID := uuid.NewString()

	if err := s.log.Append(ctx, sessionID, eventlog.SessionStart, map[string]any{"query": query}); err != nil {
		return SessionStart{}, fmt.Errorf("logging session start: %w", err)
	}

	cls, err := s.classify.Classify(ctx, query)
	if err != nil {
		slog.Warn("intent classification failed, using default", "error", err)
		cls = Classification{Primary: "valutazione"}
	}
	if err := s.log.Append(ctx, sessionID, eventlog.IntentDetected, map[string]any{
		"intent_primary":   cls.Primary,
		"intent_secondary": cls.Secondary,
		"confidence":       cls.Confidence,
		"reasoning":        cls.Reasoning,
	}); err != nil {
		return SessionStart{}, fmt.Errorf("logging intent: %w", err)
	}

	flow := RouteIntent(cls.Primary)
	if err := s.log.Append(ctx, sessionID, eventlog.FlowDetected, map[string]any{"flow": string(flow)}); err != nil {
		return SessionStart{}, fmt.Errorf("logging flow: %w", err)
	}

	msg := s.openingMessage(cls.Primary)
	qid, question := firstQuestion(flow)

	if err := s.logExchange(ctx, sessionID, msg, qid, question); err != nil {
		return SessionStart{}, fmt.Errorf("logging opening exchange: %w", err)
	}

	return SessionStart{
		SessionID:        sessionID,
		IntentPrimary:    cls.Primary,
		IntentSecondary:  cls.Secondary,
		AssistantMessage: msg,
		NextQuestion:     question,
		NextQuestionID:   qid,
	}, nil
}

// openingMessage composes the session's opening line with some lexical
// variety, adapted to the detected intent.
func (s *Service) openingMessage(intentPrimary string) string {
	if intentPrimary == "prescrizione_ottica" {
		base := s.pick([]string{
			"Ok, ho capito che ti servono occhiali SCICON compatibili con la tua prescrizione.",
			"Chiaro, stai cercando una soluzione SCICON che ti permetta di usare le lenti graduate durante le uscite.",
			"Ho capito: ti servono occhiali SCICON che possano montare lenti ottiche su misura.",
		})
		extra := s.pick([]string{
			" Vediamo come orientarti tra le opzioni RX senza complicarti la vita.",
			" Ti aiuto a capire quali soluzioni RX hanno più senso per il tuo uso.",
			" Possiamo capire insieme qual è la soluzione RX più comoda per te.",
		})
		closer := s.pick([]string{
			" Ti faccio un paio di domande rapide per inquadrare meglio la situazione.",
			" Partiamo con una domanda veloce sulla tua prescrizione.",
			" Iniziamo da una cosa semplice legata alla prescrizione.",
		})
		return base + extra + " " + closer
	}

	if intentPrimary == "post_vendita_supporto" {
		base := s.pick([]string{
			"Ok, ho capito che ti serve assistenza su un paio di occhiali SCICON che hai già.",
			"Chiaro, c'è qualcosa da sistemare sui tuoi occhiali SCICON.",
		})
		closer := s.pick([]string{
			" Ti faccio un paio di domande rapide per trovare il ricambio o la soluzione giusta.",
			" Vediamo subito di cosa si tratta con un paio di domande veloci.",
		})
		return base + closer
	}

	base := s.pick([]string{
		"Ok, ho capito che stai cercando occhiali da ciclismo per uscite lunghe e vuoi evitare una scelta sbagliata.",
		"Ho capito: ti servono occhiali da ciclismo per uscite lunghe e vuoi essere sicuro di non sbagliare modello.",
		"Chiaro, stai cercando un paio di occhiali da ciclismo per uscite lunghe e vuoi fare una scelta sensata, non casuale.",
	})

	var extra string
	switch intentPrimary {
	case "comparazione":
		extra = s.pick([]string{
			" Ti aiuto a mettere a confronto in modo semplice i modelli più adatti.",
			" Possiamo confrontare in modo chiaro le opzioni migliori per il tuo uso.",
		})
	case "riduzione_rischio":
		extra = s.pick([]string{
			" Vediamo insieme come evitare un modello poco adatto alle tue uscite.",
			" Ti aiuto a ridurre al minimo il rischio di prendere un modello sbagliato.",
		})
	case "affidabilità_tecnica":
		extra = s.pick([]string{
			" Possiamo guardare anche agli aspetti tecnici per trovare qualcosa di davvero affidabile.",
			" Ti guido con indicazioni tecniche per scegliere un prodotto coerente con l'uso che ne farai.",
		})
	default:
		extra = s.pick([]string{
			" Ti faccio un paio di domande rapide così ti suggerisco qualcosa di mirato.",
			" Ti propongo qualche domanda veloce per capire meglio cosa ti serve davvero.",
		})
	}

	closer := s.pick([]string{
		" Partiamo con la prima domanda.",
		" Iniziamo dalla prima domanda.",
		" Cominciamo dalla base, con una prima domanda.",
	})

	return base + extra + " " + closer
}
