package advisor

import (
	"fmt"
	"strings"

	"github.com/scicon/advisor/internal/catalog"
)

// buildExplanation renders the natural-language rationale for a
// recommendation. No randomness: fixed sentence order (intro, terrain, light,
// flow-specific answers, primary, secondary) driven purely by which profile
// fields are set.
func buildExplanation(p Profile, primary, secondary *catalog.Entry) string {
	isRX := p.Flow == FlowRX

	var pieces []string
	if isRX {
		pieces = append(pieces, "Ti suggerisco questa configurazione RX partendo da quello che mi hai detto.")
	} else {
		pieces = append(pieces, "Ti suggerisco questi occhiali partendo da come usi la bici e da ciò che per te è prioritario.")
	}

	if p.Terrain != "" {
		pieces = append(pieces, fmt.Sprintf("Usi gli occhiali principalmente su %s.", p.Terrain))
	}
	if p.LightCondition != "" {
		if p.LightCondition == "variabile" {
			pieces = append(pieces, "Affronti spesso condizioni di luce variabile.")
		} else {
			pieces = append(pieces, "Pedali di solito in condizioni di luce abbastanza stabili.")
		}
	}

	if !isRX && p.SportPriority != "" {
		desc := map[string]string{
			"protezione":   "massima protezione degli occhi",
			"ventilazione": "buona ventilazione e anti-appannamento",
			"comfort":      "comfort nel lungo periodo",
		}[p.SportPriority]
		if desc == "" {
			desc = p.SportPriority
		}
		pieces = append(pieces, fmt.Sprintf("Hai indicato come priorità %s.", desc))
	}

	if isRX {
		switch p.RXPrescriptionStatus {
		case "presente":
			pieces = append(pieces, "Hai già una prescrizione recente.")
		case "mancante":
			pieces = append(pieces, "Non hai ancora una prescrizione aggiornata.")
		}
		if p.RXSolutionChoice != "" {
			choice := map[string]string{
				"clip_in":  "un inserto ottico / clip-in",
				"sport_rx": "una soluzione sportiva con lenti graduate dedicate",
				"non_so":   "una soluzione RX da definire insieme",
			}[p.RXSolutionChoice]
			if choice == "" {
				choice = "una soluzione RX flessibile"
			}
			pieces = append(pieces, fmt.Sprintf("Come configurazione ti orienti verso %s.", choice))
		}
		if p.RXPriority != "" {
			pri := map[string]string{
				"campo_visivo": "campo visivo ampio",
				"comfort":      "leggerezza e comfort",
				"stabilita":    "stabilità in movimento dell'inserto",
				"estetica":     "estetica e look complessivo",
			}[p.RXPriority]
			if pri == "" {
				pri = p.RXPriority
			}
			pieces = append(pieces, fmt.Sprintf("Per te conta soprattutto %s.", pri))
		}
	}

	pieces = append(pieces, fmt.Sprintf(
		"Per questo ti propongo come prima scelta **%s**, perché %s",
		primary.Name, primary.ShortReason,
	))

	if secondary != nil {
		pieces = append(pieces, fmt.Sprintf(
			"Come seconda opzione puoi considerare **%s**, "+
				"che rimane coerente con le tue esigenze ma con un'impostazione leggermente diversa.",
			secondary.Name,
		))
	}

	return strings.Join(pieces, " ")
}
