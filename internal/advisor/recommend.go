package advisor

import (
	"context"
	"fmt"
	"sort"

	"github.com/scicon/advisor/internal/catalog"
)

// Recommendation is the advisor's final product pick for a session.
type Recommendation struct {
	SessionID   string
	Flow        Flow
	Primary     *catalog.Entry
	Secondary   *catalog.Entry
	Explanation string
}

// scoreSport scores a catalog entry against a sport-flow profile.
// Range [0, 11]: terrain +3, light +3, priority +4, sport product +1.
func scoreSport(p Profile, e catalog.Entry) int {
	score := 0
	if p.Terrain != "" && e.HasTerrain(p.Terrain) {
		score += 3
	}
	if p.LightCondition != "" && e.HasLight(p.LightCondition) {
		score += 3
	}
	if p.SportPriority != "" && e.HasSportPriority(p.SportPriority) {
		score += 4
	}
	if e.Type == catalog.Sport {
		score++
	}
	return score
}

// scoreRX scores a catalog entry against an RX-flow profile. Range [0, 15].
// Non-RX-compatible entries score 0 regardless of anything else.
func scoreRX(p Profile, e catalog.Entry) int {
	if !e.RXCompatible {
		return 0
	}

	score := 0
	switch {
	case p.RXSolutionChoice == "clip_in" && e.HasRXMode("clip_in"):
		score += 4
	case p.RXSolutionChoice == "sport_rx" && e.HasRXMode("sport_rx"):
		score += 4
	case p.RXSolutionChoice == "non_so" && len(e.RXModes) > 0:
		score += 2 // any RX-ready entry gets generic credit
	}

	if p.RXPriority != "" && e.HasRXPriority(p.RXPriority) {
		score += 4
	}
	if p.Terrain != "" && e.HasTerrain(p.Terrain) {
		score += 2
	}
	if p.LightCondition != "" && e.HasLight(p.LightCondition) {
		score += 2
	}
	if e.Type == catalog.RX {
		score++
	}
	return score
}

type scoredEntry struct {
	entry catalog.Entry
	score int
}

// Recommend rebuilds the session's profile and scores the catalog against it.
func (s *Service) Recommend(ctx context.Context, sessionID string) (Recommendation, error) {
	events, err := s.log.Session(ctx, sessionID)
	if err != nil {
		return Recommendation{}, fmt.Errorf("reading session %s: %w", sessionID, err)
	}
	return s.recommendFromProfile(buildProfile(sessionID, events)), nil
}

func (s *Service) recommendFromProfile(p Profile) Recommendation {
	isRX := p.Flow == FlowRX

	var scored []scoredEntry
	for _, e := range s.catalog {
		var sc int
		if isRX {
			sc = scoreRX(p, e)
		} else {
			sc = scoreSport(p, e)
		}
		if sc > 0 {
			scored = append(scored, scoredEntry{entry: e, score: sc})
		}
	}

	// Fallback: nothing scored, pick entries of the flow's product type
	// with a fixed score of 1.
	if len(scored) == 0 {
		want := catalog.Sport
		if isRX {
			want = catalog.RX
		}
		for _, e := range s.catalog {
			if e.Type == want {
				scored = append(scored, scoredEntry{entry: e, score: 1})
			}
		}
	}

	// Stable sort: entries with equal scores keep catalog declaration order.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	rec := Recommendation{SessionID: p.SessionID, Flow: p.Flow}
	if len(scored) > 0 {
		rec.Primary = &scored[0].entry
	}
	if len(scored) > 1 && scored[1].score > 0 {
		rec.Secondary = &scored[1].entry
	}

	if rec.Primary != nil {
		rec.Explanation = buildExplanation(p, rec.Primary, rec.Secondary)
	} else {
		rec.Explanation = "Non ho abbastanza informazioni per suggerirti un modello preciso, " +
			"ma possiamo affinare il consiglio con qualche domanda in più."
	}
	return rec
}
