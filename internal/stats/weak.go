package stats

import (
	"sort"

	"github.com/verte-zerg/sortbench/internal/model"
)

// Nemesis is the matchup an algorithm performs worst in.
type Nemesis struct {
	model.Matchup
}

// SelectNemeses picks, for each algorithm, the opponent against which it has
// the lowest win rate. Ties are broken by opponent name.
func SelectNemeses(matchups []model.Matchup) []Nemesis {
	if len(matchups) == 0 {
		return nil
	}
	candidates := make([]model.Matchup, len(matchups))
	copy(candidates, matchups)
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Algorithm != candidates[j].Algorithm {
			return candidates[i].Algorithm < candidates[j].Algorithm
		}
		ri := matchupRate(candidates[i])
		rj := matchupRate(candidates[j])
		if ri == rj {
			return candidates[i].Opponent < candidates[j].Opponent
		}
		return ri < rj
	})
	var out []Nemesis
	for i, m := range candidates {
		if i > 0 && candidates[i-1].Algorithm == m.Algorithm {
			continue
		}
		out = append(out, Nemesis{Matchup: m})
	}
	return out
}

func matchupRate(m model.Matchup) float64 {
	if m.Runs == 0 {
		return 1.0
	}
	return float64(m.Wins) / float64(m.Runs)
}
