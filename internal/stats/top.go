package stats

import "github.com/verte-zerg/sortbench/internal/model"

// TopAlgorithms returns the names of the first n standings.
func TopAlgorithms(standings []model.AlgorithmStanding, n int) []string {
	if n <= 0 || len(standings) == 0 {
		return nil
	}
	if n > len(standings) {
		n = len(standings)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, standings[i].Algorithm)
	}
	return out
}
