// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/sortbench/internal/model"
)

const sparkChars = " .:-=+*#%@"

// WinRate is the share of runs won, in [0, 1].
func WinRate(s model.AlgorithmStanding) float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Runs)
}

// MeanSteps averages the step counts of successful runs.
func MeanSteps(s model.AlgorithmStanding) float64 {
	ok := s.Runs - s.Failures
	if ok <= 0 {
		return math.Inf(1)
	}
	return float64(s.TotalSteps) / float64(ok)
}

// MeanSeconds averages the wall-clock time of successful runs.
func MeanSeconds(s model.AlgorithmStanding) float64 {
	ok := s.Runs - s.Failures
	if ok <= 0 {
		return math.Inf(1)
	}
	return s.TotalSeconds / float64(ok)
}

// Standings aggregates records per algorithm, best win rate first.
func Standings(records []model.DatasetRecord) []model.AlgorithmStanding {
	byName := map[string]*model.AlgorithmStanding{}
	// Paired records share a run id; look up the opponent to tell ties from losses.
	wonByRun := map[string]bool{}
	for _, r := range records {
		wonByRun[runKey(r.RunID, r.Algorithm)] = r.Won
	}
	for _, r := range records {
		s, ok := byName[r.Algorithm]
		if !ok {
			s = &model.AlgorithmStanding{Algorithm: r.Algorithm}
			byName[r.Algorithm] = s
		}
		s.Runs++
		switch {
		case r.Won:
			s.Wins++
		case wonByRun[runKey(r.RunID, r.Opponent)]:
			s.Losses++
		default:
			s.Ties++
		}
		if r.Result.Failed() {
			s.Failures++
			continue
		}
		s.TotalSteps += r.Result.Steps
		s.TotalSeconds += r.Result.Seconds
	}
	out := make([]model.AlgorithmStanding, 0, len(byName))
	for _, s := range byName {
		out = append(out, *s)
	}
	sortStandings(out)
	return out
}

func sortStandings(s []model.AlgorithmStanding) {
	sort.Slice(s, func(i, j int) bool {
		wi, wj := WinRate(s[i]), WinRate(s[j])
		if wi == wj {
			return s[i].Algorithm < s[j].Algorithm
		}
		return wi > wj
	})
}

func runKey(runID int64, algorithm string) string {
	return fmt.Sprintf("%d|%s", runID, algorithm)
}

// ShapeWinners returns the algorithm with the highest win rate per shape,
// in canonical shape order.
func ShapeWinners(records []model.DatasetRecord) []ShapeWinner {
	byShape := map[model.ArrayShape][]model.DatasetRecord{}
	for _, r := range records {
		byShape[r.Shape] = append(byShape[r.Shape], r)
	}
	var out []ShapeWinner
	for _, shape := range model.AllShapes {
		recs, ok := byShape[shape]
		if !ok {
			continue
		}
		standings := Standings(recs)
		out = append(out, ShapeWinner{Shape: shape, Standing: standings[0]})
	}
	return out
}

// ShapeWinner is the best algorithm on one array shape.
type ShapeWinner struct {
	Shape    model.ArrayShape
	Standing model.AlgorithmStanding
}

// Matchups aggregates results for every ordered (algorithm, opponent) pair.
func Matchups(records []model.DatasetRecord) []model.Matchup {
	type key struct{ a, b string }
	byPair := map[key]*model.Matchup{}
	for _, r := range records {
		k := key{r.Algorithm, r.Opponent}
		m, ok := byPair[k]
		if !ok {
			m = &model.Matchup{Algorithm: r.Algorithm, Opponent: r.Opponent}
			byPair[k] = m
		}
		m.Runs++
		if r.Won {
			m.Wins++
		}
	}
	out := make([]model.Matchup, 0, len(byPair))
	for _, m := range byPair {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Algorithm == out[j].Algorithm {
			return out[i].Opponent < out[j].Opponent
		}
		return out[i].Algorithm < out[j].Algorithm
	})
	return out
}

// WinSeries returns, for each algorithm, a 0/1 series of its results in run order.
func WinSeries(records []model.DatasetRecord) map[string][]float64 {
	sorted := make([]model.DatasetRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].RunID < sorted[j].RunID })
	out := map[string][]float64{}
	for _, r := range sorted {
		v := 0.0
		if r.Won {
			v = 1
		}
		out[r.Algorithm] = append(out[r.Algorithm], v)
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the tournament header and totals.
func RenderSummary(w io.Writer, t *model.TournamentSummary, records []model.DatasetRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No records found.")
		return err
	}
	runs := map[int64]struct{}{}
	failures := 0
	for _, r := range records {
		runs[r.RunID] = struct{}{}
		if r.Result.Failed() {
			failures++
		}
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if t != nil {
		if _, err := fmt.Fprintf(w, "Tournament: %s\n", t.ID); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Started: %s\n", t.StartedAt.Format("2006-01-02 15:04:05")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Runs: %d\n", len(runs)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Records: %d\n", len(records)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Failed executions: %d\n", failures); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderStandings prints the per-algorithm table.
func RenderStandings(w io.Writer, standings []model.AlgorithmStanding) error {
	if len(standings) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Standings"); err != nil {
		return err
	}
	headers := []string{"Algorithm", "Win %", "Runs", "Wins", "Losses", "Ties", "Failed", "Avg steps", "Avg time (ms)"}
	rows := make([][]string, 0, len(standings))
	for _, s := range standings {
		rows = append(rows, []string{
			s.Algorithm,
			fmt.Sprintf("%.2f%%", WinRate(s)*100),
			fmt.Sprintf("%d", s.Runs),
			fmt.Sprintf("%d", s.Wins),
			fmt.Sprintf("%d", s.Losses),
			fmt.Sprintf("%d", s.Ties),
			fmt.Sprintf("%d", s.Failures),
			formatMean(MeanSteps(s), 1, "%.0f"),
			formatMean(MeanSeconds(s), 1000, "%.3f"),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true, 8: true}
	return writeLines(w, formatTable(headers, rows, rightAlign))
}

// RenderShapeWinners prints the best algorithm per array shape.
func RenderShapeWinners(w io.Writer, winners []ShapeWinner) error {
	if len(winners) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Best per shape"); err != nil {
		return err
	}
	headers := []string{"Shape", "Algorithm", "Win %", "Avg steps"}
	rows := make([][]string, 0, len(winners))
	for _, sw := range winners {
		rows = append(rows, []string{
			string(sw.Shape),
			sw.Standing.Algorithm,
			fmt.Sprintf("%.2f%%", WinRate(sw.Standing)*100),
			formatMean(MeanSteps(sw.Standing), 1, "%.0f"),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{2: true, 3: true}))
}

// RenderNemeses prints, per algorithm, the opponent it fares worst against.
func RenderNemeses(w io.Writer, nemeses []Nemesis) error {
	if len(nemeses) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Head-to-head (worst matchup)"); err != nil {
		return err
	}
	headers := []string{"Algorithm", "Nemesis", "Win %", "Runs"}
	rows := make([][]string, 0, len(nemeses))
	for _, n := range nemeses {
		rows = append(rows, []string{
			n.Algorithm,
			n.Opponent,
			fmt.Sprintf("%.2f%%", matchupRate(n.Matchup)*100),
			fmt.Sprintf("%d", n.Runs),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{2: true, 3: true}))
}

// RenderTrends prints a win-rate sparkline for each listed algorithm.
func RenderTrends(w io.Writer, series map[string][]float64, algorithms []string, window int) error {
	if len(algorithms) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Win trend (moving average, window %d)\n", window); err != nil {
		return err
	}
	headers := []string{"Algorithm", "Trend"}
	rows := make([][]string, 0, len(algorithms))
	for _, name := range algorithms {
		rows = append(rows, []string{name, Sparkline(MovingAverage(series[name], window))})
	}
	return writeLines(w, formatTable(headers, rows, nil))
}

func formatMean(v, scale float64, format string) string {
	if math.IsInf(v, 1) {
		return "-"
	}
	return fmt.Sprintf(format, v*scale)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
