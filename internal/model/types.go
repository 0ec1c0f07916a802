// Package model defines shared data structures.
package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ArrayShape names the generation policy of a synthetic input array.
type ArrayShape string

// Supported array shapes.
const (
	ShapeRandom       ArrayShape = "random"
	ShapeSorted       ArrayShape = "sorted"
	ShapeReversed     ArrayShape = "reversed"
	ShapeNearlySorted ArrayShape = "nearly_sorted"
	ShapeFewUnique    ArrayShape = "few_unique"
)

// AllShapes lists every shape in the default enumeration order.
var AllShapes = []ArrayShape{
	ShapeRandom,
	ShapeSorted,
	ShapeReversed,
	ShapeNearlySorted,
	ShapeFewUnique,
}

// ParseShape converts a label into an ArrayShape.
func ParseShape(label string) (ArrayShape, error) {
	label = strings.TrimSpace(strings.ToLower(label))
	for _, s := range AllShapes {
		if string(s) == label {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown array shape %q", label)
}

// ParseShapes converts a list of labels, keeping the given order.
func ParseShapes(labels []string) ([]ArrayShape, error) {
	shapes := make([]ArrayShape, 0, len(labels))
	seen := map[ArrayShape]struct{}{}
	for _, label := range labels {
		s, err := ParseShape(label)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[s]; ok {
			return nil, fmt.Errorf("duplicate array shape %q", label)
		}
		seen[s] = struct{}{}
		shapes = append(shapes, s)
	}
	return shapes, nil
}

// FeatureVector holds structural metrics of an array taken before sorting.
type FeatureVector struct {
	SortednessPct float64
	Inversions    int64
	UniqueRatio   float64
	Misplaced     int64
	Variance      float64
}

// InfiniteSteps is the step count recorded for a failed run.
const InfiniteSteps int64 = math.MaxInt64

// RunResult is one strategy's outcome on one array.
type RunResult struct {
	Steps   int64
	Seconds float64
	Err     error
}

// FailedRun returns the infinite-cost sentinel for err.
func FailedRun(err error) RunResult {
	return RunResult{Steps: InfiniteSteps, Seconds: math.Inf(1), Err: err}
}

// Failed reports whether r carries the infinite-cost sentinel.
func (r RunResult) Failed() bool {
	return r.Err != nil || r.Steps == InfiniteSteps || math.IsInf(r.Seconds, 1)
}

// DatasetRecord is one side of a run, flattened for the dataset.
type DatasetRecord struct {
	RunID     int64
	Shape     ArrayShape
	Algorithm string
	Opponent  string
	Features  FeatureVector
	Result    RunResult
	Won       bool
}

// TournamentConfig defines dataset generation settings.
type TournamentConfig struct {
	OutPath     string
	Repetitions int
	Shapes      []ArrayShape
	Algorithms  []string
	DefaultSize int
	SizeClasses map[string]int
	MaxValue    int
	Seed        int64
	MaxSteps    int64
	Timeout     time.Duration
	SleepUnit   time.Duration
	Store       bool
	DBPath      string
}

// StatsConfig defines filters for stats output.
type StatsConfig struct {
	TournamentID string
	CSVPath      string
	Shape        ArrayShape
}

// TournamentSummary describes a stored tournament.
type TournamentSummary struct {
	ID          string
	StartedAt   time.Time
	EndedAt     *time.Time
	Seed        int64
	Repetitions int
	OutputPath  string
	Runs        int
	Failures    int
}

// AlgorithmStanding aggregates one algorithm's results across runs.
type AlgorithmStanding struct {
	Algorithm    string
	Runs         int
	Wins         int
	Losses       int
	Ties         int
	Failures     int
	TotalSteps   int64
	TotalSeconds float64
}

// Matchup aggregates results of one ordered pair of algorithms.
type Matchup struct {
	Algorithm string
	Opponent  string
	Runs      int
	Wins      int
}
