// Package tournament pairs strategies against each other on generated
// arrays and labels which side of each run was faster.
package tournament

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/verte-zerg/sortbench/internal/features"
	"github.com/verte-zerg/sortbench/internal/model"
	"github.com/verte-zerg/sortbench/internal/sorting"
)

// DefaultRepetitions is the number of runs per shape and pair.
const DefaultRepetitions = 3

// Generator produces input arrays.
type Generator interface {
	Generate(shape model.ArrayShape, size int) ([]int, error)
}

// Runner executes one strategy on one array.
type Runner interface {
	Execute(ctx context.Context, s sorting.Strategy, data []int) model.RunResult
}

// Config is the immutable tournament setup.
type Config struct {
	Catalogue   *sorting.Catalogue
	SizeClasses sorting.SizeClasses
	Shapes      []model.ArrayShape
	Repetitions int
}

// Pair is an unordered pairing of two strategies, A before B in catalogue order.
type Pair struct {
	A sorting.Strategy
	B sorting.Strategy
}

// Pairs enumerates every unordered pair (i<j) of strategies.
func Pairs(strategies []sorting.Strategy) []Pair {
	if len(strategies) < 2 {
		return nil
	}
	pairs := make([]Pair, 0, len(strategies)*(len(strategies)-1)/2)
	for i := 0; i < len(strategies); i++ {
		for j := i + 1; j < len(strategies); j++ {
			pairs = append(pairs, Pair{A: strategies[i], B: strategies[j]})
		}
	}
	return pairs
}

// Winner labels a run: the strictly faster side wins, ties win for neither.
func Winner(a, b model.RunResult) (aWon, bWon bool) {
	return a.Seconds < b.Seconds, b.Seconds < a.Seconds
}

// Option configures a Tournament.
type Option func(*Tournament)

// WithProgress registers a progress listener.
func WithProgress(listener ProgressListener) Option {
	return func(t *Tournament) {
		t.listeners = append(t.listeners, listener)
	}
}

// WithLogger sets the logger used for skipped runs.
func WithLogger(log *slog.Logger) Option {
	return func(t *Tournament) {
		t.log = log
	}
}

// Tournament drives the pairwise runs.
type Tournament struct {
	cfg    Config
	pairs  []Pair
	gen    Generator
	runner Runner
	log    *slog.Logger

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// New validates cfg and returns a Tournament.
func New(cfg Config, gen Generator, runner Runner, opts ...Option) (*Tournament, error) {
	if cfg.Catalogue == nil || cfg.Catalogue.Len() < 2 {
		return nil, fmt.Errorf("tournament needs at least two strategies")
	}
	if len(cfg.Shapes) == 0 {
		return nil, fmt.Errorf("tournament needs at least one array shape")
	}
	if cfg.Repetitions <= 0 {
		cfg.Repetitions = DefaultRepetitions
	}
	t := &Tournament{
		cfg:    cfg,
		pairs:  Pairs(cfg.Catalogue.Strategies()),
		gen:    gen,
		runner: runner,
		log:    slog.Default(),
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// OnProgress registers a progress listener.
func (t *Tournament) OnProgress(listener ProgressListener) {
	t.progressMu.Lock()
	defer t.progressMu.Unlock()
	t.listeners = append(t.listeners, listener)
}

// Pairs returns the pairings in enumeration order.
func (t *Tournament) Pairs() []Pair {
	return append([]Pair(nil), t.pairs...)
}

// TotalRuns is shapes × pairs × repetitions.
func (t *Tournament) TotalRuns() int {
	return len(t.cfg.Shapes) * len(t.pairs) * t.cfg.Repetitions
}

// Records enumerates the dataset lazily, ordered by shape, pair and
// repetition. Each call starts a fresh enumeration with run ids from 1. If
// ctx ends, the sequence yields ctx.Err() once and stops.
func (t *Tournament) Records(ctx context.Context) iter.Seq2[model.DatasetRecord, error] {
	return func(yield func(model.DatasetRecord, error) bool) {
		total := t.TotalRuns()
		var runID int64
		completed, skipped, failures := 0, 0, 0
		t.emit(ProgressEvent{EventType: EventTournamentStart, Total: total})

		for _, shape := range t.cfg.Shapes {
			for _, pair := range t.pairs {
				size := t.cfg.SizeClasses.Effective(pair.A.Name(), pair.B.Name())
				for rep := 0; rep < t.cfg.Repetitions; rep++ {
					if err := ctx.Err(); err != nil {
						yield(model.DatasetRecord{}, err)
						return
					}
					runID++
					ev := ProgressEvent{
						RunID:      runID,
						Repetition: rep + 1,
						Shape:      shape,
						A:          pair.A.Name(),
						B:          pair.B.Name(),
						Size:       size,
						Total:      total,
					}
					ev.EventType = EventRunStart
					ev.Completed = completed
					t.emit(ev)

					recA, recB, err := t.playRun(ctx, runID, shape, size, pair)
					// A run cut short by cancellation measured nothing.
					if cerr := ctx.Err(); cerr != nil {
						yield(model.DatasetRecord{}, cerr)
						return
					}
					completed++
					ev.Completed = completed
					if err != nil {
						skipped++
						t.log.Error("run skipped", "run", runID, "shape", shape, "a", ev.A, "b", ev.B, "error", err)
						ev.EventType = EventRunSkipped
						ev.Err = err
						t.emit(ev)
						continue
					}
					if recA.Result.Failed() {
						failures++
						ev.FailedA = recA.Result.Err
					}
					if recB.Result.Failed() {
						failures++
						ev.FailedB = recB.Result.Err
					}
					ev.EventType = EventRunComplete
					ev.WonA, ev.WonB = recA.Won, recB.Won
					t.emit(ev)

					if !yield(recA, nil) || !yield(recB, nil) {
						return
					}
				}
			}
		}
		t.emit(ProgressEvent{
			EventType: EventTournamentComplete,
			Completed: completed,
			Total:     total,
			Skipped:   skipped,
			Failures:  failures,
		})
	}
}

func (t *Tournament) playRun(ctx context.Context, runID int64, shape model.ArrayShape, size int, pair Pair) (model.DatasetRecord, model.DatasetRecord, error) {
	data, err := t.gen.Generate(shape, size)
	if err != nil {
		return model.DatasetRecord{}, model.DatasetRecord{}, fmt.Errorf("failed to generate %s array of size %d: %w", shape, size, err)
	}
	fv := features.Extract(data)

	resA := t.runner.Execute(ctx, pair.A, data)
	resB := t.runner.Execute(ctx, pair.B, data)
	wonA, wonB := Winner(resA, resB)

	recA := model.DatasetRecord{
		RunID:     runID,
		Shape:     shape,
		Algorithm: pair.A.Name(),
		Opponent:  pair.B.Name(),
		Features:  fv,
		Result:    resA,
		Won:       wonA,
	}
	recB := model.DatasetRecord{
		RunID:     runID,
		Shape:     shape,
		Algorithm: pair.B.Name(),
		Opponent:  pair.A.Name(),
		Features:  fv,
		Result:    resB,
		Won:       wonB,
	}
	return recA, recB, nil
}

func (t *Tournament) emit(ev ProgressEvent) {
	t.progressMu.Lock()
	listeners := append([]ProgressListener(nil), t.listeners...)
	t.progressMu.Unlock()
	for _, l := range listeners {
		l(ev)
	}
}
