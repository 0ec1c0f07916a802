package tournament

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/sortbench/internal/executor"
	"github.com/verte-zerg/sortbench/internal/generator"
	"github.com/verte-zerg/sortbench/internal/model"
	"github.com/verte-zerg/sortbench/internal/sorting"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

type fixedRunner map[string]float64

func (r fixedRunner) Execute(_ context.Context, s sorting.Strategy, data []int) model.RunResult {
	secs, ok := r[s.Name()]
	if !ok {
		return model.FailedRun(errors.New("no timing"))
	}
	return model.RunResult{Steps: int64(len(data)), Seconds: secs}
}

type failingGenerator struct {
	inner *generator.Generator
	bad   model.ArrayShape
}

func (g failingGenerator) Generate(shape model.ArrayShape, size int) ([]int, error) {
	if shape == g.bad {
		return nil, fmt.Errorf("cannot build %s", shape)
	}
	return g.inner.Generate(shape, size)
}

func noop(name string) sorting.Strategy {
	return sorting.NewKernel(name, func([]int, sorting.Yield) error { return nil })
}

func catalogue(t *testing.T, names ...string) *sorting.Catalogue {
	t.Helper()
	strategies := make([]sorting.Strategy, len(names))
	for i, n := range names {
		strategies[i] = noop(n)
	}
	c, err := sorting.NewCatalogue(strategies...)
	require.NoError(t, err)
	return c
}

func newGenerator(t *testing.T) *generator.Generator {
	t.Helper()
	g, err := generator.New(42, generator.DefaultMaxValue)
	require.NoError(t, err)
	return g
}

func collect(t *testing.T, tr *Tournament) []model.DatasetRecord {
	t.Helper()
	var out []model.DatasetRecord
	for rec, err := range tr.Records(context.Background()) {
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func TestPairs(t *testing.T) {
	for k := 0; k <= 7; k++ {
		names := make([]string, k)
		for i := range names {
			names[i] = fmt.Sprintf("s%d", i)
		}
		var strategies []sorting.Strategy
		for _, n := range names {
			strategies = append(strategies, noop(n))
		}
		pairs := Pairs(strategies)
		assert.Len(t, pairs, k*(k-1)/2, "k=%d", k)
		seen := map[string]bool{}
		for _, p := range pairs {
			a, b := p.A.Name(), p.B.Name()
			assert.NotEqual(t, a, b)
			assert.False(t, seen[a+"|"+b] || seen[b+"|"+a], "duplicate pair %s/%s", a, b)
			seen[a+"|"+b] = true
		}
	}
}

func TestFastBeatsSlow(t *testing.T) {
	tr, err := New(Config{
		Catalogue:   catalogue(t, "fast", "slow"),
		SizeClasses: sorting.SizeClasses{Default: 10},
		Shapes:      []model.ArrayShape{model.ShapeRandom},
		Repetitions: 1,
	}, newGenerator(t), fixedRunner{"fast": 0.001, "slow": 0.5}, WithLogger(quietLog))
	require.NoError(t, err)

	recs := collect(t, tr)
	require.Len(t, recs, 2)
	a, b := recs[0], recs[1]
	assert.Equal(t, int64(1), a.RunID)
	assert.Equal(t, a.RunID, b.RunID)
	assert.Equal(t, "fast", a.Algorithm)
	assert.Equal(t, "slow", a.Opponent)
	assert.Equal(t, "slow", b.Algorithm)
	assert.Equal(t, "fast", b.Opponent)
	assert.True(t, a.Won)
	assert.False(t, b.Won)
	assert.Equal(t, a.Features, b.Features)
}

func TestTieLabelsNeitherSide(t *testing.T) {
	tr, err := New(Config{
		Catalogue:   catalogue(t, "x", "y"),
		SizeClasses: sorting.SizeClasses{Default: 4},
		Shapes:      []model.ArrayShape{model.ShapeSorted},
		Repetitions: 2,
	}, newGenerator(t), fixedRunner{"x": 0.25, "y": 0.25}, WithLogger(quietLog))
	require.NoError(t, err)

	for _, rec := range collect(t, tr) {
		assert.False(t, rec.Won)
	}
}

func TestAlwaysFailingStrategyLoses(t *testing.T) {
	cat := sorting.DefaultCatalogue(sorting.Options{})
	sub, err := cat.Select([]string{sorting.InsertionSort, sorting.QuantumBogoSort})
	require.NoError(t, err)
	tr, err := New(Config{
		Catalogue:   sub,
		SizeClasses: sorting.DefaultSizeClasses(),
		Shapes:      []model.ArrayShape{model.ShapeRandom},
		Repetitions: 1,
	}, newGenerator(t), executor.New(executor.Limits{}, quietLog), WithLogger(quietLog))
	require.NoError(t, err)

	recs := collect(t, tr)
	require.Len(t, recs, 2)
	normal, quantum := recs[0], recs[1]
	assert.Equal(t, sorting.InsertionSort, normal.Algorithm)
	assert.True(t, normal.Won)
	assert.False(t, normal.Result.Failed())
	assert.Equal(t, sorting.QuantumBogoSort, quantum.Algorithm)
	assert.False(t, quantum.Won)
	assert.True(t, quantum.Result.Failed())
	assert.Equal(t, model.InfiniteSteps, quantum.Result.Steps)
	assert.Positive(t, normal.Result.Steps)
	assert.Equal(t, normal.Features, quantum.Features)
}

func TestRecordsInvariants(t *testing.T) {
	cat := sorting.DefaultCatalogue(sorting.Options{})
	sub, err := cat.Select([]string{sorting.BubbleSort, sorting.MergeSort, sorting.BogoSort, sorting.QuantumBogoSort})
	require.NoError(t, err)
	tr, err := New(Config{
		Catalogue:   sub,
		SizeClasses: sorting.DefaultSizeClasses(),
		Shapes:      model.AllShapes,
		Repetitions: 2,
	}, newGenerator(t), executor.New(executor.Limits{}, quietLog), WithLogger(quietLog))
	require.NoError(t, err)
	assert.Equal(t, 5*6*2, tr.TotalRuns())

	recs := collect(t, tr)
	require.Len(t, recs, 2*tr.TotalRuns())

	byRun := map[int64][]model.DatasetRecord{}
	for _, r := range recs {
		byRun[r.RunID] = append(byRun[r.RunID], r)
	}
	require.Len(t, byRun, tr.TotalRuns())
	for id, pair := range byRun {
		require.Len(t, pair, 2, "run %d", id)
		assert.Equal(t, pair[0].Features, pair[1].Features, "run %d", id)
		assert.False(t, pair[0].Won && pair[1].Won, "run %d", id)
		assert.Equal(t, pair[0].Algorithm, pair[1].Opponent)
		assert.Equal(t, pair[1].Algorithm, pair[0].Opponent)
		assert.Equal(t, pair[0].Shape, pair[1].Shape)
	}
}

func TestRecordsOrdering(t *testing.T) {
	tr, err := New(Config{
		Catalogue:   catalogue(t, "a", "b", "c"),
		SizeClasses: sorting.SizeClasses{Default: 3},
		Shapes:      []model.ArrayShape{model.ShapeReversed, model.ShapeRandom},
		Repetitions: 2,
	}, newGenerator(t), fixedRunner{"a": 1, "b": 2, "c": 3}, WithLogger(quietLog))
	require.NoError(t, err)

	recs := collect(t, tr)
	var got []string
	for i := 0; i < len(recs); i += 2 {
		got = append(got, fmt.Sprintf("%d:%s:%s-%s", recs[i].RunID, recs[i].Shape, recs[i].Algorithm, recs[i+1].Algorithm))
	}
	want := []string{
		"1:reversed:a-b", "2:reversed:a-b",
		"3:reversed:a-c", "4:reversed:a-c",
		"5:reversed:b-c", "6:reversed:b-c",
		"7:random:a-b", "8:random:a-b",
		"9:random:a-c", "10:random:a-c",
		"11:random:b-c", "12:random:b-c",
	}
	assert.Equal(t, want, got)
}

func TestRecordsFreshRunIDsPerCall(t *testing.T) {
	tr, err := New(Config{
		Catalogue:   catalogue(t, "a", "b"),
		SizeClasses: sorting.SizeClasses{Default: 3},
		Shapes:      []model.ArrayShape{model.ShapeRandom},
		Repetitions: 1,
	}, newGenerator(t), fixedRunner{"a": 1, "b": 2}, WithLogger(quietLog))
	require.NoError(t, err)

	first := collect(t, tr)
	second := collect(t, tr)
	assert.Equal(t, int64(1), first[0].RunID)
	assert.Equal(t, int64(1), second[0].RunID)
}

func TestGenerationFailureSkipsRun(t *testing.T) {
	var events []ProgressEvent
	tr, err := New(Config{
		Catalogue:   catalogue(t, "a", "b"),
		SizeClasses: sorting.SizeClasses{Default: 3},
		Shapes:      []model.ArrayShape{model.ShapeRandom, model.ShapeFewUnique, model.ShapeSorted},
		Repetitions: 1,
	}, failingGenerator{inner: newGenerator(t), bad: model.ShapeFewUnique}, fixedRunner{"a": 1, "b": 2},
		WithLogger(quietLog),
		WithProgress(func(ev ProgressEvent) { events = append(events, ev) }))
	require.NoError(t, err)

	recs := collect(t, tr)
	require.Len(t, recs, 4)
	assert.Equal(t, int64(1), recs[0].RunID)
	assert.Equal(t, int64(3), recs[2].RunID)
	assert.Equal(t, model.ShapeSorted, recs[2].Shape)

	var skipped []ProgressEvent
	for _, ev := range events {
		if ev.EventType == EventRunSkipped {
			skipped = append(skipped, ev)
		}
	}
	require.Len(t, skipped, 1)
	assert.Equal(t, int64(2), skipped[0].RunID)
	assert.Error(t, skipped[0].Err)

	last := events[len(events)-1]
	assert.Equal(t, EventTournamentComplete, last.EventType)
	assert.Equal(t, 1, last.Skipped)
	assert.Equal(t, 3, last.Completed)
	assert.InDelta(t, 100.0, last.Percent(), 1e-9)
}

func TestRecordsStopsOnCancel(t *testing.T) {
	tr, err := New(Config{
		Catalogue:   catalogue(t, "a", "b"),
		SizeClasses: sorting.SizeClasses{Default: 3},
		Shapes:      []model.ArrayShape{model.ShapeRandom},
		Repetitions: 5,
	}, newGenerator(t), fixedRunner{"a": 1, "b": 2}, WithLogger(quietLog))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var n int
	var gotErr error
	for _, err := range tr.Records(ctx) {
		if err != nil {
			gotErr = err
			break
		}
		n++
		if n == 2 {
			cancel()
		}
	}
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, gotErr, context.Canceled)
}

type cancellingRunner struct {
	cancel context.CancelFunc
}

func (r cancellingRunner) Execute(context.Context, sorting.Strategy, []int) model.RunResult {
	r.cancel()
	return model.FailedRun(context.Canceled)
}

func TestRecordsDropsRunCutShort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tr, err := New(Config{
		Catalogue:   catalogue(t, "a", "b"),
		SizeClasses: sorting.SizeClasses{Default: 3},
		Shapes:      []model.ArrayShape{model.ShapeRandom},
		Repetitions: 2,
	}, newGenerator(t), cancellingRunner{cancel: cancel}, WithLogger(quietLog))
	require.NoError(t, err)

	var n int
	var gotErr error
	for _, err := range tr.Records(ctx) {
		if err != nil {
			gotErr = err
			break
		}
		n++
	}
	assert.Zero(t, n)
	assert.ErrorIs(t, gotErr, context.Canceled)
}

func TestNewValidates(t *testing.T) {
	_, err := New(Config{Catalogue: catalogue(t, "only"), Shapes: model.AllShapes}, nil, nil)
	require.Error(t, err)
	_, err = New(Config{Catalogue: catalogue(t, "a", "b")}, nil, nil)
	require.Error(t, err)

	tr, err := New(Config{Catalogue: catalogue(t, "a", "b"), Shapes: model.AllShapes}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 5*1*DefaultRepetitions, tr.TotalRuns())
}

func TestWinner(t *testing.T) {
	ok := model.RunResult{Steps: 10, Seconds: 0.1}
	failed := model.FailedRun(errors.New("boom"))
	a, b := Winner(ok, failed)
	assert.True(t, a)
	assert.False(t, b)
	a, b = Winner(failed, failed)
	assert.False(t, a)
	assert.False(t, b)
}
