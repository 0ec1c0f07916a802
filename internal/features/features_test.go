package features

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/sortbench/internal/model"
)

const epsilon = 1e-9

func TestExtractThreeOneTwo(t *testing.T) {
	fv := Extract([]int{3, 1, 2})
	assert.Equal(t, int64(2), fv.Inversions)
	assert.InDelta(t, 50.0, fv.SortednessPct, epsilon)
	assert.Equal(t, int64(3), fv.Misplaced)
	assert.InDelta(t, 1.0, fv.UniqueRatio, epsilon)
	assert.InDelta(t, 2.0/3.0, fv.Variance, epsilon)
}

func TestExtractShortArrays(t *testing.T) {
	tests := []struct {
		name string
		data []int
		want model.FeatureVector
	}{
		{"nil", nil, model.FeatureVector{SortednessPct: 100, UniqueRatio: 1}},
		{"empty", []int{}, model.FeatureVector{SortednessPct: 100, UniqueRatio: 1}},
		{"single", []int{7}, model.FeatureVector{SortednessPct: 100, UniqueRatio: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.data))
		})
	}
}

func TestSortednessOfSortedArrays(t *testing.T) {
	for _, data := range [][]int{{1, 2}, {1, 1, 1}, {0, 5, 5, 9, 100}} {
		assert.InDelta(t, 100.0, Sortedness(data), epsilon, "%v", data)
	}
	assert.InDelta(t, 0.0, Sortedness([]int{3, 2, 1}), epsilon)
}

func randomArray(rnd *rand.Rand, n, maxValue int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = rnd.Intn(maxValue)
	}
	return out
}

func TestMisplacedZeroIffSorted(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		data := randomArray(rnd, rnd.Intn(8), 4)
		sorted := slices.IsSorted(data)
		assert.Equal(t, sorted, Misplaced(data) == 0, "%v", data)
	}
}

func TestUniqueRatioOneIffDistinct(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		data := randomArray(rnd, 1+rnd.Intn(8), 10)
		distinct := len(slices.Compact(slices.Sorted(slices.Values(data)))) == len(data)
		assert.Equal(t, distinct, math.Abs(UniqueRatio(data)-1.0) < epsilon, "%v", data)
	}
}

func TestExtractIsIdempotentAndPure(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	data := randomArray(rnd, 100, 1000)
	snapshot := slices.Clone(data)
	first := Extract(data)
	second := Extract(data)
	require.Equal(t, snapshot, data)
	assert.Equal(t, first, second)
}

func TestInversionsOfReversed(t *testing.T) {
	data := []int{5, 4, 3, 2, 1}
	assert.Equal(t, int64(10), Inversions(data))
	assert.Equal(t, int64(4), Misplaced(data))
}

func TestVariance(t *testing.T) {
	assert.InDelta(t, 4.0, Variance([]int{2, 4, 4, 4, 5, 5, 7, 9}), epsilon)
	assert.InDelta(t, 0.0, Variance([]int{3, 3, 3}), epsilon)
}
