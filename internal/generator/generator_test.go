package generator

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/sortbench/internal/model"
)

func TestGenerateShapes(t *testing.T) {
	g, err := New(42, DefaultMaxValue)
	require.NoError(t, err)

	for _, shape := range model.AllShapes {
		for _, size := range []int{0, 1, 2, 5, 100} {
			data, err := g.Generate(shape, size)
			require.NoError(t, err)
			require.Len(t, data, size)
			for _, v := range data {
				assert.GreaterOrEqual(t, v, 0)
				assert.Less(t, v, DefaultMaxValue)
			}
			switch shape {
			case model.ShapeSorted:
				assert.True(t, slices.IsSorted(data))
			case model.ShapeReversed:
				rev := slices.Clone(data)
				slices.Reverse(rev)
				assert.True(t, slices.IsSorted(rev))
			case model.ShapeFewUnique:
				distinct := slices.Compact(slices.Sorted(slices.Values(data)))
				assert.LessOrEqual(t, len(distinct), fewUniqueAlphabet)
			}
		}
	}
}

func TestNearlySortedIsCloseToSorted(t *testing.T) {
	g, err := New(7, DefaultMaxValue)
	require.NoError(t, err)
	data, err := g.Generate(model.ShapeNearlySorted, 100)
	require.NoError(t, err)
	outOfOrder := 0
	for i := 1; i < len(data); i++ {
		if data[i-1] > data[i] {
			outOfOrder++
		}
	}
	assert.LessOrEqual(t, outOfOrder, 5)
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	a, err := New(99, DefaultMaxValue)
	require.NoError(t, err)
	b, err := New(99, DefaultMaxValue)
	require.NoError(t, err)
	for _, shape := range model.AllShapes {
		x, _ := a.Generate(shape, 50)
		y, _ := b.Generate(shape, 50)
		assert.Equal(t, x, y, shape)
	}
}

func TestGenerateErrors(t *testing.T) {
	_, err := New(1, 0)
	require.ErrorIs(t, err, ErrInvalidSize)

	g, err := New(1, 10)
	require.NoError(t, err)
	_, err = g.Generate(model.ShapeRandom, -1)
	require.ErrorIs(t, err, ErrInvalidSize)
	_, err = g.Generate(model.ArrayShape("zigzag"), 3)
	require.ErrorIs(t, err, ErrUnknownShape)
}
