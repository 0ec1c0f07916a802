// Package generator builds synthetic input arrays.
package generator

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/verte-zerg/sortbench/internal/model"
)

// DefaultMaxValue bounds generated values to [0, DefaultMaxValue).
const DefaultMaxValue = 1000

const fewUniqueAlphabet = 5

var (
	// ErrInvalidSize is returned for negative sizes or value ranges.
	ErrInvalidSize = errors.New("invalid array size")
	// ErrUnknownShape is returned for shapes the generator does not know.
	ErrUnknownShape = errors.New("unknown array shape")
)

// Generator produces arrays of a requested shape.
type Generator struct {
	rnd      *rand.Rand
	maxValue int
}

// New returns a Generator. A zero seed uses the current time.
func New(seed int64, maxValue int) (*Generator, error) {
	if maxValue < 1 {
		return nil, fmt.Errorf("%w: max value %d must be >= 1", ErrInvalidSize, maxValue)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed)), maxValue: maxValue}, nil
}

// Generate returns size values whose ordering matches shape.
func (g *Generator) Generate(shape model.ArrayShape, size int) ([]int, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	switch shape {
	case model.ShapeRandom:
		return g.random(size), nil
	case model.ShapeSorted:
		data := g.random(size)
		slices.Sort(data)
		return data, nil
	case model.ShapeReversed:
		data := g.random(size)
		slices.Sort(data)
		slices.Reverse(data)
		return data, nil
	case model.ShapeNearlySorted:
		return g.nearlySorted(size), nil
	case model.ShapeFewUnique:
		return g.fewUnique(size), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, shape)
	}
}

func (g *Generator) random(size int) []int {
	data := make([]int, size)
	for i := range data {
		data[i] = g.rnd.Intn(g.maxValue)
	}
	return data
}

// nearlySorted sorts a random array and then swaps about 5% of adjacent pairs.
func (g *Generator) nearlySorted(size int) []int {
	data := g.random(size)
	slices.Sort(data)
	if size < 2 {
		return data
	}
	swaps := max(1, size/20)
	for i := 0; i < swaps; i++ {
		j := g.rnd.Intn(size - 1)
		data[j], data[j+1] = data[j+1], data[j]
	}
	return data
}

func (g *Generator) fewUnique(size int) []int {
	alphabet := g.random(min(fewUniqueAlphabet, size))
	data := make([]int, size)
	for i := range data {
		data[i] = alphabet[g.rnd.Intn(len(alphabet))]
	}
	return data
}
