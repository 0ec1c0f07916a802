// Package sorting defines the sorting strategy contract and the catalogue of
// instrumented strategies.
//
// A strategy sorts its own working copy in place and reports every elementary
// step (a comparison or an element write) through a Yield callback. The caller
// decides whether the strategy may continue: a false return from Yield asks
// the strategy to stop, and it must return ErrHalted promptly.
package sorting

import (
	"context"
	"errors"
	"iter"
	"time"
)

// Yield reports one elementary step. It returns false when the caller wants
// the strategy to stop.
type Yield func() bool

// Strategy is a named, stateless sorting procedure.
type Strategy interface {
	Name() string
	Sort(ctx context.Context, data []int, yield Yield) error
}

// Budgeted is implemented by strategies whose running time is set by the
// values they sort rather than by their step count. The executor raises its
// wall-clock ceiling to TimeBudget(data) when that is larger.
type Budgeted interface {
	TimeBudget(data []int) time.Duration
}

var (
	// ErrHalted is returned by a strategy when its caller stopped stepping it.
	ErrHalted = errors.New("sort halted by caller")
	// ErrNegativeValue is returned by strategies that only accept values >= 0.
	ErrNegativeValue = errors.New("negative values are not supported")
	// ErrWrongUniverse is always returned by quantum bogosort.
	ErrWrongUniverse = errors.New("you are not in the correct universe where this sorts in O(1)")
	// ErrRaceLost is returned by sleep sort when its workers finished out of order.
	ErrRaceLost = errors.New("workers finished out of order")
)

// KernelFunc is a context-free sort body.
type KernelFunc func(data []int, yield Yield) error

type funcStrategy struct {
	name string
	fn   func(ctx context.Context, data []int, yield Yield) error
}

// NewFunc wraps a sort body as a Strategy.
func NewFunc(name string, fn func(ctx context.Context, data []int, yield Yield) error) Strategy {
	return funcStrategy{name: name, fn: fn}
}

// NewKernel wraps a context-free sort body as a Strategy.
func NewKernel(name string, fn KernelFunc) Strategy {
	return funcStrategy{name: name, fn: func(_ context.Context, data []int, yield Yield) error {
		return fn(data, yield)
	}}
}

func (f funcStrategy) Name() string { return f.name }

func (f funcStrategy) Sort(ctx context.Context, data []int, yield Yield) error {
	return f.fn(ctx, data, yield)
}

// Steps exposes a strategy run as a resumable sequence of elementary steps.
// Each value is the running step number. Breaking out of the sequence stops
// the strategy; the returned func reports the strategy's error once the
// sequence is done.
func Steps(ctx context.Context, s Strategy, data []int) (iter.Seq[int64], func() error) {
	var err error
	seq := func(yield func(int64) bool) {
		var n int64
		err = s.Sort(ctx, data, func() bool {
			n++
			return yield(n)
		})
	}
	return seq, func() error { return err }
}

// IsSorted reports whether data is in non-decreasing order.
func IsSorted(data []int) bool {
	for i := 1; i < len(data); i++ {
		if data[i-1] > data[i] {
			return false
		}
	}
	return true
}
