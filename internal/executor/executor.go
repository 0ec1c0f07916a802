// Package executor runs a sorting strategy on a private copy of an array,
// counting its steps and timing it.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/verte-zerg/sortbench/internal/model"
	"github.com/verte-zerg/sortbench/internal/sorting"
)

// Default ceilings per invocation.
const (
	DefaultMaxSteps int64 = 50_000_000
	DefaultTimeout        = 5 * time.Second
)

// The deadline is polled every deadlineCheckInterval steps.
const deadlineCheckInterval = 256

// ErrStepLimit is reported when a strategy exceeds Limits.MaxSteps.
var ErrStepLimit = errors.New("step limit exceeded")

// Limits bounds a single invocation. Zero values select the defaults.
type Limits struct {
	MaxSteps int64
	Timeout  time.Duration
}

// Executor runs strategies and converts failures into infinite-cost results.
type Executor struct {
	limits Limits
	log    *slog.Logger
}

// New returns an Executor. A nil logger uses slog.Default().
func New(limits Limits, log *slog.Logger) *Executor {
	if limits.MaxSteps <= 0 {
		limits.MaxSteps = DefaultMaxSteps
	}
	if limits.Timeout <= 0 {
		limits.Timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Executor{limits: limits, log: log}
}

// Limits returns the effective ceilings.
func (e *Executor) Limits() Limits {
	return e.limits
}

// Execute runs s on a copy of data. It never returns an error: a strategy
// error, panic, or ceiling hit yields model.FailedRun and is logged.
func (e *Executor) Execute(ctx context.Context, s sorting.Strategy, data []int) model.RunResult {
	work := slices.Clone(data)
	steps, elapsed, err := e.drive(ctx, s, work)
	if err != nil {
		e.log.Warn("strategy failed", "algorithm", s.Name(), "error", err.Error(), "steps", steps)
		return model.FailedRun(err)
	}
	return model.RunResult{Steps: steps, Seconds: elapsed.Seconds()}
}

func (e *Executor) drive(ctx context.Context, s sorting.Strategy, work []int) (steps int64, elapsed time.Duration, err error) {
	timeout := e.timeoutFor(s, work)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	var stopErr error
	seq, sortErr := sorting.Steps(ctx, s, work)
	start := time.Now()
	for step := range seq {
		steps = step
		if step > e.limits.MaxSteps {
			stopErr = fmt.Errorf("%w: more than %d steps", ErrStepLimit, e.limits.MaxSteps)
			break
		}
		if step%deadlineCheckInterval != 0 {
			continue
		}
		if cerr := ctx.Err(); cerr != nil {
			stopErr = timeoutError(cerr, timeout)
			break
		}
	}
	elapsed = time.Since(start)

	if stopErr != nil {
		return steps, elapsed, stopErr
	}
	if err := sortErr(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return steps, elapsed, timeoutError(err, timeout)
		}
		return steps, elapsed, err
	}
	return steps, elapsed, nil
}

// timeoutFor extends the wall-clock ceiling for strategies that sleep.
func (e *Executor) timeoutFor(s sorting.Strategy, data []int) time.Duration {
	if b, ok := s.(sorting.Budgeted); ok {
		return max(e.limits.Timeout, b.TimeBudget(data))
	}
	return e.limits.Timeout
}

func timeoutError(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("timed out after %s: %w", timeout, err)
	}
	return err
}
