package sorting

import (
	"context"
	"math/rand"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// Sorts that are only worth running on tiny inputs, if at all.

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// checkSorted costs one step per comparison.
func checkSorted(a []int, yield Yield) (bool, error) {
	for i := 1; i < len(a); i++ {
		if !yield() {
			return false, ErrHalted
		}
		if a[i-1] > a[i] {
			return false, nil
		}
	}
	return true, nil
}

func bogoSort(a []int, yield Yield) error {
	rnd := newRand()
	for {
		ok, err := checkSorted(a, yield)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		for i := len(a) - 1; i > 0; i-- {
			if !yield() {
				return ErrHalted
			}
			j := rnd.Intn(i + 1)
			a[i], a[j] = a[j], a[i]
		}
	}
}

func bozoSort(a []int, yield Yield) error {
	rnd := newRand()
	for {
		ok, err := checkSorted(a, yield)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !yield() {
			return ErrHalted
		}
		i := rnd.Intn(len(a))
		j := rnd.Intn(len(a) - 1)
		if j >= i {
			j++
		}
		a[i], a[j] = a[j], a[i]
	}
}

func quantumBogoSort(_ []int, _ Yield) error {
	return ErrWrongUniverse
}

type sleepSort struct {
	unit time.Duration
}

// sleepSlack is added to a sleep sort's time budget for scheduling and
// collection.
const sleepSlack = time.Second

// NewSleepSort returns sleep sort: one worker per element sleeps for
// (value-min)*unit and then reports the value. Arrival order is the output.
func NewSleepSort(unit time.Duration) Strategy {
	return sleepSort{unit: unit}
}

func (sleepSort) Name() string { return SleepSort }

// TimeBudget is the longest sleep plus slack.
func (s sleepSort) TimeBudget(data []int) time.Duration {
	if len(data) == 0 {
		return sleepSlack
	}
	return time.Duration(slices.Max(data)-slices.Min(data))*s.unit + sleepSlack
}

func (s sleepSort) Sort(ctx context.Context, data []int, yield Yield) error {
	for _, v := range data {
		if v < 0 {
			return ErrNegativeValue
		}
	}
	if len(data) < 2 {
		return nil
	}
	lo := slices.Min(data)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	arrivals := make(chan int, len(data))
	g, gctx := errgroup.WithContext(ctx)
	// Wake-ups share one origin so late-starting workers do not drift.
	origin := time.Now()
	for _, v := range data {
		wake := origin.Add(time.Duration(v-lo) * s.unit)
		g.Go(func() error {
			timer := time.NewTimer(time.Until(wake))
			defer timer.Stop()
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-timer.C:
				arrivals <- v
				return nil
			}
		})
	}
	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
		close(arrivals)
	}()

	i := 0
	for v := range arrivals {
		data[i] = v
		i++
		if !yield() {
			cancel()
			<-done
			return ErrHalted
		}
	}
	if err := <-done; err != nil {
		return err
	}
	if !IsSorted(data) {
		return ErrRaceLost
	}
	return nil
}
