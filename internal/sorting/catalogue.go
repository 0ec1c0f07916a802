package sorting

import (
	"fmt"
	"strings"
	"time"
)

// Strategy names in catalogue order.
const (
	BubbleSort         = "bubble_sort"
	InsertionSort      = "insertion_sort"
	SelectionSort      = "selection_sort"
	GnomeSort          = "gnome_sort"
	CocktailShakerSort = "cocktail_shaker_sort"
	CombSort           = "comb_sort"
	MergeSort          = "merge_sort"
	QuickSort          = "quick_sort"
	HeapSort           = "heap_sort"
	ShellSort          = "shell_sort"
	TimSort            = "tim_sort"
	IntroSort          = "intro_sort"
	CycleSort          = "cycle_sort"
	CountingSort       = "counting_sort"
	RadixSort          = "radix_sort"
	BitonicSort        = "bitonic_sort"
	BogoSort           = "bogo_sort"
	BozoSort           = "bozo_sort"
	SleepSort          = "sleep_sort"
	QuantumBogoSort    = "quantum_bogo_sort"
)

// DefaultSleepUnit is the sleep per unit of value used by sleep sort. One
// unit must stay well above timer jitter or neighbouring values swap.
const DefaultSleepUnit = 10 * time.Millisecond

// Options tunes strategies that carry parameters.
type Options struct {
	SleepUnit time.Duration
}

// Catalogue is an ordered, read-only registry of strategies.
type Catalogue struct {
	strategies []Strategy
	byName     map[string]Strategy
}

// NewCatalogue builds a catalogue, rejecting empty and duplicate names.
func NewCatalogue(strategies ...Strategy) (*Catalogue, error) {
	c := &Catalogue{
		strategies: make([]Strategy, 0, len(strategies)),
		byName:     make(map[string]Strategy, len(strategies)),
	}
	for _, s := range strategies {
		name := s.Name()
		if name == "" {
			return nil, fmt.Errorf("strategy name is empty")
		}
		if _, ok := c.byName[name]; ok {
			return nil, fmt.Errorf("duplicate strategy %q", name)
		}
		c.byName[name] = s
		c.strategies = append(c.strategies, s)
	}
	return c, nil
}

// DefaultCatalogue returns every built-in strategy. A zero SleepUnit selects
// DefaultSleepUnit.
func DefaultCatalogue(opts Options) *Catalogue {
	unit := opts.SleepUnit
	if unit <= 0 {
		unit = DefaultSleepUnit
	}
	c, err := NewCatalogue(
		NewKernel(BubbleSort, bubbleSort[int]),
		NewKernel(InsertionSort, insertionSort[int]),
		NewKernel(SelectionSort, selectionSort[int]),
		NewKernel(GnomeSort, gnomeSort[int]),
		NewKernel(CocktailShakerSort, cocktailShakerSort[int]),
		NewKernel(CombSort, combSort[int]),
		NewKernel(MergeSort, mergeSort[int]),
		NewKernel(QuickSort, quickSort[int]),
		NewKernel(HeapSort, heapSort[int]),
		NewKernel(ShellSort, shellSort[int]),
		NewKernel(TimSort, timSort[int]),
		NewKernel(IntroSort, introSort[int]),
		NewKernel(CycleSort, cycleSort[int]),
		NewKernel(CountingSort, countingSort[int]),
		NewKernel(RadixSort, radixSort[int]),
		NewKernel(BitonicSort, bitonicSort[int]),
		NewKernel(BogoSort, bogoSort),
		NewKernel(BozoSort, bozoSort),
		NewSleepSort(unit),
		NewKernel(QuantumBogoSort, quantumBogoSort),
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of strategies.
func (c *Catalogue) Len() int { return len(c.strategies) }

// Strategies returns the strategies in catalogue order.
func (c *Catalogue) Strategies() []Strategy {
	return append([]Strategy(nil), c.strategies...)
}

// Names returns the strategy names in catalogue order.
func (c *Catalogue) Names() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Lookup finds a strategy by name.
func (c *Catalogue) Lookup(name string) (Strategy, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// Select returns a catalogue holding the named strategies, in catalogue
// order. An empty selection returns c itself.
func (c *Catalogue) Select(names []string) (*Catalogue, error) {
	if len(names) == 0 {
		return c, nil
	}
	want := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if _, ok := c.byName[name]; !ok {
			return nil, fmt.Errorf("unknown algorithm %q (available: %s)", name, strings.Join(c.Names(), ", "))
		}
		want[name] = struct{}{}
	}
	selected := make([]Strategy, 0, len(want))
	for _, s := range c.strategies {
		if _, ok := want[s.Name()]; ok {
			selected = append(selected, s)
		}
	}
	return NewCatalogue(selected...)
}

// DefaultSize is the array size for strategies without a size class.
const DefaultSize = 100

// SizeClasses maps strategy names to the largest array they are given.
type SizeClasses struct {
	Default   int
	Overrides map[string]int
}

// DefaultSizeClasses keeps the exponential and sleeping strategies small.
func DefaultSizeClasses() SizeClasses {
	return SizeClasses{
		Default: DefaultSize,
		Overrides: map[string]int{
			BogoSort:        5,
			BozoSort:        5,
			QuantumBogoSort: 5,
			SleepSort:       100,
		},
	}
}

// For returns the size class of a strategy.
func (s SizeClasses) For(name string) int {
	if size, ok := s.Overrides[name]; ok {
		return size
	}
	return s.Default
}

// Effective returns the array size for a pairing of a and b.
func (s SizeClasses) Effective(a, b string) int {
	return min(s.For(a), s.For(b))
}
