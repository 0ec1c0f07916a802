package sorting

import "golang.org/x/exp/constraints"

const minMerge = 32

// timSort detects natural runs, extends short ones with binary insertion to
// minRunLength and merges adjacent runs while the run stack invariants fail.
// Galloping is left out; a merge costs one step per element written.
func timSort[T constraints.Ordered](a []T, yield Yield) error {
	n := len(a)
	if n < 2 {
		return nil
	}
	if n < minMerge {
		runLen, err := countRunAndMakeAscending(a, 0, n, yield)
		if err != nil {
			return err
		}
		return binarySort(a, 0, n, runLen, yield)
	}

	ts := &timState[T]{a: a, tmp: make([]T, n), yield: yield}
	minRun := minRunLength(n)
	lo, remaining := 0, n
	for remaining > 0 {
		runLen, err := countRunAndMakeAscending(a, lo, n, yield)
		if err != nil {
			return err
		}
		if runLen < minRun {
			force := min(minRun, remaining)
			if err := binarySort(a, lo, lo+force, lo+runLen, yield); err != nil {
				return err
			}
			runLen = force
		}
		ts.runs = append(ts.runs, timRun{base: lo, len: runLen})
		if err := ts.mergeCollapse(); err != nil {
			return err
		}
		lo += runLen
		remaining -= runLen
	}
	return ts.mergeForceCollapse()
}

type timRun struct {
	base int
	len  int
}

type timState[T constraints.Ordered] struct {
	a     []T
	tmp   []T
	runs  []timRun
	yield Yield
}

func (ts *timState[T]) mergeCollapse() error {
	for len(ts.runs) > 1 {
		n := len(ts.runs) - 2
		switch {
		case n > 0 && ts.runs[n-1].len <= ts.runs[n].len+ts.runs[n+1].len:
			if ts.runs[n-1].len < ts.runs[n+1].len {
				n--
			}
		case ts.runs[n].len <= ts.runs[n+1].len:
		default:
			return nil
		}
		if err := ts.mergeAt(n); err != nil {
			return err
		}
	}
	return nil
}

func (ts *timState[T]) mergeForceCollapse() error {
	for len(ts.runs) > 1 {
		n := len(ts.runs) - 2
		if n > 0 && ts.runs[n-1].len < ts.runs[n+1].len {
			n--
		}
		if err := ts.mergeAt(n); err != nil {
			return err
		}
	}
	return nil
}

// mergeAt merges runs i and i+1.
func (ts *timState[T]) mergeAt(i int) error {
	r1, r2 := ts.runs[i], ts.runs[i+1]
	ts.runs[i] = timRun{base: r1.base, len: r1.len + r2.len}
	ts.runs = append(ts.runs[:i+1], ts.runs[i+2:]...)

	a := ts.a
	left := ts.tmp[:r1.len]
	copy(left, a[r1.base:r1.base+r1.len])
	i1, i2, k := 0, r2.base, r1.base
	end := r2.base + r2.len
	for i1 < len(left) && i2 < end {
		if !ts.yield() {
			return ErrHalted
		}
		if a[i2] < left[i1] {
			a[k] = a[i2]
			i2++
		} else {
			a[k] = left[i1]
			i1++
		}
		k++
	}
	for ; i1 < len(left); i1++ {
		if !ts.yield() {
			return ErrHalted
		}
		a[k] = left[i1]
		k++
	}
	return nil
}

// countRunAndMakeAscending returns the length of the run starting at lo,
// reversing it when strictly descending.
func countRunAndMakeAscending[T constraints.Ordered](a []T, lo, hi int, yield Yield) (int, error) {
	runHi := lo + 1
	if runHi == hi {
		return 1, nil
	}
	if !yield() {
		return 0, ErrHalted
	}
	if a[runHi] < a[lo] {
		runHi++
		for runHi < hi {
			if !yield() {
				return 0, ErrHalted
			}
			if a[runHi] >= a[runHi-1] {
				break
			}
			runHi++
		}
		for i, j := lo, runHi-1; i < j; i, j = i+1, j-1 {
			a[i], a[j] = a[j], a[i]
		}
	} else {
		runHi++
		for runHi < hi {
			if !yield() {
				return 0, ErrHalted
			}
			if a[runHi] < a[runHi-1] {
				break
			}
			runHi++
		}
	}
	return runHi - lo, nil
}

// binarySort sorts a[lo:hi] given that a[lo:start] is already sorted.
func binarySort[T constraints.Ordered](a []T, lo, hi, start int, yield Yield) error {
	if start == lo {
		start++
	}
	for ; start < hi; start++ {
		pivot := a[start]
		left, right := lo, start
		for left < right {
			if !yield() {
				return ErrHalted
			}
			mid := int(uint(left+right) >> 1)
			if a[mid] > pivot {
				right = mid
			} else {
				left = mid + 1
			}
		}
		copy(a[left+1:start+1], a[left:start])
		a[left] = pivot
	}
	return nil
}

func minRunLength(n int) int {
	r := 0
	for n >= minMerge {
		r |= n & 1
		n >>= 1
	}
	return n + r
}
