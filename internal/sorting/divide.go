package sorting

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

func mergeSort[T constraints.Ordered](a []T, yield Yield) error {
	if len(a) < 2 {
		return nil
	}
	buf := make([]T, len(a))
	return mergeSortRange(a, buf, yield)
}

func mergeSortRange[T constraints.Ordered](a, buf []T, yield Yield) error {
	if len(a) < 2 {
		return nil
	}
	mid := len(a) / 2
	if err := mergeSortRange(a[:mid], buf[:mid], yield); err != nil {
		return err
	}
	if err := mergeSortRange(a[mid:], buf[mid:], yield); err != nil {
		return err
	}
	copy(buf, a)
	left, right := buf[:mid], buf[mid:len(a)]
	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		if !yield() {
			return ErrHalted
		}
		if left[i] <= right[j] {
			a[k] = left[i]
			i++
		} else {
			a[k] = right[j]
			j++
		}
		k++
	}
	for ; i < len(left); i++ {
		if !yield() {
			return ErrHalted
		}
		a[k] = left[i]
		k++
	}
	for ; j < len(right); j++ {
		if !yield() {
			return ErrHalted
		}
		a[k] = right[j]
		k++
	}
	return nil
}

// partition uses the last element as pivot and returns its final index.
func partition[T constraints.Ordered](a []T, low, high int, yield Yield) (int, error) {
	pivot := a[high]
	i := low - 1
	for j := low; j < high; j++ {
		if !yield() {
			return 0, ErrHalted
		}
		if a[j] <= pivot {
			i++
			a[i], a[j] = a[j], a[i]
		}
	}
	a[i+1], a[high] = a[high], a[i+1]
	return i + 1, nil
}

func quickSort[T constraints.Ordered](a []T, yield Yield) error {
	var rec func(low, high int) error
	rec = func(low, high int) error {
		if low >= high {
			return nil
		}
		p, err := partition(a, low, high, yield)
		if err != nil {
			return err
		}
		if err := rec(low, p-1); err != nil {
			return err
		}
		return rec(p+1, high)
	}
	return rec(0, len(a)-1)
}

func heapSort[T constraints.Ordered](a []T, yield Yield) error {
	n := len(a)
	for i := n/2 - 1; i >= 0; i-- {
		if err := siftDown(a, n, i, yield); err != nil {
			return err
		}
	}
	for i := n - 1; i > 0; i-- {
		a[0], a[i] = a[i], a[0]
		if err := siftDown(a, i, 0, yield); err != nil {
			return err
		}
	}
	return nil
}

func siftDown[T constraints.Ordered](a []T, n, root int, yield Yield) error {
	for {
		largest := root
		l, r := 2*root+1, 2*root+2
		if l < n {
			if !yield() {
				return ErrHalted
			}
			if a[largest] < a[l] {
				largest = l
			}
		}
		if r < n {
			if !yield() {
				return ErrHalted
			}
			if a[largest] < a[r] {
				largest = r
			}
		}
		if largest == root {
			return nil
		}
		a[root], a[largest] = a[largest], a[root]
		root = largest
	}
}

// introSort is quicksort that falls back to heapsort on a subrange once the
// recursion depth reaches 2*floor(log2(n)).
func introSort[T constraints.Ordered](a []T, yield Yield) error {
	if len(a) < 2 {
		return nil
	}
	maxDepth := 2 * (bits.Len(uint(len(a))) - 1)
	var rec func(start, end, depth int) error
	rec = func(start, end, depth int) error {
		if end-start <= 1 {
			return nil
		}
		if depth == 0 {
			return heapSort(a[start:end], yield)
		}
		p, err := partition(a, start, end-1, yield)
		if err != nil {
			return err
		}
		if err := rec(start, p, depth-1); err != nil {
			return err
		}
		return rec(p+1, end, depth-1)
	}
	return rec(0, len(a), maxDepth)
}

// bitonicSort pads the input to a power of two with copies of its maximum so
// that the network is valid for any length.
func bitonicSort[T constraints.Ordered](a []T, yield Yield) error {
	n := len(a)
	if n < 2 {
		return nil
	}
	size := 1 << bits.Len(uint(n-1))
	work := a
	if size != n {
		maxVal := a[0]
		for _, v := range a[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		work = make([]T, size)
		copy(work, a)
		for i := n; i < size; i++ {
			work[i] = maxVal
		}
	}
	if err := bitonicRec(work, 0, size, true, yield); err != nil {
		return err
	}
	if size != n {
		copy(a, work[:n])
	}
	return nil
}

func bitonicRec[T constraints.Ordered](a []T, low, cnt int, ascending bool, yield Yield) error {
	if cnt <= 1 {
		return nil
	}
	k := cnt / 2
	if err := bitonicRec(a, low, k, true, yield); err != nil {
		return err
	}
	if err := bitonicRec(a, low+k, k, false, yield); err != nil {
		return err
	}
	return bitonicMerge(a, low, cnt, ascending, yield)
}

func bitonicMerge[T constraints.Ordered](a []T, low, cnt int, ascending bool, yield Yield) error {
	if cnt <= 1 {
		return nil
	}
	k := cnt / 2
	for i := low; i < low+k; i++ {
		if !yield() {
			return ErrHalted
		}
		if ascending && a[i] > a[i+k] || !ascending && a[i] < a[i+k] {
			a[i], a[i+k] = a[i+k], a[i]
		}
	}
	if err := bitonicMerge(a, low, k, ascending, yield); err != nil {
		return err
	}
	return bitonicMerge(a, low+k, k, ascending, yield)
}
