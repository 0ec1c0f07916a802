package sorting

import "golang.org/x/exp/constraints"

// Quadratic and gap-based in-place sorts. Every comparison is one step.

func bubbleSort[T constraints.Ordered](a []T, yield Yield) error {
	n := len(a)
	for i := 0; i < n; i++ {
		for j := 0; j < n-i-1; j++ {
			if !yield() {
				return ErrHalted
			}
			if a[j] > a[j+1] {
				a[j], a[j+1] = a[j+1], a[j]
			}
		}
	}
	return nil
}

func insertionSort[T constraints.Ordered](a []T, yield Yield) error {
	for i := 1; i < len(a); i++ {
		key := a[i]
		j := i - 1
		for j >= 0 {
			if !yield() {
				return ErrHalted
			}
			if a[j] <= key {
				break
			}
			a[j+1] = a[j]
			j--
		}
		a[j+1] = key
	}
	return nil
}

func selectionSort[T constraints.Ordered](a []T, yield Yield) error {
	for i := 0; i < len(a); i++ {
		minIdx := i
		for j := i + 1; j < len(a); j++ {
			if !yield() {
				return ErrHalted
			}
			if a[minIdx] > a[j] {
				minIdx = j
			}
		}
		a[i], a[minIdx] = a[minIdx], a[i]
	}
	return nil
}

func gnomeSort[T constraints.Ordered](a []T, yield Yield) error {
	index := 0
	for index < len(a) {
		if !yield() {
			return ErrHalted
		}
		if index == 0 || a[index] >= a[index-1] {
			index++
			continue
		}
		a[index], a[index-1] = a[index-1], a[index]
		index--
	}
	return nil
}

func cocktailShakerSort[T constraints.Ordered](a []T, yield Yield) error {
	start, end := 0, len(a)-1
	swapped := true
	for swapped {
		swapped = false
		for i := start; i < end; i++ {
			if !yield() {
				return ErrHalted
			}
			if a[i] > a[i+1] {
				a[i], a[i+1] = a[i+1], a[i]
				swapped = true
			}
		}
		if !swapped {
			break
		}
		swapped = false
		end--
		for i := end - 1; i >= start; i-- {
			if !yield() {
				return ErrHalted
			}
			if a[i] > a[i+1] {
				a[i], a[i+1] = a[i+1], a[i]
				swapped = true
			}
		}
		start++
	}
	return nil
}

func combSort[T constraints.Ordered](a []T, yield Yield) error {
	const shrink = 1.3
	gap := len(a)
	sorted := false
	for !sorted {
		gap = int(float64(gap) / shrink)
		if gap <= 1 {
			gap = 1
			sorted = true
		}
		for i := 0; i+gap < len(a); i++ {
			if !yield() {
				return ErrHalted
			}
			if a[i] > a[i+gap] {
				a[i], a[i+gap] = a[i+gap], a[i]
				sorted = false
			}
		}
	}
	return nil
}

func shellSort[T constraints.Ordered](a []T, yield Yield) error {
	for gap := len(a) / 2; gap > 0; gap /= 2 {
		for i := gap; i < len(a); i++ {
			tmp := a[i]
			j := i
			for j >= gap {
				if !yield() {
					return ErrHalted
				}
				if a[j-gap] <= tmp {
					break
				}
				a[j] = a[j-gap]
				j -= gap
			}
			a[j] = tmp
		}
	}
	return nil
}

// cycleSort writes each element at most once to its final position.
func cycleSort[T constraints.Ordered](a []T, yield Yield) error {
	n := len(a)
	position := func(item T, start int) (int, error) {
		pos := start
		for i := start + 1; i < n; i++ {
			if !yield() {
				return 0, ErrHalted
			}
			if a[i] < item {
				pos++
			}
		}
		return pos, nil
	}
	for start := 0; start < n-1; start++ {
		item := a[start]
		pos, err := position(item, start)
		if err != nil {
			return err
		}
		if pos == start {
			continue
		}
		for item == a[pos] {
			pos++
		}
		a[pos], item = item, a[pos]
		for pos != start {
			if pos, err = position(item, start); err != nil {
				return err
			}
			for item == a[pos] {
				pos++
			}
			a[pos], item = item, a[pos]
		}
	}
	return nil
}
