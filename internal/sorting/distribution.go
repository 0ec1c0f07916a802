package sorting

import "golang.org/x/exp/constraints"

func countingSort[T constraints.Integer](a []T, yield Yield) error {
	if len(a) == 0 {
		return nil
	}
	maxVal := a[0]
	for _, v := range a {
		if v < 0 {
			return ErrNegativeValue
		}
		if v > maxVal {
			maxVal = v
		}
	}
	count := make([]int, int(maxVal)+1)
	for _, v := range a {
		if !yield() {
			return ErrHalted
		}
		count[int(v)]++
	}
	i := 0
	for v, freq := range count {
		for ; freq > 0; freq-- {
			if !yield() {
				return ErrHalted
			}
			a[i] = T(v)
			i++
		}
	}
	return nil
}

// radixSort is an LSD base-10 radix sort with a stable counting pass per digit.
func radixSort[T constraints.Integer](a []T, yield Yield) error {
	if len(a) == 0 {
		return nil
	}
	maxVal := a[0]
	for _, v := range a {
		if v < 0 {
			return ErrNegativeValue
		}
		if v > maxVal {
			maxVal = v
		}
	}
	output := make([]T, len(a))
	for exp := T(1); maxVal/exp > 0; exp *= 10 {
		var count [10]int
		for _, v := range a {
			if !yield() {
				return ErrHalted
			}
			count[int((v/exp)%10)]++
		}
		for d := 1; d < 10; d++ {
			count[d] += count[d-1]
		}
		for i := len(a) - 1; i >= 0; i-- {
			if !yield() {
				return ErrHalted
			}
			d := int((a[i] / exp) % 10)
			output[count[d]-1] = a[i]
			count[d]--
		}
		copy(a, output)
		if maxVal/exp < 10 {
			break
		}
	}
	return nil
}
