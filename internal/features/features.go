// Package features computes structural metrics of an unsorted array.
package features

import (
	"slices"

	"github.com/verte-zerg/sortbench/internal/model"
)

// Extract computes the feature vector of data without modifying it.
func Extract(data []int) model.FeatureVector {
	return model.FeatureVector{
		SortednessPct: Sortedness(data),
		Inversions:    Inversions(data),
		UniqueRatio:   UniqueRatio(data),
		Misplaced:     Misplaced(data),
		Variance:      Variance(data),
	}
}

// Sortedness is the percentage of adjacent pairs already in order. Arrays
// with fewer than two elements are 100% sorted.
func Sortedness(data []int) float64 {
	n := len(data)
	if n <= 1 {
		return 100.0
	}
	inOrder := 0
	for i := 0; i < n-1; i++ {
		if data[i] <= data[i+1] {
			inOrder++
		}
	}
	return float64(inOrder) / float64(n-1) * 100
}

// Inversions counts pairs i<j with data[i] > data[j].
func Inversions(data []int) int64 {
	var count int64
	for i := range data {
		for j := i + 1; j < len(data); j++ {
			if data[i] > data[j] {
				count++
			}
		}
	}
	return count
}

// UniqueRatio is the number of distinct values over the length; 1.0 when empty.
func UniqueRatio(data []int) float64 {
	if len(data) == 0 {
		return 1.0
	}
	seen := make(map[int]struct{}, len(data))
	for _, v := range data {
		seen[v] = struct{}{}
	}
	return float64(len(seen)) / float64(len(data))
}

// Misplaced counts positions that differ from the sorted arrangement.
func Misplaced(data []int) int64 {
	sorted := slices.Clone(data)
	slices.Sort(sorted)
	var count int64
	for i, v := range data {
		if v != sorted[i] {
			count++
		}
	}
	return count
}

// Variance is the population variance; 0 when empty.
func Variance(data []int) float64 {
	if len(data) == 0 {
		return 0.0
	}
	var sum float64
	for _, v := range data {
		sum += float64(v)
	}
	mean := sum / float64(len(data))
	var sq float64
	for _, v := range data {
		d := float64(v) - mean
		sq += d * d
	}
	return sq / float64(len(data))
}
