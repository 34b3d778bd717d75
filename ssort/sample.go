// Package ssort implements distributed sample sort: every rank sorts its share,
// contributes a regular sample, and the agreed-upon splitters drive an all-to-all
// repartitioning into globally ordered buckets.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package ssort

import (
	"cmp"
	"math"
)

// SampleSet: regular sample of a sorted share, one value per rank
type SampleSet[T cmp.Ordered] struct {
	values []T
	ctx    Context
}

func (s *SampleSet[T]) Values() []T { return s.values }

// SampleIndices returns p positions evenly spread over [0, n-1], rounded to nearest
// (duplicates are possible when n < p); no positions when n == 0
func SampleIndices(n, p int) []int {
	if n == 0 || p < 1 {
		return nil
	}
	idx := make([]int, p)
	if p == 1 {
		return idx
	}
	step := float64(n-1) / float64(p-1)
	for k := range idx {
		idx[k] = int(math.Round(float64(k) * step))
	}
	idx[p-1] = n - 1 // exact upper end regardless of rounding
	return idx
}

// Sample picks Size values from the sorted share; the share is not consumed
// and goes on to be partitioned
func (s *SortedShare[T]) Sample() *SampleSet[T] {
	idx := SampleIndices(len(s.data), s.ctx.Size)
	values := make([]T, len(idx))
	for k, i := range idx {
		values[k] = s.data[i]
	}
	return &SampleSet[T]{values: values, ctx: s.ctx}
}
