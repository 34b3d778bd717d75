// Package ssort implements distributed sample sort: every rank sorts its share,
// contributes a regular sample, and the agreed-upon splitters drive an all-to-all
// repartitioning into globally ordered buckets.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package ssort

import (
	"cmp"
	"slices"

	"github.com/NVIDIA/samplesort/cmn"
)

// SortedShare is a Share after the local (pre-exchange) sort
type SortedShare[T cmp.Ordered] struct {
	data []T
	ctx  Context
	n    int64
}

func (s *SortedShare[T]) Values() []T { return s.data }

// the only non-orderable value among cmp.Ordered types is floating-point NaN
func isNaN[T cmp.Ordered](x T) bool { return x != x }

// LocalSort sorts in place, ascending; fails deterministically on the first NaN
// (in input order) without modifying the data
func LocalSort[T cmp.Ordered](rank int, phase string, data []T) error {
	for i, x := range data {
		if isNaN(x) {
			return cmn.NewErrComparison(rank, phase, i)
		}
	}
	slices.Sort(data)
	return nil
}

// Sort consumes the share
func (s *Share[T]) Sort() (*SortedShare[T], error) {
	if err := LocalSort(s.ctx.Rank, PhaseSort, s.data); err != nil {
		return nil, err
	}
	sorted := &SortedShare[T]{ctx: s.ctx, data: s.data, n: s.n}
	s.data = nil
	return sorted, nil
}
