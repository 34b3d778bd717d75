// Package ssort implements distributed sample sort: every rank sorts its share,
// contributes a regular sample, and the agreed-upon splitters drive an all-to-all
// repartitioning into globally ordered buckets.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package ssort

import (
	"cmp"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/NVIDIA/samplesort/cmn/debug"
)

// Partition: per-element destination bucket and per-destination counts (sum = len(data))
type Partition[T cmp.Ordered] struct {
	data   []T
	ids    []int32
	counts []int64
	ctx    Context
}

func (p *Partition[T]) IDs() []int32 { return p.ids }

// PartitionScan assigns buckets with a single forward pass that advances through
// the splitters as values grow; `sorted` must be ascending
func PartitionScan[T cmp.Ordered](sorted, splitters []T, size int) (ids []int32, counts []int64) {
	ids, counts = make([]int32, len(sorted)), make([]int64, size)
	j := 0
	for i, x := range sorted {
		for j < len(splitters) && !cmp.Less(x, splitters[j]) {
			j++
		}
		ids[i] = int32(j)
		counts[j]++
	}
	return ids, counts
}

// PartitionSearch assigns buckets with an upper-bound binary search per element;
// works on any order and rejects NaN
func PartitionSearch[T cmp.Ordered](rank int, data []T, sp *Splitters[T], size int) (ids []int32, counts []int64, err error) {
	ids, counts = make([]int32, len(data)), make([]int64, size)
	for i, x := range data {
		if isNaN(x) {
			return nil, nil, cmn.NewErrComparison(rank, PhasePartition, i)
		}
		b := sp.Bucket(x)
		ids[i] = int32(b)
		counts[b]++
	}
	return ids, counts, nil
}

// Partition consumes the sorted share
func (s *SortedShare[T]) Partition(sp *Splitters[T], method string) (*Partition[T], error) {
	var (
		ids    []int32
		counts []int64
		err    error
		size   = s.ctx.Size
	)
	if sp.Len() > size-1 {
		return nil, cmn.NewErrConsistency(s.ctx.Rank, "%d splitters for %d buckets", sp.Len(), size)
	}
	switch method {
	case cmn.PartitionSearch:
		ids, counts, err = PartitionSearch(s.ctx.Rank, s.data, sp, size)
		if err != nil {
			return nil, err
		}
	default:
		debug.Assert(method == cmn.PartitionScan, method)
		ids, counts = PartitionScan(s.data, sp.values, size)
	}
	p := &Partition[T]{data: s.data, ids: ids, counts: counts, ctx: s.ctx}
	s.data = nil
	return p, nil
}
