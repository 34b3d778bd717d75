// Package ssort implements distributed sample sort: every rank sorts its share,
// contributes a regular sample, and the agreed-upon splitters drive an all-to-all
// repartitioning into globally ordered buckets.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package ssort

import (
	"cmp"
	"context"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/NVIDIA/samplesort/comm"
)

// Bucket: this rank's final, sorted portion of the global order
type Bucket[T cmp.Ordered] struct {
	data []T
	ctx  Context
}

func (b *Bucket[T]) Values() []T { return b.data }

// Merge consumes what was received and sorts it
func (r *Received[T]) Merge() (*Bucket[T], error) {
	if err := LocalSort(r.ctx.Rank, PhaseMerge, r.data); err != nil {
		return nil, err
	}
	b := &Bucket[T]{data: r.data, ctx: r.ctx}
	r.data = nil
	return b, nil
}

// CheckBounds verifies that every element of bucket `rank` lies in
// [splitters[rank-1], splitters[rank]) (open-ended at both extremes)
func CheckBounds[T cmp.Ordered](rank int, bucket, splitters []T) error {
	if len(bucket) == 0 || len(splitters) == 0 {
		return nil
	}
	first, last := bucket[0], bucket[len(bucket)-1]
	if rank > 0 && cmp.Less(first, splitters[rank-1]) {
		return cmn.NewErrConsistency(rank, "bucket starts below its lower splitter")
	}
	if rank < len(splitters) && !cmp.Less(last, splitters[rank]) {
		return cmn.NewErrConsistency(rank, "bucket ends at or above its upper splitter")
	}
	return nil
}

// Collect gathers all buckets at the coordinator, in rank order. Returns the
// assembled output and per-rank sizes on the coordinator, nothing elsewhere.
func Collect[T cmp.Ordered](ctx context.Context, c *comm.Comm, codec comm.Codec[T], n int64,
	b *Bucket[T]) ([]T, []int64, error) {
	cx := b.ctx
	sizes, err := comm.Gather(ctx, c, comm.Int64s{}, Root, []int64{int64(len(b.data))})
	if err != nil {
		return nil, nil, err
	}
	parts, err := comm.Gatherv(ctx, c, codec, Root, b.data)
	if err != nil || !cx.IsRoot() {
		return nil, nil, err
	}

	var total int64
	for _, sz := range sizes {
		total += sz
	}
	if total != n {
		return nil, nil, cmn.NewErrConsistency(cx.Rank, "collected %d elements, expected %d", total, n)
	}
	output := make([]T, 0, total)
	for rank, part := range parts {
		if int64(len(part)) != sizes[rank] {
			return nil, nil, cmn.NewErrConsistency(cx.Rank, "bucket %d: received %d elements, announced %d",
				rank, len(part), sizes[rank])
		}
		output = append(output, part...)
	}
	return output, sizes, nil
}

// Verify checks that the output is in ascending order
func Verify[T cmp.Ordered](rank int, output []T) error {
	for i := 1; i < len(output); i++ {
		if cmp.Less(output[i], output[i-1]) {
			return cmn.NewErrConsistency(rank, "output is not sorted at index %d", i)
		}
	}
	return nil
}
