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

// Received: this rank's bucket, as delivered by the exchange (unsorted across sources)
type Received[T cmp.Ordered] struct {
	data       []T
	recvCounts []int64
	ctx        Context
	sent       int64 // elements sent to other ranks
}

func (r *Received[T]) Len() int            { return len(r.data) }
func (r *Received[T]) RecvCounts() []int64 { return r.recvCounts }

// SendBuffer groups elements by destination bucket, preserving relative order
// within each bucket (stable counting sort); returns the buffer and displacements
func SendBuffer[T any](data []T, ids []int32, counts []int64) ([]T, []int64) {
	var (
		displs = comm.ExclusiveScan(counts)
		pos    = append([]int64(nil), displs...)
		buf    = make([]T, len(data))
	)
	for i, x := range data {
		b := ids[i]
		buf[pos[b]] = x
		pos[b]++
	}
	return buf, displs
}

// Exchange consumes the partition. Phase A: all-to-all of counts, so that every
// rank knows how much it's about to receive, from whom. Phase B: variable-size
// all-to-all of the data itself.
func Exchange[T cmp.Ordered](ctx context.Context, c *comm.Comm, codec comm.Codec[T], p *Partition[T]) (*Received[T], error) {
	cx := p.ctx
	recvCounts, err := comm.Alltoall(ctx, c, comm.Int64s{}, p.counts)
	if err != nil {
		return nil, err
	}
	var total int64
	for src, n := range recvCounts {
		if n < 0 {
			return nil, cmn.NewErrConsistency(cx.Rank, "negative count %d from rank %d", n, src)
		}
		total += n
	}

	buf, sendDispls := SendBuffer(p.data, p.ids, p.counts)
	p.data, p.ids = nil, nil
	recv, err := comm.Alltoallv(ctx, c, codec, buf, p.counts, sendDispls, recvCounts, comm.ExclusiveScan(recvCounts))
	if err != nil {
		return nil, err
	}
	if int64(len(recv)) != total {
		return nil, cmn.NewErrConsistency(cx.Rank, "received %d elements, expected %d", len(recv), total)
	}
	sent := int64(len(buf)) - p.counts[cx.Rank]
	return &Received[T]{data: recv, recvCounts: recvCounts, ctx: cx, sent: sent}, nil
}
