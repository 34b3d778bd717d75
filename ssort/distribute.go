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

// run header, broadcast by the coordinator ahead of the data
const (
	hdrTotal = iota
	hdrStatus
	hdrLen
)

const (
	statusOK int64 = iota
	statusNotDivisible
)

// Share is this rank's contiguous slice of the input, in input order
type Share[T cmp.Ordered] struct {
	data []T
	ctx  Context
	n    int64 // total, all ranks
}

func (s *Share[T]) Len() int     { return len(s.data) }
func (s *Share[T]) Total() int64 { return s.n }

// Distribute splits the coordinator's input into Size equal shares.
// `input` is ignored on all other ranks. A total that is not divisible by the
// number of ranks fails the run on every rank with a configuration error.
func Distribute[T cmp.Ordered](ctx context.Context, cx Context, c *comm.Comm, codec comm.Codec[T], input []T) (*Share[T], error) {
	hdr := make([]int64, hdrLen)
	if cx.IsRoot() {
		hdr[hdrTotal] = int64(len(input))
		if len(input)%cx.Size != 0 {
			hdr[hdrStatus] = statusNotDivisible
		}
	}
	hdr, err := comm.Bcast(ctx, c, comm.Int64s{}, Root, hdr)
	if err != nil {
		return nil, err
	}
	if len(hdr) != hdrLen {
		return nil, cmn.NewErrConsistency(cx.Rank, "malformed run header (len %d)", len(hdr))
	}
	n := hdr[hdrTotal]
	if hdr[hdrStatus] == statusNotDivisible {
		return nil, cmn.NewErrConfiguration("%d elements cannot be split evenly across %d workers", n, cx.Size)
	}

	data, err := comm.Scatter(ctx, c, codec, Root, input)
	if err != nil {
		return nil, err
	}
	if want := n / int64(cx.Size); int64(len(data)) != want {
		return nil, cmn.NewErrConsistency(cx.Rank, "received share of %d elements, expected %d", len(data), want)
	}
	return &Share[T]{ctx: cx, data: data, n: n}, nil
}
