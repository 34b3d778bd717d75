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
	"slices"
	"sort"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/NVIDIA/samplesort/cmn/cos"
	"github.com/NVIDIA/samplesort/comm"
)

// Splitters: Size-1 ascending boundary values, identical on every rank.
// Bucket i receives x such that exactly i splitters are <= x.
type Splitters[T cmp.Ordered] struct {
	values []T
	digest uint64 // xxhash64 of the encoded values
}

func (sp *Splitters[T]) Values() []T    { return sp.values }
func (sp *Splitters[T]) Digest() uint64 { return sp.digest }
func (sp *Splitters[T]) Len() int       { return len(sp.values) }

// Bucket returns the number of splitters <= x (upper-bound binary search);
// equal values always land in the same bucket
func (sp *Splitters[T]) Bucket(x T) int {
	return sort.Search(len(sp.values), func(j int) bool { return cmp.Less(x, sp.values[j]) })
}

// ChooseSplitters takes every p-th value of the sorted global sample, starting at p:
// positions p, 2p, ..., (p-1)p. Fewer than p*p samples (no data at all) yields no splitters.
func ChooseSplitters[T cmp.Ordered](sorted []T, p int) []T {
	if p < 2 || len(sorted) < p*p {
		return nil
	}
	splitters := make([]T, 0, p-1)
	for k := 1; k < p; k++ {
		splitters = append(splitters, sorted[k*p])
	}
	return splitters
}

// EncodeSplitters produces the broadcast payload: 8-byte digest followed by the encoded values
func EncodeSplitters[T cmp.Ordered](codec comm.Codec[T], values []T) []byte {
	var (
		body = comm.Encode(codec, values)
		pk   = cos.NewPacker(nil, cos.SizeofI64)
	)
	pk.WriteUint64(cos.Checksum64(body))
	return append(pk.Bytes(), body...)
}

// DecodeSplitters validates the broadcast payload: digest, count, and order
func DecodeSplitters[T cmp.Ordered](cx Context, n int64, codec comm.Codec[T], b []byte) (*Splitters[T], error) {
	unpacker := cos.NewUnpacker(b)
	digest, err := unpacker.ReadUint64()
	if err != nil {
		return nil, cmn.NewErrConsistency(cx.Rank, "splitters: truncated payload (%d bytes)", len(b))
	}
	body := b[cos.SizeofI64:]
	if actual := cos.Checksum64(body); actual != digest {
		return nil, cmn.NewErrConsistency(cx.Rank, "splitters: %v",
			cos.NewErrMetaCksum(digest, actual, "splitter digest"))
	}
	values, err := codec.Decode(body)
	if err != nil {
		return nil, cmn.NewErrConsistency(cx.Rank, "splitters: %v", err)
	}
	expected := cx.Size - 1
	if n == 0 {
		expected = 0
	}
	if len(values) != expected {
		return nil, cmn.NewErrConsistency(cx.Rank, "splitters: got %d, expected %d", len(values), expected)
	}
	for i, x := range values {
		if isNaN(x) {
			return nil, cmn.NewErrComparison(cx.Rank, PhaseSplitters, i)
		}
	}
	if !slices.IsSorted(values) {
		return nil, cmn.NewErrConsistency(cx.Rank, "splitters: not in ascending order")
	}
	return &Splitters[T]{values: values, digest: digest}, nil
}

// SelectSplitters: the coordinator gathers all samples (rank-ordered), sorts them,
// chooses the splitters, and broadcasts them verbatim along with their digest.
// Every rank (the coordinator included) validates what it received.
func SelectSplitters[T cmp.Ordered](ctx context.Context, c *comm.Comm, codec comm.Codec[T], n int64,
	samples *SampleSet[T]) (*Splitters[T], error) {
	cx := samples.ctx
	global, err := comm.Gather(ctx, c, codec, Root, samples.values)
	if err != nil {
		return nil, err
	}
	var (
		payload []byte
		rootErr error
	)
	if cx.IsRoot() {
		if want := cx.Size * cx.Size; len(global) != want && n != 0 {
			// broadcast an empty payload anyway, to fail the other ranks right away
			rootErr = cmn.NewErrConsistency(cx.Rank, "gathered %d samples, expected %d", len(global), want)
		} else {
			slices.Sort(global)
			payload = EncodeSplitters(codec, ChooseSplitters(global, cx.Size))
		}
	}
	payload, err = c.BcastBytes(ctx, Root, payload)
	if rootErr != nil {
		return nil, rootErr
	}
	if err != nil {
		return nil, err
	}
	return DecodeSplitters(cx, n, codec, payload)
}
