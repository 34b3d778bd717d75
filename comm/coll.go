// Package comm is the messaging runtime: a fixed group of ranked participants,
// point-to-point send/receive, and the collectives built on top of it.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"context"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/pkg/errors"
)

// Collectives over typed slices. All of them are blocking rendezvous points:
// every rank of the communicator must make the same call (same root, same codec).

func decode[T any](c *Comm, codec Codec[T], op Opcode, src int, body []byte) ([]T, error) {
	v, err := codec.Decode(body)
	if err != nil {
		return nil, cmn.NewErrCollective(op.String(), c.Rank(), src, errors.Wrap(err, "decode"))
	}
	return v, nil
}

// Bcast returns root's `data` on every rank
func Bcast[T any](ctx context.Context, c *Comm, codec Codec[T], root int, data []T) ([]T, error) {
	var b []byte
	if c.Rank() == root {
		if c.Size() == 1 {
			_, err := c.BcastBytes(ctx, root, nil) // consume the sequence number
			return data, err
		}
		b = Encode(codec, data)
	}
	body, err := c.BcastBytes(ctx, root, b)
	if err != nil {
		return nil, err
	}
	if c.Rank() == root {
		return data, nil
	}
	return decode(c, codec, OpBcast, root, body)
}

// Scatter splits root's `data` into Size() equal contiguous shares;
// rank i receives [i*n/size, (i+1)*n/size)
func Scatter[T any](ctx context.Context, c *Comm, codec Codec[T], root int, data []T) ([]T, error) {
	var (
		seq  = c.next()
		size = c.Size()
		rank = c.Rank()
	)
	ctx, cancel := c.deadline(ctx)
	defer cancel()

	if rank != root {
		body, err := c.recv(ctx, OpScatter, seq, root)
		if err != nil {
			return nil, err
		}
		return decode(c, codec, OpScatter, root, body)
	}
	if len(data)%size != 0 {
		return nil, cmn.NewErrConfiguration("scatter: %d elements not divisible by %d ranks", len(data), size)
	}
	share := len(data) / size
	for dst := range size {
		if dst == rank {
			continue
		}
		if err := c.send(ctx, OpScatter, seq, dst, Encode(codec, data[dst*share:(dst+1)*share])); err != nil {
			return nil, err
		}
	}
	own := make([]T, share)
	copy(own, data[rank*share:(rank+1)*share])
	return own, nil
}

// Gatherv collects variable-size contributions at root, indexed by rank;
// non-root ranks get nil
func Gatherv[T any](ctx context.Context, c *Comm, codec Codec[T], root int, local []T) ([][]T, error) {
	var (
		seq  = c.next()
		size = c.Size()
		rank = c.Rank()
	)
	ctx, cancel := c.deadline(ctx)
	defer cancel()

	if rank != root {
		return nil, c.send(ctx, OpGather, seq, root, Encode(codec, local))
	}
	parts := make([][]T, size)
	for src := range size {
		if src == rank {
			parts[src] = append([]T(nil), local...)
			continue
		}
		body, err := c.recv(ctx, OpGather, seq, src)
		if err != nil {
			return nil, err
		}
		if parts[src], err = decode(c, codec, OpGather, src, body); err != nil {
			return nil, err
		}
	}
	return parts, nil
}

// Gather is Gatherv followed by rank-ordered concatenation
func Gather[T any](ctx context.Context, c *Comm, codec Codec[T], root int, local []T) ([]T, error) {
	parts, err := Gatherv(ctx, c, codec, root, local)
	if err != nil || parts == nil {
		return nil, err
	}
	return concat(parts), nil
}

// Allgather returns every rank's contribution, concatenated in rank order, on every rank
func Allgather[T any](ctx context.Context, c *Comm, codec Codec[T], local []T) ([]T, error) {
	return allgather(ctx, c, codec, OpAllgather, local)
}

func allgather[T any](ctx context.Context, c *Comm, codec Codec[T], op Opcode, local []T) ([]T, error) {
	var (
		seq  = c.next()
		size = c.Size()
		rank = c.Rank()
	)
	ctx, cancel := c.deadline(ctx)
	defer cancel()

	if size > 1 {
		b := Encode(codec, local)
		for dst := range size {
			if dst != rank {
				if err := c.send(ctx, op, seq, dst, b); err != nil {
					return nil, err
				}
			}
		}
	}
	parts := make([][]T, size)
	for src := range size {
		if src == rank {
			parts[src] = local
			continue
		}
		body, err := c.recv(ctx, op, seq, src)
		if err != nil {
			return nil, err
		}
		if parts[src], err = decode(c, codec, op, src, body); err != nil {
			return nil, err
		}
	}
	return concat(parts), nil
}

// Alltoall: fixed-size exchange; send[i] goes to rank i, and the result's element j
// is what rank j sent to this rank
func Alltoall[T any](ctx context.Context, c *Comm, codec Codec[T], send []T) ([]T, error) {
	var (
		seq  = c.next()
		size = c.Size()
		rank = c.Rank()
	)
	if len(send) != size {
		return nil, cmn.NewErrConfiguration("alltoall: expecting %d elements, got %d", size, len(send))
	}
	ctx, cancel := c.deadline(ctx)
	defer cancel()

	for dst := range size {
		if dst != rank {
			if err := c.send(ctx, OpAlltoall, seq, dst, Encode(codec, send[dst:dst+1])); err != nil {
				return nil, err
			}
		}
	}
	recv := make([]T, size)
	recv[rank] = send[rank]
	for src := range size {
		if src == rank {
			continue
		}
		body, err := c.recv(ctx, OpAlltoall, seq, src)
		if err != nil {
			return nil, err
		}
		v, err := decode(c, codec, OpAlltoall, src, body)
		if err != nil {
			return nil, err
		}
		if len(v) != 1 {
			return nil, cmn.NewErrConsistency(rank, "alltoall: rank %d sent %d elements (expecting 1)", src, len(v))
		}
		recv[src] = v[0]
	}
	return recv, nil
}

// Alltoallv: variable-size exchange. Rank i gets send[sendDispls[i]:sendDispls[i]+sendCounts[i]];
// what rank j sends lands at recv[recvDispls[j]:], and must be exactly recvCounts[j] long.
func Alltoallv[T any](ctx context.Context, c *Comm, codec Codec[T], send []T,
	sendCounts, sendDispls, recvCounts, recvDispls []int64) ([]T, error) {
	var (
		seq   = c.next()
		size  = c.Size()
		rank  = c.Rank()
		total int64
	)
	if len(sendCounts) != size || len(sendDispls) != size || len(recvCounts) != size || len(recvDispls) != size {
		return nil, cmn.NewErrConfiguration("alltoallv: counts and displacements must have %d entries", size)
	}
	for _, n := range recvCounts {
		total += n
	}
	ctx, cancel := c.deadline(ctx)
	defer cancel()

	for dst := range size {
		if dst == rank {
			continue
		}
		lo, hi := sendDispls[dst], sendDispls[dst]+sendCounts[dst]
		if lo < 0 || hi > int64(len(send)) || lo > hi {
			return nil, cmn.NewErrConfiguration("alltoallv: invalid send segment [%d, %d) for rank %d (buffer %d)",
				lo, hi, dst, len(send))
		}
		if err := c.send(ctx, OpAlltoallv, seq, dst, Encode(codec, send[lo:hi])); err != nil {
			return nil, err
		}
	}

	recv := make([]T, total)
	place := func(src int, v []T) error {
		if int64(len(v)) != recvCounts[src] {
			return cmn.NewErrConsistency(rank, "alltoallv: received %d elements from rank %d, expected %d",
				len(v), src, recvCounts[src])
		}
		lo := recvDispls[src]
		if lo < 0 || lo+int64(len(v)) > total {
			return cmn.NewErrConsistency(rank, "alltoallv: rank %d segment [%d, %d) out of receive buffer (%d)",
				src, lo, lo+int64(len(v)), total)
		}
		copy(recv[lo:], v)
		return nil
	}
	for src := range size {
		var v []T
		if src == rank {
			lo, hi := sendDispls[rank], sendDispls[rank]+sendCounts[rank]
			if lo < 0 || hi > int64(len(send)) || lo > hi {
				return nil, cmn.NewErrConfiguration("alltoallv: invalid send segment [%d, %d) for self", lo, hi)
			}
			v = send[lo:hi]
		} else {
			body, err := c.recv(ctx, OpAlltoallv, seq, src)
			if err != nil {
				return nil, err
			}
			if v, err = decode(c, codec, OpAlltoallv, src, body); err != nil {
				return nil, err
			}
		}
		if err := place(src, v); err != nil {
			return nil, err
		}
	}
	return recv, nil
}

func concat[T any](parts [][]T) []T {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make([]T, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// ExclusiveScan returns the exclusive prefix sums of counts (i.e., displacements)
func ExclusiveScan(counts []int64) []int64 {
	displs := make([]int64, len(counts))
	var sum int64
	for i, n := range counts {
		displs[i] = sum
		sum += n
	}
	return displs
}
