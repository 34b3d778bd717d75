// Package comm is the messaging runtime: a fixed group of ranked participants,
// point-to-point send/receive, and the collectives built on top of it.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/NVIDIA/samplesort/cmn/debug"
	"github.com/NVIDIA/samplesort/cmn/nlog"
)

// Comm is a communicator: a fixed set of `Size()` ranked participants.
//
// All ranks must call collectives in the same order - each collective takes the next
// sequence number, and messages are matched by (source, sequence number).
// A Comm is owned by a single goroutine (one worker) and is not safe for concurrent use.
type Comm struct {
	link    Link
	sendSeq []uint64 // point-to-point, per destination
	recvSeq []uint64 // point-to-point, per source
	seq     uint64   // collectives
	timeout time.Duration
	verbose bool
}

// New wraps a link; timeout (when positive) bounds each collective call
func New(link Link, timeout time.Duration) *Comm {
	size := link.Size()
	return &Comm{
		link:    link,
		timeout: timeout,
		sendSeq: make([]uint64, size),
		recvSeq: make([]uint64, size),
	}
}

func (c *Comm) Rank() int              { return c.link.Rank() }
func (c *Comm) Size() int              { return c.link.Size() }
func (c *Comm) Link() Link             { return c.link }
func (c *Comm) Timeout() time.Duration { return c.timeout }
func (c *Comm) SetVerbose(v bool)      { c.verbose = v }
func (c *Comm) Close() error           { return c.link.Close() }

func (c *Comm) String() string { return fmt.Sprintf("comm[%d/%d]", c.Rank(), c.Size()) }

func (c *Comm) next() uint64 {
	c.seq++
	debug.Assert(c.seq < p2pSeq)
	return c.seq
}

func (c *Comm) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Comm) send(ctx context.Context, op Opcode, seq uint64, dst int, body []byte) error {
	hdr := &Hdr{Seq: seq, Src: int32(c.Rank()), Dst: int32(dst), Opcode: op}
	if err := c.link.Send(ctx, hdr, body); err != nil {
		return c.collErr(ctx, op, dst, err)
	}
	if c.verbose {
		nlog.Infof("%s: send %s (%dB)", c, hdr.String(), len(body))
	}
	return nil
}

func (c *Comm) recv(ctx context.Context, op Opcode, seq uint64, src int) ([]byte, error) {
	msg, err := c.link.Recv(ctx, src, seq)
	if err != nil {
		return nil, c.collErr(ctx, op, src, err)
	}
	if msg.Hdr.Opcode != op {
		// the peer is executing a different collective at the same position
		return nil, cmn.NewErrConsistency(c.Rank(), "%s: expected %s from rank %d, got %s",
			c, op, src, msg.Hdr.String())
	}
	if c.verbose {
		nlog.Infof("%s: recv %s (%dB)", c, msg.Hdr.String(), len(msg.Body))
	}
	return msg.Body, nil
}

func (c *Comm) collErr(ctx context.Context, op Opcode, peer int, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		err = fmt.Errorf("%w (timeout %v)", err, c.timeout)
	}
	return cmn.NewErrCollective(op.String(), c.Rank(), peer, err)
}

//
// point-to-point (ordered per pair of ranks)
//

func (c *Comm) Send(ctx context.Context, dst int, body []byte) error {
	if dst < 0 || dst >= c.Size() {
		return cmn.NewErrConfiguration("%s: invalid destination rank %d", c, dst)
	}
	c.sendSeq[dst]++
	return c.send(ctx, OpP2P, p2pSeq|c.sendSeq[dst], dst, body)
}

func (c *Comm) Recv(ctx context.Context, src int) ([]byte, error) {
	if src < 0 || src >= c.Size() {
		return nil, cmn.NewErrConfiguration("%s: invalid source rank %d", c, src)
	}
	c.recvSeq[src]++
	return c.recv(ctx, OpP2P, p2pSeq|c.recvSeq[src], src)
}

//
// barrier: a token makes two trips around the ring - the first one collects
// arrivals (rank 0 learns that everyone is here), the second one releases
//

func (c *Comm) Barrier(ctx context.Context) error {
	var (
		arrive  = c.next()
		release = c.next()
		rank    = c.Rank()
		size    = c.Size()
		next    = (rank + 1) % size
		prev    = (rank - 1 + size) % size
	)
	if size == 1 {
		return nil
	}
	ctx, cancel := c.deadline(ctx)
	defer cancel()

	if rank == 0 {
		if err := c.send(ctx, OpBarrier, arrive, next, nil); err != nil {
			return err
		}
		if _, err := c.recv(ctx, OpBarrier, arrive, prev); err != nil {
			return err
		}
		return c.send(ctx, OpBarrier, release, next, nil)
	}
	if _, err := c.recv(ctx, OpBarrier, arrive, prev); err != nil {
		return err
	}
	if err := c.send(ctx, OpBarrier, arrive, next, nil); err != nil {
		return err
	}
	if _, err := c.recv(ctx, OpBarrier, release, prev); err != nil {
		return err
	}
	if next != 0 {
		return c.send(ctx, OpBarrier, release, next, nil)
	}
	return nil
}

//
// broadcast: binomial tree rooted at `root` (a hypercube when size is a power of two);
// every non-root rank receives exactly once and forwards the very same bytes
//

func (c *Comm) BcastBytes(ctx context.Context, root int, b []byte) ([]byte, error) {
	var (
		seq  = c.next()
		size = c.Size()
		vr   = (c.Rank() - root + size) % size // rank relative to root
		mask = 1
	)
	if root < 0 || root >= size {
		return nil, cmn.NewErrConfiguration("%s: invalid bcast root %d", c, root)
	}
	if size == 1 {
		return b, nil
	}
	ctx, cancel := c.deadline(ctx)
	defer cancel()

	for mask < size {
		if vr&mask != 0 {
			src := (vr - mask + root) % size
			body, err := c.recv(ctx, OpBcast, seq, src)
			if err != nil {
				return nil, err
			}
			b = body
			break
		}
		mask <<= 1
	}
	for mask >>= 1; mask > 0; mask >>= 1 {
		if vr+mask < size {
			dst := (vr + mask + root) % size
			if err := c.send(ctx, OpBcast, seq, dst, b); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

//
// agree: every rank contributes its local status; if any rank failed, all ranks
// return an error (the local one, or ErrAborted naming the first failed rank)
//

func (c *Comm) Agree(ctx context.Context, local error) error {
	var status string
	if local != nil {
		status = local.Error()
		if status == "" {
			status = "unknown error"
		}
	}
	all, err := allgather(ctx, c, Strings{}, OpAgree, []string{status})
	if err != nil {
		if local != nil {
			return local
		}
		return err
	}
	if local != nil {
		return local
	}
	for rank, s := range all {
		if s != "" {
			return cmn.NewErrAborted(c.Rank(), rank, s)
		}
	}
	return nil
}
