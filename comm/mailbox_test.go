// Package comm is the messaging runtime: a fixed group of ranked participants,
// point-to-point send/receive, and the collectives built on top of it.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package comm_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/NVIDIA/samplesort/cmn/cos"
	"github.com/NVIDIA/samplesort/comm"
	"github.com/NVIDIA/samplesort/tools/tassert"
	"github.com/tinylib/msgp/msgp"
)

func TestMailboxOutOfOrder(t *testing.T) {
	mb := comm.NewMailbox()
	for seq := uint64(3); seq > 0; seq-- {
		err := mb.Deliver(&comm.Msg{Hdr: comm.Hdr{Seq: seq, Src: 1}, Body: []byte{byte(seq)}})
		tassert.CheckFatal(t, err)
	}
	tassert.Errorf(t, mb.Pending() == 3, "expected 3 pending, got %d", mb.Pending())
	for seq := uint64(1); seq <= 3; seq++ {
		msg, err := mb.Wait(context.Background(), 1, seq)
		tassert.CheckFatal(t, err)
		tassert.Errorf(t, msg.Body[0] == byte(seq), "seq %d: got body %v", seq, msg.Body)
	}
	tassert.Errorf(t, mb.Pending() == 0, "expected nothing pending, got %d", mb.Pending())

	err := mb.Deliver(&comm.Msg{Hdr: comm.Hdr{Seq: 9, Src: 0}})
	tassert.CheckFatal(t, err)
	err = mb.Deliver(&comm.Msg{Hdr: comm.Hdr{Seq: 9, Src: 0}})
	tassert.Errorf(t, err != nil, "expected duplicate delivery to fail")
}

func TestMailboxWaitThenDeliver(t *testing.T) {
	mb := comm.NewMailbox()
	go func() {
		time.Sleep(10 * time.Millisecond)
		mb.Deliver(&comm.Msg{Hdr: comm.Hdr{Seq: 5, Src: 2}, Body: []byte("x")})
	}()
	msg, err := mb.Wait(context.Background(), 2, 5)
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, string(msg.Body) == "x", "unexpected body %q", msg.Body)
}

func TestMailboxClose(t *testing.T) {
	var (
		mb    = comm.NewMailbox()
		cause = errors.New("peer gone")
		errCh = make(chan error, 1)
	)
	go func() {
		_, err := mb.Wait(context.Background(), 0, 1)
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)
	mb.Close(cause)
	err := <-errCh
	tassert.Errorf(t, errors.Is(err, cause), "expected %v, got %v", cause, err)

	err = mb.Deliver(&comm.Msg{Hdr: comm.Hdr{Seq: 1}})
	tassert.Errorf(t, errors.Is(err, comm.ErrClosed), "expected %v, got %v", comm.ErrClosed, err)
}

func TestMailboxCanceled(t *testing.T) {
	mb := comm.NewMailbox()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := mb.Wait(ctx, 0, 1)
	tassert.Errorf(t, errors.Is(err, context.DeadlineExceeded), "expected deadline exceeded, got %v", err)

	// late arrival is buffered, not lost
	tassert.CheckFatal(t, mb.Deliver(&comm.Msg{Hdr: comm.Hdr{Seq: 1}}))
	tassert.Errorf(t, mb.Pending() == 1, "expected 1 pending, got %d", mb.Pending())
}

func TestHdrPack(t *testing.T) {
	var (
		hdr = comm.Hdr{Seq: 1<<63 | 42, Src: 3, Dst: 7, Opcode: comm.OpAlltoallv}
		pk  = cos.NewPacker(nil, hdr.PackedSize())
	)
	pk.WriteAny(&hdr)
	var out comm.Hdr
	tassert.CheckFatal(t, cos.NewUnpacker(pk.Bytes()).ReadAny(&out))
	tassert.Errorf(t, out == hdr, "expected %s, got %s", hdr.String(), out.String())
}

func TestCodecMalformed(t *testing.T) {
	b := comm.Encode(comm.Float64s{}, []float64{1, math.Inf(-1), 0})

	v, err := comm.Float64s{}.Decode(b)
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, len(v) == 3 && math.IsInf(v[1], -1), "unexpected %v", v)

	_, err = comm.Float64s{}.Decode(b[:len(b)-1])
	tassert.Errorf(t, err != nil, "expected truncated input to fail")

	_, err = comm.Float64s{}.Decode(append(b, 0))
	tassert.Errorf(t, err != nil, "expected trailing bytes to fail")

	// array header claiming far more elements than there are bytes
	huge := msgp.AppendArrayHeader(nil, math.MaxUint32)
	_, err = comm.Int64s{}.Decode(huge)
	tassert.Errorf(t, errors.Is(err, msgp.ErrShortBytes), "expected short bytes, got %v", err)

	_, err = comm.Strings{}.Decode(comm.Encode(comm.Int64s{}, []int64{1}))
	tassert.Errorf(t, err != nil, "expected type mismatch to fail")
}
