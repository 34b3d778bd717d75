// Package comm is the messaging runtime: a fixed group of ranked participants,
// point-to-point send/receive, and the collectives built on top of it.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"context"
	"strconv"

	"github.com/NVIDIA/samplesort/cmn/cos"
)

// opcodes: every message carries the kind of collective that sent it, so that
// receiving a message of the wrong kind (i.e., ranks calling collectives in
// different order) is detected instead of silently misinterpreted
type Opcode uint8

const (
	OpP2P Opcode = iota + 1
	OpBarrier
	OpBcast
	OpScatter
	OpGather
	OpAllgather
	OpAlltoall
	OpAlltoallv
	OpAgree
)

// point-to-point sequence numbers live in their own space
const p2pSeq = uint64(1) << 63

var opnames = [...]string{
	OpP2P:       "send-recv",
	OpBarrier:   "barrier",
	OpBcast:     "bcast",
	OpScatter:   "scatter",
	OpGather:    "gather",
	OpAllgather: "allgather",
	OpAlltoall:  "alltoall",
	OpAlltoallv: "alltoallv",
	OpAgree:     "agree",
}

func (op Opcode) String() string {
	if int(op) < len(opnames) && opnames[op] != "" {
		return opnames[op]
	}
	return "op-" + strconv.Itoa(int(op))
}

type (
	// message header
	Hdr struct {
		Seq    uint64 // collective sequence number (identical on all ranks for a given collective)
		Src    int32
		Dst    int32
		Opcode Opcode
	}
	Msg struct {
		Body []byte
		Hdr  Hdr
	}

	// Link is the point-to-point layer underneath a communicator.
	// Send must not wait for the matching receive: messages are buffered
	// at the destination until received.
	Link interface {
		Rank() int
		Size() int
		Send(ctx context.Context, hdr *Hdr, body []byte) error
		// blocks until the message (src, seq) arrives or ctx is done
		Recv(ctx context.Context, src int, seq uint64) (*Msg, error)
		Close() error
	}
)

// interface guard
var _ cos.Packer = (*Hdr)(nil)

const sizeofHdr = cos.SizeofI64 + 2*cos.SizeofI32 + 1

func (*Hdr) PackedSize() int { return sizeofHdr }

func (hdr *Hdr) Pack(packer *cos.BytePack) {
	packer.WriteUint64(hdr.Seq)
	packer.WriteInt32(hdr.Src)
	packer.WriteInt32(hdr.Dst)
	packer.WriteByte(byte(hdr.Opcode))
}

func (hdr *Hdr) Unpack(unpacker *cos.ByteUnpack) (err error) {
	if hdr.Seq, err = unpacker.ReadUint64(); err != nil {
		return
	}
	if hdr.Src, err = unpacker.ReadInt32(); err != nil {
		return
	}
	if hdr.Dst, err = unpacker.ReadInt32(); err != nil {
		return
	}
	var op byte
	op, err = unpacker.ReadByte()
	hdr.Opcode = Opcode(op)
	return
}

func (hdr *Hdr) String() string {
	return hdr.Opcode.String() + "[" + strconv.FormatUint(hdr.Seq&^p2pSeq, 10) + "] " +
		strconv.Itoa(int(hdr.Src)) + "=>" + strconv.Itoa(int(hdr.Dst))
}
