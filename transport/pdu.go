// Package transport provides the HTTP point-to-point link between samplesort
// nodes: one PUT per message, binary header, optional lz4 compression and xxhash checksum.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package transport

import (
	"bytes"
	"fmt"
	"io"

	"github.com/NVIDIA/samplesort/cmn/cos"
	"github.com/NVIDIA/samplesort/comm"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// wire format: [pduHdr][payload]; the payload is lz4 frame when flagCompressed is set
type pduHdr struct {
	comm.Hdr
	cksum  uint64 // xxhash64 of the uncompressed payload (flagChecksum)
	length uint32 // uncompressed payload length
	flags  uint8
}

// interface guard
var (
	_ cos.Packer   = (*pduHdr)(nil)
	_ cos.Unpacker = (*pduHdr)(nil)
)

func (h *pduHdr) PackedSize() int {
	return h.Hdr.PackedSize() + 1 + cos.SizeofI32 + cos.SizeofI64
}

func (h *pduHdr) Pack(packer *cos.BytePack) {
	packer.WriteAny(&h.Hdr)
	packer.WriteByte(h.flags)
	packer.WriteUint32(h.length)
	packer.WriteUint64(h.cksum)
}

func (h *pduHdr) Unpack(unpacker *cos.ByteUnpack) (err error) {
	if err = unpacker.ReadAny(&h.Hdr); err != nil {
		return
	}
	if h.flags, err = unpacker.ReadByte(); err != nil {
		return
	}
	if h.length, err = unpacker.ReadUint32(); err != nil {
		return
	}
	h.cksum, err = unpacker.ReadUint64()
	return
}

func (h *pduHdr) String() string {
	return fmt.Sprintf("%s(len=%d, flags=%#x)", h.Hdr.String(), h.length, h.flags)
}

// packPDU returns the wire bytes and the size of the (possibly compressed) payload
func packPDU(hdr *comm.Hdr, body []byte, compress, cksum bool) ([]byte, int, error) {
	h := &pduHdr{Hdr: *hdr, length: uint32(len(body))}
	if cksum {
		h.flags |= flagChecksum
		h.cksum = cos.Checksum64(body)
	}
	if compress && len(body) > 0 {
		h.flags |= flagCompressed
	}
	var (
		size = h.PackedSize()
		buf  = bytes.NewBuffer(make([]byte, size, size+len(body)))
	)
	pk := cos.NewPacker(buf.Bytes()[:size], size)
	pk.WriteAny(h)

	if h.flags&flagCompressed == 0 {
		buf.Write(body)
		return buf.Bytes(), len(body), nil
	}
	zw := lz4.NewWriter(buf)
	if _, err := zw.Write(body); err != nil {
		return nil, 0, errors.Wrap(err, "lz4 compress")
	}
	if err := zw.Close(); err != nil {
		return nil, 0, errors.Wrap(err, "lz4 compress")
	}
	b := buf.Bytes()
	return b, len(b) - size, nil
}

// unpackPDU validates the header and returns the (uncompressed, verified) payload
func unpackPDU(b []byte) (*pduHdr, []byte, error) {
	h := &pduHdr{}
	if err := cos.NewUnpacker(b).ReadAny(h); err != nil {
		return nil, nil, errors.Wrapf(err, "invalid PDU header (%d bytes)", len(b))
	}
	if h.length > MaxPayload {
		return nil, nil, fmt.Errorf("%s: payload exceeds %s", h, cos.ToSizeIEC(MaxPayload, 0))
	}
	var (
		rest = b[h.PackedSize():]
		body []byte
	)
	if h.flags&flagCompressed != 0 {
		body = make([]byte, h.length)
		zr := lz4.NewReader(bytes.NewReader(rest))
		if _, err := io.ReadFull(zr, body); err != nil {
			return nil, nil, errors.Wrapf(err, "%s: lz4 decompress", h)
		}
	} else {
		if len(rest) != int(h.length) {
			return nil, nil, fmt.Errorf("%s: payload size mismatch (%d bytes)", h, len(rest))
		}
		body = rest
	}
	if h.flags&flagChecksum != 0 {
		if actual := cos.Checksum64(body); actual != h.cksum {
			return nil, nil, cos.NewErrDataCksum(h.cksum, actual, h.String())
		}
	}
	return h, body, nil
}
