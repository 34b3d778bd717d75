// Package jsp (JSON persistence) provides utilities to store and load arbitrary
// JSON-encoded structures with optional checksumming and compression.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package jsp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash"
	"io"

	"github.com/NVIDIA/samplesort/cmn/cos"
	"github.com/NVIDIA/samplesort/cmn/debug"
	jsoniter "github.com/json-iterator/go"
	"github.com/pierrec/lz4/v4"
)

const (
	signature = "ssort" // file signature
	version   = 1
	//                              0 ---------------- 63 | 64 ------------- 127
	prefLen = 2 * cos.SizeofI64 // [ signature | version  |   packing bit flags  ]
)

const (
	flagCompress = 1 << iota
	flagChecksum
)

func EncodeBuf(v any, opts Options) []byte {
	buf := &bytes.Buffer{}
	err := Encode(buf, v, opts)
	debug.AssertNoErr(err)
	return buf.Bytes()
}

func Encode(writer io.Writer, v any, opts Options) (err error) {
	var (
		zw      *lz4.Writer
		encoder *jsoniter.Encoder
		h       hash.Hash64
		w       io.Writer
		buf     = &bytes.Buffer{}
	)
	w = buf
	if opts.Checksum {
		h = cos.NewCksumHash()
		w = io.MultiWriter(h, buf)
	}
	if opts.Compress {
		zw = lz4.NewWriter(w)
		encoder = cos.JSON.NewEncoder(zw)
	} else {
		encoder = cos.JSON.NewEncoder(w)
	}
	if opts.Indent {
		encoder.SetIndent("", "  ")
	}
	if err = encoder.Encode(v); err != nil {
		return err
	}
	if opts.Compress {
		if err = zw.Close(); err != nil {
			return err
		}
	}
	if opts.Signature {
		var prefix [prefLen]byte
		// 1st 64-bit word
		copy(prefix[:], signature)
		l := len(signature)
		debug.Assert(l < prefLen/2)
		prefix[l] = version

		// 2nd 64-bit word
		var packingInfo uint64
		if opts.Compress {
			packingInfo |= flagCompress
		}
		if opts.Checksum {
			packingInfo |= flagChecksum
		}
		binary.BigEndian.PutUint64(prefix[cos.SizeofI64:], packingInfo)
		if _, err = writer.Write(prefix[:]); err != nil {
			return err
		}
	}
	if opts.Checksum {
		if _, err = writer.Write(h.Sum(nil)); err != nil {
			return err
		}
	}
	_, err = writer.Write(buf.Bytes())
	return err
}

// Decode reads what Encode wrote; with signature, the stored packing flags
// override the passed-in options
func Decode(reader io.Reader, v any, opts Options, tag string) error {
	if opts.Signature {
		var prefix [prefLen]byte
		if _, err := io.ReadFull(reader, prefix[:]); err != nil {
			return fmt.Errorf("failed to read signature %q: %w", tag, err)
		}
		l := len(signature)
		if signature != string(prefix[:l]) {
			return &ErrBadSignature{tag: tag, got: string(prefix[:l]), expected: signature}
		}
		if prefix[l] != version {
			return fmt.Errorf("unsupported version %q: %d (expecting %d)", tag, prefix[l], version)
		}
		packingInfo := binary.BigEndian.Uint64(prefix[cos.SizeofI64:])
		opts.Compress = packingInfo&flagCompress != 0
		opts.Checksum = packingInfo&flagChecksum != 0
	}
	r := reader
	if opts.Checksum {
		var hsum [cos.SizeofI64]byte
		if _, err := io.ReadFull(reader, hsum[:]); err != nil {
			return fmt.Errorf("failed to read checksum %q: %w", tag, err)
		}
		h := cos.NewCksumHash()
		body, err := io.ReadAll(io.TeeReader(reader, h))
		if err != nil {
			return err
		}
		expected, actual := binary.BigEndian.Uint64(hsum[:]), h.Sum64()
		if expected != actual {
			return cos.NewErrMetaCksum(expected, actual, tag)
		}
		r = bytes.NewReader(body)
	}
	if opts.Compress {
		r = lz4.NewReader(r)
	}
	return cos.JSON.NewDecoder(r).Decode(v)
}
