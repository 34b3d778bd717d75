// Package comm is the messaging runtime: a fixed group of ranked participants,
// point-to-point send/receive, and the collectives built on top of it.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

// Codec (de)serializes a slice of elements as a single msgpack array
type Codec[T any] interface {
	Append(b []byte, v []T) []byte
	Decode(b []byte) ([]T, error)
	// upper bound on the encoded size of n elements (used to presize buffers)
	Size(n int) int
}

type (
	Float64s struct{}
	Int64s   struct{}
	Strings  struct{}
)

// interface guard
var (
	_ Codec[float64] = Float64s{}
	_ Codec[int64]   = Int64s{}
	_ Codec[string]  = Strings{}
)

func decodeTail(b []byte) error {
	if len(b) != 0 {
		return fmt.Errorf("msgp: %d trailing byte%s", len(b), plural(len(b)))
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

//
// float64
//

func (Float64s) Size(n int) int { return msgp.ArrayHeaderSize + n*msgp.Float64Size }

func (Float64s) Append(b []byte, v []float64) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(v)))
	for _, f := range v {
		b = msgp.AppendFloat64(b, f)
	}
	return b
}

func (Float64s) Decode(b []byte) (v []float64, err error) {
	var sz uint32
	if sz, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
		return nil, err
	}
	if int(sz) > len(b) {
		return nil, msgp.ErrShortBytes
	}
	v = make([]float64, sz)
	for i := range v {
		if v[i], b, err = msgp.ReadFloat64Bytes(b); err != nil {
			return nil, err
		}
	}
	return v, decodeTail(b)
}

//
// int64
//

func (Int64s) Size(n int) int { return msgp.ArrayHeaderSize + n*msgp.Int64Size }

func (Int64s) Append(b []byte, v []int64) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(v)))
	for _, i := range v {
		b = msgp.AppendInt64(b, i)
	}
	return b
}

func (Int64s) Decode(b []byte) (v []int64, err error) {
	var sz uint32
	if sz, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
		return nil, err
	}
	if int(sz) > len(b) {
		return nil, msgp.ErrShortBytes
	}
	v = make([]int64, sz)
	for i := range v {
		if v[i], b, err = msgp.ReadInt64Bytes(b); err != nil {
			return nil, err
		}
	}
	return v, decodeTail(b)
}

//
// string
//

// NOTE: strings are variable-length; 16 bytes per element is a presizing guess only
func (Strings) Size(n int) int { return msgp.ArrayHeaderSize + n*16 }

func (Strings) Append(b []byte, v []string) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(v)))
	for _, s := range v {
		b = msgp.AppendString(b, s)
	}
	return b
}

func (Strings) Decode(b []byte) (v []string, err error) {
	var sz uint32
	if sz, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
		return nil, err
	}
	if int(sz) > len(b) {
		return nil, msgp.ErrShortBytes
	}
	v = make([]string, sz)
	for i := range v {
		if v[i], b, err = msgp.ReadStringBytes(b); err != nil {
			return nil, err
		}
	}
	return v, decodeTail(b)
}

// Encode is a convenience wrapper that presizes the output buffer
func Encode[T any](codec Codec[T], v []T) []byte {
	return codec.Append(make([]byte, 0, codec.Size(len(v))), v)
}
