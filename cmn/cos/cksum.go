// Package cos provides common low-level types and utilities for all samplesort packages
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"errors"
	"fmt"
	"hash"

	"github.com/cespare/xxhash/v2"
)

const (
	ChecksumNone   = "none"
	ChecksumXXHash = "xxhash"
)

const (
	badDataCksumPrefix = "BAD DATA CHECKSUM:"
	badMetaCksumPrefix = "BAD META CHECKSUM:"
)

type ErrBadCksum struct {
	prefix  string
	a, b    uint64
	context string
}

func ValidateCksumType(ty string) error {
	if ty == "" || ty == ChecksumNone || ty == ChecksumXXHash {
		return nil
	}
	return fmt.Errorf("invalid checksum type %q (expecting %q or %q)", ty, ChecksumXXHash, ChecksumNone)
}

func NewCksumHash() hash.Hash64 { return xxhash.New() }

func Checksum64(b []byte) uint64 { return xxhash.Sum64(b) }

func NewErrDataCksum(a, b uint64, context ...string) error {
	ctx := ""
	if len(context) > 0 {
		ctx = context[0]
	}
	return &ErrBadCksum{prefix: badDataCksumPrefix, a: a, b: b, context: ctx}
}

func NewErrMetaCksum(a, b uint64, context ...string) error {
	ctx := ""
	if len(context) > 0 {
		ctx = context[0]
	}
	return &ErrBadCksum{prefix: badMetaCksumPrefix, a: a, b: b, context: ctx}
}

func (e *ErrBadCksum) Error() string {
	var context string
	if e.context != "" {
		context = " (context: " + e.context + ")"
	}
	return fmt.Sprintf("%s xxhash(%016x != %016x)%s", e.prefix, e.a, e.b, context)
}

func IsErrBadCksum(err error) bool {
	var e *ErrBadCksum
	return errors.As(err, &e)
}
