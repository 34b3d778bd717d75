// Package cos provides common low-level types and utilities for all samplesort packages
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import "strconv"

const (
	SizeofI64 = 8
	SizeofI32 = 4
	SizeofI16 = 2
)

const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
)

func ToSizeIEC(b int64, digits int) string {
	switch {
	case b >= GiB:
		return strconv.FormatFloat(float64(b)/GiB, 'f', digits, 64) + "GiB"
	case b >= MiB:
		return strconv.FormatFloat(float64(b)/MiB, 'f', digits, 64) + "MiB"
	case b >= KiB:
		return strconv.FormatFloat(float64(b)/KiB, 'f', digits, 64) + "KiB"
	default:
		return strconv.FormatInt(b, 10) + "B"
	}
}

func NonZero[T comparable](a, b T) T {
	var zero T
	if a != zero {
		return a
	}
	return b
}

func Plural(num int) (s string) {
	if num != 1 {
		s = "s"
	}
	return
}
