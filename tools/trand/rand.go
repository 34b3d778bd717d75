// Package trand provides seeded random inputs for dev tools and tests
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package trand

import (
	"math/rand/v2"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewRand returns a deterministic generator: same seed, same sequence
func NewRand(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }

// uniform in [0, 1)
func Float64s(r *rand.Rand, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = r.Float64()
	}
	return v
}

// uniform in [lo, hi)
func Int64s(r *rand.Rand, n int, lo, hi int64) []int64 {
	v := make([]int64, n)
	for i := range v {
		v[i] = lo + r.Int64N(hi-lo)
	}
	return v
}

func Strings(r *rand.Rand, n, length int) []string {
	v := make([]string, n)
	b := make([]byte, length)
	for i := range v {
		for j := range b {
			b[j] = letters[r.IntN(len(letters))]
		}
		v[i] = string(b)
	}
	return v
}

func String(n int) string {
	b := make([]byte, n)
	for i := range n {
		b[i] = letters[rand.IntN(len(letters))]
	}
	return string(b)
}
