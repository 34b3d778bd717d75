// Package cos provides common low-level types and utilities for all samplesort packages
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import ratomic "sync/atomic"

const (
	// NOTE: len(tieABC) > 0x3f - see GenTie()
	tieABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

	MLCG32 = 1103515245 // xxhash seed
)

var rtie ratomic.Uint32

func init() {
	rtie.Store(1013)
}

// GenTie returns a short (3-char) string that is unique within the process lifetime
// (modulo wraparound); used for temp filenames and such
func GenTie() string {
	tie := rtie.Add(1)
	b0 := tieABC[tie&0x3f]
	b1 := tieABC[-tie&0x3f]
	b2 := tieABC[(tie>>2)&0x3f]
	return string([]byte{b0, b1, b2})
}
