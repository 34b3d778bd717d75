//go:build debug

// Package debug provides debug utilities
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package debug

import (
	"fmt"
	"os"

	"github.com/NVIDIA/samplesort/cmn/nlog"
)

const Enabled = true

func _panic(a ...any) {
	msg := "DEBUG PANIC"
	if len(a) > 0 {
		msg += ": " + fmt.Sprint(a...)
	}
	nlog.ErrorDepth(2, msg)
	nlog.Flush(true)
	os.Stderr.WriteString(msg + "\n")
	panic(msg)
}

func Assert(cond bool, a ...any) {
	if !cond {
		_panic(a...)
	}
}

func Assertf(cond bool, f string, a ...any) {
	if !cond {
		_panic(fmt.Sprintf(f, a...))
	}
}

func AssertNoErr(err error) {
	if err != nil {
		_panic(err)
	}
}
