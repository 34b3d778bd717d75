// Package stats provides methods and functionality to register, track, log,
// and export metrics that, for the most part, include "counter" and "latency" kinds.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package stats

import (
	"time"
)

// metric names (internal); exported to Prometheus as "ssort_" + name with '.' => '_'
const (
	RunCount     = "run.n"       // by status: ok | fail
	PhaseLatency = "phase.ns"    // by phase
	SentCount    = "exch.sent.n" // elements sent to other ranks during exchange
	RecvCount    = "exch.recv.n" // elements received from other ranks
	BucketSize   = "bucket.size" // size of this rank's final bucket
	InputSize    = "input.n"     // size of this rank's share

	// transport
	OutMsgCount = "stream.out.n"
	OutMsgSize  = "stream.out.size"
	InMsgCount  = "stream.in.n"
	InMsgSize   = "stream.in.size"
)

// variable label values
const (
	StatusOK   = "ok"
	StatusFail = "fail"
)

type Tracker interface {
	Inc(name string)
	Add(name string, val int64)
	IncWith(name, label string)
	Set(name string, val int64)
	Observe(name, label string, d time.Duration)
	// current (cumulative) value, for logging and tests
	Get(name string) int64
}
