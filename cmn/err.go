// Package cmn provides common constants, types, and utilities for samplesort clients and workers.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cmn

import (
	"errors"
	"fmt"
	"strconv"
)

// Every error in this file is fatal to the run: there's no retry and no partial result.
type (
	// invalid run parameters (N not divisible by P, bad rank, mismatched peers, etc.)
	ErrConfiguration struct {
		what string
	}
	// the data-plane disagrees with what the control-plane predicted (e.g., received
	// bucket size != exchanged counts, splitter digest mismatch)
	ErrConsistency struct {
		what string
		rank int
	}
	// non-orderable value (NaN) in a sort or bucket-assignment step
	ErrComparison struct {
		phase string
		rank  int
		index int
	}
	// collective call failed or timed out at the transport layer
	ErrCollective struct {
		err  error
		op   string
		rank int
		peer int
	}
	// run aborted because some other rank failed
	ErrAborted struct {
		cause string
		rank  int
		by    int
	}
)

// ErrConfiguration

func NewErrConfiguration(format string, a ...any) *ErrConfiguration {
	return &ErrConfiguration{what: fmt.Sprintf(format, a...)}
}

func (e *ErrConfiguration) Error() string { return "configuration error: " + e.what }

func IsErrConfiguration(err error) bool {
	var e *ErrConfiguration
	return errors.As(err, &e)
}

// ErrConsistency

func NewErrConsistency(rank int, format string, a ...any) *ErrConsistency {
	return &ErrConsistency{rank: rank, what: fmt.Sprintf(format, a...)}
}

func (e *ErrConsistency) Error() string {
	return "rank " + strconv.Itoa(e.rank) + ": consistency error: " + e.what
}

func IsErrConsistency(err error) bool {
	var e *ErrConsistency
	return errors.As(err, &e)
}

// ErrComparison

func NewErrComparison(rank int, phase string, index int) *ErrComparison {
	return &ErrComparison{rank: rank, phase: phase, index: index}
}

func (e *ErrComparison) Error() string {
	return fmt.Sprintf("rank %d: %s: non-orderable value (NaN) at index %d", e.rank, e.phase, e.index)
}

func IsErrComparison(err error) bool {
	var e *ErrComparison
	return errors.As(err, &e)
}

// ErrCollective

func NewErrCollective(op string, rank, peer int, err error) *ErrCollective {
	return &ErrCollective{op: op, rank: rank, peer: peer, err: err}
}

func (e *ErrCollective) Error() string {
	if e.peer < 0 {
		return fmt.Sprintf("rank %d: %s failed: %v", e.rank, e.op, e.err)
	}
	return fmt.Sprintf("rank %d: %s failed (peer %d): %v", e.rank, e.op, e.peer, e.err)
}

func (e *ErrCollective) Unwrap() error { return e.err }

func IsErrCollective(err error) bool {
	var e *ErrCollective
	return errors.As(err, &e)
}

// ErrAborted

func NewErrAborted(rank, by int, cause string) *ErrAborted {
	return &ErrAborted{rank: rank, by: by, cause: cause}
}

func (e *ErrAborted) Error() string {
	return fmt.Sprintf("rank %d: aborted (rank %d failed: %s)", e.rank, e.by, e.cause)
}

func (e *ErrAborted) By() int { return e.by }

func IsErrAborted(err error) bool {
	var e *ErrAborted
	return errors.As(err, &e)
}
