// Package jsp (JSON persistence) provides utilities to store and load arbitrary
// JSON-encoded structures with optional checksumming and compression.
/*
 * Copyright (c) 2021-2026, NVIDIA CORPORATION. All rights reserved.
 */
package jsp

import "fmt"

type ErrBadSignature struct {
	tag      string
	got      string
	expected string
}

func (e *ErrBadSignature) Error() string {
	return fmt.Sprintf("bad signature %q: got %q, expected %q", e.tag, e.got, e.expected)
}
