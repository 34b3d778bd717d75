// Package cos provides common low-level types and utilities for all samplesort packages
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"io"
	"os"
	"path/filepath"

	"github.com/NVIDIA/samplesort/cmn/debug"
)

func Close(closer io.Closer) {
	err := closer.Close()
	debug.AssertNoErr(err)
}

// CreateFile creates a new write-only (truncated) file, with all the parent directories
func CreateFile(fqn string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(fqn), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(fqn, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}
