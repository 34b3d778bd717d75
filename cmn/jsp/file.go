// Package jsp (JSON persistence) provides utilities to store and load arbitrary
// JSON-encoded structures with optional checksumming and compression.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package jsp

import (
	"os"

	"github.com/NVIDIA/samplesort/cmn/cos"
	"github.com/NVIDIA/samplesort/cmn/nlog"
)

// Save writes to a temp file and renames it into place
func Save(filepath string, v any, opts Options) (err error) {
	var (
		file *os.File
		tmp  = filepath + ".tmp." + cos.GenTie()
	)
	if file, err = cos.CreateFile(tmp); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if errRm := os.Remove(tmp); errRm != nil {
				nlog.Errorf("failed to remove %s: %v", tmp, errRm)
			}
		}
	}()
	if err = Encode(file, v, opts); err != nil {
		file.Close()
		return err
	}
	if err = file.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, filepath)
}

func Load(filepath string, v any, opts Options) error {
	file, err := os.Open(filepath)
	if err != nil {
		return err
	}
	err = Decode(file, v, opts, filepath)
	cos.Close(file)
	if err != nil && cos.IsErrBadCksum(err) {
		nlog.Errorf("bad checksum: %s: %v", filepath, err)
	}
	return err
}
