// Package nlog - samplesort logger, provides buffering, timestamping, writing, and
// flushing/syncing/rotating
/*
 * Copyright (c) 2023-2026, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

var (
	MaxSize int64 = 4 * 1024 * 1024
)

// SetStderr: log to stderr instead of (`to`) or in addition to (`also`) files
func SetStderr(to, also bool) { toStderr, alsoToStderr = to, also }

func Infoln(args ...any)                { log(sevInfo, 0, "", args...) }
func Infof(format string, args ...any)  { log(sevInfo, 0, format, args...) }
func Warningln(args ...any)             { log(sevWarn, 0, "", args...) }
func ErrorDepth(depth int, args ...any) { log(sevErr, depth, "", args...) }
func Errorln(args ...any)               { log(sevErr, 0, "", args...) }
func Errorf(format string, args ...any) { log(sevErr, 0, format, args...) }

func SetLogDirRole(dir, role string) { logDir, ssrole = dir, role }
func SetTitle(s string)              { title = s }

// Flush pushes buffered log lines to the respective files; when `exit` is true
// it also closes the files and routes all subsequent logging to stderr.
func Flush(exit bool) {
	if !inited.Load() {
		return
	}
	if exit {
		stopping.Store(true)
	}
	nlogs[sevErr].flush(exit)
	nlogs[sevInfo].flush(exit)
}
