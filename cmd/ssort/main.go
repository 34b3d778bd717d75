// Package main for the samplesort executable: local (in-process) and
// distributed (HTTP) runs, plus dataset and history utilities.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/NVIDIA/samplesort/cmn/nlog"
)

var (
	build     string
	buildtime string
)

func main() {
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)

	version := cmn.VersionSsort
	if build != "" {
		version += "." + build
	}
	app := newApp(version, buildtime, stopCh)
	err := app.Run(os.Args)
	nlog.Flush(true)
	if err != nil {
		fmt.Fprintln(os.Stderr, redErr(err))
		os.Exit(1)
	}
}
