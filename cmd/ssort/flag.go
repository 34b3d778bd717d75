// Package main for the samplesort executable: local (in-process) and
// distributed (HTTP) runs, plus dataset and history utilities.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"github.com/NVIDIA/samplesort/cmn"
	"github.com/urfave/cli"
)

// global
var (
	configFlag          = cli.StringFlag{Name: "config, c", Usage: "configuration file (YAML or JSON)"}
	logDirFlag          = cli.StringFlag{Name: "log-dir", Usage: "log directory (overrides configuration)"}
	logToStderrFlag     = cli.BoolFlag{Name: "logtostderr", Usage: "log to standard error instead of files"}
	alsoLogToStderrFlag = cli.BoolFlag{Name: "alsologtostderr", Usage: "log to standard error as well as files"}
	verboseFlag         = cli.BoolFlag{Name: "verbose, v", Usage: "verbose (per-phase) logging"}
	noColorFlag         = cli.BoolFlag{Name: "no-color", Usage: "disable colored output"}
)

// commands
var (
	workersFlag = cli.IntFlag{Name: "workers, p", Usage: "number of ranks", Value: 4}
	countFlag   = cli.Int64Flag{Name: "count, n", Usage: "number of elements to generate (must be a multiple of the number of ranks)", Value: 1 << 16}
	seedFlag    = cli.Uint64Flag{Name: "seed", Usage: "random seed (0: time-based)"}
	inputFlag   = cli.StringFlag{Name: "input, i", Usage: "input dataset (see 'gen'); overrides --count and --seed"}
	outputFlag  = cli.StringFlag{Name: "output, o", Usage: "save sorted output to this file"}
	dtypeFlag   = cli.StringFlag{
		Name:  "dtype",
		Usage: "element type: " + cmn.DtypeFloat64 + ", " + cmn.DtypeInt64 + ", or " + cmn.DtypeString,
	}
	partitionFlag = cli.StringFlag{
		Name:  "partition",
		Usage: "bucket assignment: " + cmn.PartitionScan + " or " + cmn.PartitionSearch,
	}
	noVerifyFlag = cli.BoolFlag{Name: "no-verify", Usage: "skip final sortedness check"}
	runIDFlag    = cli.StringFlag{Name: "run-id", Usage: "run ID (default: generated by the coordinator)"}

	rankFlag   = cli.IntFlag{Name: "rank, r", Usage: "this node's rank", Value: -1}
	peersFlag  = cli.StringFlag{Name: "peers", Usage: "comma-separated base URLs of all ranks, in rank order (overrides configuration)"}
	listenFlag = cli.StringFlag{Name: "listen", Usage: "listen address (overrides configuration)"}

	dbFlag = cli.StringFlag{Name: "db", Usage: "run history database (overrides configuration)"}
)
