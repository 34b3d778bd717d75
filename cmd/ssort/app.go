// Package main for the samplesort executable: local (in-process) and
// distributed (HTTP) runs, plus dataset and history utilities.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/NVIDIA/samplesort/cmn/nlog"
	"github.com/fatih/color"
	"github.com/urfave/cli"
)

const appName = "ssort"

// color
var (
	fred, fgreen, fcyan func(a ...any) string
)

type app struct {
	*cli.App
	config *cmn.Config
	ctx    context.Context
	cancel context.CancelFunc
	role   string
}

func newApp(version, buildtime string, stopCh <-chan os.Signal) *app {
	a := &app{App: cli.NewApp()}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	go func() {
		<-stopCh
		nlog.Warningln("interrupted")
		a.cancel()
	}()

	fred = color.New(color.FgHiRed).SprintFunc()
	fgreen = color.New(color.FgHiGreen).SprintFunc()
	fcyan = color.New(color.FgHiCyan).SprintFunc()

	a.Name = appName
	a.Usage = "distributed sample sort"
	a.Version = version
	if buildtime != "" {
		a.Version += " (build " + buildtime + ")"
	}
	a.Flags = []cli.Flag{configFlag, logDirFlag, logToStderrFlag, alsoLogToStderrFlag, verboseFlag, noColorFlag}
	a.Before = a.before
	a.After = a.after
	a.Commands = []cli.Command{
		{
			Name:   "local",
			Usage:  "sort with all ranks running in this process",
			Flags:  []cli.Flag{workersFlag, countFlag, seedFlag, inputFlag, outputFlag, dtypeFlag, partitionFlag, noVerifyFlag, runIDFlag},
			Action: a.localHandler,
		},
		{
			Name:   "node",
			Usage:  "run one rank of a distributed sort (HTTP transport)",
			Flags:  []cli.Flag{rankFlag, peersFlag, listenFlag, countFlag, seedFlag, inputFlag, outputFlag, dtypeFlag, partitionFlag, noVerifyFlag, runIDFlag},
			Action: a.nodeHandler,
		},
		{
			Name:      "gen",
			Usage:     "generate a random input dataset",
			ArgsUsage: "OUTPUT",
			Flags:     []cli.Flag{countFlag, seedFlag, dtypeFlag},
			Action:    a.genHandler,
		},
		{
			Name:      "verify",
			Usage:     "check that a dataset is sorted",
			ArgsUsage: "FILE",
			Action:    a.verifyHandler,
		},
		{
			Name:   "history",
			Usage:  "list past runs",
			Flags:  []cli.Flag{dbFlag},
			Action: a.historyHandler,
		},
	}
	return a
}

// load configuration, apply global overrides, and initialize logging
func (a *app) before(c *cli.Context) error {
	if c.GlobalBool(noColorFlag.Name) {
		color.NoColor = true
	}
	var err error
	if path := c.GlobalString(configFlag.Name); path != "" {
		if a.config, err = cmn.LoadConfig(path); err != nil {
			return err
		}
	} else {
		a.config = cmn.DefaultConfig()
	}
	conf := &a.config.Log
	if dir := c.GlobalString(logDirFlag.Name); dir != "" {
		conf.Dir = dir
	}
	conf.ToStderr = conf.ToStderr || c.GlobalBool(logToStderrFlag.Name)
	conf.Verbose = conf.Verbose || c.GlobalBool(verboseFlag.Name)

	a.role = appName
	if args := c.Args(); len(args) > 0 {
		a.role += "-" + args[0]
	}
	nlog.SetLogDirRole(conf.Dir, a.role)
	nlog.SetStderr(conf.ToStderr, c.GlobalBool(alsoLogToStderrFlag.Name))
	nlog.SetTitle(strings.Join(os.Args, " "))
	return nil
}

func (a *app) after(*cli.Context) error {
	a.cancel()
	return nil
}

func redErr(err error) error {
	msg := strings.TrimRight(err.Error(), "\n")
	return errors.New(fred("Error: ") + msg)
}
