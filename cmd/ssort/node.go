// Package main for the samplesort executable: local (in-process) and
// distributed (HTTP) runs, plus dataset and history utilities.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"cmp"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/NVIDIA/samplesort/cmn/nlog"
	"github.com/NVIDIA/samplesort/comm"
	"github.com/NVIDIA/samplesort/ssort"
	"github.com/NVIDIA/samplesort/stats"
	"github.com/NVIDIA/samplesort/tracing"
	"github.com/NVIDIA/samplesort/transport"
	"github.com/urfave/cli"
)

const (
	trname          = "ssort"
	shutdownTimeout = 10 * time.Second
)

type node struct {
	link  *transport.Link
	prom  *stats.Prom
	srv   *http.Server
	errCh chan error
	rank  int
}

func (a *app) nodeHandler(c *cli.Context) error {
	conf := &a.config.Comm
	if v := c.String(peersFlag.Name); v != "" {
		conf.Peers = strings.Split(v, ",")
	}
	if v := c.String(listenFlag.Name); v != "" {
		conf.Listen = v
	}
	if err := a.applySortFlags(c); err != nil {
		return err
	}
	rank := c.Int(rankFlag.Name)
	if err := a.config.ValidatePeers(rank); err != nil {
		return err
	}

	// only the coordinator has input
	var (
		ds  = &dataset{Dtype: a.config.Sort.Dtype}
		err error
	)
	if rank == ssort.Root {
		if ds, err = a.input(c); err != nil {
			return err
		}
	}
	tracing.Init(&a.config.Tracing, rank, a.Version)
	defer tracing.Shutdown()

	n, err := a.startNode(rank)
	if err != nil {
		return err
	}
	defer n.stop()

	nlog.Infof("%s: rank %d of %d listening on %s", n.link, rank, n.link.Size(), conf.Listen)
	switch ds.Dtype {
	case cmn.DtypeFloat64:
		return runNode(a, c, n, comm.Float64s{}, ds.Float64s, ds)
	case cmn.DtypeInt64:
		return runNode(a, c, n, comm.Int64s{}, ds.Int64s, ds)
	default:
		return runNode(a, c, n, comm.Strings{}, ds.Strings, ds)
	}
}

func (a *app) startNode(rank int) (*node, error) {
	n := &node{rank: rank, prom: stats.NewProm(rank), errCh: make(chan error, 1)}
	link, err := transport.NewLink(trname, rank, a.config.Comm.Peers, &transport.Extra{
		Tracker:  n.prom,
		Compress: a.config.Compressed(),
		Checksum: a.config.Checksummed(),
		Verbose:  a.config.Log.Verbose,
	})
	if err != nil {
		return nil, err
	}
	n.link = link

	mux := http.NewServeMux()
	mux.Handle(link.Endpoint(), link.Handler())
	mux.Handle("/metrics", n.prom.Handler())
	n.srv = &http.Server{Addr: a.config.Comm.Listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ln, err := net.Listen("tcp", a.config.Comm.Listen)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := n.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			n.errCh <- err
		}
	}()
	return n, nil
}

func (n *node) stop() {
	n.link.Close()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := n.srv.Shutdown(ctx); err != nil {
		nlog.Warningln("shutdown:", err)
	}
}

func runNode[T cmp.Ordered](a *app, c *cli.Context, n *node, codec comm.Codec[T], input []T, ds *dataset) error {
	ctx, cancel := context.WithCancel(a.ctx)
	defer cancel()
	go func() {
		select {
		case err := <-n.errCh:
			nlog.Errorln("server:", err)
			cancel()
		case <-ctx.Done():
		}
	}()

	opts := append(ssort.FromConfig(a.config), ssort.WithStats(n.prom))
	if n.rank == ssort.Root {
		if id := c.String(runIDFlag.Name); id != "" {
			opts = append(opts, ssort.WithUUID(id))
		}
		db, err := a.openHistory("")
		if err != nil {
			return err
		}
		if db != nil {
			defer db.Close()
			opts = append(opts, ssort.WithHistory(db))
		}
	}
	cm := comm.New(n.link, a.config.Comm.Timeout.D())
	cm.SetVerbose(a.config.Log.Verbose)
	res, err := ssort.Sort(ctx, cm, codec, input, opts...)
	if err != nil {
		return err
	}
	if n.rank != ssort.Root {
		n.prom.Log(n.link.String())
		nlog.Infof("%s: bucket of %d values", n.link, len(res.Bucket))
		return nil
	}
	return report(a, c, res, ds, []*stats.Prom{n.prom})
}
