// Package main for the samplesort executable: local (in-process) and
// distributed (HTTP) runs, plus dataset and history utilities.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"cmp"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/NVIDIA/samplesort/cmn/cos"
	"github.com/NVIDIA/samplesort/cmn/nlog"
	"github.com/NVIDIA/samplesort/comm"
	"github.com/NVIDIA/samplesort/ssort"
	"github.com/NVIDIA/samplesort/stats"
	"github.com/NVIDIA/samplesort/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"
)

func (a *app) localHandler(c *cli.Context) error {
	if err := a.applySortFlags(c); err != nil {
		return err
	}
	size := c.Int(workersFlag.Name)
	if size < 1 {
		return cmn.NewErrConfiguration("invalid number of workers %d", size)
	}
	ds, err := a.input(c)
	if err != nil {
		return err
	}
	tracing.Init(&a.config.Tracing, ssort.Root, a.Version)
	defer tracing.Shutdown()
	if tracing.IsEnabled() {
		nlog.Infoln("tracing enabled:", a.config.Tracing.ExporterEndpoint)
	}

	nlog.Infof("local run: %d %s values, %d workers", ds.len(), ds.Dtype, size)
	switch ds.Dtype {
	case cmn.DtypeFloat64:
		return runLocal(a, c, comm.Float64s{}, ds.Float64s, ds, size)
	case cmn.DtypeInt64:
		return runLocal(a, c, comm.Int64s{}, ds.Int64s, ds, size)
	default:
		return runLocal(a, c, comm.Strings{}, ds.Strings, ds, size)
	}
}

func runLocal[T cmp.Ordered](a *app, c *cli.Context, codec comm.Codec[T], input []T, ds *dataset, size int) error {
	var (
		g       errgroup.Group
		errs    = cos.NewErrs(size)
		links   = comm.NewLoopback(size)
		proms   = make([]*stats.Prom, size)
		results = make([]*ssort.Result[T], size)
		timeout = a.config.Comm.Timeout.D()
	)
	db, err := a.openHistory("")
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	for rank := range size {
		proms[rank] = stats.NewProm(rank)
	}
	if a.config.Metrics.Enabled {
		srv := serveMetrics(a.config.Metrics.Listen, proms)
		defer srv.Close()
	}

	for rank := range size {
		opts := append(ssort.FromConfig(a.config), ssort.WithStats(proms[rank]))
		var in []T
		if rank == ssort.Root {
			in = input
			if id := c.String(runIDFlag.Name); id != "" {
				opts = append(opts, ssort.WithUUID(id))
			}
			if db != nil {
				opts = append(opts, ssort.WithHistory(db))
			}
		}
		g.Go(func() error {
			cm := comm.New(links[rank], timeout)
			cm.SetVerbose(a.config.Log.Verbose)
			defer cm.Close()
			res, err := ssort.Sort(a.ctx, cm, codec, in, opts...)
			if err != nil {
				errs.Add(fmt.Errorf("rank %d: %w", rank, err))
				return err
			}
			results[rank] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_, err = errs.JoinErr()
		return err
	}
	return report(a, c, results[ssort.Root], ds, proms)
}

// a single endpoint for all in-process ranks (each registry carries its own `rank` label)
func serveMetrics(addr string, proms []*stats.Prom) *http.Server {
	gatherers := make(prometheus.Gatherers, 0, len(proms))
	for _, p := range proms {
		gatherers = append(gatherers, p.Registry())
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			nlog.Errorln("metrics:", err)
		}
	}()
	return srv
}

// coordinator's report: colored status line, per-phase timings, optional output file
func report[T cmp.Ordered](a *app, c *cli.Context, res *ssort.Result[T], ds *dataset, proms []*stats.Prom) error {
	w := c.App.Writer
	status := fgreen("done")
	if res.Verified {
		status = fgreen("sorted")
	}
	fmt.Fprintf(w, "run %s: %s (N=%d, P=%d, elapsed %v)\n", fcyan(res.UUID), status, res.N, res.Size, res.Elapsed())
	for _, p := range res.Phases {
		fmt.Fprintf(w, "  %-12s %v\n", p.Name, p.Dur)
	}
	if res.BucketSizes != nil {
		fmt.Fprintf(w, "  bucket sizes: %v\n", res.BucketSizes)
	}
	for rank, p := range proms {
		p.Log(fmt.Sprintf("rank %d:", rank))
	}

	path := c.String(outputFlag.Name)
	if path == "" {
		return nil
	}
	if res.Output == nil && res.N > 0 {
		return cmn.NewErrConfiguration("cannot save output: not collected at the coordinator (see config 'sort.collect')")
	}
	output(ds, res)
	if err := saveDataset(path, ds); err != nil {
		return err
	}
	fmt.Fprintf(w, "saved %d values => %s\n", ds.len(), path)
	return nil
}
