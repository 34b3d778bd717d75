// Package ssort implements distributed sample sort: every rank sorts its share,
// contributes a regular sample, and the agreed-upon splitters drive an all-to-all
// repartitioning into globally ordered buckets.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package ssort

import (
	"cmp"
	"context"
	"time"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/NVIDIA/samplesort/cmn/debug"
	"github.com/NVIDIA/samplesort/cmn/nlog"
	"github.com/NVIDIA/samplesort/comm"
	"github.com/NVIDIA/samplesort/stats"
	"github.com/NVIDIA/samplesort/tracing"
	"go.opentelemetry.io/otel/attribute"
)

type (
	// Worker runs the sort on one rank. All ranks, the coordinator included,
	// execute the very same sequence of collectives.
	Worker[T cmp.Ordered] struct {
		comm  *comm.Comm
		codec comm.Codec[T]
		opts  *Options
		res   *Result[T]
		cx    Context
	}
	// Coordinator is the worker on rank Root plus the coordinator-only duties:
	// it owns the input, issues the run ID, and records the run summary.
	Coordinator[T cmp.Ordered] struct {
		*Worker[T]
		summary *Summary
	}
)

func NewWorker[T cmp.Ordered](cx Context, c *comm.Comm, codec comm.Codec[T], opts ...Option) (*Worker[T], error) {
	if err := cx.validate(); err != nil {
		return nil, err
	}
	if cx.Rank != c.Rank() || cx.Size != c.Size() {
		return nil, cmn.NewErrConfiguration("%s does not match %s", cx, c)
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Worker[T]{cx: cx, comm: c, codec: codec, opts: o}, nil
}

func NewCoordinator[T cmp.Ordered](cx Context, c *comm.Comm, codec comm.Codec[T], opts ...Option) (*Coordinator[T], error) {
	if !cx.IsRoot() {
		return nil, cmn.NewErrConfiguration("coordinator must run on rank %d (have %s)", Root, cx)
	}
	w, err := NewWorker(cx, c, codec, opts...)
	if err != nil {
		return nil, err
	}
	if w.opts.UUID == "" {
		w.opts.UUID = cmn.GenUUID()
	}
	return &Coordinator[T]{Worker: w}, nil
}

func (w *Worker[T]) String() string { return "ssort[" + w.opts.UUID + "]-" + w.cx.String() }

// phase runs one step of the pipeline: span, timing, metrics
func (w *Worker[T]) phase(ctx context.Context, name string, f func(ctx context.Context) error) error {
	started := time.Now()
	ctx, span := tracing.StartSpan(ctx, name, attribute.Int("rank", w.cx.Rank), attribute.String("run", w.opts.UUID))
	err := f(ctx)
	tracing.EndSpan(span, err)

	d := time.Since(started)
	w.res.Phases = append(w.res.Phases, PhaseTime{Name: name, Dur: d})
	if w.opts.Stats != nil {
		w.opts.Stats.Observe(stats.PhaseLatency, name, d)
	}
	if err != nil {
		nlog.Errorln(w.String(), name, "failed:", err)
	} else if w.opts.Verbose {
		nlog.Infof("%s: %s done in %v", w, name, d)
	}
	return err
}

// Run executes the pipeline; `input` is only used on the coordinator
func (w *Worker[T]) Run(ctx context.Context, input []T) (res *Result[T], err error) {
	w.res = &Result[T]{Rank: w.cx.Rank, Size: w.cx.Size, Started: time.Now()}
	defer func() {
		if w.opts.Stats != nil {
			status := stats.StatusOK
			if err != nil {
				status = stats.StatusFail
			}
			w.opts.Stats.IncWith(stats.RunCount, status)
		}
	}()

	// run ID: the coordinator's
	ids, err := comm.Bcast(ctx, w.comm, comm.Strings{}, Root, []string{w.opts.UUID})
	if err != nil {
		return nil, err
	}
	if len(ids) != 1 {
		return nil, cmn.NewErrConsistency(w.cx.Rank, "malformed run ID")
	}
	w.opts.UUID, w.res.UUID = ids[0], ids[0]

	var (
		share    *Share[T]
		sorted   *SortedShare[T]
		samples  *SampleSet[T]
		sp       *Splitters[T]
		part     *Partition[T]
		received *Received[T]
		bucket   *Bucket[T]
	)
	err = w.phase(ctx, PhaseDistribute, func(ctx context.Context) (err error) {
		share, err = Distribute(ctx, w.cx, w.comm, w.codec, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	w.res.N = share.Total()
	if w.opts.Stats != nil {
		w.opts.Stats.Set(stats.InputSize, int64(share.Len()))
	}

	// a local failure (NaN) must abort every rank, not leave them waiting for samples
	err = w.phase(ctx, PhaseSort, func(ctx context.Context) error {
		var err error
		sorted, err = share.Sort()
		return w.comm.Agree(ctx, err)
	})
	if err != nil {
		return nil, err
	}

	_ = w.phase(ctx, PhaseSample, func(context.Context) error {
		samples = sorted.Sample()
		return nil
	})

	err = w.phase(ctx, PhaseSplitters, func(ctx context.Context) (err error) {
		sp, err = SelectSplitters(ctx, w.comm, w.codec, w.res.N, samples)
		return err
	})
	if err != nil {
		return nil, err
	}
	w.res.Splitters = sp.Values()

	err = w.phase(ctx, PhasePartition, func(context.Context) (err error) {
		part, err = sorted.Partition(sp, w.opts.Partition)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = w.phase(ctx, PhaseExchange, func(ctx context.Context) (err error) {
		received, err = Exchange(ctx, w.comm, w.codec, part)
		return err
	})
	if err != nil {
		return nil, err
	}
	if w.opts.Stats != nil {
		w.opts.Stats.Add(stats.SentCount, received.sent)
		w.opts.Stats.Add(stats.RecvCount, int64(received.Len())-received.recvCounts[w.cx.Rank])
	}

	err = w.phase(ctx, PhaseMerge, func(context.Context) (err error) {
		bucket, err = received.Merge()
		return err
	})
	if err != nil {
		return nil, err
	}
	w.res.Bucket = bucket.Values()
	debug.AssertNoErr(CheckBounds(w.cx.Rank, w.res.Bucket, w.res.Splitters))
	if w.opts.Stats != nil {
		w.opts.Stats.Set(stats.BucketSize, int64(len(w.res.Bucket)))
	}

	if !w.opts.Collect {
		return w.res, nil
	}
	err = w.phase(ctx, PhaseCollect, func(ctx context.Context) (err error) {
		w.res.Output, w.res.BucketSizes, err = Collect(ctx, w.comm, w.codec, w.res.N, bucket)
		return err
	})
	if err != nil {
		return nil, err
	}

	if w.opts.Verify && w.cx.IsRoot() {
		err = w.phase(ctx, PhaseVerify, func(context.Context) error {
			return Verify(w.cx.Rank, w.res.Output)
		})
		if err != nil {
			return nil, err
		}
		w.res.Verified = true
	}
	return w.res, nil
}

// Run executes the pipeline on the coordinator and records the summary
// (both on success and on failure)
func (co *Coordinator[T]) Run(ctx context.Context, input []T) (*Result[T], error) {
	res, err := co.Worker.Run(ctx, input)
	if res == nil {
		res = co.res
	}
	co.summary = NewSummary(res, co.opts.Dtype, err)
	nlog.Infoln(co.String(), co.summary.String())
	if co.opts.History != nil {
		if errH := SaveSummary(co.opts.History, co.summary); errH != nil {
			nlog.Errorln(co.String(), "failed to record run history:", errH)
		}
	}
	return res, err
}

func (co *Coordinator[T]) Summary() *Summary { return co.summary }

// Sort runs the distributed sort on the calling rank: the coordinator role on
// rank Root, the worker role elsewhere. `input` is used on the coordinator only.
func Sort[T cmp.Ordered](ctx context.Context, c *comm.Comm, codec comm.Codec[T], input []T, opts ...Option) (*Result[T], error) {
	cx := Context{Rank: c.Rank(), Size: c.Size()}
	if cx.IsRoot() {
		co, err := NewCoordinator(cx, c, codec, opts...)
		if err != nil {
			return nil, err
		}
		return co.Run(ctx, input)
	}
	w, err := NewWorker(cx, c, codec, opts...)
	if err != nil {
		return nil, err
	}
	return w.Run(ctx, nil)
}
