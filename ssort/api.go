// Package ssort implements distributed sample sort: every rank sorts its share,
// contributes a regular sample, and the agreed-upon splitters drive an all-to-all
// repartitioning into globally ordered buckets.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package ssort

import (
	"fmt"
	"time"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/NVIDIA/samplesort/dbdriver"
	"github.com/NVIDIA/samplesort/stats"
)

// the coordinator's rank
const Root = 0

// phase names (logs, metrics, spans)
const (
	PhaseDistribute = "distribute"
	PhaseSort       = "local-sort"
	PhaseSample     = "sample"
	PhaseSplitters  = "splitters"
	PhasePartition  = "partition"
	PhaseExchange   = "exchange"
	PhaseMerge      = "merge"
	PhaseCollect    = "collect"
	PhaseVerify     = "verify"
)

type (
	// Context identifies the calling rank within a group of Size
	Context struct {
		Rank int
		Size int
	}

	Options struct {
		Stats     stats.Tracker   // nil: no metrics
		History   dbdriver.Driver // (coordinator) run summaries; nil: none
		UUID      string          // run ID (the coordinator's is authoritative)
		Dtype     string          // element type name, for the run summary
		Partition string          // cmn.PartitionScan | cmn.PartitionSearch
		Collect   bool            // gather all buckets at the coordinator
		Verify    bool            // check the collected output
		Verbose   bool
	}
	Option func(*Options)

	PhaseTime struct {
		Name string
		Dur  time.Duration
	}

	// Result is what a rank ends up with; fields marked (coordinator) are nil elsewhere
	Result[T any] struct {
		UUID        string
		Splitters   []T
		Bucket      []T     // this rank's final bucket, sorted
		BucketSizes []int64 // (coordinator, when collected)
		Output      []T     // (coordinator, when collected) the globally sorted sequence
		Phases      []PhaseTime
		Started     time.Time
		N           int64 // total number of elements
		Rank        int
		Size        int
		Verified    bool // (coordinator) output checked and found sorted
	}
)

func (c Context) String() string { return fmt.Sprintf("r%d/%d", c.Rank, c.Size) }

func (c Context) IsRoot() bool { return c.Rank == Root }

func (c Context) validate() error {
	if c.Size < 1 {
		return cmn.NewErrConfiguration("invalid group size %d", c.Size)
	}
	if c.Rank < 0 || c.Rank >= c.Size {
		return cmn.NewErrConfiguration("rank %d out of range [0, %d)", c.Rank, c.Size)
	}
	return nil
}

func WithStats(tracker stats.Tracker) Option { return func(o *Options) { o.Stats = tracker } }
func WithHistory(db dbdriver.Driver) Option  { return func(o *Options) { o.History = db } }
func WithUUID(uuid string) Option            { return func(o *Options) { o.UUID = uuid } }
func WithDtype(dtype string) Option          { return func(o *Options) { o.Dtype = dtype } }
func WithPartition(method string) Option     { return func(o *Options) { o.Partition = method } }
func WithCollect(v bool) Option              { return func(o *Options) { o.Collect = v } }
func WithVerify(v bool) Option               { return func(o *Options) { o.Verify = v } }
func WithVerbose(v bool) Option              { return func(o *Options) { o.Verbose = v } }

// FromConfig translates the sort section of the configuration
func FromConfig(config *cmn.Config) []Option {
	return []Option{
		WithDtype(config.Sort.Dtype),
		WithPartition(config.Sort.Partition),
		WithCollect(config.Sort.Collect),
		WithVerify(config.Sort.Verify),
		WithVerbose(config.Log.Verbose),
	}
}

func newOptions(opts []Option) (*Options, error) {
	o := &Options{Partition: cmn.PartitionScan, Collect: true}
	for _, opt := range opts {
		opt(o)
	}
	switch o.Partition {
	case cmn.PartitionScan, cmn.PartitionSearch:
	default:
		return nil, cmn.NewErrConfiguration("invalid partition method %q", o.Partition)
	}
	if o.Verify && !o.Collect {
		return nil, cmn.NewErrConfiguration("cannot verify output without collecting it")
	}
	return o, nil
}

func (r *Result[T]) Elapsed() (total time.Duration) {
	for _, p := range r.Phases {
		total += p.Dur
	}
	return total
}
