// Package ssort implements distributed sample sort: every rank sorts its share,
// contributes a regular sample, and the agreed-upon splitters drive an all-to-all
// repartitioning into globally ordered buckets.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package ssort_test

import (
	"cmp"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NVIDIA/samplesort/comm"
	"github.com/NVIDIA/samplesort/ssort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSsort(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, t.Name())
}

const testTimeout = 10 * time.Second

// runSort executes the sort on `size` in-process ranks; returns per-rank results and errors
func runSort[T cmp.Ordered](size int, codec comm.Codec[T], input []T, opts ...ssort.Option) ([]*ssort.Result[T], []error) {
	return runSortPerRank(size, codec, input, func(int) []ssort.Option { return opts })
}

func runSortPerRank[T cmp.Ordered](size int, codec comm.Codec[T], input []T,
	opts func(rank int) []ssort.Option) ([]*ssort.Result[T], []error) {
	var (
		wg      sync.WaitGroup
		links   = comm.NewLoopback(size)
		results = make([]*ssort.Result[T], size)
		errs    = make([]error, size)
	)
	for rank := range size {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			defer GinkgoRecover()
			c := comm.New(links[rank], testTimeout)
			defer c.Close()
			var in []T
			if rank == ssort.Root {
				in = input
			}
			results[rank], errs[rank] = ssort.Sort(context.Background(), c, codec, in, opts(rank)...)
		}(rank)
	}
	wg.Wait()
	return results, errs
}

func expectNoErrs(errs []error) {
	for rank, err := range errs {
		ExpectWithOffset(1, err).NotTo(HaveOccurred(), "rank %d", rank)
	}
}
