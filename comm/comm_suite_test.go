// Package comm is the messaging runtime: a fixed group of ranked participants,
// point-to-point send/receive, and the collectives built on top of it.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package comm_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NVIDIA/samplesort/comm"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestComm(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, t.Name())
}

// runAll executes `f` on every rank of a loopback group and returns per-rank errors
func runAll(size int, timeout time.Duration, f func(ctx context.Context, c *comm.Comm) error) []error {
	var (
		wg    sync.WaitGroup
		links = comm.NewLoopback(size)
		errs  = make([]error, size)
		ctx   = context.Background()
	)
	for rank := range size {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			defer GinkgoRecover()
			c := comm.New(links[rank], timeout)
			errs[rank] = f(ctx, c)
			c.Close()
		}(rank)
	}
	wg.Wait()
	return errs
}
