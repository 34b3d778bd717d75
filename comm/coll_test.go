// Package comm is the messaging runtime: a fixed group of ranked participants,
// point-to-point send/receive, and the collectives built on top of it.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package comm_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/NVIDIA/samplesort/comm"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Collectives", func() {
	const size = 4

	noErrs := func(errs []error) {
		for rank, err := range errs {
			Expect(err).NotTo(HaveOccurred(), "rank %d", rank)
		}
	}

	Describe("Bcast", func() {
		DescribeTable("should deliver root's data to every rank",
			func(size, root int) {
				var (
					mu  sync.Mutex
					got = make(map[int][]float64, size)
					src = []float64{0.25, -1, 3.5}
				)
				errs := runAll(size, 0, func(ctx context.Context, c *comm.Comm) error {
					var data []float64
					if c.Rank() == root {
						data = src
					}
					out, err := comm.Bcast(ctx, c, comm.Float64s{}, root, data)
					mu.Lock()
					got[c.Rank()] = out
					mu.Unlock()
					return err
				})
				noErrs(errs)
				for rank := range size {
					Expect(got[rank]).To(Equal(src), "rank %d", rank)
				}
			},
			Entry("single rank", 1, 0),
			Entry("power of two, root 0", 8, 0),
			Entry("power of two, root 5", 8, 5),
			Entry("non power of two, root 2", 7, 2),
		)

		It("should forward the exact bytes", func() {
			payload := []byte{0xde, 0xad, 0xbe, 0xef}
			errs := runAll(5, 0, func(ctx context.Context, c *comm.Comm) error {
				var b []byte
				if c.Rank() == 3 {
					b = payload
				}
				out, err := c.BcastBytes(ctx, 3, b)
				if err == nil && string(out) != string(payload) {
					err = fmt.Errorf("rank %d: got %x", c.Rank(), out)
				}
				return err
			})
			noErrs(errs)
		})

		It("should reject an invalid root", func() {
			errs := runAll(2, 0, func(ctx context.Context, c *comm.Comm) error {
				_, err := c.BcastBytes(ctx, 2, nil)
				return err
			})
			for _, err := range errs {
				Expect(cmn.IsErrConfiguration(err)).To(BeTrue())
			}
		})
	})

	Describe("Scatter and Gather", func() {
		It("should scatter equal contiguous shares", func() {
			var (
				mu     sync.Mutex
				shares = make([][]int64, size)
			)
			errs := runAll(size, 0, func(ctx context.Context, c *comm.Comm) error {
				var data []int64
				if c.Rank() == 0 {
					data = []int64{0, 1, 2, 3, 4, 5, 6, 7}
				}
				out, err := comm.Scatter(ctx, c, comm.Int64s{}, 0, data)
				mu.Lock()
				shares[c.Rank()] = out
				mu.Unlock()
				return err
			})
			noErrs(errs)
			for rank := range size {
				Expect(shares[rank]).To(Equal([]int64{int64(2 * rank), int64(2*rank + 1)}))
			}
		})

		It("should gather variable-size parts in rank order", func() {
			var gathered [][]string
			errs := runAll(size, 0, func(ctx context.Context, c *comm.Comm) error {
				local := make([]string, c.Rank())
				for i := range local {
					local[i] = fmt.Sprintf("r%d", c.Rank())
				}
				parts, err := comm.Gatherv(ctx, c, comm.Strings{}, 1, local)
				if c.Rank() == 1 {
					gathered = parts
				} else if parts != nil {
					return errors.New("non-root got parts")
				}
				return err
			})
			noErrs(errs)
			Expect(gathered).To(HaveLen(size))
			for rank, p := range gathered {
				Expect(p).To(HaveLen(rank))
			}
		})

		It("should gather and concatenate at root", func() {
			var all []int64
			errs := runAll(size, 0, func(ctx context.Context, c *comm.Comm) error {
				out, err := comm.Gather(ctx, c, comm.Int64s{}, 0, []int64{int64(c.Rank())})
				if c.Rank() == 0 {
					all = out
				}
				return err
			})
			noErrs(errs)
			Expect(all).To(Equal([]int64{0, 1, 2, 3}))
		})
	})

	Describe("Allgather and Alltoall", func() {
		It("should allgather on every rank", func() {
			errs := runAll(size, 0, func(ctx context.Context, c *comm.Comm) error {
				out, err := comm.Allgather(ctx, c, comm.Int64s{}, []int64{int64(c.Rank() * 10)})
				if err != nil {
					return err
				}
				if len(out) != size || out[3] != 30 {
					return fmt.Errorf("rank %d: unexpected %v", c.Rank(), out)
				}
				return nil
			})
			noErrs(errs)
		})

		It("should transpose counts", func() {
			errs := runAll(size, 0, func(ctx context.Context, c *comm.Comm) error {
				send := make([]int64, size)
				for dst := range send {
					send[dst] = int64(c.Rank()*100 + dst)
				}
				out, err := comm.Alltoall(ctx, c, comm.Int64s{}, send)
				if err != nil {
					return err
				}
				for src, v := range out {
					if v != int64(src*100+c.Rank()) {
						return fmt.Errorf("rank %d: from %d got %d", c.Rank(), src, v)
					}
				}
				return nil
			})
			noErrs(errs)
		})

		It("should exchange variable-size segments", func() {
			// rank r sends (dst+1) copies of r to each dst
			errs := runAll(size, 0, func(ctx context.Context, c *comm.Comm) error {
				var (
					rank       = c.Rank()
					sendCounts = make([]int64, size)
					recvCounts = make([]int64, size)
					send       []int64
				)
				for dst := range size {
					sendCounts[dst] = int64(dst + 1)
					recvCounts[dst] = int64(rank + 1)
					for range dst + 1 {
						send = append(send, int64(rank))
					}
				}
				out, err := comm.Alltoallv(ctx, c, comm.Int64s{}, send,
					sendCounts, comm.ExclusiveScan(sendCounts), recvCounts, comm.ExclusiveScan(recvCounts))
				if err != nil {
					return err
				}
				if len(out) != size*(rank+1) {
					return fmt.Errorf("rank %d: received %d", rank, len(out))
				}
				for i, v := range out {
					if v != int64(i/(rank+1)) {
						return fmt.Errorf("rank %d: out[%d] = %d", rank, i, v)
					}
				}
				return nil
			})
			noErrs(errs)
		})

		It("should fail with consistency error when a segment size is off", func() {
			errs := runAll(2, time.Second, func(ctx context.Context, c *comm.Comm) error {
				var (
					send       = []int64{7, 8, 9}
					sendCounts = []int64{1, 1}
					recvCounts = []int64{1, 1}
				)
				if c.Rank() == 1 {
					sendCounts = []int64{2, 1} // rank 0 expects a single element
				}
				_, err := comm.Alltoallv(ctx, c, comm.Int64s{}, send,
					sendCounts, comm.ExclusiveScan(sendCounts), recvCounts, comm.ExclusiveScan(recvCounts))
				return err
			})
			Expect(cmn.IsErrConsistency(errs[0])).To(BeTrue())
			Expect(errs[1]).NotTo(HaveOccurred())
		})
	})

	Describe("Barrier", func() {
		It("should not release any rank before all have arrived", func() {
			var (
				mu      sync.Mutex
				arrived int
			)
			errs := runAll(size, 0, func(ctx context.Context, c *comm.Comm) error {
				time.Sleep(time.Duration(c.Rank()) * 10 * time.Millisecond)
				mu.Lock()
				arrived++
				mu.Unlock()
				if err := c.Barrier(ctx); err != nil {
					return err
				}
				mu.Lock()
				defer mu.Unlock()
				if arrived != size {
					return fmt.Errorf("rank %d released with %d arrived", c.Rank(), arrived)
				}
				return nil
			})
			noErrs(errs)
		})
	})

	Describe("Agree", func() {
		It("should succeed when all ranks succeed", func() {
			noErrs(runAll(size, 0, func(ctx context.Context, c *comm.Comm) error {
				return c.Agree(ctx, nil)
			}))
		})

		It("should abort every rank when one fails", func() {
			failure := errors.New("local failure")
			errs := runAll(size, 0, func(ctx context.Context, c *comm.Comm) error {
				var local error
				if c.Rank() == 2 {
					local = failure
				}
				return c.Agree(ctx, local)
			})
			Expect(errs[2]).To(MatchError(failure))
			for _, rank := range []int{0, 1, 3} {
				Expect(cmn.IsErrAborted(errs[rank])).To(BeTrue(), "rank %d", rank)
				var ea *cmn.ErrAborted
				Expect(errors.As(errs[rank], &ea)).To(BeTrue())
				Expect(ea.By()).To(Equal(2))
			}
		})
	})

	Describe("Failures", func() {
		It("should time out with a collective error when a peer never shows up", func() {
			errs := runAll(2, 50*time.Millisecond, func(ctx context.Context, c *comm.Comm) error {
				if c.Rank() == 1 {
					return nil
				}
				_, err := comm.Allgather(ctx, c, comm.Int64s{}, []int64{1})
				return err
			})
			Expect(errs[1]).NotTo(HaveOccurred())
			Expect(cmn.IsErrCollective(errs[0])).To(BeTrue())
		})

		It("should detect ranks executing different collectives", func() {
			errs := runAll(2, time.Second, func(ctx context.Context, c *comm.Comm) error {
				if c.Rank() == 0 {
					_, err := comm.Allgather(ctx, c, comm.Int64s{}, []int64{1})
					return err
				}
				_, err := comm.Gather(ctx, c, comm.Int64s{}, 0, []int64{1})
				time.Sleep(100 * time.Millisecond) // keep the mailbox open for rank 0
				return err
			})
			Expect(cmn.IsErrConsistency(errs[0])).To(BeTrue())
		})
	})

	Describe("Point-to-point", func() {
		It("should preserve per-pair order", func() {
			errs := runAll(2, time.Second, func(ctx context.Context, c *comm.Comm) error {
				if c.Rank() == 0 {
					for i := range 10 {
						if err := c.Send(ctx, 1, []byte{byte(i)}); err != nil {
							return err
						}
					}
					return nil
				}
				for i := range 10 {
					b, err := c.Recv(ctx, 0)
					if err != nil {
						return err
					}
					if b[0] != byte(i) {
						return fmt.Errorf("out of order: %d != %d", b[0], i)
					}
				}
				return nil
			})
			noErrs(errs)
		})
	})
})
