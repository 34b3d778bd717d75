// Package ssort implements distributed sample sort: every rank sorts its share,
// contributes a regular sample, and the agreed-upon splitters drive an all-to-all
// repartitioning into globally ordered buckets.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package ssort_test

import (
	"errors"
	"math"
	"slices"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/NVIDIA/samplesort/comm"
	"github.com/NVIDIA/samplesort/dbdriver"
	"github.com/NVIDIA/samplesort/ssort"
	"github.com/NVIDIA/samplesort/stats"
	"github.com/NVIDIA/samplesort/tools/trand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SampleSort", func() {
	// properties every successful run must have
	checkRun := func(input []float64, results []*ssort.Result[float64]) {
		size := len(results)
		root := results[ssort.Root]
		expected := slices.Sorted(slices.Values(input))

		By("permutation and sortedness of the collected output")
		Expect(root.Output).To(Equal(expected))
		Expect(root.Verified).To(BeTrue())
		Expect(root.N).To(BeEquivalentTo(len(input)))

		By("every rank agreeing on the splitters")
		for rank := 1; rank < size; rank++ {
			Expect(results[rank].Splitters).To(Equal(root.Splitters))
			Expect(results[rank].UUID).To(Equal(root.UUID))
		}

		By("bucket boundaries")
		var total int
		for rank, res := range results {
			Expect(slices.IsSorted(res.Bucket)).To(BeTrue())
			Expect(ssort.CheckBounds(rank, res.Bucket, res.Splitters)).To(Succeed())
			if rank > 0 && len(res.Bucket) > 0 && len(results[rank-1].Bucket) > 0 {
				prev := results[rank-1].Bucket
				Expect(prev[len(prev)-1]).To(BeNumerically("<=", res.Bucket[0]))
			}
			Expect(root.BucketSizes[rank]).To(BeEquivalentTo(len(res.Bucket)))
			total += len(res.Bucket)
		}
		Expect(total).To(Equal(len(input)))
	}

	DescribeTable("should sort random input",
		func(size, perRank int, method string) {
			input := trand.Float64s(trand.NewRand(uint64(size*1000+perRank)), size*perRank)
			orig := slices.Clone(input)
			results, errs := runSort(size, comm.Float64s{}, input,
				ssort.WithPartition(method), ssort.WithVerify(true))
			expectNoErrs(errs)
			Expect(input).To(Equal(orig), "input must not be modified")
			checkRun(input, results)
		},
		Entry("P=1 (plain local sort)", 1, 100, cmn.PartitionScan),
		Entry("P=2", 2, 50, cmn.PartitionScan),
		Entry("P=4", 4, 250, cmn.PartitionScan),
		Entry("P=5, binary search", 5, 200, cmn.PartitionSearch),
		Entry("P=8, one element per rank", 8, 1, cmn.PartitionScan),
		Entry("P=7", 7, 1000, cmn.PartitionScan),
	)

	It("should select splitters strictly inside the global sample range (N=20, P=4)", func() {
		const size = 4
		input := trand.Float64s(trand.NewRand(42), 20)

		// global sample set, computed independently
		var global []float64
		for rank := range size {
			share := slices.Sorted(slices.Values(input[rank*5 : (rank+1)*5]))
			for _, i := range ssort.SampleIndices(len(share), size) {
				global = append(global, share[i])
			}
		}
		Expect(global).To(HaveLen(size * size))
		lo, hi := slices.Min(global), slices.Max(global)

		results, errs := runSort(size, comm.Float64s{}, input, ssort.WithVerify(true))
		expectNoErrs(errs)
		checkRun(input, results)

		splitters := results[ssort.Root].Splitters
		Expect(splitters).To(HaveLen(size - 1))
		for _, s := range splitters {
			Expect(s).To(BeNumerically(">", lo))
			Expect(s).To(BeNumerically("<", hi))
		}
		slices.Sort(global)
		Expect(splitters).To(Equal([]float64{global[4], global[8], global[12]}))
	})

	It("should be idempotent", func() {
		input := trand.Float64s(trand.NewRand(7), 64)
		results, errs := runSort(4, comm.Float64s{}, input, ssort.WithVerify(true))
		expectNoErrs(errs)
		once := results[ssort.Root].Output

		results, errs = runSort(4, comm.Float64s{}, once, ssort.WithVerify(true))
		expectNoErrs(errs)
		Expect(results[ssort.Root].Output).To(Equal(once))
	})

	It("should handle skewed input (all values equal)", func() {
		const size = 4
		input := make([]float64, 40)
		for i := range input {
			input[i] = 0.5
		}
		results, errs := runSort(size, comm.Float64s{}, input, ssort.WithVerify(true))
		expectNoErrs(errs)
		checkRun(input, results)
		// every splitter equals 0.5, and equal values go to the higher bucket
		Expect(results[ssort.Root].Splitters).To(Equal([]float64{0.5, 0.5, 0.5}))
		Expect(results[size-1].Bucket).To(HaveLen(40))
		Expect(results[ssort.Root].BucketSizes).To(Equal([]int64{0, 0, 0, 40}))
	})

	It("should handle empty input", func() {
		results, errs := runSort(3, comm.Float64s{}, []float64{}, ssort.WithVerify(true))
		expectNoErrs(errs)
		for _, res := range results {
			Expect(res.Bucket).To(BeEmpty())
			Expect(res.Splitters).To(BeEmpty())
		}
		Expect(results[ssort.Root].Output).To(BeEmpty())
		Expect(results[ssort.Root].BucketSizes).To(Equal([]int64{0, 0, 0}))
	})

	It("should skip collection when not requested", func() {
		input := trand.Float64s(trand.NewRand(3), 30)
		results, errs := runSort(3, comm.Float64s{}, input, ssort.WithCollect(false))
		expectNoErrs(errs)
		Expect(results[ssort.Root].Output).To(BeNil())
		var buckets []float64
		for _, res := range results {
			buckets = append(buckets, res.Bucket...)
		}
		Expect(buckets).To(Equal(slices.Sorted(slices.Values(input))))
	})

	It("should sort int64 and string elements", func() {
		ints := trand.Int64s(trand.NewRand(11), 60, -1000, 1000)
		iresults, errs := runSort(3, comm.Int64s{}, ints, ssort.WithVerify(true))
		expectNoErrs(errs)
		Expect(iresults[ssort.Root].Output).To(Equal(slices.Sorted(slices.Values(ints))))

		strs := trand.Strings(trand.NewRand(12), 48, 6)
		sresults, errs := runSort(4, comm.Strings{}, strs, ssort.WithVerify(true))
		expectNoErrs(errs)
		Expect(sresults[ssort.Root].Output).To(Equal(slices.Sorted(slices.Values(strs))))
	})

	Describe("failures", func() {
		It("should reject a total not divisible by the number of workers, on every rank", func() {
			results, errs := runSort(4, comm.Float64s{}, make([]float64, 10))
			for rank, err := range errs {
				Expect(cmn.IsErrConfiguration(err)).To(BeTrue(), "rank %d: %v", rank, err)
				if rank != ssort.Root {
					Expect(results[rank]).To(BeNil())
				}
			}
		})

		It("should reject NaN, on every rank", func() {
			input := trand.Float64s(trand.NewRand(5), 20)
			input[7] = math.NaN() // rank 1's share
			_, errs := runSort(4, comm.Float64s{}, input)
			Expect(cmn.IsErrComparison(errs[1])).To(BeTrue(), "%v", errs[1])
			for _, rank := range []int{0, 2, 3} {
				Expect(cmn.IsErrAborted(errs[rank])).To(BeTrue(), "rank %d: %v", rank, errs[rank])
				var ea *cmn.ErrAborted
				Expect(errors.As(errs[rank], &ea)).To(BeTrue())
				Expect(ea.By()).To(Equal(1))
			}
		})

		It("should reject invalid options", func() {
			_, errs := runSort(2, comm.Float64s{}, make([]float64, 4), ssort.WithPartition("bogus"))
			for _, err := range errs {
				Expect(cmn.IsErrConfiguration(err)).To(BeTrue())
			}
		})
	})

	Describe("run history and metrics", func() {
		It("should record the run summary and per-rank metrics", func() {
			const size = 3
			var (
				db       = dbdriver.NewDBMock()
				input    = trand.Float64s(trand.NewRand(9), 300)
				trackers = make([]*stats.Prom, size)
			)
			for rank := range trackers {
				trackers[rank] = stats.NewProm(rank)
			}
			results, errs := runSortPerRank(size, comm.Float64s{}, input, func(rank int) []ssort.Option {
				return []ssort.Option{
					ssort.WithStats(trackers[rank]),
					ssort.WithHistory(db),
					ssort.WithDtype(cmn.DtypeFloat64),
					ssort.WithVerify(true),
				}
			})
			expectNoErrs(errs)

			runs, err := ssort.LoadHistory(db)
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(1))
			Expect(runs[0].UUID).To(Equal(results[ssort.Root].UUID))
			Expect(runs[0].Status).To(Equal(stats.StatusOK))
			Expect(runs[0].N).To(BeEquivalentTo(300))
			Expect(runs[0].Verified).To(BeTrue())
			Expect(runs[0].Phases).To(HaveKey(ssort.PhaseExchange))

			var sent, recv, buckets int64
			for rank, tr := range trackers {
				sent += tr.Get(stats.SentCount)
				recv += tr.Get(stats.RecvCount)
				buckets += tr.Get(stats.BucketSize)
				Expect(tr.Get(stats.InputSize)).To(BeEquivalentTo(100), "rank %d", rank)
			}
			Expect(sent).To(Equal(recv))
			Expect(buckets).To(BeEquivalentTo(300))
		})
	})
})
