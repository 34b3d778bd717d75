// Package ssort implements distributed sample sort: every rank sorts its share,
// contributes a regular sample, and the agreed-upon splitters drive an all-to-all
// repartitioning into globally ordered buckets.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package ssort_test

import (
	"math"
	"slices"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/NVIDIA/samplesort/comm"
	"github.com/NVIDIA/samplesort/ssort"
	"github.com/NVIDIA/samplesort/tools/trand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Phases", func() {
	Describe("LocalSort", func() {
		It("should sort ascending", func() {
			data := []float64{3, -1, 2.5, 0, 2.5}
			Expect(ssort.LocalSort(0, ssort.PhaseSort, data)).To(Succeed())
			Expect(data).To(Equal([]float64{-1, 0, 2.5, 2.5, 3}))
		})

		It("should report the first NaN and leave the data alone", func() {
			data := []float64{3, math.NaN(), 1, math.NaN()}
			err := ssort.LocalSort(2, ssort.PhaseSort, data)
			Expect(cmn.IsErrComparison(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("index 1"))
			Expect(data[0]).To(Equal(3.0))
			Expect(data[2]).To(Equal(1.0))
		})
	})

	Describe("SampleIndices", func() {
		DescribeTable("should spread P indices over the share, rounded to nearest",
			func(n, p int, expected []int) {
				Expect(ssort.SampleIndices(n, p)).To(Equal(expected))
			},
			Entry("n=5, P=4", 5, 4, []int{0, 1, 3, 4}),
			Entry("n=10, P=4", 10, 4, []int{0, 3, 6, 9}),
			Entry("n=100, P=3", 100, 3, []int{0, 50, 99}),
			Entry("n < P: duplicates", 2, 4, []int{0, 0, 1, 1}),
			Entry("P=1", 7, 1, []int{0}),
			Entry("empty share", 0, 4, []int(nil)),
		)
	})

	Describe("ChooseSplitters", func() {
		It("should take every P-th sample starting at P", func() {
			sorted := []int64{0, 1, 2, 3, 4, 5, 6, 7, 8}
			Expect(ssort.ChooseSplitters(sorted, 3)).To(Equal([]int64{3, 6}))
		})
		It("should produce none for a single worker or no data", func() {
			Expect(ssort.ChooseSplitters([]int64{5}, 1)).To(BeEmpty())
			Expect(ssort.ChooseSplitters([]int64{}, 4)).To(BeEmpty())
		})
	})

	Describe("splitter broadcast payload", func() {
		cx := ssort.Context{Rank: 1, Size: 4}
		values := []float64{0.25, 0.5, 0.75}

		It("should round-trip with a matching digest", func() {
			sp, err := ssort.DecodeSplitters(cx, 20, comm.Float64s{}, ssort.EncodeSplitters(comm.Float64s{}, values))
			Expect(err).NotTo(HaveOccurred())
			Expect(sp.Values()).To(Equal(values))
			Expect(sp.Digest()).NotTo(BeZero())
		})

		It("should detect a corrupted payload", func() {
			b := ssort.EncodeSplitters(comm.Float64s{}, values)
			b[len(b)-1] ^= 0x01
			_, err := ssort.DecodeSplitters(cx, 20, comm.Float64s{}, b)
			Expect(cmn.IsErrConsistency(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("digest"))
		})

		It("should detect a wrong number of splitters", func() {
			b := ssort.EncodeSplitters(comm.Float64s{}, values[:2])
			_, err := ssort.DecodeSplitters(cx, 20, comm.Float64s{}, b)
			Expect(cmn.IsErrConsistency(err)).To(BeTrue())
		})

		It("should detect splitters out of order", func() {
			b := ssort.EncodeSplitters(comm.Float64s{}, []float64{0.5, 0.25, 0.75})
			_, err := ssort.DecodeSplitters(cx, 20, comm.Float64s{}, b)
			Expect(cmn.IsErrConsistency(err)).To(BeTrue())
		})

		It("should detect truncation", func() {
			_, err := ssort.DecodeSplitters(cx, 20, comm.Float64s{}, []byte{1, 2, 3})
			Expect(cmn.IsErrConsistency(err)).To(BeTrue())
		})
	})

	Describe("bucket assignment", func() {
		It("should send ties to the higher bucket", func() {
			sp, err := ssort.DecodeSplitters(ssort.Context{Rank: 0, Size: 3}, 9, comm.Float64s{},
				ssort.EncodeSplitters(comm.Float64s{}, []float64{1, 2}))
			Expect(err).NotTo(HaveOccurred())
			Expect(sp.Bucket(0.5)).To(Equal(0))
			Expect(sp.Bucket(1)).To(Equal(1))
			Expect(sp.Bucket(1.5)).To(Equal(1))
			Expect(sp.Bucket(2)).To(Equal(2))
			Expect(sp.Bucket(math.Inf(1))).To(Equal(2))
		})

		It("should agree between linear scan and binary search", func() {
			var (
				r        = trand.NewRand(17)
				data     = trand.Int64s(r, 1000, 0, 50) // lots of duplicates
				splitter = []int64{5, 5, 20, 33, 49}
				size     = len(splitter) + 1
			)
			slices.Sort(data)
			sp, err := ssort.DecodeSplitters(ssort.Context{Rank: 0, Size: size}, 1000, comm.Int64s{},
				ssort.EncodeSplitters(comm.Int64s{}, splitter))
			Expect(err).NotTo(HaveOccurred())

			idsScan, countsScan := ssort.PartitionScan(data, splitter, size)
			idsSearch, countsSearch, err := ssort.PartitionSearch(0, data, sp, size)
			Expect(err).NotTo(HaveOccurred())
			Expect(idsScan).To(Equal(idsSearch))
			Expect(countsScan).To(Equal(countsSearch))
			Expect(countsScan[1]).To(BeZero()) // empty bucket between equal splitters

			var sum int64
			for _, n := range countsScan {
				sum += n
			}
			Expect(sum).To(BeEquivalentTo(len(data)))
		})
	})

	Describe("SendBuffer", func() {
		It("should group by bucket and keep order within each bucket", func() {
			var (
				data   = []string{"d", "a", "e", "b", "f", "c"}
				ids    = []int32{1, 0, 2, 0, 2, 1}
				counts = []int64{2, 2, 2}
			)
			buf, displs := ssort.SendBuffer(data, ids, counts)
			Expect(buf).To(Equal([]string{"a", "b", "d", "c", "e", "f"}))
			Expect(displs).To(Equal([]int64{0, 2, 4}))
		})
	})

	Describe("Verify", func() {
		It("should point at the first out-of-order element", func() {
			Expect(ssort.Verify(0, []int64{1, 2, 2, 3})).To(Succeed())
			err := ssort.Verify(0, []int64{1, 3, 2})
			Expect(cmn.IsErrConsistency(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("index 2"))
		})
	})
})
