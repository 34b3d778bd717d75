// Package stats provides methods and functionality to register, track, log,
// and export metrics that, for the most part, include "counter" and "latency" kinds.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package stats_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NVIDIA/samplesort/stats"
	"github.com/NVIDIA/samplesort/tools/tassert"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPromTracker(t *testing.T) {
	s := stats.NewProm(3)
	s.Add(stats.SentCount, 40)
	s.Add(stats.SentCount, 2)
	s.Set(stats.BucketSize, 17)
	s.IncWith(stats.RunCount, stats.StatusOK)
	s.Observe(stats.PhaseLatency, "exchange", 5*time.Millisecond)

	tassert.Errorf(t, s.Get(stats.SentCount) == 42, "sent: expected 42, got %d", s.Get(stats.SentCount))
	tassert.Errorf(t, s.Get(stats.BucketSize) == 17, "bucket: expected 17, got %d", s.Get(stats.BucketSize))

	expected := `
# HELP ssort_exch_sent_n number of elements sent to other ranks
# TYPE ssort_exch_sent_n counter
ssort_exch_sent_n{rank="3"} 42
`
	err := testutil.GatherAndCompare(s.Registry(), strings.NewReader(expected), "ssort_exch_sent_n")
	tassert.CheckError(t, err)

	n, err := testutil.GatherAndCount(s.Registry(), "ssort_phase_seconds", "ssort_run_n")
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, n == 2, "expected 2 series, got %d", n)
}

func TestPromHandler(t *testing.T) {
	s := stats.NewProm(0)
	s.Inc(stats.InMsgCount)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	tassert.CheckFatal(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, strings.Contains(string(b), `ssort_stream_in_n{rank="0"} 1`), "unexpected exposition:\n%s", b)
}
