// Package stats provides methods and functionality to register, track, log,
// and export metrics that, for the most part, include "counter" and "latency" kinds.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package stats

import (
	"net/http"
	"strconv"
	"strings"
	ratomic "sync/atomic"
	"time"

	"github.com/NVIDIA/samplesort/cmn/debug"
	"github.com/NVIDIA/samplesort/cmn/nlog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ssort"

type (
	// one "fat" interface for all kinds; illegal combinations assert
	iprom interface {
		add(parent *statsValue, val int64)
		addWith(parent *statsValue, label string, val int64)
		set(parent *statsValue, val int64)
		observe(parent *statsValue, label string, val float64)
	}

	counter      struct{ prometheus.Counter }
	counterVec   struct{ *prometheus.CounterVec }
	gauge        struct{ prometheus.Gauge }
	histogramVec struct{ *prometheus.HistogramVec }

	statsValue struct {
		iprom
		Value      int64
		numSamples int64
	}

	// Prom is a per-rank Tracker backed by Prometheus collectors
	Prom struct {
		reg     *prometheus.Registry
		tracker map[string]*statsValue
		rank    int
	}
)

// interface guard
var (
	_ iprom   = (*counter)(nil)
	_ iprom   = (*counterVec)(nil)
	_ iprom   = (*gauge)(nil)
	_ iprom   = (*histogramVec)(nil)
	_ Tracker = (*Prom)(nil)
)

func (v counter) add(parent *statsValue, val int64) {
	ratomic.AddInt64(&parent.Value, val)
	v.Add(float64(val))
}

func (v counterVec) addWith(parent *statsValue, label string, val int64) {
	ratomic.AddInt64(&parent.Value, val)
	v.WithLabelValues(label).Add(float64(val))
}

func (v gauge) set(parent *statsValue, val int64) {
	ratomic.StoreInt64(&parent.Value, val)
	v.Set(float64(val))
}

func (h histogramVec) observe(parent *statsValue, label string, val float64) {
	ratomic.AddInt64(&parent.numSamples, 1)
	ratomic.AddInt64(&parent.Value, int64(val*float64(time.Second)))
	h.WithLabelValues(label).Observe(val)
}

// illegal impl. placeholders

func (counter) addWith(*statsValue, string, int64)      { debug.Assert(false) }
func (counter) set(*statsValue, int64)                  { debug.Assert(false) }
func (counter) observe(*statsValue, string, float64)    { debug.Assert(false) }
func (counterVec) add(*statsValue, int64)               { debug.Assert(false) }
func (counterVec) set(*statsValue, int64)               { debug.Assert(false) }
func (counterVec) observe(*statsValue, string, float64) { debug.Assert(false) }
func (gauge) add(*statsValue, int64)                    { debug.Assert(false) }
func (gauge) addWith(*statsValue, string, int64)        { debug.Assert(false) }
func (gauge) observe(*statsValue, string, float64)      { debug.Assert(false) }
func (histogramVec) add(*statsValue, int64)             { debug.Assert(false) }
func (histogramVec) addWith(*statsValue, string, int64) { debug.Assert(false) }
func (histogramVec) set(*statsValue, int64)             { debug.Assert(false) }

//
// Prom
//

// NewProm creates a private registry with this rank's metrics
// (a process running several ranks keeps them apart by the `rank` label)
func NewProm(rank int) *Prom {
	s := &Prom{
		reg:     prometheus.NewRegistry(),
		tracker: make(map[string]*statsValue, 16),
		rank:    rank,
	}
	s.regCounter(SentCount, "number of elements sent to other ranks")
	s.regCounter(RecvCount, "number of elements received from other ranks")
	s.regCounter(OutMsgCount, "number of transmitted messages")
	s.regCounter(OutMsgSize, "transmitted payload size in bytes (before compression)")
	s.regCounter(InMsgCount, "number of received messages")
	s.regCounter(InMsgSize, "received payload size in bytes (after decompression)")
	s.regCounterVec(RunCount, "number of sort runs", "status")
	s.regGauge(BucketSize, "number of elements in this rank's final bucket")
	s.regGauge(InputSize, "number of elements in this rank's share")
	s.regHistogramVec(PhaseLatency, "sort phase latency in seconds", "phase")
	return s
}

func promName(name string) string {
	name = strings.TrimSuffix(name, ".ns")
	return strings.ReplaceAll(name, ".", "_")
}

func (s *Prom) opts(name string) (string, prometheus.Labels) {
	return promName(name), prometheus.Labels{"rank": strconv.Itoa(s.rank)}
}

func (s *Prom) regCounter(name, help string) {
	fqn, labs := s.opts(name)
	c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: fqn, Help: help, ConstLabels: labs})
	s.reg.MustRegister(c)
	s.tracker[name] = &statsValue{iprom: counter{c}}
}

func (s *Prom) regCounterVec(name, help, label string) {
	fqn, labs := s.opts(name)
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: fqn, Help: help, ConstLabels: labs},
		[]string{label})
	s.reg.MustRegister(c)
	s.tracker[name] = &statsValue{iprom: counterVec{c}}
}

func (s *Prom) regGauge(name, help string) {
	fqn, labs := s.opts(name)
	g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: fqn, Help: help, ConstLabels: labs})
	s.reg.MustRegister(g)
	s.tracker[name] = &statsValue{iprom: gauge{g}}
}

func (s *Prom) regHistogramVec(name, help, label string) {
	fqn, labs := s.opts(name)
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Name:        fqn + "_seconds",
		Help:        help,
		ConstLabels: labs,
		Buckets:     prometheus.ExponentialBuckets(0.0001, 4, 10), // 100us ... ~26s
	}, []string{label})
	s.reg.MustRegister(h)
	s.tracker[name] = &statsValue{iprom: histogramVec{h}}
}

func (s *Prom) get(name string) *statsValue {
	v, ok := s.tracker[name]
	debug.Assertf(ok, "invalid metric name %q", name)
	return v
}

func (s *Prom) Inc(name string)                { v := s.get(name); v.add(v, 1) }
func (s *Prom) Add(name string, val int64)     { v := s.get(name); v.add(v, val) }
func (s *Prom) IncWith(name, label string)     { v := s.get(name); v.addWith(v, label, 1) }
func (s *Prom) Set(name string, val int64)     { v := s.get(name); v.set(v, val) }
func (s *Prom) Get(name string) int64          { return ratomic.LoadInt64(&s.get(name).Value) }
func (s *Prom) Registry() *prometheus.Registry { return s.reg }
func (s *Prom) Handler() http.Handler          { return promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}) }

func (s *Prom) Observe(name, label string, d time.Duration) {
	v := s.get(name)
	v.observe(v, label, d.Seconds())
}

// Log writes non-zero counters (one line)
func (s *Prom) Log(prefix string) {
	var sb strings.Builder
	for _, name := range []string{InputSize, SentCount, RecvCount, BucketSize, OutMsgCount, InMsgCount} {
		if val := s.Get(name); val != 0 {
			sb.WriteString(" " + name + "=" + strconv.FormatInt(val, 10))
		}
	}
	if sb.Len() > 0 {
		nlog.Infoln(prefix + sb.String())
	}
}
