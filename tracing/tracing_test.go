//go:build oteltracing

// Package tracing offers support for distributed tracing utilizing OpenTelemetry (OTEL).
/*
 * Copyright (c) 2024-2026, NVIDIA CORPORATION. All rights reserved.
 */
package tracing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/NVIDIA/samplesort/cmn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var _ = Describe("Tracing", func() {
	const version = "v1.0"

	var (
		exporter     *tracetest.InMemoryExporter
		origExporter = newExporter

		conf = &cmn.TracingConf{
			ExporterEndpoint:   "dummy",
			Enabled:            true,
			SamplerProbability: 1.0,
		}
		expectResourceAttrs = func(attrs []attribute.KeyValue) {
			expected := map[string]string{
				"service.name": cmn.DfltTracingPrefix + "-worker",
				"version":      version,
				"rank":         "2",
			}
			matched := 0
			for _, a := range attrs {
				if value, ok := expected[string(a.Key)]; ok {
					Expect(a.Value.AsString()).To(Equal(value))
					matched++
				}
			}
			Expect(matched).To(Equal(len(expected)))
		}
	)

	BeforeEach(func() {
		exporter = tracetest.NewInMemoryExporter()
		newExporter = func(*cmn.TracingConf) (sdktrace.SpanExporter, error) { return exporter, nil }
		Init(conf, 2, version)
	})

	AfterEach(func() {
		Shutdown()
		tp = nil
		newExporter = origExporter
	})

	It("should export phase spans with error status", func() {
		_, span := StartSpan(context.Background(), "exchange", attribute.Int("rank", 2))
		EndSpan(span, errors.New("peer timed out"))
		Expect(tp.ForceFlush(context.Background())).To(Succeed())

		spans := exporter.GetSpans()
		Expect(spans).To(HaveLen(1))
		Expect(spans[0].Name).To(Equal("exchange"))
		Expect(spans[0].Status.Code).To(Equal(codes.Error))
		expectResourceAttrs(spans[0].Resource.Attributes())
	})

	It("should trace transport receive handler", func() {
		h := NewTraceableHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}), "recv")
		srv := httptest.NewServer(h)
		defer srv.Close()

		resp, err := http.Get(srv.URL)
		Expect(err).NotTo(HaveOccurred())
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		Expect(tp.ForceFlush(context.Background())).To(Succeed())

		spans := exporter.GetSpans()
		Expect(spans).To(HaveLen(1))
		Expect(spans[0].Name).To(Equal("recv"))
	})
})
