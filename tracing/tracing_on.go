//go:build oteltracing

// Package tracing offers support for distributed tracing utilizing OpenTelemetry (OTEL).
/*
 * Copyright (c) 2024-2026, NVIDIA CORPORATION. All rights reserved.
 */
package tracing

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/NVIDIA/samplesort/cmn"
	"github.com/NVIDIA/samplesort/cmn/cos"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/NVIDIA/samplesort"

var tp *sdktrace.TracerProvider

// (var for tests)
var newExporter = func(conf *cmn.TracingConf) (sdktrace.SpanExporter, error) {
	options := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(conf.ExporterEndpoint),
		otlptracegrpc.WithRetry(otlptracegrpc.RetryConfig{Enabled: true}),
	}
	if conf.SkipVerify {
		options = append(options, otlptracegrpc.WithInsecure())
	}
	return otlptracegrpc.New(context.Background(), options...)
}

// newResource returns a resource describing this rank
func newResource(conf *cmn.TracingConf, rank int, version string) *resource.Resource {
	servicePrefix := strings.TrimSuffix(conf.ServiceNamePrefix, "-")
	if servicePrefix == "" {
		servicePrefix = cmn.DfltTracingPrefix
	}
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(servicePrefix + "-worker"),
		attribute.String("version", version),
		attribute.String("rank", strconv.Itoa(rank)),
	}
	for k, v := range conf.ExtraAttributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	r, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, attrs...),
	)
	return r
}

func IsEnabled() bool { return tp != nil }

func Init(conf *cmn.TracingConf, rank int, version string) {
	if conf == nil || !conf.Enabled {
		return
	}
	cos.AssertMsg(conf.ExporterEndpoint != "", "exporter endpoint can't be empty")
	exp, err := newExporter(conf)
	cos.AssertNoErr(err)

	tp = sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(conf.SamplerProbability))),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(newResource(conf, rank, version)),
	)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
	otel.SetTracerProvider(tp)
}

func Shutdown() {
	if tp == nil {
		return
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		cos.ExitLog(err)
	}
}

// StartSpan starts a span named after a sort phase or collective
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records the error (if any) and ends the span
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func NewTraceableHandler(handler http.Handler, operation string) http.Handler {
	return otelhttp.NewHandler(handler, operation)
}
