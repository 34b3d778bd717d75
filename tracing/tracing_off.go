//go:build !oteltracing

// Package tracing offers support for distributed tracing utilizing OpenTelemetry (OTEL).
/*
 * Copyright (c) 2024-2026, NVIDIA CORPORATION. All rights reserved.
 */
package tracing

import (
	"context"
	"net/http"

	"github.com/NVIDIA/samplesort/cmn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func IsEnabled() bool { return false }

func Init(*cmn.TracingConf, int, string) {}

func Shutdown() {}

func StartSpan(ctx context.Context, _ string, _ ...attribute.KeyValue) (context.Context, trace.Span) {
	return ctx, trace.SpanFromContext(ctx)
}

func EndSpan(trace.Span, error) {}

func NewTraceableHandler(handler http.Handler, _ string) http.Handler { return handler }
