// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vgiotel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// StdoutConfig configures the stdout span and metric exporters.
type StdoutConfig struct {
	// Writer receives exported spans and metrics. Defaults to os.Stderr,
	// since stdout may carry the RPC stream.
	Writer io.Writer
	// PrettyPrint indents the exported JSON.
	PrettyPrint bool
	// MetricInterval is the metric export period. Defaults to 30s.
	MetricInterval time.Duration
}

// Providers bundles SDK providers wired to exporters.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
}

// Config returns an OtelConfig using these providers and W3C trace context.
func (p *Providers) Config() OtelConfig {
	cfg := DefaultConfig()
	cfg.TracerProvider = p.TracerProvider
	cfg.MeterProvider = p.MeterProvider
	cfg.Propagator = propagation.TraceContext{}
	return cfg
}

// Shutdown flushes and stops both providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(p.TracerProvider.Shutdown(ctx), p.MeterProvider.Shutdown(ctx))
}

// NewStdoutProviders builds tracer and meter providers that write JSON to
// cfg.Writer.
func NewStdoutProviders(cfg StdoutConfig) (*Providers, error) {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	if cfg.MetricInterval == 0 {
		cfg.MetricInterval = 30 * time.Second
	}

	traceOpts := []stdouttrace.Option{stdouttrace.WithWriter(cfg.Writer)}
	metricOpts := []stdoutmetric.Option{stdoutmetric.WithWriter(cfg.Writer)}
	if cfg.PrettyPrint {
		traceOpts = append(traceOpts, stdouttrace.WithPrettyPrint())
		metricOpts = append(metricOpts, stdoutmetric.WithPrettyPrint())
	}

	traceExp, err := stdouttrace.New(traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("stdout trace exporter: %w", err)
	}
	metricExp, err := stdoutmetric.New(metricOpts...)
	if err != nil {
		return nil, fmt.Errorf("stdout metric exporter: %w", err)
	}

	return &Providers{
		TracerProvider: sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExp)),
		MeterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(cfg.MetricInterval)),
		)),
	}, nil
}
