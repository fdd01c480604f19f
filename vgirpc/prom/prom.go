// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package vgiprom exposes vgi-rpc dispatch metrics for Prometheus scraping.
//
// Usage:
//
//	hook, err := vgiprom.NewPrometheusHook(vgiprom.PrometheusOptions{})
//	server.SetDispatchHook(hook)
//	http.Handle("/metrics", hook.Handler())
package vgiprom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Query-farm/vgi-typefixture/vgirpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Compile-time interface check.
var _ vgirpc.DispatchHook = (*PrometheusHook)(nil)

// PrometheusHook records request counts, error types, payload sizes and
// latency for every dispatched call in its own registry.
type PrometheusHook struct {
	registry *prometheus.Registry
	opts     PrometheusOptions
	server   *http.Server

	requestsTotal   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	bytesTotal      *prometheus.CounterVec
	durationSeconds *prometheus.HistogramVec

	mu     sync.Mutex
	closed bool
}

// PrometheusOptions configures the Prometheus hook behavior.
type PrometheusOptions struct {
	// Namespace prefixes every metric name (default: "vgirpc").
	Namespace string

	// Path for the metrics endpoint when served by Serve (default: "/metrics").
	Path string

	// ReadTimeout for the metrics HTTP server (default: 5s).
	ReadTimeout time.Duration

	// WriteTimeout for the metrics HTTP server (default: 10s).
	WriteTimeout time.Duration
}

// NewPrometheusHook creates a hook with all metrics registered.
func NewPrometheusHook(opts PrometheusOptions) (*PrometheusHook, error) {
	if opts.Namespace == "" {
		opts.Namespace = "vgirpc"
	}
	if opts.Path == "" {
		opts.Path = "/metrics"
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 5 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}

	h := &PrometheusHook{
		registry: prometheus.NewRegistry(),
		opts:     opts,
	}
	if err := h.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	return h, nil
}

// initMetrics creates and registers all Prometheus metrics.
func (h *PrometheusHook) initMetrics() error {
	h.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: h.opts.Namespace,
			Name:      "requests_total",
			Help:      "Total number of RPC requests dispatched",
		},
		[]string{"method", "status"},
	)

	h.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: h.opts.Namespace,
			Name:      "errors_total",
			Help:      "Total number of RPC requests that returned an error",
		},
		[]string{"method", "error_type"},
	)

	h.bytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: h.opts.Namespace,
			Name:      "batch_bytes_total",
			Help:      "Arrow buffer bytes moved by RPC requests",
		},
		[]string{"method", "direction"},
	)

	h.durationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: h.opts.Namespace,
			Name:      "request_duration_seconds",
			Help:      "RPC dispatch duration distribution in seconds",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.1, 1.0},
		},
		[]string{"method"},
	)

	collectors := []prometheus.Collector{
		h.requestsTotal,
		h.errorsTotal,
		h.bytesTotal,
		h.durationSeconds,
	}
	for _, c := range collectors {
		if err := h.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Registry returns the hook's private registry.
func (h *PrometheusHook) Registry() *prometheus.Registry {
	return h.registry
}

// Handler returns an http.Handler serving the hook's metrics.
func (h *PrometheusHook) Handler() http.Handler {
	return promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Serve starts a metrics HTTP server on addr in the background.
// It runs until Close is called.
func (h *PrometheusHook) Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle(h.opts.Path, h.Handler())

	h.mu.Lock()
	h.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  h.opts.ReadTimeout,
		WriteTimeout: h.opts.WriteTimeout,
	}
	srv := h.server
	h.mu.Unlock()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("prometheus: metrics server error", "addr", addr, "err", err)
		}
	}()
}

type startToken struct {
	start time.Time
}

// OnDispatchStart notes the start time of the call.
func (h *PrometheusHook) OnDispatchStart(ctx context.Context, _ vgirpc.DispatchInfo) (context.Context, vgirpc.HookToken) {
	return ctx, startToken{start: time.Now()}
}

// OnDispatchEnd records the outcome of the call.
func (h *PrometheusHook) OnDispatchEnd(_ context.Context, token vgirpc.HookToken, info vgirpc.DispatchInfo, stats *vgirpc.CallStatistics, err error) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
		errType := fmt.Sprintf("%T", err)
		var rpcErr *vgirpc.RpcError
		if errors.As(err, &rpcErr) {
			errType = rpcErr.Type
		}
		h.errorsTotal.WithLabelValues(info.Method, errType).Inc()
	}
	h.requestsTotal.WithLabelValues(info.Method, status).Inc()

	if stats != nil {
		h.bytesTotal.WithLabelValues(info.Method, "in").Add(float64(stats.InputBytes))
		h.bytesTotal.WithLabelValues(info.Method, "out").Add(float64(stats.OutputBytes))
	}
	if st, ok := token.(startToken); ok {
		h.durationSeconds.WithLabelValues(info.Method).Observe(time.Since(st.start).Seconds())
	}
}

// Close stops recording and shuts down the metrics server if one was started.
func (h *PrometheusHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), h.opts.ReadTimeout)
		defer cancel()
		return h.server.Shutdown(ctx)
	}
	return nil
}
