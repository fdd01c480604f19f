// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Query-farm/vgi-typefixture/service"
	"github.com/Query-farm/vgi-typefixture/vgirpc"
	vgiotel "github.com/Query-farm/vgi-typefixture/vgirpc/otel"
	vgiprom "github.com/Query-farm/vgi-typefixture/vgirpc/prom"
)

const shutdownTimeout = 5 * time.Second

// newFixtureServer returns a server with every fixture method registered.
func newFixtureServer(cfg serveConfig) *vgirpc.Server {
	server := vgirpc.NewServer()
	id := cfg.ServerID
	if id == "" {
		id = uuid.NewString()
	}
	server.SetServerID(id)
	server.SetServiceName(cfg.ServiceName)
	server.SetDebugErrors(cfg.DebugErrors)
	service.RegisterMethods(server)
	return server
}

// buildServer adds the configured observability hooks to a fixture server.
// The returned func flushes and stops them.
func buildServer(cfg serveConfig) (*vgirpc.Server, func(), error) {
	server := newFixtureServer(cfg)

	var hooks vgirpc.MultiHook
	var closers []func(context.Context) error
	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, c := range closers {
			if err := c(ctx); err != nil {
				slog.Warn("observability shutdown", "err", err)
			}
		}
	}

	if cfg.Otel {
		providers, err := vgiotel.NewStdoutProviders(vgiotel.StdoutConfig{
			PrettyPrint:    cfg.OtelPretty,
			MetricInterval: cfg.OtelInterval,
		})
		if err != nil {
			return nil, func() {}, fmt.Errorf("otel exporters: %w", err)
		}
		hooks = append(hooks, vgiotel.NewHook(server, providers.Config()))
		closers = append(closers, providers.Shutdown)
	}

	if cfg.MetricsAddr != "" {
		prom, err := vgiprom.NewPrometheusHook(vgiprom.PrometheusOptions{Path: cfg.MetricsPath})
		if err != nil {
			shutdown()
			return nil, func() {}, fmt.Errorf("prometheus hook: %w", err)
		}
		prom.Serve(cfg.MetricsAddr)
		hooks = append(hooks, prom)
		closers = append(closers, func(context.Context) error { return prom.Close() })
		slog.Info("metrics endpoint", "addr", cfg.MetricsAddr, "path", cfg.MetricsPath)
	}

	switch len(hooks) {
	case 0:
	case 1:
		server.SetDispatchHook(hooks[0])
	default:
		server.SetDispatchHook(hooks)
	}
	return server, shutdown, nil
}
