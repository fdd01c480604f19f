// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Query-farm/vgi-typefixture/vgirpc"
)

const serveLongDescription = `Serve the fixture until the client disconnects or the process receives
SIGINT or SIGTERM.

Transports:
  stdio  Arrow IPC on stdin/stdout (default)
  http   POST {prefix}/{method}; prints PORT:<port> once listening
  unix   Arrow IPC on a unix socket; prints UNIX:<path> once listening`

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the fixture over vgi_rpc",
		Long:  serveLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadServeConfig(viper.GetViper())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()
			return runServe(ctx, cmd.OutOrStdout(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String(transportFlagName, viper.GetString(transportKey), "transport: stdio, http or unix")
	bindFlagToConfig(flags.Lookup(transportFlagName), transportKey)
	flags.String(addrFlagName, viper.GetString(httpAddrKey), "http listen address")
	bindFlagToConfig(flags.Lookup(addrFlagName), httpAddrKey)
	flags.String(unixPathFlagName, viper.GetString(unixPathKey), "unix socket path")
	bindFlagToConfig(flags.Lookup(unixPathFlagName), unixPathKey)
	flags.Int(compressionLevelFlagName, viper.GetInt(compressionLevelKey), "zstd level for http responses, 0 disables")
	bindFlagToConfig(flags.Lookup(compressionLevelFlagName), compressionLevelKey)
	flags.Bool(debugErrorsFlagName, viper.GetBool(debugErrorsKey), "include stack traces in error responses")
	bindFlagToConfig(flags.Lookup(debugErrorsFlagName), debugErrorsKey)
	flags.Bool(otelFlagName, viper.GetBool(otelEnabledKey), "export OpenTelemetry spans and metrics to stderr")
	bindFlagToConfig(flags.Lookup(otelFlagName), otelEnabledKey)
	flags.String(metricsAddrFlagName, viper.GetString(metricsAddrKey), "serve Prometheus metrics on this address")
	bindFlagToConfig(flags.Lookup(metricsAddrFlagName), metricsAddrKey)

	return cmd
}

// runServe serves on the configured transport until ctx is done.
// Listening transports announce their address on out.
func runServe(ctx context.Context, out io.Writer, cfg serveConfig) error {
	server, shutdown, err := buildServer(cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	slog.Info("serving", "transport", cfg.Transport, "server_id", server.ServerID())
	switch cfg.Transport {
	case transportStdio:
		server.RunStdio(ctx)
		return nil
	case transportHTTP:
		return serveHTTP(ctx, out, server, cfg)
	case transportUnix:
		return serveUnix(ctx, out, server, cfg.UnixPath)
	}
	return fmt.Errorf("unknown transport %q", cfg.Transport)
}

func serveHTTP(ctx context.Context, out io.Writer, server *vgirpc.Server, cfg serveConfig) error {
	opts := []vgirpc.HttpOption{vgirpc.WithPrefix(cfg.HTTPPrefix)}
	if cfg.RepoURL != "" {
		opts = append(opts, vgirpc.WithRepoURL(cfg.RepoURL))
	}
	handler := vgirpc.NewHttpServer(server, opts...)
	if err := handler.SetCompressionLevel(cfg.CompressionLevel); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	fmt.Fprintf(out, "PORT:%d\n", listener.Addr().(*net.TCPAddr).Port)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func serveUnix(ctx context.Context, out io.Writer, server *vgirpc.Server, path string) error {
	_ = os.Remove(path)
	listener, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("failed to listen on unix socket: %w", err)
	}
	defer os.Remove(path)
	fmt.Fprintf(out, "UNIX:%s\n", path)

	return server.ServeListener(ctx, listener)
}
