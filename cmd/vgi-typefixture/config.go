// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configBaseName   = "vgi-typefixture"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	envPrefix = "VGI_TYPEFIXTURE"

	transportFlagName        = "transport"
	addrFlagName             = "addr"
	unixPathFlagName         = "unix-path"
	compressionLevelFlagName = "compression-level"
	debugErrorsFlagName      = "debug-errors"
	otelFlagName             = "otel"
	metricsAddrFlagName      = "metrics-addr"
	logFileFlagName          = "log-file"
	verboseFlagName          = "verbose"

	transportKey        = "transport"
	serverIDKey         = "server.id"
	serviceNameKey      = "server.name"
	debugErrorsKey      = "server.debug_errors"
	httpAddrKey         = "http.addr"
	httpPrefixKey       = "http.prefix"
	httpRepoURLKey      = "http.repo_url"
	compressionLevelKey = "http.compression_level"
	unixPathKey         = "unix.path"
	otelEnabledKey      = "otel.enabled"
	otelPrettyKey       = "otel.pretty"
	otelIntervalKey     = "otel.metric_interval"
	metricsAddrKey      = "metrics.addr"
	metricsPathKey      = "metrics.path"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultTransport        = transportStdio
	defaultServiceName      = "vgi-typefixture"
	defaultHTTPAddr         = "127.0.0.1:0"
	defaultHTTPPrefix       = "/vgi"
	defaultCompressionLevel = 3
	defaultUnixPath         = "vgi-typefixture.sock"
	defaultOtelInterval     = 30 * time.Second
	defaultMetricsPath      = "/metrics"

	defaultLogFilename   = ".vgi-typefixture.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

const (
	transportStdio = "stdio"
	transportHTTP  = "http"
	transportUnix  = "unix"
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(envKeyReplacer())

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return
		}
		fmt.Fprintf(os.Stderr, "warning: ignoring %s: %v\n", configFileName, err)
	}
}

func envKeyReplacer() *strings.Replacer {
	return strings.NewReplacer("-", "_", ".", "_")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(transportKey, defaultTransport)
	v.SetDefault(serverIDKey, "")
	v.SetDefault(serviceNameKey, defaultServiceName)
	v.SetDefault(debugErrorsKey, false)
	v.SetDefault(httpAddrKey, defaultHTTPAddr)
	v.SetDefault(httpPrefixKey, defaultHTTPPrefix)
	v.SetDefault(httpRepoURLKey, "")
	v.SetDefault(compressionLevelKey, defaultCompressionLevel)
	v.SetDefault(unixPathKey, defaultUnixPath)
	v.SetDefault(otelEnabledKey, false)
	v.SetDefault(otelPrettyKey, false)
	v.SetDefault(otelIntervalKey, defaultOtelInterval)
	v.SetDefault(metricsAddrKey, "")
	v.SetDefault(metricsPathKey, defaultMetricsPath)

	v.SetDefault(logFilenameKey, defaultLogFilename)
	v.SetDefault(logLevelKey, defaultLogLevel)
	v.SetDefault(logVerboseKey, false)
	v.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	v.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	v.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	v.SetDefault(logCompressKey, defaultLogCompress)
}

// serveConfig is the effective configuration of the serve command.
type serveConfig struct {
	Transport        string
	ServerID         string
	ServiceName      string
	DebugErrors      bool
	HTTPAddr         string
	HTTPPrefix       string
	RepoURL          string
	CompressionLevel int
	UnixPath         string
	Otel             bool
	OtelPretty       bool
	OtelInterval     time.Duration
	MetricsAddr      string
	MetricsPath      string
}

func loadServeConfig(v *viper.Viper) (serveConfig, error) {
	cfg := serveConfig{
		Transport:        strings.ToLower(strings.TrimSpace(v.GetString(transportKey))),
		ServerID:         v.GetString(serverIDKey),
		ServiceName:      v.GetString(serviceNameKey),
		DebugErrors:      v.GetBool(debugErrorsKey),
		HTTPAddr:         v.GetString(httpAddrKey),
		HTTPPrefix:       v.GetString(httpPrefixKey),
		RepoURL:          v.GetString(httpRepoURLKey),
		CompressionLevel: v.GetInt(compressionLevelKey),
		UnixPath:         v.GetString(unixPathKey),
		Otel:             v.GetBool(otelEnabledKey),
		OtelPretty:       v.GetBool(otelPrettyKey),
		OtelInterval:     v.GetDuration(otelIntervalKey),
		MetricsAddr:      v.GetString(metricsAddrKey),
		MetricsPath:      v.GetString(metricsPathKey),
	}
	return cfg, cfg.validate()
}

func (c serveConfig) validate() error {
	switch c.Transport {
	case transportStdio, transportHTTP, transportUnix:
	default:
		return fmt.Errorf("unknown transport %q (want %s, %s or %s)", c.Transport, transportStdio, transportHTTP, transportUnix)
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 22 {
		return fmt.Errorf("compression level %d out of range 0-22", c.CompressionLevel)
	}
	if c.Transport == transportUnix && strings.TrimSpace(c.UnixPath) == "" {
		return errors.New("unix transport needs a socket path")
	}
	return nil
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger points the global slog logger at a rotating log file.
// Stdout is never used since the stdio transport owns it.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}
	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose || viper.GetBool(logVerboseKey) {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
