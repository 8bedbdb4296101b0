// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// pose-relay streams tracking-camera pose telemetry to a single
// controller over TCP.
//
// The relay listens on 0.0.0.0:5800 by default and serves one
// controller at a time: every Nth pose record becomes a
// "P <x> <y> <yaw> <tracker> <mapper>" line, the controller's
// clock-sync and ping messages are answered, and a controller that
// stops sending keepalives is disconnected so the next one can
// connect.
//
// Configuration comes from the file named by --config or
// POSE_RELAY_CONFIG; flags given on the command line override it.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/poserelay/lib/clock"
	"github.com/bureau-foundation/poserelay/lib/config"
	"github.com/bureau-foundation/poserelay/lib/logging"
	"github.com/bureau-foundation/poserelay/lib/pose"
	"github.com/bureau-foundation/poserelay/lib/posesource"
	"github.com/bureau-foundation/poserelay/lib/process"
	"github.com/bureau-foundation/poserelay/lib/version"
	"github.com/bureau-foundation/poserelay/relay"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

// flags holds the command line. Only flags the operator actually set
// override the configuration file.
type flags struct {
	set *pflag.FlagSet

	configPath       string
	listen           string
	decimation       int
	unit             string
	source           string
	tracePath        string
	metricsAddress   string
	logLevel         string
	logFormat        string
	keepaliveTimeout time.Duration
	showVersion      bool
}

func parseFlags(args []string) (*flags, error) {
	f := &flags{set: pflag.NewFlagSet("pose-relay", pflag.ContinueOnError)}
	f.set.StringVar(&f.configPath, "config", "", "configuration file (default: $"+config.EnvironmentVariable+")")
	f.set.StringVar(&f.listen, "listen", relay.DefaultAddress, "IPv4 host:port to accept the controller on")
	f.set.IntVar(&f.decimation, "decimation", relay.DefaultDecimation, "send one of every N pose records")
	f.set.StringVar(&f.unit, "unit", string(pose.Feet), "linear unit: feet, inches, or meters")
	f.set.StringVar(&f.source, "source", config.SourceSynthetic, "pose source: synthetic or replay")
	f.set.StringVar(&f.tracePath, "trace", "", "trace file to replay (implies --source=replay)")
	f.set.StringVar(&f.metricsAddress, "metrics-address", "", "serve Prometheus metrics on this host:port")
	f.set.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn, or error")
	f.set.StringVar(&f.logFormat, "log-format", "auto", "json, text, or auto")
	f.set.DurationVar(&f.keepaliveTimeout, "keepalive-timeout", relay.DefaultKeepaliveTimeout,
		"disconnect a controller silent this long (0 disables)")
	f.set.BoolVar(&f.showVersion, "version", false, "print version information and exit")

	if err := f.set.Parse(args); err != nil {
		return nil, err
	}
	if f.set.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", f.set.Args())
	}
	return f, nil
}

// loadConfig resolves the configuration file and applies flag
// overrides on top of it.
func loadConfig(f *flags) (*config.Config, string, error) {
	cfg, path, err := config.Resolve(f.configPath)
	if err != nil {
		return nil, "", err
	}

	changed := f.set.Changed
	if changed("listen") {
		cfg.Listen.Address = f.listen
	}
	if changed("decimation") {
		cfg.Telemetry.Decimation = f.decimation
	}
	if changed("unit") {
		cfg.Telemetry.Unit = pose.Unit(f.unit)
	}
	if changed("source") {
		cfg.Source.Kind = f.source
	}
	if changed("trace") {
		cfg.Source.TracePath = f.tracePath
		if !changed("source") {
			cfg.Source.Kind = config.SourceReplay
		}
	}
	if changed("metrics-address") {
		cfg.Metrics.Address = f.metricsAddress
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if changed("keepalive-timeout") {
		cfg.Watchdog.KeepaliveTimeout = f.keepaliveTimeout
	}
	if cfg.Source.Kind == config.SourceSynthetic && cfg.Source.RateHz == 0 {
		cfg.Source.RateHz = config.Default().Source.RateHz
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func run() error {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if f.showVersion {
		version.Print("pose-relay")
		return nil
	}

	cfg, configPath, err := loadConfig(f)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.Real()
	source, err := posesource.New(cfg.Source, clk)
	if err != nil {
		return fmt.Errorf("creating pose source: %w", err)
	}
	defer source.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := relay.NewMetrics(registry)

	listener, err := relay.Listen(ctx, cfg.Listen.Address, relay.SessionConfig{
		Clock:        clk,
		WriteTimeout: cfg.Telemetry.WriteTimeout,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer listener.Close()

	if cfg.Metrics.Address != "" {
		metricsListener, err := listenMetrics(cfg.Metrics.Address)
		if err != nil {
			return err
		}
		metricsDone := serveMetrics(ctx, metricsListener, registry, logger)
		defer func() {
			stop()
			<-metricsDone
		}()
	}

	logger.Info("pose relay starting",
		"version", version.Info(),
		"config", configPath,
		"source", cfg.Source.Kind,
		"rate_hz", cfg.Source.RateHz,
		"metrics_address", cfg.Metrics.Address,
	)

	server := &relay.Server{
		Listener:         listener,
		Source:           source,
		Decimation:       cfg.Telemetry.Decimation,
		Unit:             cfg.Telemetry.Unit,
		KeepaliveTimeout: cfg.Watchdog.KeepaliveTimeout,
		PollInterval:     cfg.Watchdog.PollInterval,
		Logger:           logger,
		Metrics:          metrics,
	}
	if err := server.Serve(ctx); err != nil {
		return err
	}
	logger.Info("pose relay stopped")
	return nil
}
