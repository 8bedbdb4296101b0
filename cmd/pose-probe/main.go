// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// pose-probe connects to a pose relay the way a controller does: it
// performs the clock-sync handshake, sends keepalives, and prints the
// telemetry it receives. Use it to check a relay without the real
// controller attached.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/poserelay/lib/logging"
	"github.com/bureau-foundation/poserelay/lib/pose"
	"github.com/bureau-foundation/poserelay/lib/process"
	"github.com/bureau-foundation/poserelay/lib/relayclient"
	"github.com/bureau-foundation/poserelay/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

type options struct {
	address   string
	count     int
	keepalive time.Duration
	sync      bool
	ping      bool
}

func run() error {
	var (
		opts        options
		logLevel    string
		showVersion bool
	)
	flagSet := pflag.NewFlagSet("pose-probe", pflag.ContinueOnError)
	flagSet.StringVar(&opts.address, "address", "127.0.0.1:5800", "relay host:port")
	flagSet.IntVar(&opts.count, "count", 0, "exit after this many telemetry lines (0: run until interrupted)")
	flagSet.DurationVar(&opts.keepalive, "keepalive", time.Second, "keepalive interval (0 disables keepalives)")
	flagSet.BoolVar(&opts.sync, "sync", true, "perform the clock-sync handshake on connect")
	flagSet.BoolVar(&opts.ping, "ping", false, "ping the relay after connecting")
	flagSet.StringVar(&logLevel, "log-level", "info", "debug, info, warn, or error")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if showVersion {
		version.Print("pose-probe")
		return nil
	}

	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	handler, err := logging.NewHandler(os.Stderr, "auto", term.IsTerminal(int(os.Stderr.Fd())), level)
	if err != nil {
		return err
	}
	logger := slog.New(handler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = probe(ctx, opts, os.Stdout, logger)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// probe runs one controller session against the relay, writing each
// telemetry line to stdout.
func probe(ctx context.Context, opts options, stdout io.Writer, logger *slog.Logger) error {
	client, err := relayclient.Dial(ctx, opts.address)
	if err != nil {
		return err
	}
	defer client.Close()
	logger.Info("connected", "relay", opts.address, "local_addr", client.LocalAddr().String())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keepaliveErr := make(chan error, 1)
	if opts.keepalive > 0 {
		go func() { keepaliveErr <- client.KeepAlive(ctx, opts.keepalive) }()
	}

	printed := 0
	emit := func(line string) bool {
		fmt.Fprintln(stdout, line)
		printed++
		return opts.count > 0 && printed >= opts.count
	}

	if opts.sync {
		result, err := client.Sync(ctx)
		if err != nil {
			return fmt.Errorf("clock sync: %w", err)
		}
		logger.Info("clock sync sent", "round_trip", result.RoundTrip())
		for _, telemetry := range result.Skipped {
			if emit(formatTelemetry(telemetry)) {
				return nil
			}
		}
	}
	if opts.ping {
		if err := client.SendPing(); err != nil {
			return err
		}
	}

	for {
		message, err := client.Next(ctx)
		if err != nil {
			select {
			case keepaliveFailure := <-keepaliveErr:
				return fmt.Errorf("keepalive: %w", keepaliveFailure)
			default:
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("relay closed the connection")
			}
			return err
		}
		switch message.Kind {
		case relayclient.KindTelemetry:
			if emit(message.Line) {
				return nil
			}
		case relayclient.KindPing:
			logger.Info("ping answered")
		case relayclient.KindAck:
			logger.Debug("unexpected sync ack")
		}
	}
}

// formatTelemetry renders t the way the relay sends it, without the
// newline.
func formatTelemetry(t pose.Telemetry) string {
	return strings.TrimSuffix(string(pose.AppendLine(nil, t)), "\n")
}
