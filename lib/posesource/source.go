// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package posesource

import (
	"context"
	"fmt"
	"time"

	"github.com/bureau-foundation/poserelay/lib/clock"
	"github.com/bureau-foundation/poserelay/lib/config"
	"github.com/bureau-foundation/poserelay/lib/pose"
)

// Source yields pose records.
type Source interface {
	// Next blocks until the next record is available or ctx is done.
	// An exhausted source returns io.EOF.
	Next(ctx context.Context) (pose.Record, error)

	// Close releases the source's resources.
	Close() error
}

// Func adapts a function to a Source with a no-op Close.
type Func func(ctx context.Context) (pose.Record, error)

func (f Func) Next(ctx context.Context) (pose.Record, error) { return f(ctx) }

func (f Func) Close() error { return nil }

// New builds the source described by cfg.
func New(cfg config.SourceConfig, clk clock.Clock) (Source, error) {
	switch cfg.Kind {
	case config.SourceSynthetic:
		return NewSynthetic(clk, cfg.RateHz)
	case config.SourceReplay:
		return OpenReplay(clk, cfg.TracePath, cfg.RateHz, cfg.Looping())
	}
	return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
}

// interval converts a sample rate to a tick period.
func interval(rateHz float64) (time.Duration, error) {
	if rateHz <= 0 {
		return 0, fmt.Errorf("sample rate must be positive, got %v", rateHz)
	}
	period := time.Duration(float64(time.Second) / rateHz)
	if period <= 0 {
		return 0, fmt.Errorf("sample rate %v Hz is too high", rateHz)
	}
	return period, nil
}

// pacer releases one sample per tick. The first sample is released
// immediately; the ticker starts with it.
type pacer struct {
	clock    clock.Clock
	interval time.Duration
	ticker   *clock.Ticker
}

func (p *pacer) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.ticker == nil {
		p.ticker = p.clock.NewTicker(p.interval)
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ticker.C:
		return nil
	}
}

func (p *pacer) stop() {
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
	}
}
