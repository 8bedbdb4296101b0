// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package posesource

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/poserelay/lib/clock"
	"github.com/bureau-foundation/poserelay/lib/pose"
	"github.com/bureau-foundation/poserelay/lib/posetrace"
)

// ErrEmptyTrace is returned when a replay has nothing to play.
var ErrEmptyTrace = errors.New("trace contains no records")

// Replay plays a fixed sequence of records. Each record is restamped
// with the time it is released.
type Replay struct {
	pacer   pacer
	records []pose.Record
	loop    bool
	index   int
}

// NewReplay returns a source replaying records at rateHz. With loop
// set it restarts at the first record after the last; otherwise Next
// returns io.EOF once the records are exhausted.
func NewReplay(clk clock.Clock, records []pose.Record, rateHz float64, loop bool) (*Replay, error) {
	if len(records) == 0 {
		return nil, ErrEmptyTrace
	}
	period, err := interval(rateHz)
	if err != nil {
		return nil, err
	}
	return &Replay{
		pacer:   pacer{clock: clk, interval: period},
		records: records,
		loop:    loop,
	}, nil
}

// OpenReplay loads the trace at path and replays it. A zero rateHz uses
// the rate recorded in the trace header. The whole trace is read and its
// checksum verified before the first record is released.
func OpenReplay(clk clock.Clock, path string, rateHz float64, loop bool) (*Replay, error) {
	header, records, err := posetrace.ReadAll(path)
	if err != nil {
		return nil, fmt.Errorf("loading trace %s: %w", path, err)
	}
	if rateHz == 0 {
		rateHz = header.RateHz
	}
	replay, err := NewReplay(clk, records, rateHz, loop)
	if err != nil {
		return nil, fmt.Errorf("trace %s: %w", path, err)
	}
	return replay, nil
}

// Next waits for the next tick and returns the next record.
func (r *Replay) Next(ctx context.Context) (pose.Record, error) {
	if r.index >= len(r.records) {
		if !r.loop {
			return pose.Record{}, io.EOF
		}
		r.index = 0
	}
	if err := r.pacer.wait(ctx); err != nil {
		return pose.Record{}, err
	}
	record := r.records[r.index]
	record.Timestamp = r.pacer.clock.Now()
	r.index++
	return record, nil
}

// Len returns the number of records in one pass.
func (r *Replay) Len() int { return len(r.records) }

// Close stops the pacing ticker.
func (r *Replay) Close() error {
	r.pacer.stop()
	return nil
}
