// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package posesource

import (
	"context"
	"math"
	"time"

	"github.com/bureau-foundation/poserelay/lib/clock"
	"github.com/bureau-foundation/poserelay/lib/pose"
)

// Trajectory parameters for Synthetic.
const (
	SyntheticRadius = 1.0              // metres
	SyntheticPeriod = 20 * time.Second // one lap
)

// Synthetic drives a camera around a horizontal circle, facing along
// the direction of travel. Samples depend only on their index, so two
// Synthetic sources at the same rate produce identical streams.
type Synthetic struct {
	pacer  pacer
	rateHz float64
	index  int
}

// NewSynthetic returns a synthetic source producing rateHz samples per
// second.
func NewSynthetic(clk clock.Clock, rateHz float64) (*Synthetic, error) {
	period, err := interval(rateHz)
	if err != nil {
		return nil, err
	}
	return &Synthetic{
		pacer:  pacer{clock: clk, interval: period},
		rateHz: rateHz,
	}, nil
}

// Next waits for the next tick and returns the sample for it.
func (s *Synthetic) Next(ctx context.Context) (pose.Record, error) {
	if err := s.pacer.wait(ctx); err != nil {
		return pose.Record{}, err
	}
	record := SyntheticSample(s.index, s.rateHz)
	record.Timestamp = s.pacer.clock.Now()
	s.index++
	return record, nil
}

// Close stops the pacing ticker.
func (s *Synthetic) Close() error {
	s.pacer.stop()
	return nil
}

// SyntheticSample returns sample index of the synthetic trajectory at
// rateHz. The camera frame is y-up with -z forward, so travel in the
// x/-z plane is horizontal and heading is a rotation about +y. The
// timestamp is left zero.
func SyntheticSample(index int, rateHz float64) pose.Record {
	elapsed := float64(index) / rateHz
	angle := 2 * math.Pi * elapsed / SyntheticPeriod.Seconds()

	// Facing along the tangent of a counter-clockwise lap.
	heading := angle + math.Pi/2
	return pose.Record{
		Translation: pose.Vector{
			X: SyntheticRadius * math.Cos(angle),
			Z: -SyntheticRadius * math.Sin(angle),
		},
		Rotation: pose.Quaternion{
			W: math.Cos(heading / 2),
			Y: math.Sin(heading / 2),
		},
		TrackerConfidence: pose.ConfidenceHigh,
		MapperConfidence:  int(elapsed) % (pose.ConfidenceHigh + 1),
	}
}
