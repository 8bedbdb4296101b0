// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/poserelay/lib/posesource"
	"github.com/bureau-foundation/poserelay/lib/posetrace"
)

func runSynth(args []string, stdout io.Writer) error {
	var (
		output   string
		rateHz   float64
		duration time.Duration
		origin   string
	)
	flagSet := pflag.NewFlagSet("pose-trace synth", pflag.ContinueOnError)
	flagSet.StringVarP(&output, "output", "o", "", "trace file to write (required)")
	flagSet.Float64Var(&rateHz, "rate", 200, "samples per second")
	flagSet.DurationVar(&duration, "duration", posesource.SyntheticPeriod, "length of the trace")
	flagSet.StringVar(&origin, "origin", "synthetic", "origin recorded in the header")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if output == "" {
		return fmt.Errorf("--output is required")
	}
	if rateHz <= 0 {
		return fmt.Errorf("--rate must be positive")
	}
	count := int(duration.Seconds() * rateHz)
	if count <= 0 {
		return fmt.Errorf("--duration %s at %v Hz yields no samples", duration, rateHz)
	}

	created := time.Now().UTC()
	writer, err := posetrace.Create(output, posetrace.Header{
		RateHz:  rateHz,
		Created: created,
		Origin:  origin,
	})
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		record := posesource.SyntheticSample(i, rateHz)
		record.Timestamp = created.Add(time.Duration(float64(i) * float64(time.Second) / rateHz))
		if err := writer.Write(record); err != nil {
			writer.Abort()
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finishing %s: %w", output, err)
	}

	fmt.Fprintf(stdout, "wrote %d records (%s at %v Hz) to %s\n", count, duration, rateHz, output)
	return nil
}
