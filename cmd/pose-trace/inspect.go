// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/poserelay/lib/codec"
	"github.com/bureau-foundation/poserelay/lib/pose"
	"github.com/bureau-foundation/poserelay/lib/posetrace"
)

func runInspect(args []string, stdout io.Writer) error {
	var (
		lines    int
		unitName string
		diagnose bool
	)
	flagSet := pflag.NewFlagSet("pose-trace inspect", pflag.ContinueOnError)
	flagSet.IntVar(&lines, "lines", 0, "print the first N records as telemetry lines")
	flagSet.StringVar(&unitName, "unit", string(pose.Feet), "unit for --lines: feet, inches, or meters")
	flagSet.BoolVar(&diagnose, "diagnose", false, "print the header and first record in CBOR diagnostic notation")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("usage: pose-trace inspect [flags] <trace>")
	}
	path := flagSet.Arg(0)
	unit, err := pose.ParseUnit(unitName)
	if err != nil {
		return err
	}

	reader, err := posetrace.Open(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	header := reader.Header()
	fmt.Fprintf(stdout, "path:        %s\n", path)
	fmt.Fprintf(stdout, "compression: %s\n", posetrace.CompressionFor(path))
	fmt.Fprintf(stdout, "version:     %d\n", header.Version)
	fmt.Fprintf(stdout, "rate:        %v Hz\n", header.RateHz)
	fmt.Fprintf(stdout, "created:     %s\n", header.Created.Format(time.RFC3339))
	if header.Origin != "" {
		fmt.Fprintf(stdout, "origin:      %s\n", header.Origin)
	}
	if diagnose {
		if err := printDiagnostic(stdout, "header", header); err != nil {
			return err
		}
	}

	var (
		count     int
		line      []byte
		readErr   error
		first     pose.Record
		last      pose.Record
		diagnosed bool
	)
	for {
		record, err := reader.Next()
		if err != nil {
			readErr = err
			break
		}
		if count == 0 {
			first = record
		}
		last = record
		if diagnose && !diagnosed {
			if err := printDiagnostic(stdout, "record 0", record); err != nil {
				return err
			}
			diagnosed = true
		}
		if count < lines {
			line = pose.AppendLine(line[:0], pose.Convert(record, unit))
			stdout.Write(line)
		}
		count++
	}

	fmt.Fprintf(stdout, "records:     %d\n", count)
	if count > 1 {
		fmt.Fprintf(stdout, "span:        %s\n", last.Timestamp.Sub(first.Timestamp))
	}
	if !errors.Is(readErr, io.EOF) {
		fmt.Fprintf(stdout, "checksum:    FAILED\n")
		return readErr
	}
	trailer, _ := reader.Trailer()
	fmt.Fprintf(stdout, "checksum:    ok (blake3 %s)\n", hex.EncodeToString(trailer.Digest))
	return nil
}

func printDiagnostic(w io.Writer, label string, value any) error {
	data, err := codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", label, err)
	}
	notation, _, err := codec.Diagnose(data)
	if err != nil {
		return fmt.Errorf("diagnosing %s: %w", label, err)
	}
	fmt.Fprintf(w, "%s (CBOR): %s\n", label, notation)
	return nil
}
