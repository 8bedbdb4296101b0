// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/poserelay/lib/posetrace"
)

func synth(t *testing.T, name string, args ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	var stdout bytes.Buffer
	if err := run(append([]string{"synth", "--output", path}, args...), &stdout); err != nil {
		t.Fatalf("synth: %v", err)
	}
	if !strings.Contains(stdout.String(), path) {
		t.Errorf("synth output does not name the file: %q", stdout.String())
	}
	return path
}

func TestSynthWritesReadableTrace(t *testing.T) {
	for _, name := range []string{"lap.trace", "lap.trace.zst", "lap.trace.lz4"} {
		t.Run(name, func(t *testing.T) {
			path := synth(t, name, "--rate", "50", "--duration", "2s", "--origin", "bench")

			header, records, err := posetrace.ReadAll(path)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if header.RateHz != 50 || header.Origin != "bench" {
				t.Errorf("header = %+v", header)
			}
			if len(records) != 100 {
				t.Errorf("records = %d, want 100", len(records))
			}
		})
	}
}

func TestSynthRequiresOutput(t *testing.T) {
	if err := run([]string{"synth"}, &bytes.Buffer{}); err == nil {
		t.Fatal("synth without --output succeeded")
	}
	if err := run([]string{"synth", "--output", filepath.Join(t.TempDir(), "x"), "--rate", "0"}, &bytes.Buffer{}); err == nil {
		t.Fatal("synth with zero rate succeeded")
	}
}

func TestInspect(t *testing.T) {
	path := synth(t, "lap.trace.zst", "--rate", "10", "--duration", "4s")

	var stdout bytes.Buffer
	if err := run([]string{"inspect", "--lines", "2", "--unit", "meters", "--diagnose", path}, &stdout); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	output := stdout.String()

	for _, want := range []string{
		"compression: zstd",
		"rate:        10 Hz",
		"origin:      synthetic",
		"records:     40",
		"span:        3.9s",
		"checksum:    ok (blake3 ",
		"header (CBOR): {",
		"record 0 (CBOR): {",
		"P 1.000000 0.000000 90.000000 3 0\n",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("inspect output missing %q:\n%s", want, output)
		}
	}
	if got := strings.Count(output, "\nP "); got != 2 {
		t.Errorf("printed %d telemetry lines, want 2:\n%s", got, output)
	}
}

func TestInspectArguments(t *testing.T) {
	if err := run([]string{"inspect"}, &bytes.Buffer{}); err == nil {
		t.Error("inspect without a path succeeded")
	}
	if err := run([]string{"inspect", filepath.Join(t.TempDir(), "missing.trace")}, &bytes.Buffer{}); err == nil {
		t.Error("inspect of a missing file succeeded")
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run([]string{"convert"}, &bytes.Buffer{}); err == nil {
		t.Fatal("unknown command accepted")
	}
}

func TestVersion(t *testing.T) {
	var stdout bytes.Buffer
	if err := run([]string{"--version"}, &stdout); err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "pose-trace ") {
		t.Errorf("version output = %q", stdout.String())
	}
}
