// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// pose-trace creates and inspects the pose trace files the relay
// replays.
//
//	pose-trace synth --output lap.trace.zst --rate 200 --duration 20s
//	pose-trace inspect lap.trace.zst --lines 5 --unit meters
//
// The compression of a trace follows its extension: .zst for zstd,
// .lz4 for LZ4, anything else uncompressed.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/poserelay/lib/process"
	"github.com/bureau-foundation/poserelay/lib/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		process.Fatal(err)
	}
}

const usage = `usage: pose-trace <command> [flags]

commands:
  synth     write a synthetic trace
  inspect   print a trace's header and verify its checksum

Run "pose-trace <command> --help" for the command's flags.
`

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("no command given")
	}

	switch args[0] {
	case "synth":
		return runSynth(args[1:], stdout)
	case "inspect":
		return runInspect(args[1:], stdout)
	case "--version", "version":
		version.Fprint(stdout, "pose-trace")
		return nil
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q (want synth or inspect)", args[0])
}
