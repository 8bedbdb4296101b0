// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package posesource provides the pose records the relay streams.
//
// A [Source] yields one [pose.Record] per call to Next, blocking until
// the next sample is due. Two implementations ship with the relay:
//
//   - [Synthetic] generates a deterministic circular trajectory, for
//     bench testing a controller without tracking hardware.
//   - [Replay] plays back a recorded trace file (see lib/posetrace),
//     optionally looping.
//
// Both pace themselves with a [clock.Clock] ticker so tests can drive
// them with a fake clock. Sources are not safe for concurrent use; the
// relay serves one session at a time and only that session's telemetry
// loop calls Next.
package posesource
