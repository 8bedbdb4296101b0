// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for relay packages.
//
// [RequireReceive], [RequireSend], and [RequireClosed] wrap the
// select-with-timeout safety valve so individual tests never call
// time.After themselves. They are the only place where tests wait on
// the real wall clock; everything else uses lib/clock.Fake.
//
// [ReadLine] reads one newline-terminated line from a connection with a
// deadline, which is how the relay tests observe the wire protocol.
//
// All helpers call t.Fatalf on failure.
package testutil
