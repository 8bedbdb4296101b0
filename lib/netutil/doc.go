// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides socket-level helpers for the relay.
//
// Socket options (ListenConfig, TuneConn) apply the relay's fixed
// policy: SO_REUSEADDR on the listening socket so a restart does not
// fail on a port still in TIME_WAIT, and TCP_NODELAY so one-line
// telemetry messages leave immediately instead of waiting for Nagle
// coalescing.
//
// Shutdown issues shutdown(SHUT_RDWR) on a connection's descriptor.
// Combined with Close it wakes any goroutine blocked in Read or Write
// on the same connection.
//
// IsExpectedCloseError classifies errors produced by ordinary
// connection teardown so callers can log them quietly.
package netutil
