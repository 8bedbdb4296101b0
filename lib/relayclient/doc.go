// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package relayclient speaks the controller side of the pose relay's
// line protocol: it reads telemetry, answers nothing on its own, and
// sends the clock-sync, ping, and keepalive messages a controller is
// expected to send. The pose-probe command and the relay's end-to-end
// tests are built on it.
//
// A Client is safe for one reader goroutine plus any number of
// goroutines sending.
package relayclient
