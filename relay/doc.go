// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay streams pose telemetry to a single controller over TCP.
//
// A [Server] owns one listening socket and serves at most one
// controller at a time. For each accepted connection it starts three
// goroutines sharing a [Session]:
//
//   - the receiver reads newline-framed messages from the controller:
//     clock-sync requests ("1<ms>" and "2<ms>"), pings ("p"), and
//     keepalives ("k");
//   - the watchdog tears the session down when the controller has been
//     silent for longer than the keepalive timeout;
//   - the telemetry loop pulls records from a [posesource.Source],
//     keeps one in every N, and sends each as a
//     "P <x> <y> <yaw> <tracker> <mapper>" line.
//
// Whichever goroutine first sees the session fail calls
// [Session.Disconnect], which closes the socket and unblocks the other
// two. The server joins all three before accepting the next
// controller, so sessions never overlap. Peers that connect while a
// session is live wait in the kernel's accept backlog.
//
// Session failures never stop the server. Only a failure of the
// listening socket itself ends [Server.Serve] with an error.
package relay
