// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned by Send and Receive once the session
	// has been disconnected. It is distinct from a socket error.
	ErrNotConnected = errors.New("relay: session not connected")

	// ErrSyncOutOfOrder is returned when a clock-sync offset message
	// ("2") arrives before any request ("1") in the session.
	ErrSyncOutOfOrder = errors.New("clock sync: offset message before request")

	// ErrLineTooLong is reported when the controller sends a line
	// longer than MaxLineLength.
	ErrLineTooLong = fmt.Errorf("relay: inbound line exceeds %d bytes", MaxLineLength)
)

// BindError reports that the listening socket could not be created.
// The relay cannot run without it.
type BindError struct {
	Address string
	Err     error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("binding %s: %v", e.Address, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// AcceptError reports a failure of the listening socket while waiting
// for a controller.
type AcceptError struct {
	Err error
}

func (e *AcceptError) Error() string {
	return fmt.Sprintf("accepting connection: %v", e.Err)
}

func (e *AcceptError) Unwrap() error { return e.Err }

// SyncError reports a clock-sync message that could not be used. The
// message is discarded and the session continues.
type SyncError struct {
	// Message is the offending line as received.
	Message string
	Err     error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("clock sync message %q: %v", e.Message, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// DisconnectReason records why a session ended.
type DisconnectReason string

const (
	// ReasonEOF: the controller closed its end of the connection.
	ReasonEOF DisconnectReason = "eof"

	// ReasonRead: reading from the controller failed.
	ReasonRead DisconnectReason = "read"

	// ReasonWrite: sending to the controller failed or timed out.
	ReasonWrite DisconnectReason = "write"

	// ReasonWatchdog: the controller stopped sending keepalives.
	ReasonWatchdog DisconnectReason = "watchdog"

	// ReasonSource: the pose source failed or ran out of records.
	ReasonSource DisconnectReason = "source"

	// ReasonShutdown: the relay is stopping.
	ReasonShutdown DisconnectReason = "shutdown"
)

// Reasons lists every DisconnectReason.
var Reasons = []DisconnectReason{
	ReasonEOF, ReasonRead, ReasonWrite, ReasonWatchdog, ReasonSource, ReasonShutdown,
}
