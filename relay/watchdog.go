// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"log/slog"
	"time"

	"github.com/bureau-foundation/poserelay/lib/clock"
)

// Watchdog defaults.
const (
	DefaultKeepaliveTimeout = 5 * time.Second
	DefaultPollInterval     = time.Second
)

// Watchdog disconnects a session whose controller has gone silent. It
// is armed for exactly one session and never restarts.
type Watchdog struct {
	Session *Session
	Clock   clock.Clock

	// Timeout is the longest the controller may go without a message.
	// Zero disables the watchdog.
	Timeout time.Duration

	// PollInterval is how often the keepalive age is checked. The
	// watchdog fires at most one interval after the deadline passes.
	PollInterval time.Duration

	Logger *slog.Logger
}

// Run polls until the keepalive deadline passes or the session ends.
// It reports whether it disconnected the session.
func (w *Watchdog) Run() bool {
	if w.Timeout <= 0 {
		return false
	}
	interval := w.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := w.Clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.Session.Done():
			return false
		case <-ticker.C:
			silent := w.Clock.Now().Sub(w.Session.LastKeepalive())
			if silent <= w.Timeout {
				continue
			}
			if !w.Session.Disconnect(ReasonWatchdog) {
				return false
			}
			w.logger().Warn("keepalive timeout, disconnecting",
				"silent_for", silent,
				"timeout", w.Timeout,
			)
			return true
		}
	}
}

func (w *Watchdog) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
