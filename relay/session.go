// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/poserelay/lib/clock"
	"github.com/bureau-foundation/poserelay/lib/netutil"
)

// SessionConfig holds the settings shared by every session.
type SessionConfig struct {
	// Clock timestamps keepalives. If nil, the real clock is used.
	Clock clock.Clock

	// WriteTimeout bounds each Send. A controller that stops draining
	// its socket fails the write instead of blocking the relay. Zero
	// means no bound.
	WriteTimeout time.Duration

	// Logger receives session-level events. If nil, slog.Default() is
	// used.
	Logger *slog.Logger
}

// Session is one controller connection. Send, Receive, and Disconnect
// are safe for concurrent use.
type Session struct {
	id           uint64
	remoteAddr   net.Addr
	acceptedAt   time.Time
	clock        clock.Clock
	writeTimeout time.Duration
	logger       *slog.Logger
	clockSync    *ClockSync

	// mu guards conn, connected, and reason. I/O happens outside it so
	// Disconnect can interrupt a blocked Receive.
	mu        sync.Mutex
	conn      net.Conn
	connected bool
	reason    DisconnectReason
	done      chan struct{}

	// writeMu serializes Send so lines from different goroutines never
	// interleave on the wire.
	writeMu sync.Mutex

	// lastKeepalive is unix nanoseconds of the last message that
	// proved the controller alive.
	lastKeepalive atomic.Int64
}

// NewSession wraps an accepted connection. The keepalive timestamp
// starts at the time of the call.
func NewSession(conn net.Conn, id uint64, config SessionConfig) *Session {
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := clk.Now()
	session := &Session{
		id:           id,
		remoteAddr:   conn.RemoteAddr(),
		acceptedAt:   now,
		clock:        clk,
		writeTimeout: config.WriteTimeout,
		logger:       logger,
		clockSync:    &ClockSync{},
		conn:         conn,
		connected:    true,
		done:         make(chan struct{}),
	}
	session.lastKeepalive.Store(now.UnixNano())
	return session
}

// ID returns the session's sequence number, starting at 1.
func (s *Session) ID() uint64 { return s.id }

// RemoteAddr returns the controller's address.
func (s *Session) RemoteAddr() net.Addr { return s.remoteAddr }

// AcceptedAt returns when the session started.
func (s *Session) AcceptedAt() time.Time { return s.acceptedAt }

// Logger returns the session's logger, which carries its ID and remote
// address.
func (s *Session) Logger() *slog.Logger { return s.logger }

// ClockSync returns the session's clock-offset state. It starts
// unsynchronized and is safe to read from any goroutine.
func (s *Session) ClockSync() *ClockSync { return s.clockSync }

// Send writes p to the controller. Returns ErrNotConnected after
// Disconnect. A write that exceeds the configured timeout fails with a
// timeout error.
func (s *Session) Send(p []byte) (int, error) {
	conn, ok := s.current()
	if !ok {
		return 0, ErrNotConnected
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.writeTimeout > 0 {
		// Socket deadlines are kernel wall-clock time.
		if err := conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil { //nolint:realclock socket deadline
			return 0, err
		}
	}
	return conn.Write(p)
}

// Receive reads from the controller into p. An orderly close by the
// controller returns io.EOF. Returns ErrNotConnected after Disconnect.
func (s *Session) Receive(p []byte) (int, error) {
	conn, ok := s.current()
	if !ok {
		return 0, ErrNotConnected
	}
	return conn.Read(p)
}

func (s *Session) current() (net.Conn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn, s.connected
}

// Disconnect shuts down and closes the connection, unblocking any
// in-flight Send or Receive, and closes Done. Only the first call has
// any effect; it records reason and returns true.
func (s *Session) Disconnect(reason DisconnectReason) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return false
	}

	if err := netutil.Shutdown(s.conn); err != nil {
		s.logger.Debug("socket shutdown failed", "error", err)
	}
	if err := s.conn.Close(); err != nil && !netutil.IsExpectedCloseError(err) {
		s.logger.Debug("socket close failed", "error", err)
	}
	s.connected = false
	s.reason = reason
	close(s.done)
	return true
}

// Connected reports whether Disconnect has not yet been called.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Reason returns why the session ended, or "" while it is connected.
func (s *Session) Reason() DisconnectReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Done is closed by the first Disconnect.
func (s *Session) Done() <-chan struct{} { return s.done }

// Context returns a context that is cancelled when the session
// disconnects.
func (s *Session) Context() context.Context { return sessionContext{done: s.done} }

// Touch records that the controller is alive.
func (s *Session) Touch() {
	s.lastKeepalive.Store(s.clock.Now().UnixNano())
}

// LastKeepalive returns the time of the most recent Touch, or the
// accept time if there has been none.
func (s *Session) LastKeepalive() time.Time {
	return time.Unix(0, s.lastKeepalive.Load())
}

// sessionContext adapts a session's Done channel to a context without
// a goroutine to bridge them.
type sessionContext struct {
	done <-chan struct{}
}

func (sessionContext) Deadline() (time.Time, bool) { return time.Time{}, false }

func (c sessionContext) Done() <-chan struct{} { return c.done }

func (c sessionContext) Err() error {
	select {
	case <-c.done:
		return context.Canceled
	default:
		return nil
	}
}

func (sessionContext) Value(any) any { return nil }
