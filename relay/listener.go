// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/poserelay/lib/netutil"
)

// DefaultAddress is the relay's well-known listening address.
const DefaultAddress = "0.0.0.0:5800"

// Listener accepts controller connections and wraps them in Sessions.
type Listener struct {
	listener net.Listener
	config   SessionConfig
	nextID   atomic.Uint64
}

// Listen binds an IPv4 TCP socket on address with SO_REUSEADDR set, so
// the relay can restart while old connections sit in TIME_WAIT. Sessions
// created by Accept use config.
func Listen(ctx context.Context, address string, config SessionConfig) (*Listener, error) {
	listener, err := netutil.ListenConfig().Listen(ctx, "tcp4", address)
	if err != nil {
		return nil, &BindError{Address: address, Err: err}
	}
	return &Listener{listener: listener, config: config}, nil
}

// Addr returns the bound address, useful when listening on port 0.
func (l *Listener) Addr() net.Addr { return l.listener.Addr() }

// Close closes the listening socket.
func (l *Listener) Close() error { return l.listener.Close() }

// Accept blocks until a controller connects and returns its Session.
// If ctx is cancelled first, Accept returns ctx.Err() and the listener
// remains usable. Any other failure is an *AcceptError.
func (l *Listener) Accept(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deadliner, canInterrupt := l.listener.(interface{ SetDeadline(time.Time) error })
	if canInterrupt {
		// Clear any deadline left by a cancellation that raced with a
		// successful accept.
		if err := deadliner.SetDeadline(time.Time{}); err != nil {
			return nil, &AcceptError{Err: err}
		}
		stop := context.AfterFunc(ctx, func() {
			deadliner.SetDeadline(time.Unix(1, 0))
		})
		defer stop()
	}

	conn, err := l.listener.Accept()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &AcceptError{Err: err}
	}

	logger := l.config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := netutil.TuneConn(conn); err != nil {
		logger.Warn("setting TCP_NODELAY on accepted connection",
			"remote_addr", conn.RemoteAddr().String(),
			"error", err,
		)
	}

	id := l.nextID.Add(1)
	config := l.config
	config.Logger = logger.With("session_id", id, "remote_addr", conn.RemoteAddr().String())
	return NewSession(conn, id, config), nil
}

