// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/poserelay/lib/pose"
	"github.com/bureau-foundation/poserelay/lib/posesource"
)

// Server accepts one controller at a time and streams telemetry to it.
type Server struct {
	Listener *Listener

	// Source supplies pose records. It is shared by successive
	// sessions and is not closed by the server. Once it returns io.EOF
	// the server stops accepting.
	Source posesource.Source

	Decimation int
	Unit       pose.Unit

	// KeepaliveTimeout is the watchdog threshold. Zero disables the
	// watchdog.
	KeepaliveTimeout time.Duration
	PollInterval     time.Duration

	// Logger receives server events. Session events go to each
	// session's own logger. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics, if non-nil, records session and telemetry counts.
	Metrics *Metrics

	// sessionStarted, if set, is called with each session before its
	// goroutines start.
	sessionStarted func(*Session)
}

// Serve accepts and serves controllers one after another until ctx is
// cancelled or the source is exhausted, then disconnects the live
// session, waits for it to wind down, and returns nil. A failure of the
// listening socket returns an *AcceptError.
func (s *Server) Serve(ctx context.Context) error {
	s.logger().Info("relay listening",
		"address", s.Listener.Addr().String(),
		"decimation", s.Decimation,
		"unit", s.Unit,
		"keepalive_timeout", s.KeepaliveTimeout,
	)
	for {
		session, err := s.Listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.logger().Info("relay stopping")
				return nil
			}
			return err
		}
		if err := s.serveSession(ctx, session); errors.Is(err, io.EOF) {
			s.logger().Info("pose source exhausted, relay stopping")
			return nil
		}
	}
}

// serveSession runs the receiver, watchdog, and telemetry loop for one
// session and returns when all three have exited. The error is the
// source's, if the source ended the session.
func (s *Server) serveSession(ctx context.Context, session *Session) error {
	logger := session.Logger()
	logger.Info("controller connected")
	s.Metrics.sessionStarted()
	if s.sessionStarted != nil {
		s.sessionStarted(session)
	}

	// Keepalive timestamps come from the session's clock, so the
	// watchdog and clock sync must read the same one.
	clk := session.clock
	receiver := &Receiver{
		Session: session,
		Sync:    session.ClockSync(),
		Clock:   clk,
		Logger:  logger,
		Metrics: s.Metrics,
	}
	watchdog := &Watchdog{
		Session:      session,
		Clock:        clk,
		Timeout:      s.KeepaliveTimeout,
		PollInterval: s.PollInterval,
		Logger:       logger,
	}
	telemetry := &TelemetryLoop{
		Session:    session,
		Source:     s.Source,
		Decimation: s.Decimation,
		Unit:       s.Unit,
		Logger:     logger,
		Metrics:    s.Metrics,
	}

	stop := context.AfterFunc(ctx, func() {
		session.Disconnect(ReasonShutdown)
	})

	var sourceErr error
	var waitGroup sync.WaitGroup
	waitGroup.Add(3)
	go func() {
		defer waitGroup.Done()
		receiver.Run()
	}()
	go func() {
		defer waitGroup.Done()
		watchdog.Run()
	}()
	go func() {
		defer waitGroup.Done()
		sourceErr = telemetry.Run()
	}()
	waitGroup.Wait()
	stop()

	duration := clk.Now().Sub(session.AcceptedAt())
	s.Metrics.sessionEnded(session.Reason(), duration)
	logger.Info("controller disconnected",
		"reason", session.Reason(),
		"duration", duration,
	)
	return sourceErr
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
