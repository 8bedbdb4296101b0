// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"bufio"
	"errors"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/poserelay/lib/clock"
	"github.com/bureau-foundation/poserelay/lib/netutil"
)

// MaxLineLength is the longest inbound line, newline included.
const MaxLineLength = 512

// Messages exchanged with the controller, without their newline.
const (
	MessagePing      = "p"
	MessageKeepalive = "k"
	MessageAck       = "T"
)

// Receiver reads and dispatches the controller's messages for one
// session. Every message it understands refreshes the session's
// keepalive.
type Receiver struct {
	Session *Session
	Sync    *ClockSync
	Clock   clock.Clock
	Logger  *slog.Logger
	Metrics *Metrics
}

// Run reads until the connection fails or the session is disconnected
// elsewhere, then disconnects the session.
func (r *Receiver) Run() {
	scanner := bufio.NewScanner(sessionReader{r.Session})
	scanner.Buffer(make([]byte, 0, MaxLineLength), MaxLineLength)

	for scanner.Scan() {
		r.handle(strings.TrimSuffix(scanner.Text(), "\r"))
	}

	err := scanner.Err()
	reason := ReasonEOF
	switch {
	case err == nil:
	case errors.Is(err, bufio.ErrTooLong):
		err = ErrLineTooLong
		reason = ReasonRead
	default:
		reason = ReasonRead
	}
	if !r.Session.Disconnect(reason) {
		// Another goroutine ended the session and closed the socket
		// under us; the read error is a consequence, not a cause.
		return
	}

	logger := r.logger()
	switch {
	case err == nil:
		logger.Info("controller closed connection")
	case netutil.IsExpectedCloseError(err):
		logger.Info("controller connection lost", "error", err)
	default:
		logger.Error("reading from controller", "error", err)
	}
}

func (r *Receiver) handle(line string) {
	switch {
	case line == "":
	case line[0] == SyncRequest || line[0] == SyncComplete:
		r.handleSync(line)
	case line == MessagePing:
		r.Session.Touch()
		r.reply(MessagePing)
	case line == MessageKeepalive, line == MessageAck:
		r.Session.Touch()
	default:
		r.logger().Debug("ignoring unknown message", "message", line)
	}
}

func (r *Receiver) handleSync(line string) {
	kind, peerMillis, err := ParseSync(line)
	if err != nil {
		r.syncFailed(err)
		return
	}

	switch kind {
	case SyncRequest:
		r.Sync.Request(peerMillis, clock.Millis(r.Clock.Now()))
		r.Session.Touch()
		r.Sync.Acknowledging(clock.Millis(r.Clock.Now()))
		r.reply(MessageAck)

	case SyncComplete:
		offset, err := r.Sync.Complete(peerMillis)
		if err != nil {
			r.syncFailed(&SyncError{Message: line, Err: err})
			return
		}
		r.Session.Touch()
		r.Metrics.clockSynced(offset)
		r.logger().Info("clock synchronized", "offset_ms", offset)
	}
}

func (r *Receiver) syncFailed(err error) {
	r.Metrics.syncFailed()
	r.logger().Warn("discarding clock sync message", "error", err)
}

// reply sends message and a newline. A failed reply ends the session.
func (r *Receiver) reply(message string) {
	if _, err := r.Session.Send([]byte(message + "\n")); err != nil {
		if errors.Is(err, ErrNotConnected) {
			return
		}
		if r.Session.Disconnect(ReasonWrite) {
			r.logger().Info("reply to controller failed", "message", message, "error", err)
		}
	}
}

func (r *Receiver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// sessionReader adapts Session.Receive to io.Reader.
type sessionReader struct {
	session *Session
}

func (s sessionReader) Read(p []byte) (int, error) { return s.session.Receive(p) }
