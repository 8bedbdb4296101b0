// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"errors"
	"io"
	"log/slog"

	"github.com/bureau-foundation/poserelay/lib/netutil"
	"github.com/bureau-foundation/poserelay/lib/pose"
	"github.com/bureau-foundation/poserelay/lib/posesource"
)

// DefaultDecimation is how many source records yield one telemetry line.
const DefaultDecimation = 20

// TelemetryLoop converts source records to telemetry lines and sends
// them to the controller.
type TelemetryLoop struct {
	Session *Session
	Source  posesource.Source

	// Decimation keeps record i (counted from zero for this session)
	// when i%Decimation == 0, so the first record is always sent.
	// Values below 1 send every record.
	Decimation int

	Unit    pose.Unit
	Logger  *slog.Logger
	Metrics *Metrics
}

// Run sends telemetry until the session ends. A failed write or a
// failed source disconnects the session; nothing is retried. Run
// returns the source's error when the source ended the session, and
// nil otherwise.
func (l *TelemetryLoop) Run() error {
	ctx := l.Session.Context()
	decimation := uint64(max(l.Decimation, 1))
	line := make([]byte, 0, 64)

	for index := uint64(0); ; index++ {
		record, err := l.Source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !l.Session.Disconnect(ReasonSource) {
				return nil
			}
			if errors.Is(err, io.EOF) {
				l.logger().Info("pose source exhausted", "records", index)
			} else {
				l.logger().Error("pose source failed", "error", err)
			}
			return err
		}
		l.Metrics.recordRead()

		if index%decimation != 0 {
			continue
		}

		line = pose.AppendLine(line[:0], pose.Convert(record, l.Unit))
		if _, err := l.Session.Send(line); err != nil {
			if errors.Is(err, ErrNotConnected) {
				return nil
			}
			if l.Session.Disconnect(ReasonWrite) {
				if netutil.IsExpectedCloseError(err) || netutil.IsTimeout(err) {
					l.logger().Info("telemetry write failed", "error", err)
				} else {
					l.logger().Error("telemetry write failed", "error", err)
				}
			}
			return nil
		}
		l.Metrics.lineSent()
	}
}

func (l *TelemetryLoop) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
