// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"errors"
	"strconv"
	"strings"
	"sync"
)

// ClockSync holds one session's clock-offset exchange with the
// controller. All timestamps are integer milliseconds since the Unix
// epoch.
//
// The exchange is:
//
//	controller: "1<T1>"  (T1 = controller clock at send)
//	relay:      T1P = relay clock at receipt
//	relay:      T2  = relay clock just before sending the ack
//	relay:      "T"
//	controller: "2<T2P>" (T2P = controller clock at receipt of the ack)
//
// and the offset, relay clock minus controller clock, is
// ((T1P - T1) + (T2 - T2P)) / 2 rounded toward negative infinity.
// Controllers compute the same value, so the arithmetic must not change.
type ClockSync struct {
	mu sync.Mutex

	t1, t1p, t2, t2p int64
	requested        bool

	offset int64
	synced bool
}

// Request records a "1" message carrying the controller's send time,
// received at localMillis.
func (c *ClockSync) Request(peerMillis, localMillis int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t1 = peerMillis
	c.t1p = localMillis
	c.t2 = localMillis
	c.requested = true
}

// Acknowledging records the relay time at which the "T" ack is sent.
func (c *ClockSync) Acknowledging(localMillis int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t2 = localMillis
}

// Complete records a "2" message carrying the controller's receipt time
// of the ack and returns the resulting offset. Returns ErrSyncOutOfOrder
// if no request has been seen. A later "2" without a new "1" recomputes
// from the last request.
func (c *ClockSync) Complete(peerMillis int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.requested {
		return 0, ErrSyncOutOfOrder
	}
	c.t2p = peerMillis
	c.offset = ComputeOffset(c.t1, c.t1p, c.t2, c.t2p)
	c.synced = true
	return c.offset, nil
}

// Offset returns the last computed offset and whether one exists.
func (c *ClockSync) Offset() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset, c.synced
}

// Synced reports whether an exchange has completed.
func (c *ClockSync) Synced() bool {
	_, synced := c.Offset()
	return synced
}

// PeerToLocal converts a controller timestamp to relay time using the
// current offset. Before synchronization it returns peerMillis.
func (c *ClockSync) PeerToLocal(peerMillis int64) int64 {
	offset, _ := c.Offset()
	return peerMillis + offset
}

// ComputeOffset applies the offset formula to one exchange.
func ComputeOffset(t1, t1p, t2, t2p int64) int64 {
	sum := (t1p - t1) + (t2 - t2p)
	offset := sum / 2
	if sum%2 != 0 && sum < 0 {
		offset--
	}
	return offset
}

// Clock-sync message kinds.
const (
	SyncRequest  = '1'
	SyncComplete = '2'
)

var errEmptyTimestamp = errors.New("missing timestamp")

// ParseSync splits a clock-sync line into its kind and timestamp.
// Failures are *SyncError.
func ParseSync(line string) (byte, int64, error) {
	if line == "" || (line[0] != SyncRequest && line[0] != SyncComplete) {
		return 0, 0, &SyncError{Message: line, Err: errors.New("not a clock sync message")}
	}
	payload := strings.TrimSpace(line[1:])
	if payload == "" {
		return 0, 0, &SyncError{Message: line, Err: errEmptyTimestamp}
	}
	millis, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return 0, 0, &SyncError{Message: line, Err: err}
	}
	return line[0], millis, nil
}
