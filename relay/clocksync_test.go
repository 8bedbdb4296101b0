// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"errors"
	"testing"
)

func TestClockSyncExchange(t *testing.T) {
	tests := []struct {
		name             string
		t1, t1p, t2, t2p int64
		want             int64
	}{
		{"symmetric delay", 1000, 1005, 1006, 1011, 0},
		{"odd sum rounds down", 1000, 1100, 1101, 1202, -1},
		{"relay ahead", 1000, 1510, 1511, 1021, 500},
		{"relay behind", 5000, 4010, 4011, 5021, -1000},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var sync ClockSync
			sync.Request(test.t1, test.t1p)
			sync.Acknowledging(test.t2)
			offset, err := sync.Complete(test.t2p)
			if err != nil {
				t.Fatalf("Complete: %v", err)
			}
			if offset != test.want {
				t.Errorf("offset = %d, want %d", offset, test.want)
			}
			got, ok := sync.Offset()
			if !ok || got != test.want {
				t.Errorf("Offset() = %d, %v, want %d, true", got, ok, test.want)
			}
		})
	}
}

func TestComputeOffsetFloors(t *testing.T) {
	tests := []struct {
		sum  int64
		want int64
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 1},
		{-1, -1},
		{-2, -1},
		{-3, -2},
	}
	for _, test := range tests {
		// T1P - T1 carries the whole sum; the second term is zero.
		if got := ComputeOffset(0, test.sum, 0, 0); got != test.want {
			t.Errorf("offset for sum %d = %d, want %d", test.sum, got, test.want)
		}
	}
}

func TestClockSyncOutOfOrder(t *testing.T) {
	var sync ClockSync
	if _, err := sync.Complete(1011); !errors.Is(err, ErrSyncOutOfOrder) {
		t.Fatalf("Complete before Request = %v, want ErrSyncOutOfOrder", err)
	}
	if _, ok := sync.Offset(); ok || sync.Synced() {
		t.Error("reported synchronized after a rejected exchange")
	}
}

func TestClockSyncRepeatedComplete(t *testing.T) {
	var sync ClockSync
	sync.Request(1000, 1005)
	sync.Acknowledging(1006)
	if _, err := sync.Complete(1011); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	// A second "2" reuses the last request.
	offset, err := sync.Complete(1013)
	if err != nil {
		t.Fatalf("repeated Complete: %v", err)
	}
	if offset != -1 {
		t.Errorf("offset = %d, want -1", offset)
	}
}

func TestClockSyncPeerToLocal(t *testing.T) {
	var sync ClockSync
	if got := sync.PeerToLocal(2000); got != 2000 {
		t.Errorf("PeerToLocal before sync = %d, want 2000", got)
	}
	sync.Request(1000, 1510)
	sync.Acknowledging(1511)
	sync.Complete(1021)
	if got := sync.PeerToLocal(2000); got != 2500 {
		t.Errorf("PeerToLocal = %d, want 2500", got)
	}
}

func TestParseSync(t *testing.T) {
	tests := []struct {
		line    string
		kind    byte
		millis  int64
		wantErr bool
	}{
		{"11000", SyncRequest, 1000, false},
		{"21202", SyncComplete, 1202, false},
		{"1 1767268800000", SyncRequest, 1767268800000, false},
		{"2-5", SyncComplete, -5, false},
		{"1", 0, 0, true},
		{"1abc", 0, 0, true},
		{"212x", 0, 0, true},
		{"199999999999999999999", 0, 0, true},
		{"3100", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, test := range tests {
		kind, millis, err := ParseSync(test.line)
		if test.wantErr {
			var syncError *SyncError
			if !errors.As(err, &syncError) {
				t.Errorf("ParseSync(%q) error = %v, want *SyncError", test.line, err)
			} else if syncError.Message != test.line {
				t.Errorf("SyncError.Message = %q, want %q", syncError.Message, test.line)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSync(%q): %v", test.line, err)
			continue
		}
		if kind != test.kind || millis != test.millis {
			t.Errorf("ParseSync(%q) = %c %d, want %c %d", test.line, kind, millis, test.kind, test.millis)
		}
	}
}
