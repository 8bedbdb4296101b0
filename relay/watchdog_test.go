// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"testing"
	"time"

	"github.com/bureau-foundation/poserelay/lib/clock"
	"github.com/bureau-foundation/poserelay/lib/testutil"
)

func startWatchdog(t *testing.T, fake *clock.FakeClock, session *Session, timeout time.Duration) <-chan bool {
	t.Helper()
	fired := make(chan bool, 1)
	watchdog := &Watchdog{
		Session:      session,
		Clock:        fake,
		Timeout:      timeout,
		PollInterval: time.Second,
	}
	go func() { fired <- watchdog.Run() }()
	return fired
}

func TestWatchdogFiresAfterTimeout(t *testing.T) {
	fake := clock.Fake(epoch)
	session, _ := pipeSession(t, SessionConfig{Clock: fake})
	fired := startWatchdog(t, fake, session, 5*time.Second)
	fake.WaitForTimers(1)

	// Exactly at the deadline the controller is not yet late.
	for i := 0; i < 5; i++ {
		fake.Advance(time.Second)
	}
	// Give the watchdog a chance to observe the final tick; it must
	// still be armed.
	testutil.RequireOpen(t, session.Done(), "watchdog fired at exactly the timeout")

	fake.Advance(time.Second)
	if !testutil.RequireReceive(t, fired, 5*time.Second, "watchdog exit") {
		t.Fatal("watchdog exited without firing")
	}
	testutil.RequireClosed(t, session.Done(), time.Second, "session Done after watchdog")
	if session.Reason() != ReasonWatchdog {
		t.Errorf("Reason = %q, want watchdog", session.Reason())
	}
}

func TestWatchdogQuietUnderKeepalives(t *testing.T) {
	fake := clock.Fake(epoch)
	session, _ := pipeSession(t, SessionConfig{Clock: fake})
	fired := startWatchdog(t, fake, session, 5*time.Second)
	fake.WaitForTimers(1)

	for i := 0; i < 30; i++ {
		session.Touch()
		fake.Advance(time.Second)
	}
	testutil.RequireOpen(t, session.Done(), "watchdog fired despite keepalives")

	session.Disconnect(ReasonEOF)
	if testutil.RequireReceive(t, fired, 5*time.Second, "watchdog exit after session end") {
		t.Error("watchdog reported firing for a session ended elsewhere")
	}
	if session.Reason() != ReasonEOF {
		t.Errorf("Reason = %q, want eof", session.Reason())
	}
}

func TestWatchdogExitsWhenSessionEnds(t *testing.T) {
	fake := clock.Fake(epoch)
	session, _ := pipeSession(t, SessionConfig{Clock: fake})
	fired := startWatchdog(t, fake, session, 5*time.Second)
	fake.WaitForTimers(1)

	session.Disconnect(ReasonRead)
	if testutil.RequireReceive(t, fired, 5*time.Second, "watchdog exit") {
		t.Error("watchdog fired after the session ended")
	}
	if fake.PendingCount() != 0 {
		t.Errorf("PendingCount = %d after exit, want the ticker stopped", fake.PendingCount())
	}
}

func TestWatchdogDisabled(t *testing.T) {
	fake := clock.Fake(epoch)
	session, _ := pipeSession(t, SessionConfig{Clock: fake})
	fired := startWatchdog(t, fake, session, 0)

	if testutil.RequireReceive(t, fired, 5*time.Second, "disabled watchdog exit") {
		t.Error("disabled watchdog fired")
	}
	if fake.PendingCount() != 0 {
		t.Errorf("disabled watchdog registered %d timers", fake.PendingCount())
	}
	if !session.Connected() {
		t.Error("disabled watchdog disconnected the session")
	}
}
