// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for the relay.
//
// Anything that reads the wall clock or waits on a timer (the session
// watchdog, the synthetic pose source, clock-sync timestamps) takes a
// [Clock] instead of calling the time package directly. Production code
// passes [Real]; tests pass a [FakeClock] that only moves when the test
// calls Advance.
//
// # Synchronizing with goroutines
//
// A goroutine that calls NewTicker, After, or Sleep on a FakeClock
// registers a pending waiter. Tests call WaitForTimers before Advance
// so the advance cannot race the registration:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go watchdog.Run()
//	c.WaitForTimers(1)
//	c.Advance(6 * time.Second)
package clock
