// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for testability.
//
// Production code accepts a Clock instead of calling time.Now
// directly; tests inject a deterministic [FakeClock]. The engine's
// cryptographic packages are time-free — Clock is wired only where
// timestamps are recorded: storage row metadata and escrow bundle
// creation times.
//
// Wiring pattern:
//
//	store, err := vaultstore.OpenSQLite(vaultstore.Config{
//	    Path:  path,
//	    Clock: clock.Real(),
//	})
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	c.Advance(5 * time.Second)
package clock

import "time"

// Clock abstracts the current-time lookup. Production code injects
// Real(); tests inject Fake() with deterministic time control.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
