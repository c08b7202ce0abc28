// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session owns the master key for one logical vault session.
//
// A [Session] is the single holder of the active master key. The key
// exists in locked memory from the moment an unlock succeeds until the
// session locks again, and nowhere else: it is never persisted, never
// logged, and never reachable through the API. Every path that retires
// a key — lock, a new derivation, a failed unlock, a committed rekey —
// zeroes the old key's memory before dropping the reference.
//
// The state machine is two states, Locked and Unlocked, with nothing
// in between. An unlock attempt retires the previous key first, so a
// failure of any stage (derivation, ceremony, unwrap, decryption)
// leaves the session Locked rather than falling back to a stale key.
// The one deliberate exception is [Session.Rekey]: the old key stays
// active while the new blob is staged, and is retired only by
// [Rekey.Commit] — a storage failure between the two leaves the old
// vault fully recoverable.
//
// Sessions are independent of each other; there is no shared state
// between two sessions beyond the process. A single session does not
// lock internally: callers must serialize unlock, lock, and rekey on
// the same session. The pure operations (EncryptVault, DecryptVault,
// WrapKey) only read the key slot and may overlap with each other, but
// not with a mutation.
package session
