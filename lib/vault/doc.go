// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package vault defines the plaintext record model and the cipher that
// turns it into storage blobs.
//
// A [Record] is the entire vault: a schema version, timestamps, and an
// ordered list of password entries. It is mutated only in plaintext,
// in memory, while a session holds the master key; every change
// re-encrypts the whole record. There is no partial or field-level
// encryption — the blob either decrypts completely or not at all.
//
// [Encrypt] serializes a record with deterministic CBOR and seals it
// into an opaque base64 blob. [Decrypt] reverses the process, with a
// hard line between the two ways it can fail: anything before the
// authentication tag verifies is [sealed.ErrAuthentication] (wrong
// key, tampering, truncation — deliberately undifferentiated), and
// anything after is [ErrSerialization] (the key was right but the
// plaintext is not a well-formed record, which a trusted writer never
// produces).
//
// Records carry a schema version so that old blobs remain readable
// after the format evolves. Decrypt upgrades old versions step-by-step
// through a migration table before returning; the mechanism exists
// from version 1 so that version 2 never needs a flag day.
//
// All timestamps are normalized to UTC by the mutation API, which
// keeps the CBOR encoding of a record canonical.
package vault
