// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed is the authenticated-encryption codec for vault blobs
// and wrapped keys.
//
// The construction is XChaCha20-Poly1305: a 256-bit key with a 192-bit
// nonce. The nonce space is large enough that drawing nonces at random
// makes collision statistically negligible without any counter state,
// which is what permits [Seal] to be a pure function over its inputs.
// Every call consumes a fresh nonce; a (key, nonce) pair is never used
// twice.
//
// Wire format: base64(nonce ‖ ciphertext ‖ tag), standard encoding,
// one opaque string. No associated data is bound — the blob is
// self-contained, and format integrity is implied by successful
// decode-and-parse after decryption.
//
// [Open] is strict and deliberately mute about failures: a bad base64
// payload, a truncated blob, a wrong key, and a flipped ciphertext bit
// all return the same [ErrAuthentication]. Distinguishing them would
// hand an attacker a decryption oracle. Plaintext only exists if the
// tag verified; there is no partial output.
//
// Keys are borrowed [secret.Buffer] values and are never closed here;
// decrypted plaintext is returned in a fresh locked buffer that the
// caller must Close.
//
// Depends on lib/secret for key custody and lib/entropy for nonces.
package sealed
