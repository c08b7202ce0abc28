// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the engine's canonical CBOR configuration.
//
// Vault records and escrow envelopes are serialized exactly once per
// encryption, and the ciphertext authenticates whatever bytes went in.
// Canonical bytes keep that relationship stable: the encoder uses Core
// Deterministic Encoding (RFC 8949 §4.2) — sorted map keys, smallest
// integer encoding, no indefinite-length items — so the same logical
// record always produces identical plaintext bytes, regardless of
// process or platform.
//
// Timestamps encode as RFC 3339 text with nanosecond precision, which
// round-trips time.Time values exactly.
//
// Decoding is strict: this engine is the only writer of the payloads
// it reads, so unknown fields indicate corruption and fail the decode
// rather than being skipped. Callers translate decode failures into
// their own error kinds (lib/vault reports them as ErrSerialization).
//
// Usage:
//
//	data, err := codec.Marshal(record)
//	err = codec.Unmarshal(data, &record)
//
// All serialized types in this module use `cbor` struct tags; they
// never participate in JSON serialization.
package codec
