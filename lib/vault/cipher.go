// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/vault/lib/codec"
	"github.com/bureau-foundation/vault/lib/sealed"
	"github.com/bureau-foundation/vault/lib/secret"
)

// ErrSerialization reports a blob that authenticated under the given
// key but whose plaintext is not a well-formed record. This never
// happens when the blob was written by this code; it indicates
// corruption of the writer, not of storage (storage corruption fails
// authentication first).
var ErrSerialization = errors.New("vault: decrypted record is structurally invalid")

// Encrypt serializes the record and seals it under the master key,
// returning the storage blob. The intermediate plaintext is zeroed
// before returning. The key is borrowed and not closed.
func Encrypt(rec *Record, key *secret.Buffer) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("vault: record is nil")
	}
	plaintext, err := codec.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("vault: encoding record: %w", err)
	}

	blob, err := sealed.Seal(plaintext, key)
	secret.Zero(plaintext)
	if err != nil {
		return "", err
	}
	return blob, nil
}

// Decrypt opens a storage blob under the master key and returns the
// record, upgraded to CurrentVersion if it was written by an older
// schema. Failures before the authentication tag verifies are
// [sealed.ErrAuthentication]; failures after are [ErrSerialization].
// The intermediate plaintext is zeroed in all paths.
func Decrypt(blob string, key *secret.Buffer) (*Record, error) {
	plaintext, err := sealed.Open(blob, key)
	if err != nil {
		return nil, err
	}
	defer plaintext.Close()

	return DecodeRecord(plaintext.Bytes())
}

// DecodeRecord decodes serialized record bytes, normalizes them, and
// upgrades the result to CurrentVersion. This is the post-decryption
// half of Decrypt, exposed for readers that carry record bytes in
// another envelope (recovery bundles). Every failure is
// [ErrSerialization].
func DecodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := codec.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if rec.Entries == nil {
		rec.Entries = []Entry{}
	}
	if err := migrate(&rec); err != nil {
		return nil, err
	}
	if err := rec.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return &rec, nil
}
