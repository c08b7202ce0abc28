// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vaultstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an ID with no stored vault.
	ErrNotFound = errors.New("vaultstore: vault not found")

	// ErrExists reports a Create for an ID that already has a vault.
	ErrExists = errors.New("vaultstore: vault already exists")

	// ErrConflict reports a Replace whose old value no longer matches
	// the stored row: another writer got there first. The row is
	// unmodified; reload and retry.
	ErrConflict = errors.New("vaultstore: vault changed since it was loaded")
)

// Stored is one vault's persisted state. Both fields are opaque to the
// store: the blob only means something to the key that sealed it, and
// the salt is public input to key derivation.
type Stored struct {
	// Blob is the encrypted vault: base64 of nonce ‖ ciphertext ‖ tag.
	Blob string

	// Salt is the base64 encoding of the 16-byte derivation salt.
	Salt string
}

// NewStored pairs an encrypted blob with its raw salt, encoding the
// salt for storage.
func NewStored(blob string, salt []byte) Stored {
	return Stored{
		Blob: blob,
		Salt: base64.StdEncoding.EncodeToString(salt),
	}
}

// SaltBytes decodes the stored salt back to raw bytes for key
// derivation.
func (s Stored) SaltBytes() ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(s.Salt)
	if err != nil {
		return nil, fmt.Errorf("vaultstore: decoding salt: %w", err)
	}
	return salt, nil
}

// Store is the persistence boundary for vaults. Implementations must
// be safe for concurrent use.
type Store interface {
	// Load returns the stored state for a vault ID, or ErrNotFound.
	Load(ctx context.Context, id string) (Stored, error)

	// Create stores a new vault under an unused ID, or ErrExists.
	Create(ctx context.Context, id string, stored Stored) error

	// Replace writes updated over the stored row, but only if the row
	// still equals old — otherwise ErrConflict and no change. The
	// caller passes the value it last loaded; a conflict means
	// another client modified the vault in between.
	Replace(ctx context.Context, id string, old, updated Stored) error

	// Delete removes a vault, or ErrNotFound.
	Delete(ctx context.Context, id string) error
}
