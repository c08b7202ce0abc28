// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package kdf derives master keys from master passwords.
//
// The derivation is Argon2id with fixed cost parameters: it is
// deliberately slow (hundreds of milliseconds on current hardware) and
// memory-hard (64 MiB), which is what makes offline guessing of the
// master password expensive. Derivation is fully deterministic: the
// same password and salt produce the same master key on every client,
// so a vault created on one machine unlocks on any other given its
// persisted salt.
//
// The derived key is returned in a locked [secret.Buffer]; no
// intermediate copy of the key survives on the Go heap. Passwords are
// treated as read-only input — callers zero them with [secret.Zero]
// once no longer needed.
package kdf

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/bureau-foundation/vault/lib/entropy"
	"github.com/bureau-foundation/vault/lib/secret"
)

const (
	// KeySize is the byte length of a derived master key.
	KeySize = 32

	// SaltSize is the required byte length of a derivation salt.
	SaltSize = 16

	// Argon2id cost parameters. These are protocol constants, not
	// configuration: every client must derive identical keys from
	// identical inputs, and weakening them silently would weaken every
	// vault. Three passes over 64 MiB with a single lane: the single
	// lane keeps derivation identical in environments without thread
	// parallelism.
	argonPasses    = 3
	argonMemoryKiB = 64 * 1024
	argonLanes     = 1
)

// ErrDerivation reports that a master key could not be derived:
// the salt had the wrong length, or the protected allocation for the
// key failed. The password itself never appears in the error.
var ErrDerivation = errors.New("kdf: deriving master key failed")

// DeriveMasterKey derives a 32-byte master key from a master password
// and a 16-byte salt. The password is not retained and not zeroed;
// the caller owns its lifecycle.
func DeriveMasterKey(password, salt []byte) (*secret.Buffer, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrDerivation, SaltSize, len(salt))
	}

	key := argon2.IDKey(password, salt, argonPasses, argonMemoryKiB, argonLanes, KeySize)

	// NewFromBytes moves the key into mlocked memory and zeros the
	// heap copy argon2 returned.
	buffer, err := secret.NewFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDerivation, err)
	}
	return buffer, nil
}

// GenerateSalt produces a fresh 16-byte derivation salt. It is called
// once per vault, at creation: the salt is immutable for the vault's
// lifetime, and changing the master password generates a new one.
func GenerateSalt() ([]byte, error) {
	return entropy.Bytes(SaltSize)
}
