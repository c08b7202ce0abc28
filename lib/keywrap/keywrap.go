// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package keywrap protects the vault master key under a wrapping key
// derived from a hardware authentication assertion.
//
// The wrapped key is a [sealed] blob like any other: XChaCha20-Poly1305
// over the 32-byte master key, base64-encoded. What makes it a wrapped
// key is where the sealing key comes from — not a password derivation
// but a [Ceremony], the abstract boundary to platform authenticators
// (biometric sensors, secure elements, OS keystores). The ceremony
// yields assertion bytes; BLAKE3 derive-key mode turns those into the
// wrapping key. The engine never sees the hardware, only the bytes.
//
// Wrapping keys are never stored. Every unwrap re-runs the ceremony and
// re-derives the key, so possession of the wrapped blob alone is
// worthless without a fresh assertion.
package keywrap

import (
	"context"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/vault/lib/sealed"
	"github.com/bureau-foundation/vault/lib/secret"
)

// WrappingKeySize is the byte length of a derived wrapping key.
const WrappingKeySize = sealed.KeySize

// wrappingKeyContext is the BLAKE3 derive-key domain string. Fixed
// forever: changing it would invalidate every wrapped key in existence.
const wrappingKeyContext = "bureau.vault.keywrap.wrapping-key.v1"

// Ceremony is a source of hardware authentication assertions. An
// implementation talks to whatever authenticator the platform offers
// and returns the assertion's stable secret bytes. The engine requires
// exactly one property: the same physical authenticator yields the
// same bytes on every successful assertion.
//
// Assert blocks until the user completes the ceremony or ctx is done.
// The returned bytes are owned by the caller, which should zero them
// after deriving the wrapping key.
type Ceremony interface {
	Assert(ctx context.Context) ([]byte, error)
}

// WrappingKeyFromAssertion derives the 32-byte wrapping key from
// assertion bytes. The derivation is deterministic: the same assertion
// always yields the same key, which is what lets a wrapped blob created
// today be unwrapped after any number of process restarts.
func WrappingKeyFromAssertion(assertion []byte) (*secret.Buffer, error) {
	if len(assertion) == 0 {
		return nil, fmt.Errorf("keywrap: assertion is empty")
	}
	derived := make([]byte, WrappingKeySize)
	blake3.DeriveKey(wrappingKeyContext, assertion, derived)

	// NewFromBytes zeros the heap copy.
	key, err := secret.NewFromBytes(derived)
	if err != nil {
		return nil, fmt.Errorf("keywrap: protecting wrapping key: %w", err)
	}
	return key, nil
}

// Wrap seals the master key under the wrapping key and returns the
// wrapped blob. Both keys are borrowed and not closed.
func Wrap(master, wrapping *secret.Buffer) (string, error) {
	if master == nil {
		return "", fmt.Errorf("keywrap: master key is nil")
	}
	if master.Len() != sealed.KeySize {
		return "", fmt.Errorf("keywrap: master key must be %d bytes, got %d", sealed.KeySize, master.Len())
	}
	return sealed.Seal(master.Bytes(), wrapping)
}

// Unwrap opens a wrapped blob and returns the master key in a locked
// buffer that the caller must Close. A blob that authenticates but does
// not contain exactly 32 bytes is treated the same as a forgery:
// [sealed.ErrAuthentication], no detail.
func Unwrap(wrapped string, wrapping *secret.Buffer) (*secret.Buffer, error) {
	master, err := sealed.Open(wrapped, wrapping)
	if err != nil {
		return nil, err
	}
	if master.Len() != sealed.KeySize {
		master.Close()
		return nil, sealed.ErrAuthentication
	}
	return master, nil
}

// Static returns a Ceremony that replays a fixed assertion. It stands
// in for real authenticators in tests and on hosts where the assertion
// bytes were extracted ahead of time.
func Static(assertion []byte) Ceremony {
	copied := make([]byte, len(assertion))
	copy(copied, assertion)
	return staticCeremony(copied)
}

type staticCeremony []byte

func (c staticCeremony) Assert(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]byte, len(c))
	copy(out, c)
	return out, nil
}
