// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package entropy is the engine's single source of random bytes.
//
// Salts, nonces, generated passwords, and entry identifiers all draw
// from this package, which reads exclusively from the platform CSPRNG
// (crypto/rand). There is no fallback generator: if the platform
// source cannot deliver, operations fail with [ErrUnavailable], and
// callers must treat that as fatal rather than degrade to weaker
// randomness.
//
// All functions are safe for concurrent use.
package entropy

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// ErrUnavailable reports that the platform's cryptographically secure
// random source could not produce the requested bytes. It is the only
// engine failure that is fatal rather than recoverable: callers
// propagate it instead of retrying or substituting another source.
var ErrUnavailable = errors.New("entropy: secure random source unavailable")

// Bytes returns n cryptographically secure random bytes.
func Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("entropy: byte count must be non-negative, got %d", n)
	}
	out := make([]byte, n)
	if err := Fill(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Fill overwrites p entirely with cryptographically secure random
// bytes. On failure p must not be used: it may be partially filled.
func Fill(p []byte) error {
	if _, err := io.ReadFull(rand.Reader, p); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
