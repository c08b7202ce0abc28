// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/bureau-foundation/vault/lib/entropy"
	"github.com/bureau-foundation/vault/lib/secret"
)

const (
	// KeySize is the required byte length of a sealing key.
	KeySize = chacha20poly1305.KeySize

	// NonceSize is the byte length of the random nonce prefixed to
	// every blob.
	NonceSize = chacha20poly1305.NonceSizeX

	// Overhead is the byte length of the authentication tag appended
	// to every blob.
	Overhead = chacha20poly1305.Overhead
)

// ErrAuthentication reports that a blob could not be opened: the key
// is wrong, or the blob is corrupted, truncated, or not valid base64.
// The cases are deliberately indistinguishable.
var ErrAuthentication = errors.New("sealed: wrong key or corrupted blob")

// Seal encrypts plaintext under key and returns the blob as a base64
// string: base64(nonce ‖ ciphertext ‖ tag). A fresh random nonce is
// drawn for every call, so sealing the same plaintext twice yields two
// different blobs. Plaintext must be non-empty.
//
// The key is borrowed and not closed. Plaintext is read but not
// zeroed; the caller owns its lifecycle.
func Seal(plaintext []byte, key *secret.Buffer) (string, error) {
	if len(plaintext) == 0 {
		return "", fmt.Errorf("sealed: plaintext is empty")
	}
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	nonce, err := entropy.Bytes(NonceSize)
	if err != nil {
		return "", err
	}

	blob := make([]byte, 0, NonceSize+len(plaintext)+Overhead)
	blob = append(blob, nonce...)
	blob = aead.Seal(blob, nonce, plaintext, nil)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Open authenticates and decrypts a blob produced by Seal. On success
// the plaintext is returned in a locked buffer that the caller must
// Close. On any failure — base64 decode, truncation, tag mismatch —
// the result is ErrAuthentication with no further detail, and no
// plaintext exists.
//
// The key is borrowed and not closed.
func Open(blob string, key *secret.Buffer) (*secret.Buffer, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, ErrAuthentication
	}
	if len(raw) < NonceSize+Overhead {
		return nil, ErrAuthentication
	}

	nonce, ciphertext := raw[:NonceSize], raw[NonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthentication
	}

	// Move the plaintext into mmap-backed memory immediately.
	// NewFromBytes zeros the heap copy.
	buffer, err := secret.NewFromBytes(plaintext)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("sealed: protecting plaintext: %w", err)
	}
	return buffer, nil
}

// newAEAD constructs the XChaCha20-Poly1305 instance for a key held in
// a locked buffer.
func newAEAD(key *secret.Buffer) (cipher.AEAD, error) {
	if key == nil {
		return nil, fmt.Errorf("sealed: key is nil")
	}
	if key.Len() != KeySize {
		return nil, fmt.Errorf("sealed: key must be %d bytes, got %d", KeySize, key.Len())
	}
	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("sealed: initializing cipher: %w", err)
	}
	return aead, nil
}
