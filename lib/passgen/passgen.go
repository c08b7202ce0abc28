// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package passgen generates random passwords from a character-class
// policy.
//
// Every position is drawn independently and uniformly from the
// concatenation of the selected classes. There are no per-class
// quotas: a quota ("at least one digit") would make positions
// dependent on each other and skew the distribution away from
// uniform. Index selection uses rejection sampling over single random
// bytes so the modulo mapping carries no bias toward the low end of
// the charset.
//
// The generator is stateless; successive outputs are unrelated.
package passgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bureau-foundation/vault/lib/entropy"
	"github.com/bureau-foundation/vault/lib/secret"
)

// Character classes. The charset for a generation request is the
// concatenation of the selected classes in the order listed here.
const (
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Digits    = "0123456789"
	Symbols   = "!@#$%^&*()-_=+[]{}:;,.?"
)

// ErrInvalidPolicy reports a generation request that cannot produce a
// password: no character classes selected, or a non-positive length.
var ErrInvalidPolicy = errors.New("passgen: invalid password policy")

// Options selects which character classes may appear in the password.
type Options struct {
	Uppercase bool
	Lowercase bool
	Digits    bool
	Symbols   bool
}

// charset returns the concatenation of the selected classes.
func (o Options) charset() string {
	var b strings.Builder
	if o.Uppercase {
		b.WriteString(Uppercase)
	}
	if o.Lowercase {
		b.WriteString(Lowercase)
	}
	if o.Digits {
		b.WriteString(Digits)
	}
	if o.Symbols {
		b.WriteString(Symbols)
	}
	return b.String()
}

// Generate returns a random password of the given length drawn from
// the classes selected in opts. Fails with [ErrInvalidPolicy] if no
// class is selected or length is not positive, and with
// [entropy.ErrUnavailable] if the platform random source fails.
func Generate(length int, opts Options) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("%w: length must be positive, got %d", ErrInvalidPolicy, length)
	}
	charset := opts.charset()
	if charset == "" {
		return "", fmt.Errorf("%w: no character classes selected", ErrInvalidPolicy)
	}

	// Largest multiple of the charset size that fits in a byte. Draws
	// at or above it are discarded: keeping them would map the
	// leftover range onto the front of the charset and bias those
	// characters.
	limit := 256 - 256%len(charset)

	password := make([]byte, 0, length)
	for len(password) < length {
		draws, err := entropy.Bytes(length - len(password))
		if err != nil {
			return "", err
		}
		for _, draw := range draws {
			if int(draw) >= limit {
				continue
			}
			password = append(password, charset[int(draw)%len(charset)])
		}
		secret.Zero(draws)
	}

	result := string(password)
	secret.Zero(password)
	return result, nil
}
