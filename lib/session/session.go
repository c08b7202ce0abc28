// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/vault/lib/kdf"
	"github.com/bureau-foundation/vault/lib/keywrap"
	"github.com/bureau-foundation/vault/lib/secret"
	"github.com/bureau-foundation/vault/lib/vault"
)

// ErrKeyNotLoaded reports an operation that needs the master key while
// the session is locked.
var ErrKeyNotLoaded = errors.New("session: no master key loaded")

// Config holds the parameters for a new session.
type Config struct {
	// Logger receives lifecycle events (unlock, lock, rekey). If nil,
	// a no-op logger is used. Key material never appears in log
	// output.
	Logger *slog.Logger
}

// Session holds at most one active master key. The zero value is not
// valid; use [New]. A new session starts Locked.
type Session struct {
	logger *slog.Logger
	key    *secret.Buffer
}

// New returns a locked session.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{logger: logger}
}

// IsUnlocked reports whether a master key is loaded.
func (s *Session) IsUnlocked() bool {
	return s.key != nil
}

// Lock zeroes and drops the master key. Idempotent; locking a locked
// session does nothing.
func (s *Session) Lock() {
	if s.key == nil {
		return
	}
	s.key.Close()
	s.key = nil
	s.logger.Info("vault locked")
}

// DeriveKey derives a master key from the password and salt and
// installs it, unlocking the session. Any previously active key is
// retired first, so a derivation failure leaves the session Locked.
// Used at vault creation, before a blob exists to verify against; to
// open an existing vault use [Session.Unlock], which only installs the
// key if it actually decrypts the blob.
//
// The password is read but not zeroed; the caller owns its lifecycle.
func (s *Session) DeriveKey(password, salt []byte) error {
	s.Lock()

	key, err := kdf.DeriveMasterKey(password, salt)
	if err != nil {
		return err
	}
	s.key = key
	s.logger.Info("vault unlocked", "method", "derive")
	return nil
}

// Unlock derives a master key from the password and salt, decrypts the
// blob with it, and installs it. The previous key, if any, is retired
// before derivation begins; on any failure the candidate key is zeroed
// and the session stays Locked. A wrong password and a corrupted blob
// are indistinguishable: both are [sealed.ErrAuthentication].
func (s *Session) Unlock(password, salt []byte, blob string) (*vault.Record, error) {
	s.Lock()

	key, err := kdf.DeriveMasterKey(password, salt)
	if err != nil {
		return nil, err
	}
	rec, err := vault.Decrypt(blob, key)
	if err != nil {
		key.Close()
		s.logger.Warn("unlock failed", "method", "password", "error", err)
		return nil, err
	}

	s.key = key
	s.logger.Info("vault unlocked", "method", "password", "entries", len(rec.Entries))
	return rec, nil
}

// UnlockWithCeremony unlocks using the hardware path: a fresh
// assertion from the ceremony is turned into a wrapping key, the
// wrapped master key is unwrapped with it, and the blob is decrypted.
// The wrapping key and assertion are zeroed before return on every
// path; they are never retained. Failure discipline matches
// [Session.Unlock].
func (s *Session) UnlockWithCeremony(ctx context.Context, ceremony keywrap.Ceremony, wrappedKey, blob string) (*vault.Record, error) {
	s.Lock()

	wrapping, err := wrappingKeyFromCeremony(ctx, ceremony)
	if err != nil {
		s.logger.Warn("unlock failed", "method", "ceremony", "error", err)
		return nil, err
	}
	key, err := keywrap.Unwrap(wrappedKey, wrapping)
	wrapping.Close()
	if err != nil {
		s.logger.Warn("unlock failed", "method", "ceremony", "error", err)
		return nil, err
	}
	rec, err := vault.Decrypt(blob, key)
	if err != nil {
		key.Close()
		s.logger.Warn("unlock failed", "method", "ceremony", "error", err)
		return nil, err
	}

	s.key = key
	s.logger.Info("vault unlocked", "method", "ceremony", "entries", len(rec.Entries))
	return rec, nil
}

// EncryptVault encrypts the record under the active master key.
func (s *Session) EncryptVault(rec *vault.Record) (string, error) {
	if s.key == nil {
		return "", ErrKeyNotLoaded
	}
	return vault.Encrypt(rec, s.key)
}

// DecryptVault decrypts a blob under the active master key.
func (s *Session) DecryptVault(blob string) (*vault.Record, error) {
	if s.key == nil {
		return nil, ErrKeyNotLoaded
	}
	return vault.Decrypt(blob, s.key)
}

// WrapKey wraps the active master key under the given wrapping key,
// producing the blob for the hardware unlock path. The wrapping key is
// borrowed and not closed.
func (s *Session) WrapKey(wrapping *secret.Buffer) (string, error) {
	if s.key == nil {
		return "", ErrKeyNotLoaded
	}
	return keywrap.Wrap(s.key, wrapping)
}

// WrapKeyWithCeremony runs the ceremony, derives the wrapping key from
// the fresh assertion, and wraps the active master key under it. The
// wrapping key is zeroed before return.
func (s *Session) WrapKeyWithCeremony(ctx context.Context, ceremony keywrap.Ceremony) (string, error) {
	if s.key == nil {
		return "", ErrKeyNotLoaded
	}
	wrapping, err := wrappingKeyFromCeremony(ctx, ceremony)
	if err != nil {
		return "", err
	}
	defer wrapping.Close()
	return keywrap.Wrap(s.key, wrapping)
}

// wrappingKeyFromCeremony obtains a fresh assertion and derives the
// wrapping key from it. The assertion bytes are zeroed before return.
func wrappingKeyFromCeremony(ctx context.Context, ceremony keywrap.Ceremony) (*secret.Buffer, error) {
	assertion, err := ceremony.Assert(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: authentication ceremony: %w", err)
	}
	wrapping, err := keywrap.WrappingKeyFromAssertion(assertion)
	secret.Zero(assertion)
	return wrapping, err
}
