// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"

	"github.com/bureau-foundation/vault/lib/kdf"
	"github.com/bureau-foundation/vault/lib/secret"
	"github.com/bureau-foundation/vault/lib/vault"
)

// Rekey is a staged master-password change: a fresh salt, a key
// derived from the new password, and the record re-encrypted under
// that key — all produced while the old key stays active.
//
// The caller persists Blob and Salt, then calls Commit to make the new
// key the session's active key. If persisting fails, Abandon zeroes
// the new key and the session is exactly as it was; the old blob in
// storage is still the vault, so the caller may retry the whole rekey
// or give up with nothing lost. The first call to Commit or Abandon
// wins; later calls to either are no-ops.
type Rekey struct {
	session *Session
	key     *secret.Buffer
	done    bool

	// Blob is the record encrypted under the new key.
	Blob string

	// Salt is the fresh 16-byte salt the new key derives from. The
	// vault's previous salt dies with the previous password.
	Salt []byte
}

// Rekey stages a master-password change for the given record. The
// session must be unlocked. Nothing about the session changes: the old
// key remains active and every operation keeps working against the old
// blob until [Rekey.Commit].
//
// The new password is read but not zeroed; the caller owns its
// lifecycle.
func (s *Session) Rekey(newPassword []byte, rec *vault.Record) (*Rekey, error) {
	if s.key == nil {
		return nil, ErrKeyNotLoaded
	}
	if rec == nil {
		return nil, fmt.Errorf("session: record is nil")
	}

	salt, err := kdf.GenerateSalt()
	if err != nil {
		return nil, err
	}
	key, err := kdf.DeriveMasterKey(newPassword, salt)
	if err != nil {
		return nil, err
	}
	blob, err := vault.Encrypt(rec, key)
	if err != nil {
		key.Close()
		return nil, err
	}

	s.logger.Info("rekey staged", "entries", len(rec.Entries))
	return &Rekey{
		session: s,
		key:     key,
		Blob:    blob,
		Salt:    salt,
	}, nil
}

// Commit installs the staged key as the session's active master key,
// zeroing the old one. Call only after Blob and Salt are safely
// persisted.
func (r *Rekey) Commit() {
	if r.done {
		return
	}
	r.done = true

	if r.session.key != nil {
		r.session.key.Close()
	}
	r.session.key = r.key
	r.key = nil
	r.session.logger.Info("rekey committed")
}

// Abandon zeroes the staged key and discards the staging. The session
// is untouched: the old key is still active, the old blob still
// decrypts. Always safe, including after the staging was never used.
func (r *Rekey) Abandon() {
	if r.done {
		return
	}
	r.done = true

	r.key.Close()
	r.key = nil
	r.session.logger.Info("rekey abandoned")
}
