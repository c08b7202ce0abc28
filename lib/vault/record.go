// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/bureau-foundation/vault/lib/entropy"
)

// Entry ID collisions and lookups are errors the UI layer can act on
// (show the entry, refuse the duplicate), so they are distinct
// sentinels rather than one opaque failure.
var (
	ErrEntryExists   = errors.New("vault: entry ID already exists")
	ErrEntryNotFound = errors.New("vault: entry not found")
)

// Record is the decrypted vault: everything the user stores, as one
// value. The zero value is not valid; use [New].
type Record struct {
	// Version is the schema version of the record. Written as
	// CurrentVersion; older versions are upgraded on decrypt.
	Version int `cbor:"version"`

	// CreatedAt is when the vault was created. Immutable.
	CreatedAt time.Time `cbor:"created_at"`

	// UpdatedAt is bumped by every mutation.
	UpdatedAt time.Time `cbor:"updated_at"`

	// Entries is the ordered list of password entries. Never nil
	// after New or Decrypt.
	Entries []Entry `cbor:"entries"`
}

// Entry is a single stored credential. Identity is the ID, which is
// unique for the lifetime of the vault — IDs of removed entries are
// not reused because references (history, audit trails) may outlive
// the entry.
type Entry struct {
	// ID is a 32-character hex string from NewEntryID.
	ID string `cbor:"id"`

	// Title is the user-facing name of the entry.
	Title string `cbor:"title"`

	Username string `cbor:"username,omitempty"`

	// Secret is the stored credential itself: a password, an API
	// token, a recovery code.
	Secret string `cbor:"secret"`

	URL   string `cbor:"url,omitempty"`
	Notes string `cbor:"notes,omitempty"`

	CreatedAt time.Time `cbor:"created_at"`
	UpdatedAt time.Time `cbor:"updated_at"`
}

// New returns an empty vault record at the current schema version.
func New(now time.Time) *Record {
	timestamp := now.UTC()
	return &Record{
		Version:   CurrentVersion,
		CreatedAt: timestamp,
		UpdatedAt: timestamp,
		Entries:   []Entry{},
	}
}

// NewEntryID returns a fresh random entry ID: 16 bytes of entropy,
// hex-encoded to 32 characters.
func NewEntryID() (string, error) {
	raw, err := entropy.Bytes(16)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// AddEntry appends an entry to the record. The entry's timestamps are
// stamped with now regardless of what the caller set; the record's
// UpdatedAt is bumped. Fails if the ID is empty or already present.
func (r *Record) AddEntry(entry Entry, now time.Time) error {
	if entry.ID == "" {
		return fmt.Errorf("vault: entry ID is empty")
	}
	if _, ok := r.Entry(entry.ID); ok {
		return fmt.Errorf("%w: %s", ErrEntryExists, entry.ID)
	}

	timestamp := now.UTC()
	entry.CreatedAt = timestamp
	entry.UpdatedAt = timestamp
	r.Entries = append(r.Entries, entry)
	r.UpdatedAt = timestamp
	return nil
}

// UpdateEntry replaces the stored entry with the same ID. CreatedAt is
// preserved from the stored entry; UpdatedAt is stamped with now.
func (r *Record) UpdateEntry(entry Entry, now time.Time) error {
	index := r.indexOf(entry.ID)
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, entry.ID)
	}

	timestamp := now.UTC()
	entry.CreatedAt = r.Entries[index].CreatedAt
	entry.UpdatedAt = timestamp
	r.Entries[index] = entry
	r.UpdatedAt = timestamp
	return nil
}

// RemoveEntry deletes the entry with the given ID, preserving the
// order of the rest.
func (r *Record) RemoveEntry(id string, now time.Time) error {
	index := r.indexOf(id)
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	r.Entries = slices.Delete(r.Entries, index, index+1)
	r.UpdatedAt = now.UTC()
	return nil
}

// Entry returns the entry with the given ID.
func (r *Record) Entry(id string) (Entry, bool) {
	index := r.indexOf(id)
	if index < 0 {
		return Entry{}, false
	}
	return r.Entries[index], true
}

func (r *Record) indexOf(id string) int {
	return slices.IndexFunc(r.Entries, func(e Entry) bool { return e.ID == id })
}

// Equal reports whether two records hold the same data. Timestamps
// compare as instants (time.Time.Equal), so a record survives an
// encode/decode round trip even though the location information does
// not.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Version != other.Version ||
		!r.CreatedAt.Equal(other.CreatedAt) ||
		!r.UpdatedAt.Equal(other.UpdatedAt) ||
		len(r.Entries) != len(other.Entries) {
		return false
	}
	for i := range r.Entries {
		if !r.Entries[i].Equal(other.Entries[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether two entries hold the same data.
func (e Entry) Equal(other Entry) bool {
	return e.ID == other.ID &&
		e.Title == other.Title &&
		e.Username == other.Username &&
		e.Secret == other.Secret &&
		e.URL == other.URL &&
		e.Notes == other.Notes &&
		e.CreatedAt.Equal(other.CreatedAt) &&
		e.UpdatedAt.Equal(other.UpdatedAt)
}

// validate checks the structural invariants a trusted writer always
// maintains. Called on decrypted records; a violation means the
// plaintext did not come from this code.
func (r *Record) validate() error {
	seen := make(map[string]struct{}, len(r.Entries))
	for i, entry := range r.Entries {
		if entry.ID == "" {
			return fmt.Errorf("entry %d has an empty ID", i)
		}
		if _, duplicate := seen[entry.ID]; duplicate {
			return fmt.Errorf("duplicate entry ID %s", entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}
