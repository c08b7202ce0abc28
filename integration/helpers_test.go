// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package integration_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/vault/lib/clock"
	"github.com/bureau-foundation/vault/lib/passgen"
	"github.com/bureau-foundation/vault/lib/session"
	"github.com/bureau-foundation/vault/lib/vault"
	"github.com/bureau-foundation/vault/lib/vaultstore"
)

var testStart = time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)

// testEnv bundles the moving parts of a deployment: a SQLite store on
// disk and the deterministic clock its rows are stamped with.
type testEnv struct {
	store *vaultstore.SQLite
	clock *clock.FakeClock
	path  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fake := clock.Fake(testStart)
	path := filepath.Join(t.TempDir(), "vaults.db")
	store, err := vaultstore.OpenSQLite(vaultstore.Config{
		Path:     path,
		PoolSize: 4,
		Clock:    fake,
	})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("closing store: %v", err)
		}
	})
	return &testEnv{store: store, clock: fake, path: path}
}

// newSession returns a locked session that is re-locked (zeroing any
// loaded key) when the test finishes.
func newSession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(session.Config{})
	t.Cleanup(s.Lock)
	return s
}

// generatedEntry builds a vault entry whose secret comes from the
// password generator, the way a client fills a new credential.
func generatedEntry(t *testing.T, title string) vault.Entry {
	t.Helper()
	id, err := vault.NewEntryID()
	if err != nil {
		t.Fatalf("NewEntryID: %v", err)
	}
	password, err := passgen.Generate(24, passgen.Options{
		Uppercase: true,
		Lowercase: true,
		Digits:    true,
		Symbols:   true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return vault.Entry{ID: id, Title: title, Secret: password}
}
