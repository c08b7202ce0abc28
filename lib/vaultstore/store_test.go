// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vaultstore_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bureau-foundation/vault/lib/vaultstore"
)

func TestStored_SaltRoundTrip(t *testing.T) {
	salt := []byte("0123456789abcdef")
	stored := vaultstore.NewStored("blob-contents", salt)

	if stored.Blob != "blob-contents" {
		t.Errorf("Blob = %q, want %q", stored.Blob, "blob-contents")
	}

	decoded, err := stored.SaltBytes()
	if err != nil {
		t.Fatalf("SaltBytes: %v", err)
	}
	if !bytes.Equal(decoded, salt) {
		t.Errorf("SaltBytes() = %q, want %q", decoded, salt)
	}
}

func TestStored_BadSalt(t *testing.T) {
	stored := vaultstore.Stored{Salt: "not-base64!!!"}
	if _, err := stored.SaltBytes(); err == nil {
		t.Error("SaltBytes() on invalid base64 should return error")
	}
}

// testStoreContract runs the Store semantics every implementation must
// satisfy.
func testStoreContract(t *testing.T, newStore func(t *testing.T) vaultstore.Store) {
	ctx := context.Background()

	t.Run("CreateThenLoad", func(t *testing.T) {
		store := newStore(t)
		stored := vaultstore.NewStored("blob-v1", []byte("0123456789abcdef"))

		if err := store.Create(ctx, "vault-1", stored); err != nil {
			t.Fatalf("Create: %v", err)
		}
		loaded, err := store.Load(ctx, "vault-1")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if loaded != stored {
			t.Errorf("Load() = %+v, want %+v", loaded, stored)
		}
	})

	t.Run("LoadMissing", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Load(ctx, "nobody")
		if !errors.Is(err, vaultstore.ErrNotFound) {
			t.Errorf("Load(missing) = %v, want ErrNotFound", err)
		}
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		store := newStore(t)
		stored := vaultstore.NewStored("blob-v1", []byte("0123456789abcdef"))

		if err := store.Create(ctx, "vault-1", stored); err != nil {
			t.Fatalf("Create: %v", err)
		}
		err := store.Create(ctx, "vault-1", vaultstore.NewStored("other", []byte("fedcba9876543210")))
		if !errors.Is(err, vaultstore.ErrExists) {
			t.Errorf("Create(duplicate) = %v, want ErrExists", err)
		}

		// The original row is untouched.
		loaded, err := store.Load(ctx, "vault-1")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if loaded != stored {
			t.Errorf("Load() after rejected create = %+v, want %+v", loaded, stored)
		}
	})

	t.Run("CreateEmptyID", func(t *testing.T) {
		store := newStore(t)
		err := store.Create(ctx, "", vaultstore.NewStored("blob", []byte("0123456789abcdef")))
		if err == nil {
			t.Error("Create with empty ID should return error")
		}
	})

	t.Run("Replace", func(t *testing.T) {
		store := newStore(t)
		old := vaultstore.NewStored("blob-v1", []byte("0123456789abcdef"))
		updated := vaultstore.NewStored("blob-v2", []byte("fedcba9876543210"))

		if err := store.Create(ctx, "vault-1", old); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := store.Replace(ctx, "vault-1", old, updated); err != nil {
			t.Fatalf("Replace: %v", err)
		}

		loaded, err := store.Load(ctx, "vault-1")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if loaded != updated {
			t.Errorf("Load() = %+v, want %+v", loaded, updated)
		}
	})

	t.Run("ReplaceConflict", func(t *testing.T) {
		store := newStore(t)
		original := vaultstore.NewStored("blob-v1", []byte("0123456789abcdef"))
		second := vaultstore.NewStored("blob-v2", []byte("0123456789abcdef"))
		third := vaultstore.NewStored("blob-v3", []byte("0123456789abcdef"))

		if err := store.Create(ctx, "vault-1", original); err != nil {
			t.Fatalf("Create: %v", err)
		}
		// Another client commits first.
		if err := store.Replace(ctx, "vault-1", original, second); err != nil {
			t.Fatalf("Replace: %v", err)
		}

		// Our replace, still based on the original, must lose.
		err := store.Replace(ctx, "vault-1", original, third)
		if !errors.Is(err, vaultstore.ErrConflict) {
			t.Errorf("Replace(stale old) = %v, want ErrConflict", err)
		}

		// The winner's row survives.
		loaded, err := store.Load(ctx, "vault-1")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if loaded != second {
			t.Errorf("Load() after conflicted replace = %+v, want %+v", loaded, second)
		}
	})

	t.Run("ReplaceMissing", func(t *testing.T) {
		store := newStore(t)
		stored := vaultstore.NewStored("blob", []byte("0123456789abcdef"))
		err := store.Replace(ctx, "nobody", stored, stored)
		if !errors.Is(err, vaultstore.ErrNotFound) {
			t.Errorf("Replace(missing) = %v, want ErrNotFound", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		stored := vaultstore.NewStored("blob", []byte("0123456789abcdef"))

		if err := store.Create(ctx, "vault-1", stored); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := store.Delete(ctx, "vault-1"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := store.Load(ctx, "vault-1"); !errors.Is(err, vaultstore.ErrNotFound) {
			t.Errorf("Load(deleted) = %v, want ErrNotFound", err)
		}
		if err := store.Delete(ctx, "vault-1"); !errors.Is(err, vaultstore.ErrNotFound) {
			t.Errorf("Delete(deleted) = %v, want ErrNotFound", err)
		}

		// The ID is free for reuse after deletion.
		if err := store.Create(ctx, "vault-1", stored); err != nil {
			t.Errorf("Create after Delete: %v", err)
		}
	})

	t.Run("ConcurrentCreates", func(t *testing.T) {
		store := newStore(t)

		const goroutineCount = 8
		var waitGroup sync.WaitGroup
		errs := make(chan error, goroutineCount)

		for i := range goroutineCount {
			waitGroup.Add(1)
			go func() {
				defer waitGroup.Done()

				id := fmt.Sprintf("vault-%d", i)
				stored := vaultstore.NewStored("blob-"+id, []byte("0123456789abcdef"))
				if err := store.Create(ctx, id, stored); err != nil {
					errs <- err
					return
				}
				loaded, err := store.Load(ctx, id)
				if err != nil {
					errs <- err
					return
				}
				if loaded != stored {
					errs <- fmt.Errorf("Load(%s) = %+v, want %+v", id, loaded, stored)
				}
			}()
		}

		waitGroup.Wait()
		close(errs)

		for err := range errs {
			t.Error(err)
		}
	})

	t.Run("ConcurrentReplaceOneWinner", func(t *testing.T) {
		store := newStore(t)
		original := vaultstore.NewStored("blob-v1", []byte("0123456789abcdef"))
		if err := store.Create(ctx, "vault-1", original); err != nil {
			t.Fatalf("Create: %v", err)
		}

		// All writers race from the same loaded value; CAS must admit
		// exactly one.
		const writerCount = 8
		var waitGroup sync.WaitGroup
		results := make(chan error, writerCount)

		for i := range writerCount {
			waitGroup.Add(1)
			go func() {
				defer waitGroup.Done()
				updated := vaultstore.NewStored(fmt.Sprintf("blob-writer-%d", i), []byte("0123456789abcdef"))
				results <- store.Replace(ctx, "vault-1", original, updated)
			}()
		}

		waitGroup.Wait()
		close(results)

		wins, conflicts := 0, 0
		for err := range results {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, vaultstore.ErrConflict):
				conflicts++
			default:
				t.Errorf("Replace: %v", err)
			}
		}
		if wins != 1 {
			t.Errorf("replace winners = %d, want exactly 1", wins)
		}
		if conflicts != writerCount-1 {
			t.Errorf("replace conflicts = %d, want %d", conflicts, writerCount-1)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, func(t *testing.T) vaultstore.Store {
		return vaultstore.NewMemory()
	})
}

func TestSQLiteStore(t *testing.T) {
	testStoreContract(t, func(t *testing.T) vaultstore.Store {
		return openTestStore(t)
	})
}

// openTestStore creates a SQLite store backed by a temporary database
// file, closed automatically when the test completes.
func openTestStore(t *testing.T) *vaultstore.SQLite {
	t.Helper()

	store, err := vaultstore.OpenSQLite(vaultstore.Config{
		Path:     filepath.Join(t.TempDir(), "vaults.db"),
		PoolSize: 4,
	})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}
