// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package vaultstore persists the two opaque strings a vault amounts
// to at rest: the encrypted blob and the base64 salt.
//
// The crypto engine never touches storage itself; it hands blobs and
// salts across this boundary and gets them back. The store sees only
// ciphertext — it cannot distinguish a vault full of credentials from
// random bytes, which is the zero-knowledge property. Rows are keyed
// by a caller-supplied vault ID; associating IDs with identities and
// enforcing who may read which row is the caller's concern.
//
// [Store.Replace] is compare-and-swap: the write succeeds only if the
// row still holds the value the caller previously loaded, otherwise
// [ErrConflict]. This is the commit half of a two-phase rekey — a
// conflicted or failed replace leaves the old blob in place, and the
// old master password still opens the vault.
//
// Two implementations: [Memory] for tests and embedding, and [SQLite]
// backed by a WAL-mode connection pool.
package vaultstore
