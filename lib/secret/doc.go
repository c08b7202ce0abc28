// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides memory-safe custody for key material: master
// keys, wrapping keys, and decrypted vault plaintext.
//
// [Buffer] allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// locks it into physical RAM via mlock (preventing swap), and marks it
// excluded from core dumps via madvise(MADV_DONTDUMP). On Close, the
// memory is zeroed, unlocked, and unmapped. Because the memory lives
// outside the Go heap, the garbage collector cannot copy or relocate
// it, so zeroing on Close is the end of the secret: no stale copies
// survive in reachable memory.
//
// Constructors:
//
//   - [New] -- allocates a zero-filled buffer of a given size
//   - [NewFromBytes] -- copies into protected memory, zeros the source
//
// Access via [Buffer.Bytes] (slice into the mmap region) or
// [Buffer.String] (heap copy for API boundaries). [Buffer.Equal] uses
// constant-time comparison. After Close, any access panics. Close is
// idempotent.
//
// [Zero] overwrites transient byte slices that never enter a Buffer,
// such as password arguments after derivation. Zeroing is always an
// explicit operation here; garbage collection is never relied upon for
// erasure.
//
// Depends on golang.org/x/sys/unix. No other internal dependencies.
package secret
