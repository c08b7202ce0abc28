// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import "fmt"

// CurrentVersion is the record schema version this code writes.
//
// Version history:
//
//	1 — initial schema: version, created_at, updated_at, entries.
const CurrentVersion = 1

// A migration upgrades a record's content from one schema version to
// the next. It transforms fields only; the driver bumps Version after
// the step succeeds, so a step cannot skip ahead or loop.
type migration func(*Record) error

// migrations maps a source version to the step that upgrades it to
// source+1. When CurrentVersion becomes 2, this table gains an entry
// for 1; a gap in the chain makes vaults of that vintage unreadable
// and is caught by migrate as ErrSerialization.
var migrations = map[int]migration{}

// migrate upgrades rec in place to CurrentVersion.
func migrate(rec *Record) error {
	return migrateTo(rec, CurrentVersion, migrations)
}

// migrateTo runs the chain of steps from rec.Version up to target.
// Split from migrate so the chain mechanics are testable without
// registering real migrations.
func migrateTo(rec *Record, target int, steps map[int]migration) error {
	if rec.Version < 1 {
		return fmt.Errorf("%w: record version %d is not valid", ErrSerialization, rec.Version)
	}
	if rec.Version > target {
		return fmt.Errorf("%w: record version %d is newer than supported version %d", ErrSerialization, rec.Version, target)
	}

	for rec.Version < target {
		step, ok := steps[rec.Version]
		if !ok {
			return fmt.Errorf("%w: no migration from record version %d", ErrSerialization, rec.Version)
		}
		if err := step(rec); err != nil {
			return fmt.Errorf("%w: migrating record from version %d: %v", ErrSerialization, rec.Version, err)
		}
		rec.Version++
	}
	return nil
}
