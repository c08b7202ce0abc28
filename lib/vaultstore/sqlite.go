// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vaultstore

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/vault/lib/clock"
)

// Config holds the parameters for opening a SQLite vault store. Path
// is required; everything else has defaults.
type Config struct {
	// Path is the filesystem path to the SQLite database file. The
	// parent directory must exist; the file is created if it does
	// not. Use ":memory:" only with PoolSize 1, since each in-memory
	// connection is an independent database.
	Path string

	// PoolSize is the number of connections in the pool. If zero or
	// negative, defaults to 4. Writes are serialized by SQLite
	// regardless; extra connections only help concurrent readers.
	PoolSize int

	// Logger receives operational messages (store open/close, vault
	// create/replace/delete). If nil, a no-op logger is used. Blob
	// and salt contents never appear in log output.
	Logger *slog.Logger

	// Clock stamps row creation and update times. If nil, the real
	// clock is used.
	Clock clock.Clock
}

// SQLite is a Store backed by a WAL-mode SQLite connection pool.
type SQLite struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	clock  clock.Clock
	path   string
}

// schema is applied to every connection on first use. One row per
// vault; timestamps are Unix seconds for operational inspection only
// and never cross the API.
const schema = `
CREATE TABLE IF NOT EXISTS vaults (
	id              TEXT PRIMARY KEY,
	blob            TEXT NOT NULL,
	salt            TEXT NOT NULL,
	created_at_unix INTEGER NOT NULL,
	updated_at_unix INTEGER NOT NULL
);
`

// OpenSQLite opens (creating if needed) the vault database at
// cfg.Path. The caller must call Close when done.
func OpenSQLite(cfg Config) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("vaultstore: Path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("vaultstore: opening %s: %w", cfg.Path, err)
	}

	logger.Info("vault store opened",
		"path", cfg.Path,
		"pool_size", poolSize,
	)

	return &SQLite{
		pool:   pool,
		logger: logger,
		clock:  clk,
		path:   cfg.Path,
	}, nil
}

// prepareConnection applies standard pragmas and the schema. Runs once
// per connection, on first use.
func prepareConnection(conn *sqlite.Conn) error {
	// WAL keeps readers unblocked during the (rare) writes; NORMAL
	// synchronous is durable enough for data that is re-creatable
	// from the client on conflict.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("vaultstore: %s: %w", pragma, err)
		}
	}

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("vaultstore: creating schema: %w", err)
	}
	return nil
}

// Close closes the connection pool. Blocks until all borrowed
// connections are returned.
func (s *SQLite) Close() error {
	if err := s.pool.Close(); err != nil {
		s.logger.Error("vault store close error",
			"path", s.path,
			"error", err,
		)
		return fmt.Errorf("vaultstore: closing %s: %w", s.path, err)
	}
	s.logger.Info("vault store closed", "path", s.path)
	return nil
}

func (s *SQLite) Load(ctx context.Context, id string) (Stored, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return Stored{}, fmt.Errorf("vaultstore: load: %w", err)
	}
	defer s.pool.Put(conn)

	stored, found, err := loadRow(conn, id)
	if err != nil {
		return Stored{}, fmt.Errorf("vaultstore: load %s: %w", id, err)
	}
	if !found {
		return Stored{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return stored, nil
}

func (s *SQLite) Create(ctx context.Context, id string, stored Stored) (err error) {
	if id == "" {
		return fmt.Errorf("vaultstore: vault ID is empty")
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("vaultstore: create: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("vaultstore: create %s: begin transaction: %w", id, err)
	}
	defer endTransaction(&err)

	_, found, err := loadRow(conn, id)
	if err != nil {
		return fmt.Errorf("vaultstore: create %s: %w", id, err)
	}
	if found {
		return fmt.Errorf("%w: %s", ErrExists, id)
	}

	now := s.clock.Now().Unix()
	err = sqlitex.Execute(conn,
		`INSERT INTO vaults (id, blob, salt, created_at_unix, updated_at_unix)
		 VALUES (?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{id, stored.Blob, stored.Salt, now, now},
		})
	if err != nil {
		return fmt.Errorf("vaultstore: create %s: %w", id, err)
	}

	s.logger.Info("vault created", "id", id)
	return nil
}

// Replace is the CAS write: inside one immediate transaction it
// re-reads the row, compares it to old, and only then updates. The
// transaction takes the write lock up front, so the compare cannot
// race another writer.
func (s *SQLite) Replace(ctx context.Context, id string, old, updated Stored) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("vaultstore: replace: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("vaultstore: replace %s: begin transaction: %w", id, err)
	}
	defer endTransaction(&err)

	current, found, err := loadRow(conn, id)
	if err != nil {
		return fmt.Errorf("vaultstore: replace %s: %w", id, err)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if current != old {
		return fmt.Errorf("%w: %s", ErrConflict, id)
	}

	err = sqlitex.Execute(conn,
		`UPDATE vaults SET blob = ?, salt = ?, updated_at_unix = ? WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{updated.Blob, updated.Salt, s.clock.Now().Unix(), id},
		})
	if err != nil {
		return fmt.Errorf("vaultstore: replace %s: %w", id, err)
	}

	s.logger.Info("vault replaced", "id", id)
	return nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("vaultstore: delete: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `DELETE FROM vaults WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
		})
	if err != nil {
		return fmt.Errorf("vaultstore: delete %s: %w", id, err)
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.logger.Info("vault deleted", "id", id)
	return nil
}

// loadRow reads one vault row on an already-held connection.
func loadRow(conn *sqlite.Conn, id string) (Stored, bool, error) {
	var stored Stored
	found := false
	err := sqlitex.Execute(conn, `SELECT blob, salt FROM vaults WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				stored.Blob = stmt.ColumnText(0)
				stored.Salt = stmt.ColumnText(1)
				return nil
			},
		})
	if err != nil {
		return Stored{}, false, err
	}
	return stored, found, nil
}
