// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vaultstore

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Store for tests and hosts that bring their
// own persistence. Safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	vaults map[string]Stored
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{vaults: make(map[string]Stored)}
}

func (m *Memory) Load(ctx context.Context, id string) (Stored, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.vaults[id]
	if !ok {
		return Stored{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return stored, nil
}

func (m *Memory) Create(ctx context.Context, id string, stored Stored) error {
	if id == "" {
		return fmt.Errorf("vaultstore: vault ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.vaults[id]; ok {
		return fmt.Errorf("%w: %s", ErrExists, id)
	}
	m.vaults[id] = stored
	return nil
}

func (m *Memory) Replace(ctx context.Context, id string, old, updated Stored) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.vaults[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if current != old {
		return fmt.Errorf("%w: %s", ErrConflict, id)
	}
	m.vaults[id] = updated
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.vaults[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.vaults, id)
	return nil
}
