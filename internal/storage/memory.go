// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"
	"maps"
	"sync"
)

var _ IdentityStoreInterface = (*MemoryStore)(nil)

// MemoryStore keeps mappings in process memory, used for dry runs.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[int64]int64
}

func (m *MemoryStore) GetAllUsers(ctx context.Context) (map[int64]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return maps.Clone(m.users), nil
}

func (m *MemoryStore) AddUser(ctx context.Context, hedwigID, ompID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[hedwigID]; ok {
		return fmt.Errorf("failed to insert user %d: %w", hedwigID, ErrDuplicateKey)
	}

	m.users[hedwigID] = ompID

	return nil
}

// NewMemoryStore returns a store seeded with a copy of the given mappings.
func NewMemoryStore(users map[int64]int64) *MemoryStore {
	m := new(MemoryStore)
	m.users = make(map[int64]int64, len(users))
	maps.Copy(m.users, users)

	return m
}
