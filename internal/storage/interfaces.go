// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
)

// IdentityStoreInterface is the mapping from Hedwig user ids to OMP user
// ids. Mappings are only ever added, never changed or removed.
type IdentityStoreInterface interface {
	GetAllUsers(ctx context.Context) (map[int64]int64, error)
	AddUser(ctx context.Context, hedwigID, ompID int64) error
}
