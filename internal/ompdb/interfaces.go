// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ompdb

import (
	"context"

	"github.com/eaobservatory/hedwig2omp/internal/types"
)

// DirectoryInterface is read access to the OMP user directory.
type DirectoryInterface interface {
	GetUsersByEmail(context.Context) (map[string]types.OMPUser, error)
	GetUsersByID(context.Context, []int64) (map[int64]types.OMPUser, error)
}
