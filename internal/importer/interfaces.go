// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package importer

import (
	"context"

	"github.com/eaobservatory/hedwig2omp/internal/types"
)

// DirectoryInterface is the source of OMP accounts new links are made to.
type DirectoryInterface interface {
	GetUsersByEmail(ctx context.Context) (map[string]types.OMPUser, error)
}
