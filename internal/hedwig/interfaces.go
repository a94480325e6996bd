// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package hedwig

import (
	"context"

	"github.com/eaobservatory/hedwig2omp/internal/types"
)

// SourceInterface provides the Hedwig records for one semester.
type SourceInterface interface {
	Load(context.Context) (*types.Snapshot, error)
}
