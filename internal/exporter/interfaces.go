// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package exporter

import (
	"context"

	"github.com/eaobservatory/hedwig2omp/internal/types"
)

type ResolverInterface interface {
	BuildCodeTable([]types.Affiliation) map[int64]string
	Resolve(context.Context, types.AssignmentTable, map[int64]string, []types.Affiliation) ([]types.ResolvedAssignment, error)
	MemberCode(map[int64]string, int64, string) (string, error)
}

type SourceInterface interface {
	Load(context.Context) (*types.Snapshot, error)
}

type IdentityStoreInterface interface {
	GetAllUsers(context.Context) (map[int64]int64, error)
}

type DirectoryInterface interface {
	GetUsersByID(context.Context, []int64) (map[int64]types.OMPUser, error)
}
