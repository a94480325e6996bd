// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package migrations

import "embed"

// EmbedMigrations holds one directory of goose migrations per driver.
//
//go:embed sqlite/*.sql mysql/*.sql postgres/*.sql
var EmbedMigrations embed.FS
