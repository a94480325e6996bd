// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

type DBClientInterface interface {
	// Statement returns a query builder bound to the transaction carried by
	// ctx, or to the connection pool when there is none.
	Statement(context.Context) sq.StatementBuilderType
	// WithTx runs fn inside a transaction which is committed when fn
	// returns nil and rolled back otherwise.
	WithTx(context.Context, func(context.Context) error) error
	Dialect() Dialect
	Ping(context.Context) error
	Close() error
}

// Dialect captures everything that differs between the supported backing
// stores.
type Dialect interface {
	// Name is the driver name used in the configuration file.
	Name() string
	// GooseDialect is the dialect name understood by goose.
	GooseDialect() string
	Placeholder() sq.PlaceholderFormat
	QuoteIdentifier(string) string
	IsDuplicateKey(error) bool
	IsConnectivity(error) bool

	open(Config) (*sql.DB, error)
}
