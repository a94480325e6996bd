// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/eaobservatory/hedwig2omp/internal/logging"
	"github.com/eaobservatory/hedwig2omp/migrations"
)

type gooseLogger struct {
	logger logging.LoggerInterface
}

func (l *gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Infof(format, v...)
}

func (l *gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatalf(format, v...)
}

// Migrate brings the schema of the connected store up to date.
func Migrate(ctx context.Context, c *DBClient) error {
	ctx, span := c.tracer.Start(ctx, "db.Migrate")
	defer span.End()

	goose.SetBaseFS(migrations.EmbedMigrations)
	goose.SetLogger(&gooseLogger{logger: c.logger})

	if err := goose.SetDialect(c.dialect.GooseDialect()); err != nil {
		return fmt.Errorf("failed to set migration dialect: %v", err)
	}

	if err := goose.UpContext(ctx, c.db, c.dialect.Name()); err != nil {
		return c.classify(fmt.Errorf("failed to run migrations: %w", err))
	}

	return nil
}

// MigrationVersion returns the current schema version.
func MigrationVersion(ctx context.Context, c *DBClient) (int64, error) {
	goose.SetBaseFS(migrations.EmbedMigrations)

	if err := goose.SetDialect(c.dialect.GooseDialect()); err != nil {
		return 0, fmt.Errorf("failed to set migration dialect: %v", err)
	}

	version, err := goose.GetDBVersionContext(ctx, c.db)
	if err != nil {
		return 0, c.classify(fmt.Errorf("failed to read schema version: %w", err))
	}

	return version, nil
}
