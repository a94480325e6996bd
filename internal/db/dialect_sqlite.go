// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/glebarez/go-sqlite"

	"github.com/eaobservatory/hedwig2omp/internal/config"
)

// sqliteDialect is the embedded, file-backed store.
type sqliteDialect struct{}

func (sqliteDialect) Name() string {
	return config.DriverSQLite
}

func (sqliteDialect) GooseDialect() string {
	return "sqlite3"
}

func (sqliteDialect) Placeholder() sq.PlaceholderFormat {
	return sq.Question
}

func (sqliteDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (sqliteDialect) IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}

func (sqliteDialect) IsConnectivity(err error) bool {
	if err == nil {
		return false
	}

	if isConnectivityError(err) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "unable to open database file") ||
		strings.Contains(msg, "database is locked")
}

func (sqliteDialect) open(c Config) (*sql.DB, error) {
	if c.File == "" {
		return nil, config.NewConfigurationError("database", "file", "sqlite database file is required")
	}

	if dir := filepath.Dir(c.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// busy_timeout lets a second process wait for the write lock instead of
	// failing straight away.
	dsn := c.File + "?_pragma=busy_timeout(5000)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// one writer at a time
	conn.SetMaxOpenConns(1)

	return conn, nil
}
