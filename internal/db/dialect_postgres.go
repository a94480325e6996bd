// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"database/sql"
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/eaobservatory/hedwig2omp/internal/config"
)

const (
	postgresDefaultPort     = 5432
	postgresUniqueViolation = "23505"
)

// postgresDialect is a client/server store reached through pgx.
type postgresDialect struct{}

func (postgresDialect) Name() string {
	return config.DriverPostgres
}

func (postgresDialect) GooseDialect() string {
	return "postgres"
}

func (postgresDialect) Placeholder() sq.PlaceholderFormat {
	return sq.Dollar
}

func (postgresDialect) QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (postgresDialect) IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == postgresUniqueViolation
	}

	return false
}

func (postgresDialect) IsConnectivity(err error) bool {
	if err == nil {
		return false
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	return isConnectivityError(err) || pgconn.SafeToRetry(err)
}

func (postgresDialect) open(c Config) (*sql.DB, error) {
	dsn := c.DSN
	if dsn == "" {
		dsn = PostgresURL(c)
	}

	pgConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, &config.ConfigurationError{Section: "database", Key: "dsn", Reason: "invalid postgres dsn", Err: err}
	}

	if c.TracingEnabled {
		pgConfig.Tracer = otelpgx.NewTracer()
	}

	return stdlib.OpenDB(*pgConfig), nil
}

// PostgresURL builds a postgres URL from discrete settings, escaping the
// credentials.
func PostgresURL(c Config) string {
	port := c.Port
	if port == 0 {
		port = postgresDefaultPort
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(port)),
		Path:   "/" + strings.TrimPrefix(c.Database, "/"),
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}

	return u.String()
}
