// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"database/sql"
	"errors"
	"net"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"

	"github.com/eaobservatory/hedwig2omp/internal/config"
)

const (
	mysqlDefaultPort       = 3306
	mysqlErrDuplicateEntry = 1062
)

// mysqlDialect is a client/server store reached through go-sql-driver.
type mysqlDialect struct{}

func (mysqlDialect) Name() string {
	return config.DriverMySQL
}

func (mysqlDialect) GooseDialect() string {
	return "mysql"
}

func (mysqlDialect) Placeholder() sq.PlaceholderFormat {
	return sq.Question
}

func (mysqlDialect) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (mysqlDialect) IsDuplicateKey(err error) bool {
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == mysqlErrDuplicateEntry
	}

	return false
}

func (mysqlDialect) IsConnectivity(err error) bool {
	if err == nil {
		return false
	}

	return isConnectivityError(err) || errors.Is(err, mysql.ErrInvalidConn)
}

func (mysqlDialect) open(c Config) (*sql.DB, error) {
	var cfg *mysql.Config

	if c.DSN != "" {
		parsed, err := mysql.ParseDSN(c.DSN)
		if err != nil {
			return nil, &config.ConfigurationError{Section: "database", Key: "dsn", Reason: "invalid mysql dsn", Err: err}
		}
		cfg = parsed
	} else {
		port := c.Port
		if port == 0 {
			port = mysqlDefaultPort
		}

		cfg = mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(port))
		cfg.DBName = c.Database
		cfg.User = c.User
		cfg.Passwd = c.Password
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, &config.ConfigurationError{Section: "database", Reason: "invalid mysql configuration", Err: err}
	}

	return sql.OpenDB(connector), nil
}
