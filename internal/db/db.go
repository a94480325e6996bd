// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/eaobservatory/hedwig2omp/internal/config"
	"github.com/eaobservatory/hedwig2omp/internal/logging"
	"github.com/eaobservatory/hedwig2omp/internal/monitoring"
	"github.com/eaobservatory/hedwig2omp/internal/tracing"
)

// ErrConnectivity wraps failures to reach the database.
var ErrConnectivity = errors.New("database unreachable")

const pingTimeout = 10 * time.Second

type txKey struct{}

// Config holds the connection details of one relational store.
type Config struct {
	Driver   string
	File     string
	DSN      string
	Host     string
	Port     int
	Database string
	User     string
	Password string

	MaxOpenConns   int
	TracingEnabled bool
}

// ConfigFromDatabase converts a configuration file section.
func ConfigFromDatabase(d config.Database) Config {
	return Config{
		Driver:   d.Driver,
		File:     d.File,
		DSN:      d.DSN,
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}

var _ DBClientInterface = (*DBClient)(nil)

type DBClient struct {
	db      *sql.DB
	dialect Dialect

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (d *DBClient) Statement(ctx context.Context) sq.StatementBuilderType {
	builder := sq.StatementBuilder.PlaceholderFormat(d.dialect.Placeholder())

	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return builder.RunWith(tx)
	}

	return builder.RunWith(d.db)
}

func (d *DBClient) WithTx(ctx context.Context, fn func(context.Context) error) (err error) {
	ctx, span := d.tracer.Start(ctx, "db.DBClient.WithTx")
	defer span.End()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return d.classify(fmt.Errorf("failed to begin transaction: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			d.logger.Errorf("failed to rollback transaction: %v", rerr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return d.classify(fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}

func (d *DBClient) Dialect() Dialect {
	return d.dialect
}

func (d *DBClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	labels := map[string]string{"component": "database"}
	if err := d.db.PingContext(ctx); err != nil {
		_ = d.monitor.SetDependencyAvailability(labels, 0)
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}

	_ = d.monitor.SetDependencyAvailability(labels, 1)

	return nil
}

// DB exposes the connection pool, migrations need it.
func (d *DBClient) DB() *sql.DB {
	return d.db
}

func (d *DBClient) Close() error {
	return d.db.Close()
}

// classify marks transport failures with ErrConnectivity.
func (d *DBClient) classify(err error) error {
	if d.dialect.IsConnectivity(err) {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}

	return err
}

// DialectFor returns the dialect for a configured driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return new(sqliteDialect), nil
	case config.DriverMySQL:
		return new(mysqlDialect), nil
	case config.DriverPostgres:
		return new(postgresDialect), nil
	default:
		return nil, config.NewConfigurationError("database", "driver", fmt.Sprintf("unknown database type %q", driver))
	}
}

// NewDBClient opens and checks a connection to the configured store.
func NewDBClient(c Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*DBClient, error) {
	dialect, err := DialectFor(c.Driver)
	if err != nil {
		return nil, err
	}

	conn, err := dialect.open(c)
	if err != nil {
		return nil, err
	}

	if c.MaxOpenConns > 0 && dialect.Name() != config.DriverSQLite {
		conn.SetMaxOpenConns(c.MaxOpenConns)
	}

	d := new(DBClient)
	d.db = conn
	d.dialect = dialect
	d.tracer = tracer
	d.monitor = monitor
	d.logger = logger

	if err := d.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Debugf("connected to %s database", dialect.Name())

	return d, nil
}
