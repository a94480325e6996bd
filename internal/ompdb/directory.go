// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ompdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/eaobservatory/hedwig2omp/internal/config"
	"github.com/eaobservatory/hedwig2omp/internal/db"
	"github.com/eaobservatory/hedwig2omp/internal/logging"
	"github.com/eaobservatory/hedwig2omp/internal/monitoring"
	"github.com/eaobservatory/hedwig2omp/internal/tracing"
	"github.com/eaobservatory/hedwig2omp/internal/types"
)

var _ DirectoryInterface = (*Directory)(nil)

// ompUser is a row of the OMP user table.
type ompUser struct {
	ID     int64   `gorm:"column:id"`
	UserID string  `gorm:"column:userid"`
	Name   string  `gorm:"column:uname"`
	Email  *string `gorm:"column:email"`
}

type Directory struct {
	db    *gorm.DB
	table string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// GetUsersByEmail returns the visible OMP users keyed by lower case email
// address. Users without an address are left out. When an address is shared
// the user with the highest id wins.
func (d *Directory) GetUsersByEmail(ctx context.Context) (map[string]types.OMPUser, error) {
	ctx, span := d.tracer.Start(ctx, "ompdb.Directory.GetUsersByEmail")
	defer span.End()

	start := time.Now()

	var rows []ompUser
	err := d.db.WithContext(ctx).
		Table(d.table).
		Select("id", "userid", "uname", "email").
		Where("obfuscated = ?", 0).
		Order("id").
		Find(&rows).Error

	_ = d.monitor.SetResponseTimeMetric(
		map[string]string{"operation": "GetUsersByEmail", "driver": d.db.Dialector.Name()},
		time.Since(start).Seconds(),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to query OMP users: %w", err)
	}

	users := make(map[string]types.OMPUser, len(rows))
	for _, row := range rows {
		if row.Email == nil || strings.TrimSpace(*row.Email) == "" {
			continue
		}

		users[strings.ToLower(strings.TrimSpace(*row.Email))] = types.OMPUser{
			ID:     row.ID,
			UserID: row.UserID,
			Name:   row.Name,
			Email:  *row.Email,
		}
	}

	d.logger.Debugf("read %d OMP users with email addresses", len(users))

	return users, nil
}

// GetUsersByID returns the OMP users with the given ids, keyed by id. Ids
// with no matching user are absent from the result.
func (d *Directory) GetUsersByID(ctx context.Context, ids []int64) (map[int64]types.OMPUser, error) {
	ctx, span := d.tracer.Start(ctx, "ompdb.Directory.GetUsersByID")
	defer span.End()

	users := make(map[int64]types.OMPUser, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	start := time.Now()

	var rows []ompUser
	err := d.db.WithContext(ctx).
		Table(d.table).
		Select("id", "userid", "uname", "email").
		Where("id IN ?", ids).
		Find(&rows).Error

	_ = d.monitor.SetResponseTimeMetric(
		map[string]string{"operation": "GetUsersByID", "driver": d.db.Dialector.Name()},
		time.Since(start).Seconds(),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to query OMP users: %w", err)
	}

	for _, row := range rows {
		u := types.OMPUser{ID: row.ID, UserID: row.UserID, Name: row.Name}
		if row.Email != nil {
			u.Email = *row.Email
		}
		users[row.ID] = u
	}

	d.logger.Debugf("found %d of %d OMP users by id", len(users), len(ids))

	return users, nil
}

func (d *Directory) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func dialector(c *config.OMP) (gorm.Dialector, error) {
	switch c.Driver {
	case config.DriverSQLite:
		return sqlite.Open(c.File + "?_pragma=busy_timeout(5000)"), nil
	case config.DriverPostgres:
		if c.DSN != "" {
			return postgres.Open(c.DSN), nil
		}

		return postgres.Open(db.PostgresURL(db.ConfigFromDatabase(c.Database))), nil
	default:
		return nil, config.NewConfigurationError("omp", "driver", fmt.Sprintf("unsupported OMP database type %q", c.Driver))
	}
}

// NewDirectory connects to the OMP database described by the [omp] section.
func NewDirectory(c *config.OMP, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*Directory, error) {
	if c == nil {
		return nil, config.NewConfigurationError("omp", "", "section missing")
	}

	dial, err := dialector(c)
	if err != nil {
		return nil, err
	}

	gormDB, err := gorm.Open(dial, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		_ = monitor.SetDependencyAvailability(map[string]string{"component": "omp"}, 0)
		return nil, fmt.Errorf("failed to connect to OMP database: %w", err)
	}
	_ = monitor.SetDependencyAvailability(map[string]string{"component": "omp"}, 1)

	d := new(Directory)
	d.db = gormDB
	d.table = c.UserTable
	d.tracer = tracer
	d.monitor = monitor
	d.logger = logger

	return d, nil
}
