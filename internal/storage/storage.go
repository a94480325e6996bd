// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"errors"
	"time"

	"github.com/eaobservatory/hedwig2omp/internal/db"
	"github.com/eaobservatory/hedwig2omp/internal/logging"
	"github.com/eaobservatory/hedwig2omp/internal/monitoring"
	"github.com/eaobservatory/hedwig2omp/internal/tracing"
)

const userTable = "user"

var _ IdentityStoreInterface = (*Storage)(nil)

type Storage struct {
	db db.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func (s *Storage) table() string {
	return s.db.Dialect().QuoteIdentifier(userTable)
}

// wrapError maps driver failures onto the storage sentinels.
func (s *Storage) wrapError(err error, msg string) error {
	switch {
	case s.db.Dialect().IsDuplicateKey(err):
		return WrapDuplicateKeyError(err, msg)
	case errors.Is(err, ErrConnectivity), s.db.Dialect().IsConnectivity(err):
		return WrapConnectivityError(err, msg)
	default:
		return errorf(msg, err)
	}
}

func (s *Storage) observe(operation string, start time.Time) {
	labels := map[string]string{
		"operation": operation,
		"driver":    s.db.Dialect().Name(),
	}

	if err := s.monitor.SetResponseTimeMetric(labels, time.Since(start).Seconds()); err != nil {
		s.logger.Debugf("failed to record response time: %v", err)
	}
}

func NewStorage(c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.db = c

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}
