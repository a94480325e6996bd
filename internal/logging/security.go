// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"go.uber.org/zap"
)

const (
	eventSystemStartup  = "sys_startup"
	eventSystemShutdown = "sys_shutdown"
	eventAdminAction    = "admin_action"
	eventIdentityLinked = "identity_linked"
)

var _ SecurityLoggerInterface = (*SecurityLogger)(nil)

type SecurityLogger struct {
	logger *zap.Logger
}

func (s *SecurityLogger) SystemStartup() {
	s.logger.Info("System startup", zap.String("event", eventSystemStartup))
}

func (s *SecurityLogger) SystemShutdown() {
	s.logger.Info("System shutdown", zap.String("event", eventSystemShutdown))
}

func (s *SecurityLogger) AdminAction(actor, action, resource string) {
	s.logger.Warn(
		"Administrative action",
		zap.String("event", eventAdminAction),
		zap.String("actor", actor),
		zap.String("action", action),
		zap.String("resource", resource),
	)
}

func (s *SecurityLogger) IdentityLinked(hedwigID, ompID int64) {
	s.logger.Info(
		"Identity linked",
		zap.String("event", eventIdentityLinked),
		zap.Int64("hedwig_id", hedwigID),
		zap.Int64("omp_id", ompID),
	)
}

func newSecurityLogger(l *zap.Logger) *SecurityLogger {
	return &SecurityLogger{logger: l.With(zap.String("type", "security"))}
}
