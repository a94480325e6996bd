// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

type LoggerInterface interface {
	Errorf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Debugf(string, ...interface{})
	Fatalf(string, ...interface{})
	Error(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Debug(...interface{})
	Fatal(...interface{})
	Sync() error

	Security() SecurityLoggerInterface
}

// SecurityLoggerInterface records audit events in a fixed shape so they can be
// filtered out of the regular log stream.
type SecurityLoggerInterface interface {
	SystemStartup()
	SystemShutdown()
	AdminAction(actor, action, resource string)
	IdentityLinked(hedwigID, ompID int64)
}
