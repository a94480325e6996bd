// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ LoggerInterface = (*Logger)(nil)

// Logger is a thin wrapper around the zap sugared logger.
type Logger struct {
	*zap.SugaredLogger

	security *SecurityLogger
}

func (l *Logger) Security() SecurityLoggerInterface {
	return l.security
}

// NewLogger creates a JSON logger writing to stderr, so that file output
// written to stdout stays clean.
func NewLogger(l string) *Logger {
	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(parseLevel(l))
	c.OutputPaths = []string{"stderr"}
	c.ErrorOutputPaths = []string{"stderr"}
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.Sampling = nil

	lgr, err := c.Build()
	if err != nil {
		panic(err)
	}

	return newLogger(lgr)
}

// NewLoggerFromCore builds a Logger on top of an existing zap core.
func NewLoggerFromCore(core zapcore.Core) *Logger {
	return newLogger(zap.New(core))
}

// NewNoopLogger returns a logger that discards everything.
func NewNoopLogger() *Logger {
	return newLogger(zap.NewNop())
}

func newLogger(lgr *zap.Logger) *Logger {
	l := new(Logger)
	l.SugaredLogger = lgr.Sugar()
	l.security = newSecurityLogger(lgr.Named("security"))

	return l
}

func parseLevel(l string) zapcore.Level {
	switch strings.ToLower(l) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.ErrorLevel
	}
}
