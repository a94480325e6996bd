// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every *ConfigurationError through errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports a missing or invalid configuration value.
type ConfigurationError struct {
	Section string
	Key     string
	Reason  string
	Err     error
}

func (e *ConfigurationError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}

	switch {
	case e.Section != "" && e.Key != "":
		return fmt.Sprintf("configuration %s.%s: %s", e.Section, e.Key, msg)
	case e.Section != "":
		return fmt.Sprintf("configuration [%s]: %s", e.Section, msg)
	default:
		return fmt.Sprintf("configuration: %s", msg)
	}
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func NewConfigurationError(section, key, reason string) *ConfigurationError {
	return &ConfigurationError{Section: section, Key: key, Reason: reason}
}
