// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"errors"
	"fmt"

	"github.com/eaobservatory/hedwig2omp/internal/db"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrConnectivity marks transport failures; the failed call may be
	// retried by the caller.
	ErrConnectivity = db.ErrConnectivity
)

// WrapDuplicateKeyError keeps the driver error text while making the error
// match ErrDuplicateKey.
func WrapDuplicateKeyError(err error, msg string) error {
	return fmt.Errorf("%s: %w: %v", msg, ErrDuplicateKey, err)
}

// WrapConnectivityError keeps the driver error text while making the error
// match ErrConnectivity.
func WrapConnectivityError(err error, msg string) error {
	if errors.Is(err, ErrConnectivity) {
		return fmt.Errorf("%s: %w", msg, err)
	}

	return fmt.Errorf("%s: %w: %v", msg, ErrConnectivity, err)
}
