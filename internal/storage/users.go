// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"
	"time"
)

// GetAllUsers scans the whole mapping table.
func (s *Storage) GetAllUsers(ctx context.Context) (map[int64]int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.GetAllUsers")
	defer span.End()
	defer s.observe("GetAllUsers", time.Now())

	rows, err := s.db.Statement(ctx).
		Select("hedwig_id", "omp_id").
		From(s.table()).
		QueryContext(ctx)
	if err != nil {
		return nil, s.wrapError(err, "failed to query users")
	}
	defer rows.Close()

	users := make(map[int64]int64)
	for rows.Next() {
		var hedwigID, ompID int64
		if err := rows.Scan(&hedwigID, &ompID); err != nil {
			return nil, s.wrapError(err, "failed to scan user")
		}
		users[hedwigID] = ompID
	}

	if err := rows.Err(); err != nil {
		return nil, s.wrapError(err, "error iterating users")
	}

	return users, nil
}

// AddUser inserts a single mapping in its own transaction. An existing
// mapping for hedwigID is reported as ErrDuplicateKey by the database
// constraint and is left unchanged.
func (s *Storage) AddUser(ctx context.Context, hedwigID, ompID int64) error {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.AddUser")
	defer span.End()
	defer s.observe("AddUser", time.Now())

	err := s.db.WithTx(ctx, func(ctx context.Context) error {
		_, err := s.db.Statement(ctx).
			Insert(s.table()).
			Columns("hedwig_id", "omp_id").
			Values(hedwigID, ompID).
			ExecContext(ctx)

		return err
	})
	if err != nil {
		return s.wrapError(err, fmt.Sprintf("failed to insert user %d", hedwigID))
	}

	return nil
}

func errorf(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
