// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/eaobservatory/hedwig2omp/internal/logging"
	"github.com/eaobservatory/hedwig2omp/internal/monitoring"
	"github.com/eaobservatory/hedwig2omp/internal/storage"
	"github.com/eaobservatory/hedwig2omp/internal/tracing"
	"github.com/eaobservatory/hedwig2omp/internal/types"
)

// StorageInterface defines the identity store operations required by the
// Importer.
type StorageInterface interface {
	GetAllUsers(ctx context.Context) (map[int64]int64, error)
	AddUser(ctx context.Context, hedwigID, ompID int64) error
}

// Result counts what happened to each person offered to Run.
type Result struct {
	Linked        int
	AlreadyLinked int
	NoEmail       int
	Unmatched     int
}

// Importer links Hedwig people to OMP accounts with the same email address
// and records the links in the identity store.
type Importer struct {
	directory DirectoryInterface
	storage   StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// NewImporter creates a new Importer with the given directory, storage, and
// instrumentation.
func NewImporter(directory DirectoryInterface, storage StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Importer {
	return &Importer{
		directory: directory,
		storage:   storage,
		tracer:    tracer,
		monitor:   monitor,
		logger:    logger,
	}
}

// Run executes the import process:
// 1. Reads the existing links from the identity store.
// 2. Reads the OMP accounts keyed by email address.
// 3. Adds a link for every person not yet linked whose email matches.
//
// A link added concurrently by another process is counted as already linked.
// Any other storage failure stops the run.
func (i *Importer) Run(ctx context.Context, people []types.Member) (*Result, error) {
	ctx, span := i.tracer.Start(ctx, "importer.Importer.Run")
	defer span.End()

	existing, err := i.storage.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read existing users: %w", err)
	}
	if existing == nil {
		existing = make(map[int64]int64)
	}

	ompUsers, err := i.directory.GetUsersByEmail(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch OMP users: %w", err)
	}

	i.logger.Infof("Fetched %d OMP users, %d people already linked", len(ompUsers), len(existing))

	result := new(Result)
	for _, person := range people {
		if _, ok := existing[person.PersonID]; ok {
			result.AlreadyLinked++
			continue
		}

		email := strings.ToLower(strings.TrimSpace(person.Email))
		if email == "" {
			result.NoEmail++
			continue
		}

		ompUser, ok := ompUsers[email]
		if !ok {
			i.logger.Debugf("No OMP user for %s (%d)", person.Name, person.PersonID)
			result.Unmatched++
			continue
		}

		err := i.storage.AddUser(ctx, person.PersonID, ompUser.ID)
		if errors.Is(err, storage.ErrDuplicateKey) {
			i.logger.Warnf("Person %d was linked by another process", person.PersonID)
			result.AlreadyLinked++
			continue
		}
		if err != nil {
			span.RecordError(err)
			return result, fmt.Errorf("failed to link person %d: %w", person.PersonID, err)
		}

		existing[person.PersonID] = ompUser.ID
		result.Linked++
		i.logger.Security().IdentityLinked(person.PersonID, ompUser.ID)
		i.logger.Infof("Linked %s (%d) to OMP user %s", person.Name, person.PersonID, ompUser.UserID)
	}

	span.SetAttributes(
		attribute.Int("linked", result.Linked),
		attribute.Int("unmatched", result.Unmatched),
	)
	_ = i.monitor.IncRecordsCounter(map[string]string{"kind": "user_link"}, float64(result.Linked))

	i.logger.Infof("Import complete: %d linked, %d already linked, %d without email, %d unmatched",
		result.Linked, result.AlreadyLinked, result.NoEmail, result.Unmatched)

	return result, nil
}
