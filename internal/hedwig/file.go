// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package hedwig

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"

	"github.com/eaobservatory/hedwig2omp/internal/logging"
	"github.com/eaobservatory/hedwig2omp/internal/tracing"
	"github.com/eaobservatory/hedwig2omp/internal/types"
)

var _ SourceInterface = (*FileSource)(nil)

// FileSource reads a JSON snapshot exported from Hedwig.
type FileSource struct {
	path string

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (s *FileSource) Load(ctx context.Context) (*types.Snapshot, error) {
	_, span := s.tracer.Start(ctx, "hedwig.FileSource.Load")
	defer span.End()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hedwig snapshot: %w", err)
	}
	defer f.Close()

	snapshot, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	span.SetAttributes(
		attribute.String("semester", snapshot.Semester),
		attribute.Int("proposals", len(snapshot.Proposals)),
	)
	s.logger.Debugf("loaded %d proposals for semester %s from %s", len(snapshot.Proposals), snapshot.Semester, s.path)

	return snapshot, nil
}

// Decode parses and checks a snapshot document.
func Decode(r io.Reader) (*types.Snapshot, error) {
	snapshot := new(types.Snapshot)

	dec := json.NewDecoder(r)
	if err := dec.Decode(snapshot); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %v", err)
	}

	if snapshot.Semester == "" {
		return nil, fmt.Errorf("invalid snapshot: semester missing")
	}

	seen := make(map[string]bool, len(snapshot.Proposals))
	for _, p := range snapshot.Proposals {
		if p.Code == "" {
			return nil, fmt.Errorf("invalid snapshot: proposal without code")
		}
		if seen[p.Code] {
			return nil, fmt.Errorf("invalid snapshot: duplicate proposal %s", p.Code)
		}
		seen[p.Code] = true
	}

	return snapshot, nil
}

func NewFileSource(path string, tracer tracing.TracingInterface, logger logging.LoggerInterface) *FileSource {
	s := new(FileSource)

	s.path = path
	s.tracer = tracer
	s.logger = logger

	return s
}
