// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package exporter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/eaobservatory/hedwig2omp/internal/logging"
	"github.com/eaobservatory/hedwig2omp/internal/monitoring"
	"github.com/eaobservatory/hedwig2omp/internal/ompfile"
	"github.com/eaobservatory/hedwig2omp/internal/tracing"
	"github.com/eaobservatory/hedwig2omp/internal/types"
)

// Options select what an export writes and where.
type Options struct {
	Dir         string
	Kinds       []Kind
	TitleFormat ompfile.TitleFormat
	// Users maps Hedwig person ids to OMP user ids, needed for the project
	// file.
	Users map[int64]string
}

// Report describes a completed export.
type Report struct {
	RunID    string
	Semester string
	Files    []string
}

type Exporter struct {
	source   SourceInterface
	resolver ResolverInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Export renders every selected file in memory and only then writes them
// to disk, so a failure leaves no partial output behind.
func (e *Exporter) Export(ctx context.Context, opts Options) (*Report, error) {
	runID := uuid.NewString()

	ctx, span := e.tracer.Start(ctx, "exporter.Exporter.Export")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", runID))

	snapshot, err := e.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load hedwig records: %w", err)
	}

	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = AllKinds
	}

	codeTable := e.resolver.BuildCodeTable(snapshot.Affiliations)

	rendered := make(map[Kind]*bytes.Buffer, len(kinds))
	for _, k := range kinds {
		buf := new(bytes.Buffer)
		if err := e.render(ctx, k, buf, snapshot, codeTable, opts); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to build %s file: %w", k, err)
		}
		rendered[k] = buf
	}

	report := &Report{RunID: runID, Semester: snapshot.Semester}
	for _, k := range kinds {
		path := filepath.Join(opts.Dir, k.FileName(snapshot.Semester))
		if err := writeFileAtomic(path, rendered[k].Bytes()); err != nil {
			return report, err
		}

		report.Files = append(report.Files, path)
		_ = e.monitor.IncRecordsCounter(map[string]string{"kind": string(k)}, 1)
		e.logger.Infof("[%s] wrote %s", runID, path)
	}

	return report, nil
}

func (e *Exporter) render(ctx context.Context, k Kind, buf *bytes.Buffer, s *types.Snapshot, codeTable map[int64]string, opts Options) error {
	switch k {
	case KindProject:
		projects, err := e.Projects(s, codeTable, opts.Users)
		if err != nil {
			return err
		}
		return ompfile.WriteProjectINI(buf, s.Telescope, s.Semester, projects, opts.TitleFormat)
	case KindAffiliation:
		rows, err := e.resolver.Resolve(ctx, s.Assignments(), codeTable, s.Affiliations)
		if err != nil {
			return err
		}
		return ompfile.WriteAffiliationFile(buf, rows)
	case KindTarget:
		return ompfile.WriteTargetFile(buf, s.Targets())
	case KindNotes:
		return ompfile.WriteNotesFile(buf, s.Notes())
	case KindPrevProp:
		return ompfile.WritePrevProposalPublications(buf, s.PrevProposals())
	case KindProposals:
		return ompfile.WriteProposalJSON(buf, s.Proposals)
	default:
		return fmt.Errorf("unknown output kind %q", k)
	}
}

// Projects builds the OMP project definitions. Every project needs a PI with
// a linked OMP account. CoIs without one are left out with a warning.
func (e *Exporter) Projects(s *types.Snapshot, codeTable map[int64]string, users map[int64]string) ([]types.Project, error) {
	projects := make([]types.Project, 0, len(s.Proposals))

	for _, p := range s.Proposals {
		project := types.Project{
			Code:        p.Code,
			Country:     p.Country,
			Title:       p.Title,
			Bands:       p.Bands,
			Allocation:  p.Allocation,
			TagPriority: p.TagPriority,
			Support:     p.Support,
		}
		if p.Expiry != nil {
			expiry := p.Expiry.Time
			project.Expiry = &expiry
		}

		pi, ok := p.PI()
		if !ok {
			return nil, &MissingPIError{Project: p.Code}
		}

		userID, ok := users[pi.PersonID]
		if !ok {
			e.logger.Errorf("Project %s PI %s has no OMP account", p.Code, pi.Name)
			return nil, &MissingPIError{Project: p.Code, PersonID: pi.PersonID, Name: pi.Name}
		}

		code, err := e.resolver.MemberCode(codeTable, pi.AffiliationID, pi.AffiliationName)
		if err != nil {
			return nil, memberError(p.Code, pi, err)
		}
		project.PI = userID
		project.PIAffiliation = code

		for _, coi := range p.CoIs() {
			userID, ok := users[coi.PersonID]
			if !ok {
				e.logger.Warnf("Project %s CoI %s has no OMP account", p.Code, coi.Name)
				continue
			}

			code, err := e.resolver.MemberCode(codeTable, coi.AffiliationID, coi.AffiliationName)
			if err != nil {
				return nil, memberError(p.Code, coi, err)
			}
			project.CoIs = append(project.CoIs, userID)
			project.CoIAffiliations = append(project.CoIAffiliations, code)
		}

		projects = append(projects, project)
	}

	return projects, nil
}

func memberError(project string, m types.Member, err error) error {
	return fmt.Errorf("project %s member %s (%s): %w", project, m.Name, m.AffiliationName, err)
}

// LinkedUsers maps Hedwig person ids to OMP user ids. Every link in the
// identity store is looked up by OMP id, and a link to an id the directory
// does not have is an error.
func LinkedUsers(ctx context.Context, store IdentityStoreInterface, directory DirectoryInterface) (map[int64]string, error) {
	links, err := store.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read user links: %w", err)
	}

	ids := make([]int64, 0, len(links))
	for _, ompID := range links {
		ids = append(ids, ompID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	ompUsers, err := directory.GetUsersByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to read OMP users: %w", err)
	}

	users := make(map[int64]string, len(links))
	for hedwigID, ompID := range links {
		u, ok := ompUsers[ompID]
		if !ok {
			return nil, &MissingOMPUserError{HedwigID: hedwigID, OMPID: ompID}
		}
		users[hedwigID] = u.UserID
	}

	return users, nil
}

// writeFileAtomic replaces path with data through a temporary file in the
// same directory.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	f, err := os.CreateTemp(dir, "."+strings.TrimPrefix(filepath.Base(path), ".")+".*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func NewExporter(source SourceInterface, resolver ResolverInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Exporter {
	e := new(Exporter)

	e.source = source
	e.resolver = resolver
	e.tracer = tracer
	e.monitor = monitor
	e.logger = logger

	return e
}
