// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package affiliation

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/eaobservatory/hedwig2omp/internal/config"
	"github.com/eaobservatory/hedwig2omp/internal/logging"
	"github.com/eaobservatory/hedwig2omp/internal/tracing"
	"github.com/eaobservatory/hedwig2omp/internal/types"
)

// Resolver maps Hedwig affiliations onto the controlled OMP affiliation
// codes listed in the configuration file.
type Resolver struct {
	codes []config.AffiliationCode

	logger logging.LoggerInterface
	tracer tracing.TracingInterface
}

// BuildCodeTable matches affiliations to codes by exact name. Affiliations
// without a configured code are left out of the table. When two codes share
// a name the later one wins.
func (r *Resolver) BuildCodeTable(affiliations []types.Affiliation) map[int64]string {
	table := make(map[int64]string)

	for _, ac := range r.codes {
		for _, a := range affiliations {
			if a.Name == ac.Name {
				table[a.ID] = ac.Code
			}
		}
	}

	return table
}

// Resolve converts an assignment table into affiliation file rows, ordered
// by project then affiliation id. Unknown assignments (id 0) are skipped
// with a warning. Any other affiliation missing from codeTable aborts the
// whole resolution: no rows are returned with the error.
func (r *Resolver) Resolve(ctx context.Context, assignments types.AssignmentTable, codeTable map[int64]string, affiliations []types.Affiliation) ([]types.ResolvedAssignment, error) {
	_, span := r.tracer.Start(ctx, "affiliation.Resolver.Resolve",
		trace.WithAttributes(attribute.Int("projects", len(assignments))))
	defer span.End()

	projects := make([]string, 0, len(assignments))
	for p := range assignments {
		projects = append(projects, p)
	}
	sort.Strings(projects)

	rows := make([]types.ResolvedAssignment, 0)
	for _, project := range projects {
		ids := make([]int64, 0, len(assignments[project]))
		for id := range assignments[project] {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			if id == types.UnknownAffiliationID {
				r.logger.Warnf("Project %s includes unknown assignment", project)
				continue
			}

			code, ok := codeTable[id]
			if !ok {
				err := &UnresolvedAffiliationError{
					Project:         project,
					AffiliationID:   id,
					AffiliationName: affiliationName(affiliations, id),
				}
				r.logger.Errorf("%v", err)
				span.RecordError(err)

				return nil, err
			}

			rows = append(rows, types.ResolvedAssignment{
				Project:  project,
				Code:     code,
				Fraction: assignments[project][id],
			})
		}
	}

	return rows, nil
}

// MemberCode returns the code to record for a proposal member. Members
// whose affiliation Hedwig does not know get an empty code. The name is only
// used to describe an affiliation with no code.
func (r *Resolver) MemberCode(codeTable map[int64]string, affiliationID int64, name string) (string, error) {
	if affiliationID == types.UnknownAffiliationID {
		return "", nil
	}

	code, ok := codeTable[affiliationID]
	if !ok {
		return "", &UnresolvedAffiliationError{AffiliationID: affiliationID, AffiliationName: name}
	}

	return code, nil
}

func affiliationName(affiliations []types.Affiliation, id int64) string {
	for _, a := range affiliations {
		if a.ID == id {
			return a.Name
		}
	}

	return ""
}

func NewResolver(codes []config.AffiliationCode, logger logging.LoggerInterface, tracer tracing.TracingInterface) *Resolver {
	r := new(Resolver)

	r.codes = codes
	r.logger = logger
	r.tracer = tracer

	return r
}
