// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package affiliation

import "fmt"

// UnresolvedAffiliationError reports an assignment to an affiliation which
// has no configured OMP code. AffiliationName is empty when Hedwig does not
// know the id either.
type UnresolvedAffiliationError struct {
	Project         string
	AffiliationID   int64
	AffiliationName string
}

func (e *UnresolvedAffiliationError) Error() string {
	affiliation := e.AffiliationName
	if affiliation == "" {
		affiliation = fmt.Sprintf("%d", e.AffiliationID)
	}

	if e.Project == "" {
		return fmt.Sprintf("unknown affiliation: %s", affiliation)
	}

	return fmt.Sprintf("unknown affiliation: %s (project %s)", affiliation, e.Project)
}
