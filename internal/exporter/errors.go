// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package exporter

import "fmt"

// MissingPIError reports a project whose PI cannot be written to the project
// file, either because the proposal has no PI or because the PI has no linked
// OMP account.
type MissingPIError struct {
	Project  string
	PersonID int64
	Name     string
}

func (e *MissingPIError) Error() string {
	if e.PersonID == 0 && e.Name == "" {
		return fmt.Sprintf("project %s has no PI", e.Project)
	}

	return fmt.Sprintf("project %s PI %s (person %d) has no linked OMP account", e.Project, e.Name, e.PersonID)
}

// MissingOMPUserError reports an identity link to an OMP user id which is not
// in the OMP user table.
type MissingOMPUserError struct {
	HedwigID int64
	OMPID    int64
}

func (e *MissingOMPUserError) Error() string {
	return fmt.Sprintf("person %d is linked to OMP user %d which does not exist", e.HedwigID, e.OMPID)
}
