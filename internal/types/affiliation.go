// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package types

// UnknownAffiliationID marks an assignment to an affiliation Hedwig could not
// determine.
const UnknownAffiliationID int64 = 0

// Affiliation is an affiliation as recorded by Hedwig.
type Affiliation struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AssignmentTable maps a project code to the fraction of its time charged
// to each affiliation id.
type AssignmentTable map[string]map[int64]float64

// ResolvedAssignment is one line of the OMP affiliation file.
type ResolvedAssignment struct {
	Project  string
	Code     string
	Fraction float64
}
