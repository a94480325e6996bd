// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package exporter

import (
	"fmt"
	"strings"
)

// Kind is one of the files an export can produce.
type Kind string

const (
	KindProject     Kind = "project"
	KindAffiliation Kind = "affiliation"
	KindTarget      Kind = "target"
	KindNotes       Kind = "notes"
	KindPrevProp    Kind = "prev-prop-pub"
	KindProposals   Kind = "proposals"
)

// AllKinds lists every kind in the order files are written.
var AllKinds = []Kind{KindProject, KindAffiliation, KindTarget, KindNotes, KindPrevProp, KindProposals}

var kindSuffix = map[Kind]string{
	KindProject:     ".ini",
	KindAffiliation: "-affiliation.txt",
	KindTarget:      "-targets.json",
	KindNotes:       "-notes.txt",
	KindPrevProp:    "-prev-prop-pub.csv",
	KindProposals:   "-proposals.json",
}

// FileName returns the name of the file of this kind for a semester.
func (k Kind) FileName(semester string) string {
	return semester + kindSuffix[k]
}

// ParseKinds parses a list of kind names. An empty list selects all kinds.
func ParseKinds(names []string) ([]Kind, error) {
	if len(names) == 0 {
		return AllKinds, nil
	}

	selected := make(map[Kind]bool, len(names))
	for _, n := range names {
		k := Kind(strings.ToLower(strings.TrimSpace(n)))
		if _, ok := kindSuffix[k]; !ok {
			return nil, fmt.Errorf("unknown output kind %q", n)
		}
		selected[k] = true
	}

	kinds := make([]Kind, 0, len(selected))
	for _, k := range AllKinds {
		if selected[k] {
			kinds = append(kinds, k)
		}
	}

	return kinds, nil
}
