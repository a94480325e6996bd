// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// TimestampLayout is the timestamp format exchanged with OMP.
const TimestampLayout = "2006-01-02T15:04:05"

// Timestamp is a UTC time without zone designator.
type Timestamp struct {
	time.Time
}

func (t Timestamp) String() string {
	return t.UTC().Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp %s", data)
	}

	parsed, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %v", s, err)
	}
	t.Time = parsed

	return nil
}

// Member is a person on a proposal.
type Member struct {
	PersonID        int64  `json:"person_id"`
	Name            string `json:"name"`
	Email           string `json:"email,omitempty"`
	AffiliationID   int64  `json:"affiliation_id"`
	AffiliationName string `json:"affiliation_name"`
	PI              bool   `json:"pi"`
}

// Proposal is a Hedwig proposal together with the decisions needed to set
// it up as an OMP project.
type Proposal struct {
	Code          string            `json:"code"`
	State         string            `json:"state"`
	Title         string            `json:"title"`
	Country       string            `json:"country"`
	Members       []Member          `json:"members"`
	Bands         []int             `json:"bands"`
	Allocation    float64           `json:"allocation"`
	TagPriority   int               `json:"tag_priority"`
	Support       string            `json:"support"`
	Expiry        *Timestamp        `json:"expiry,omitempty"`
	Assignment    map[int64]float64 `json:"assignment"`
	Targets       []Target          `json:"targets"`
	Requests      []Request         `json:"requests"`
	Note          *Note             `json:"note,omitempty"`
	PrevProposals []PrevProposal    `json:"prev_proposals"`
}

// PI returns the principal investigator, if the proposal has one.
func (p Proposal) PI() (Member, bool) {
	for _, m := range p.Members {
		if m.PI {
			return m, true
		}
	}

	return Member{}, false
}

// CoIs returns the members other than the PI, in proposal order.
func (p Proposal) CoIs() []Member {
	cois := make([]Member, 0, len(p.Members))
	for _, m := range p.Members {
		if !m.PI {
			cois = append(cois, m)
		}
	}

	return cois
}

// Snapshot is everything read from Hedwig for one export run.
type Snapshot struct {
	Semester     string        `json:"semester"`
	Telescope    string        `json:"telescope"`
	Affiliations []Affiliation `json:"affiliations"`
	Proposals    []Proposal    `json:"proposals"`
}

// AffiliationNames maps affiliation ids to names.
func (s *Snapshot) AffiliationNames() map[int64]string {
	names := make(map[int64]string, len(s.Affiliations))
	for _, a := range s.Affiliations {
		names[a.ID] = a.Name
	}

	return names
}

// Assignments collects the affiliation assignment of every proposal which
// has one.
func (s *Snapshot) Assignments() AssignmentTable {
	table := make(AssignmentTable)
	for _, p := range s.Proposals {
		if len(p.Assignment) == 0 {
			continue
		}
		table[p.Code] = p.Assignment
	}

	return table
}

// Targets returns the targets of each proposal keyed by proposal code.
func (s *Snapshot) Targets() map[string][]Target {
	targets := make(map[string][]Target)
	for _, p := range s.Proposals {
		if len(p.Targets) == 0 {
			continue
		}
		targets[p.Code] = p.Targets
	}

	return targets
}

// Notes returns the TAC notes in proposal order.
func (s *Snapshot) Notes() []ProposalNote {
	notes := make([]ProposalNote, 0)
	for _, p := range s.Proposals {
		if p.Note == nil {
			continue
		}
		notes = append(notes, ProposalNote{ProposalCode: p.Code, Note: *p.Note})
	}

	return notes
}

// PrevProposals returns the previous proposals referenced by each proposal.
func (s *Snapshot) PrevProposals() map[string][]PrevProposal {
	prev := make(map[string][]PrevProposal)
	for _, p := range s.Proposals {
		if len(p.PrevProposals) == 0 {
			continue
		}
		prev[p.Code] = p.PrevProposals
	}

	return prev
}

// People returns each distinct proposal member once, ordered by person id.
func (s *Snapshot) People() []Member {
	seen := make(map[int64]Member)
	for _, p := range s.Proposals {
		for _, m := range p.Members {
			if _, ok := seen[m.PersonID]; ok {
				continue
			}
			seen[m.PersonID] = m
		}
	}

	people := make([]Member, 0, len(seen))
	for _, m := range seen {
		people = append(people, m)
	}
	sort.Slice(people, func(i, j int) bool { return people[i].PersonID < people[j].PersonID })

	return people
}

// Project is an OMP project definition.
type Project struct {
	Code            string
	Country         string
	PI              string
	PIAffiliation   string
	CoIs            []string
	CoIAffiliations []string
	Title           string
	Bands           []int
	Allocation      float64
	TagPriority     int
	Support         string
	Expiry          *time.Time
}
