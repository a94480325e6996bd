// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ompfile

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/eaobservatory/hedwig2omp/internal/types"
)

type requestView struct {
	Instrument          string    `json:"instrument"`
	Ancillary           *string   `json:"ancillary"`
	Weather             string    `json:"weather"`
	Time                jsonFloat `json:"time"`
	InstrumentAncillary string    `json:"instrument_ancillary"`
}

type targetView struct {
	Name   string     `json:"name"`
	X      *jsonFloat `json:"x"`
	Y      *jsonFloat `json:"y"`
	System *string    `json:"system"`
}

type proposalView struct {
	Code          string               `json:"code"`
	State         string               `json:"state"`
	Title         string               `json:"title"`
	Country       string               `json:"country"`
	Members       []types.Member       `json:"members"`
	Bands         []int                `json:"bands"`
	Allocation    jsonFloat            `json:"allocation"`
	TagPriority   int                  `json:"tag_priority"`
	Support       string               `json:"support"`
	Expiry        *types.Timestamp     `json:"expiry"`
	Assignment    map[int64]jsonFloat  `json:"assignment"`
	Targets       []targetView         `json:"targets"`
	Requests      []requestView        `json:"requests"`
	Note          *types.Note          `json:"note"`
	PrevProposals []types.PrevProposal `json:"prev_proposals"`
}

func newProposalView(p types.Proposal) proposalView {
	v := proposalView{
		Code:          p.Code,
		State:         p.State,
		Title:         p.Title,
		Country:       p.Country,
		Members:       nonNil(p.Members),
		Bands:         nonNil(p.Bands),
		Allocation:    jsonFloat(p.Allocation),
		TagPriority:   p.TagPriority,
		Support:       p.Support,
		Expiry:        p.Expiry,
		Assignment:    make(map[int64]jsonFloat, len(p.Assignment)),
		Targets:       make([]targetView, 0, len(p.Targets)),
		Requests:      make([]requestView, 0, len(p.Requests)),
		Note:          p.Note,
		PrevProposals: nonNil(p.PrevProposals),
	}

	for id, fraction := range p.Assignment {
		v.Assignment[id] = jsonFloat(fraction)
	}

	for _, t := range p.Targets {
		tv := targetView{Name: t.Name}
		if t.X != nil {
			x := jsonFloat(*t.X)
			tv.X = &x
		}
		if t.Y != nil {
			y := jsonFloat(*t.Y)
			tv.Y = &y
		}
		if t.System != nil {
			name := t.System.Name()
			tv.System = &name
		}
		v.Targets = append(v.Targets, tv)
	}

	for _, r := range p.Requests {
		rv := requestView{
			Instrument:          r.Instrument.Name(),
			Weather:             r.Weather.Name(),
			Time:                jsonFloat(r.Time),
			InstrumentAncillary: r.InstrumentWithAncillary(),
		}
		if r.Ancillary != types.AncillaryNone {
			name := r.Ancillary.Name()
			rv.Ancillary = &name
		}
		v.Requests = append(v.Requests, rv)
	}

	return v
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}

// WriteProposalJSON dumps the full proposal details keyed by proposal code,
// with enumerated values replaced by their names.
func WriteProposalJSON(w io.Writer, proposals []types.Proposal) error {
	out := make(map[string]proposalView, len(proposals))
	for _, p := range proposals {
		out[p.Code] = newProposalView(p)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode proposals: %w", err)
	}

	return nil
}
