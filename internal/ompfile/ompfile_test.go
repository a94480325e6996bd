// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ompfile

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaobservatory/hedwig2omp/internal/affiliation"
	"github.com/eaobservatory/hedwig2omp/internal/logging"
	"github.com/eaobservatory/hedwig2omp/internal/types"
)

func ptr[T any](v T) *T { return &v }

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1.0"},
		{0.5, "0.5"},
		{0.1, "0.1"},
		{10.5, "10.5"},
		{0, "0.0"},
		{-2, "-2.0"},
		{1e-5, "1e-05"},
		{1.5e16, "1.5e+16"},
		{123456789, "123456789.0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatFloat(tt.in), "formatFloat(%v)", tt.in)
	}
}

func TestWriteProjectINI(t *testing.T) {
	expiry := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	projects := []types.Project{
		{
			Code:            "M20AP001",
			Country:         "JP",
			PI:              "PERSONA",
			PIAffiliation:   "JP",
			CoIs:            []string{"PERSONB", "PERSONC"},
			CoIAffiliations: []string{"TW", ""},
			Title:           "Dust in Orion – a survey",
			Bands:           []int{1, 2},
			Allocation:      10,
			TagPriority:     3,
			Support:         "SUPPORT",
			Expiry:          &expiry,
		},
		{
			Code:        "M20AP002",
			Country:     "TW",
			PI:          "PERSOND",
			Title:       "Plain",
			Bands:       []int{3},
			Allocation:  2.5,
			TagPriority: 1,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteProjectINI(&buf, "JCMT", "20A", projects, TitleLegacy))

	want := `[info]
semester = 20A
telescope = JCMT

[M20AP001]
country = JP
pi = PERSONA
pi_affiliation = JP
coi = PERSONB,PERSONC
coi_affiliation = TW,
title = Dust in Orion ? a survey
band = 1,2
allocation = 10.0
tagpriority = 3
support = SUPPORT
expirydate = 2021-02-01T00:00:00

[M20AP002]
country = TW
pi = PERSOND
pi_affiliation = 
coi = 
coi_affiliation = 
title = Plain
band = 3
allocation = 2.5
tagpriority = 1
support = 

`
	assert.Equal(t, want, buf.String())
}

func TestWriteProjectINIRequiresPI(t *testing.T) {
	projects := []types.Project{
		{Code: "M20AP001", PI: "PERSONA"},
		{Code: "M20AP002", CoIs: []string{"PERSONB"}},
	}

	var buf bytes.Buffer
	err := WriteProjectINI(&buf, "JCMT", "20A", projects, TitleLegacy)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "M20AP002")
	assert.Empty(t, buf.String())
}

func TestTitleFormat(t *testing.T) {
	decomposed := "Cafe\u0301\nnight"

	assert.Equal(t, "Cafe??night", TitleLegacy.apply(decomposed))
	assert.Equal(t, "Caf\u00e9 night", TitleUnicode.apply(decomposed))

	f, err := ParseTitleFormat("UTF-8")
	require.NoError(t, err)
	assert.Equal(t, TitleUnicode, f)

	_, err = ParseTitleFormat("latin1")
	assert.Error(t, err)
}

func TestWriteAffiliationFile(t *testing.T) {
	var buf bytes.Buffer
	err := WriteAffiliationFile(&buf, []types.ResolvedAssignment{
		{Project: "P1", Code: "JP", Fraction: 1.0},
		{Project: "P2", Code: "TW", Fraction: 0.25},
	})
	require.NoError(t, err)

	assert.Equal(t, "P1 JP 1.0\nP2 TW 0.25\n", buf.String())
}

func TestTargetFileRoundTrip(t *testing.T) {
	icrs := types.CoordSystemICRS
	gal := types.CoordSystemGalactic

	targets := map[string][]types.Target{
		"P1": {
			{Name: "T1", X: ptr(1.0), Y: ptr(-0.5), System: &icrs},
			{Name: "No coordinates"},
			{Name: "T2", X: ptr(3.25), Y: ptr(4.0), System: &gal},
		},
		"P2": {{Name: "Missing system", X: ptr(1.0), Y: ptr(2.0)}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTargetFile(&buf, targets))

	want := `{
    "P1": [
        {
            "name": "T1",
            "x": 1.0,
            "y": -0.5,
            "system": "ICRS"
        },
        {
            "name": "T2",
            "x": 3.25,
            "y": 4.0,
            "system": "Galactic"
        }
    ]
}
`
	assert.Equal(t, want, buf.String())

	got, err := ReadTargetFile(&buf)
	require.NoError(t, err)
	assert.Equal(t, map[string][]types.NamedTarget{
		"P1": {
			{Name: "T1", X: 1.0, Y: -0.5, System: "ICRS"},
			{Name: "T2", X: 3.25, Y: 4.0, System: "Galactic"},
		},
	}, got)
}

func TestReadTargetFileInvalid(t *testing.T) {
	_, err := ReadTargetFile(strings.NewReader(`{"P1": [{"name": "T", "x": 1, "y": 2, "system": "Ecliptic"}]}`))
	assert.Error(t, err)

	_, err = ReadTargetFile(strings.NewReader(`[]`))
	assert.Error(t, err)
}

func TestWriteTargetFileUnknownSystem(t *testing.T) {
	unknown := types.CoordSystem(9)

	var buf bytes.Buffer
	err := WriteTargetFile(&buf, map[string][]types.Target{
		"P1": {{Name: "T1", X: ptr(1.0), Y: ptr(2.0), System: &unknown}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "T1")
	assert.Empty(t, buf.String())
}

func TestWriteTargetFileEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTargetFile(&buf, nil))
	assert.Equal(t, "{}\n", buf.String())
}

func TestWriteNotesFile(t *testing.T) {
	long := strings.Repeat("word ", 20) + "end."
	notes := []types.ProposalNote{
		{ProposalCode: "P1", Note: types.Note{Format: types.FormatPlain, Text: "First  paragraph\r\nstill first.\r\n\r\n\r\nSecond."}},
		{ProposalCode: "P2", Note: types.Note{Format: types.FormatRST, Text: "*rst*"}},
		{ProposalCode: "P3", Note: types.Note{Format: types.FormatPlain, Text: long}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteNotesFile(&buf, notes))

	want := "P1\n" +
		"    First  paragraph still first.\n" +
		"\n" +
		"    Second.\n" +
		"\n" +
		"P2\n" +
		"    Not plain text: please view online.\n" +
		"\n" +
		"P3\n" +
		"    " + strings.TrimSpace(strings.Repeat("word ", 14)) + "\n" +
		"    " + strings.Repeat("word ", 6) + "end.\n"
	assert.Equal(t, want, buf.String())

	for _, line := range strings.Split(buf.String(), "\n") {
		assert.LessOrEqual(t, len(line), 75)
	}
}

func TestWriteNotesFileKeepsSpaceRuns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNotesFile(&buf, []types.ProposalNote{
		{ProposalCode: "P1", Note: types.Note{Format: types.FormatPlain, Text: "Rank  2.\tOK   \n"}},
	}))

	assert.Equal(t, "P1\n    Rank  2. OK\n", buf.String())
}

func TestWriteNotesFileLongWord(t *testing.T) {
	url := "https://example.org/" + strings.Repeat("x", 80)

	var buf bytes.Buffer
	require.NoError(t, WriteNotesFile(&buf, []types.ProposalNote{
		{ProposalCode: "P1", Note: types.Note{Format: types.FormatPlain, Text: "see " + url}},
	}))

	assert.Equal(t, "P1\n    see\n    "+url+"\n", buf.String())
}

func TestWritePrevProposalPublications(t *testing.T) {
	prev := map[string][]types.PrevProposal{
		"P2": {{Code: "M19BP002", Publications: []types.Publication{
			{Type: types.PublicationADS, Description: "2019ApJ...1..1A", Author: "Person, A.", Year: "2019", Title: "Dust, gas"},
		}}},
		"P1": {
			{Code: "M19BP001", Publications: []types.Publication{
				{Type: types.PublicationDOI, Description: "10.1000/xyz"},
			}},
			{Code: "M19BP003"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePrevProposalPublications(&buf, prev))

	want := "Submitted proposal,Referenced proposal,Publication type,Publication description,Publication author,Publication year,Publication title\r\n" +
		"P1,M19BP001,DOI,10.1000/xyz,,,\r\n" +
		"P2,M19BP002,ADS bibcode,2019ApJ...1..1A,\"Person, A.\",2019,\"Dust, gas\"\r\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteProposalJSON(t *testing.T) {
	icrs := types.CoordSystemICRS
	proposals := []types.Proposal{{
		Code:       "P1",
		Allocation: 4,
		Assignment: map[int64]float64{1: 1},
		Targets:    []types.Target{{Name: "T1", X: ptr(1.5), Y: ptr(2.0), System: &icrs}, {Name: "T2"}},
		Requests: []types.Request{
			{Instrument: types.InstrumentSCUBA2, Ancillary: types.AncillaryPOL2, Weather: 2, Time: 3.5},
			{Instrument: types.InstrumentHARP, Weather: 4, Time: 1},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteProposalJSON(&buf, proposals))
	assert.Contains(t, buf.String(), `"allocation": 4.0`)

	var got map[string]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	p := got["P1"]
	requests := p["requests"].([]any)
	assert.Equal(t, "SCUBA-2", requests[0].(map[string]any)["instrument"])
	assert.Equal(t, "POL-2", requests[0].(map[string]any)["ancillary"])
	assert.Equal(t, "Band 2", requests[0].(map[string]any)["weather"])
	assert.Equal(t, "SCUBA-2 with POL-2", requests[0].(map[string]any)["instrument_ancillary"])
	assert.Nil(t, requests[1].(map[string]any)["ancillary"])
	assert.Equal(t, "HARP", requests[1].(map[string]any)["instrument_ancillary"])

	targets := p["targets"].([]any)
	assert.Equal(t, "ICRS", targets[0].(map[string]any)["system"])
	assert.Nil(t, targets[1].(map[string]any)["system"])
	assert.Equal(t, []any{}, p["members"])
}

func TestWriteCrossMatch(t *testing.T) {
	c := affiliation.NewCrossMatch([]types.Proposal{
		{Code: "P1", Members: []types.Member{
			{Name: "A", AffiliationName: "Japan", PI: true},
			{Name: "B", AffiliationName: "Taiwan"},
			{Name: "C", AffiliationName: "Taiwan"},
		}},
	}, logging.NewNoopLogger())

	var buf bytes.Buffer
	require.NoError(t, WriteCrossMatch(&buf, c))

	assert.Equal(t, "PI affiliation,Japan,Taiwan\nJapan,0,2\nTaiwan,0,0\n", buf.String())
}
