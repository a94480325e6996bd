// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package types

type FormatType int

const (
	FormatPlain FormatType = 1
	FormatRST   FormatType = 2
	FormatHTML  FormatType = 3
)

// Note is text recorded by the TAC alongside its decision.
type Note struct {
	Text   string     `json:"text"`
	Format FormatType `json:"format"`
}

type ProposalNote struct {
	ProposalCode string
	Note         Note
}

type PublicationType int

const (
	PublicationPlain PublicationType = 1
	PublicationDOI   PublicationType = 2
	PublicationADS   PublicationType = 3
	PublicationArXiv PublicationType = 4
)

var publicationTypeNames = map[PublicationType]string{
	PublicationPlain: "Plain text reference",
	PublicationDOI:   "DOI",
	PublicationADS:   "ADS bibcode",
	PublicationArXiv: "arXiv article ID",
}

func (p PublicationType) Name() string {
	if n, ok := publicationTypeNames[p]; ok {
		return n
	}

	return "Unknown"
}

type Publication struct {
	Type        PublicationType `json:"type"`
	Description string          `json:"description"`
	Author      string          `json:"author"`
	Year        string          `json:"year"`
	Title       string          `json:"title"`
}

// PrevProposal is an earlier proposal cited in a submission.
type PrevProposal struct {
	Code         string        `json:"code"`
	Publications []Publication `json:"publications"`
}
