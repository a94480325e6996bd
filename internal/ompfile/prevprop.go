// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ompfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/eaobservatory/hedwig2omp/internal/types"
)

var prevPropHeader = []string{
	"Submitted proposal",
	"Referenced proposal",
	"Publication type",
	"Publication description",
	"Publication author",
	"Publication year",
	"Publication title",
}

// WritePrevProposalPublications writes one CSV row per publication cited
// through a previous proposal, ordered by submitting proposal code.
func WritePrevProposalPublications(w io.Writer, prev map[string][]types.PrevProposal) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(prevPropHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	codes := make([]string, 0, len(prev))
	for code := range prev {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		for _, p := range prev[code] {
			for _, pub := range p.Publications {
				row := []string{code, p.Code, pub.Type.Name(), pub.Description, pub.Author, pub.Year, pub.Title}
				if err := cw.Write(row); err != nil {
					return fmt.Errorf("failed to write row for %s: %w", code, err)
				}
			}
		}
	}

	cw.Flush()

	return cw.Error()
}
