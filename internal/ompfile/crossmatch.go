// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ompfile

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/eaobservatory/hedwig2omp/internal/affiliation"
)

// WriteCrossMatch writes the PI affiliation by CoI affiliation table.
func WriteCrossMatch(w io.Writer, c *affiliation.CrossMatch) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(append([]string{"PI affiliation"}, c.Names...)); err != nil {
		return err
	}

	for _, pi := range c.Names {
		row := make([]string, 0, len(c.Names)+1)
		row = append(row, pi)
		for _, coi := range c.Names {
			row = append(row, strconv.Itoa(c.Count(pi, coi)))
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}
