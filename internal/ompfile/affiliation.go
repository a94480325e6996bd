// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ompfile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/eaobservatory/hedwig2omp/internal/types"
)

// WriteAffiliationFile writes one "project code fraction" line per row.
func WriteAffiliationFile(w io.Writer, rows []types.ResolvedAssignment) error {
	bw := bufio.NewWriter(w)

	for _, r := range rows {
		fmt.Fprintf(bw, "%s %s %s\n", r.Project, r.Code, formatFloat(r.Fraction))
	}

	return bw.Flush()
}
