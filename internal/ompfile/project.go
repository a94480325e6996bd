// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ompfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/eaobservatory/hedwig2omp/internal/types"
)

// TitleFormat selects how project titles are written.
type TitleFormat int

const (
	// TitleLegacy replaces every character outside printable ASCII with "?".
	TitleLegacy TitleFormat = iota
	// TitleUnicode keeps the title as NFC normalised UTF-8.
	TitleUnicode
)

// ParseTitleFormat accepts "legacy" or "unicode".
func ParseTitleFormat(s string) (TitleFormat, error) {
	switch strings.ToLower(s) {
	case "legacy", "ascii":
		return TitleLegacy, nil
	case "unicode", "utf-8", "utf8":
		return TitleUnicode, nil
	default:
		return 0, fmt.Errorf("unknown title format %q", s)
	}
}

func (f TitleFormat) apply(title string) string {
	if f == TitleUnicode {
		return strings.Map(func(r rune) rune {
			if r == '\r' || r == '\n' || r == '\t' {
				return ' '
			}
			return r
		}, norm.NFC.String(title))
	}

	return strings.Map(func(r rune) rune {
		if r < ' ' || r > '~' {
			return '?'
		}
		return r
	}, title)
}

// WriteProjectINI writes an OMP project definition file. Keys appear in the
// order the OMP importer documents; expirydate is only written for projects
// with an expiry. A project without a PI is rejected before anything is
// written.
func WriteProjectINI(w io.Writer, telescope, semester string, projects []types.Project, format TitleFormat) error {
	for _, p := range projects {
		if p.PI == "" {
			return fmt.Errorf("project %s has no PI", p.Code)
		}
	}

	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "[info]\nsemester = %s\ntelescope = %s\n\n", semester, telescope)

	for _, p := range projects {
		fmt.Fprintf(bw, "[%s]\n", p.Code)

		writeKey(bw, "country", p.Country)
		writeKey(bw, "pi", p.PI)
		writeKey(bw, "pi_affiliation", p.PIAffiliation)
		writeKey(bw, "coi", strings.Join(p.CoIs, ","))
		writeKey(bw, "coi_affiliation", strings.Join(p.CoIAffiliations, ","))
		writeKey(bw, "title", format.apply(p.Title))

		bands := make([]string, len(p.Bands))
		for i, b := range p.Bands {
			bands[i] = strconv.Itoa(b)
		}
		writeKey(bw, "band", strings.Join(bands, ","))

		writeKey(bw, "allocation", formatFloat(p.Allocation))
		writeKey(bw, "tagpriority", strconv.Itoa(p.TagPriority))
		writeKey(bw, "support", p.Support)

		if p.Expiry != nil {
			writeKey(bw, "expirydate", p.Expiry.UTC().Format(types.TimestampLayout))
		}

		bw.WriteString("\n")
	}

	return bw.Flush()
}

func writeKey(w *bufio.Writer, key, value string) {
	fmt.Fprintf(w, "%s = %s\n", key, value)
}
