// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ompfile

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/mitchellh/go-wordwrap"

	"github.com/eaobservatory/hedwig2omp/internal/types"
)

const (
	notesWidth  = 75
	notesIndent = "    "
	asciiSpace  = "\t\n\v\f\r"
)

var paragraphBreak = regexp.MustCompile(`\n\n+`)

// WriteNotesFile writes the TAC notes as indented, wrapped plain text, one
// block per proposal.
func WriteNotesFile(w io.Writer, notes []types.ProposalNote) error {
	bw := bufio.NewWriter(w)

	for i, n := range notes {
		if i > 0 {
			bw.WriteString("\n")
		}

		bw.WriteString(n.ProposalCode + "\n")

		if n.Note.Format != types.FormatPlain {
			bw.WriteString(notesIndent + "Not plain text: please view online.\n")
			continue
		}

		text := strings.ReplaceAll(n.Note.Text, "\r", "")
		for j, paragraph := range paragraphBreak.Split(text, -1) {
			if j > 0 {
				bw.WriteString("\n")
			}
			bw.WriteString(fill(paragraph) + "\n")
		}
	}

	return bw.Flush()
}

// fill wraps a paragraph without splitting words. ASCII whitespace becomes
// spaces one for one, so runs of spaces inside a line are kept.
func fill(paragraph string) string {
	text := strings.TrimRight(strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiSpace, r) {
			return ' '
		}
		return r
	}, paragraph), " ")
	if strings.TrimSpace(text) == "" {
		return ""
	}

	wrapped := wordwrap.WrapString(text, uint(notesWidth-len(notesIndent)))

	lines := strings.Split(wrapped, "\n")
	for i, l := range lines {
		lines[i] = notesIndent + strings.TrimRight(l, " ")
	}

	return strings.Join(lines, "\n")
}
