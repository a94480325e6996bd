// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ompfile

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/eaobservatory/hedwig2omp/internal/types"
)

type targetEntry struct {
	Name   string    `json:"name"`
	X      jsonFloat `json:"x"`
	Y      jsonFloat `json:"y"`
	System string    `json:"system"`
}

// WriteTargetFile writes the fully specified targets of each proposal as
// JSON keyed by proposal code. Proposals with no such target are left out. A
// target in an unknown coordinate system is an error.
func WriteTargetFile(w io.Writer, targets map[string][]types.Target) error {
	out := make(map[string][]targetEntry)

	for code, list := range targets {
		entries := make([]targetEntry, 0, len(list))
		for _, t := range list {
			if !t.HasCoordinates() {
				continue
			}
			if !t.System.Valid() {
				return fmt.Errorf("target %q of %s: unknown coordinate system %d", t.Name, code, int(*t.System))
			}
			entries = append(entries, targetEntry{
				Name:   t.Name,
				X:      jsonFloat(*t.X),
				Y:      jsonFloat(*t.Y),
				System: t.System.Name(),
			})
		}

		if len(entries) > 0 {
			out[code] = entries
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode targets: %w", err)
	}

	return nil
}

// ReadTargetFile parses a file written by WriteTargetFile.
func ReadTargetFile(r io.Reader) (map[string][]types.NamedTarget, error) {
	targets := make(map[string][]types.NamedTarget)

	if err := json.NewDecoder(r).Decode(&targets); err != nil {
		return nil, fmt.Errorf("invalid target file: %w", err)
	}

	for code, list := range targets {
		for _, t := range list {
			if _, err := types.ParseCoordSystem(t.System); err != nil {
				return nil, fmt.Errorf("invalid target %q of %s: %w", t.Name, code, err)
			}
		}
	}

	return targets, nil
}
