// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"fmt"
)

type CoordSystem int

const (
	CoordSystemICRS     CoordSystem = 1
	CoordSystemGalactic CoordSystem = 2
	CoordSystemFK5      CoordSystem = 3
	CoordSystemFK4      CoordSystem = 4
)

var coordSystemNames = map[CoordSystem]string{
	CoordSystemICRS:     "ICRS",
	CoordSystemGalactic: "Galactic",
	CoordSystemFK5:      "FK5 (J2000)",
	CoordSystemFK4:      "FK4 (B1950)",
}

// Name returns the canonical name of the coordinate system.
func (c CoordSystem) Name() string {
	if n, ok := coordSystemNames[c]; ok {
		return n
	}

	return fmt.Sprintf("CoordSystem(%d)", int(c))
}

func (c CoordSystem) Valid() bool {
	_, ok := coordSystemNames[c]
	return ok
}

// ParseCoordSystem is the inverse of Name.
func ParseCoordSystem(name string) (CoordSystem, error) {
	for c, n := range coordSystemNames {
		if n == name {
			return c, nil
		}
	}

	return 0, fmt.Errorf("unknown coordinate system %q", name)
}

// Target is a proposal target. Coordinates are optional in Hedwig.
type Target struct {
	Name   string       `json:"name"`
	X      *float64     `json:"x"`
	Y      *float64     `json:"y"`
	System *CoordSystem `json:"system"`
}

// HasCoordinates reports whether the target is fully specified.
func (t Target) HasCoordinates() bool {
	return t.X != nil && t.Y != nil && t.System != nil
}

// NamedTarget is the target representation written to OMP files.
type NamedTarget struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	System string  `json:"system"`
}

// MarshalJSON writes the coordinate system by name.
func (c CoordSystem) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Name())
}

// UnmarshalJSON accepts either the numeric Hedwig value or the name. Values
// outside the known systems are rejected.
func (c *CoordSystem) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		parsed := CoordSystem(n)
		if !parsed.Valid() {
			return fmt.Errorf("unknown coordinate system %d", n)
		}
		*c = parsed
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid coordinate system %s", data)
	}

	parsed, err := ParseCoordSystem(s)
	if err != nil {
		return err
	}
	*c = parsed

	return nil
}
