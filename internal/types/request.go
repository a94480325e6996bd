// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package types

import "fmt"

type JCMTInstrument int

const (
	InstrumentSCUBA2 JCMTInstrument = 1
	InstrumentHARP   JCMTInstrument = 2
	InstrumentRxA3M  JCMTInstrument = 3
	InstrumentUU     JCMTInstrument = 4
	InstrumentAWEO   JCMTInstrument = 5
)

var instrumentNames = map[JCMTInstrument]string{
	InstrumentSCUBA2: "SCUBA-2",
	InstrumentHARP:   "HARP",
	InstrumentRxA3M:  "RxA3m",
	InstrumentUU:     "UU",
	InstrumentAWEO:   "AWEOWEO",
}

func (i JCMTInstrument) Name() string {
	if n, ok := instrumentNames[i]; ok {
		return n
	}

	return fmt.Sprintf("Instrument(%d)", int(i))
}

type JCMTAncillary int

const (
	AncillaryNone JCMTAncillary = 0
	AncillaryPOL2 JCMTAncillary = 1
	AncillaryFTS2 JCMTAncillary = 2
)

var ancillaryNames = map[JCMTAncillary]string{
	AncillaryPOL2: "POL-2",
	AncillaryFTS2: "FTS-2",
}

func (a JCMTAncillary) Name() string {
	if n, ok := ancillaryNames[a]; ok {
		return n
	}

	return fmt.Sprintf("Ancillary(%d)", int(a))
}

type JCMTWeather int

func (w JCMTWeather) Name() string {
	if w >= 1 && w <= 5 {
		return fmt.Sprintf("Band %d", int(w))
	}

	return "Unknown"
}

// Request is an observing time request.
type Request struct {
	Instrument JCMTInstrument `json:"instrument"`
	Ancillary  JCMTAncillary  `json:"ancillary"`
	Weather    JCMTWeather    `json:"weather"`
	Time       float64        `json:"time"`
}

// InstrumentWithAncillary describes the instrument together with any
// ancillary, e.g. "SCUBA-2 with POL-2".
func (r Request) InstrumentWithAncillary() string {
	if r.Ancillary == AncillaryNone {
		return r.Instrument.Name()
	}

	return fmt.Sprintf("%s with %s", r.Instrument.Name(), r.Ancillary.Name())
}

// OMPUser is an account in the OMP user directory.
type OMPUser struct {
	ID     int64
	UserID string
	Name   string
	Email  string
}
