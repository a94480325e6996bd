// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package affiliation

import (
	"sort"

	"github.com/eaobservatory/hedwig2omp/internal/logging"
	"github.com/eaobservatory/hedwig2omp/internal/types"
)

// Placeholder member entries some proposals use for large teams.
var nonsenseMembers = map[string]bool{
	"TOP-SCOPE collaborators": true,
	"TOPSCOPE collaborators":  true,
}

// CrossMatch counts co-investigators by affiliation for each PI affiliation.
type CrossMatch struct {
	// Names holds every affiliation seen, sorted.
	Names  []string
	counts map[string]map[string]int
}

// Count returns the number of co-investigators affiliated with coi on
// proposals whose PI is affiliated with pi.
func (c *CrossMatch) Count(pi, coi string) int {
	return c.counts[pi][coi]
}

// NewCrossMatch tallies the PI and CoI affiliations of the given proposals.
func NewCrossMatch(proposals []types.Proposal, logger logging.LoggerInterface) *CrossMatch {
	c := new(CrossMatch)
	c.counts = make(map[string]map[string]int)

	names := make(map[string]bool)

	ordered := make([]types.Proposal, len(proposals))
	copy(ordered, proposals)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Code < ordered[j].Code })

	for _, p := range ordered {
		logger.Debugf("Reading info for proposal %s (%s)", p.Code, p.State)

		pi, ok := p.PI()
		if !ok {
			logger.Warnf("Proposal %s has no PI", p.Code)
			continue
		}
		names[pi.AffiliationName] = true

		for _, coi := range p.CoIs() {
			if nonsenseMembers[coi.Name] {
				logger.Warnf("Skipping nonsense member %q", coi.Name)
				continue
			}

			names[coi.AffiliationName] = true

			if c.counts[pi.AffiliationName] == nil {
				c.counts[pi.AffiliationName] = make(map[string]int)
			}
			c.counts[pi.AffiliationName][coi.AffiliationName]++
		}
	}

	c.Names = make([]string, 0, len(names))
	for n := range names {
		c.Names = append(c.Names, n)
	}
	sort.Strings(c.Names)

	return c
}
