/*
 * Copyright 2026 The Discoveryd Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package parsers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/coriolis-net/discoveryd/pkg/models"
)

// lldpSectionSepRE splits on a run of four or more hyphens or equals
// signs (CDP uses hyphens only).
var lldpSectionSepRE = regexp.MustCompile(`^[-=]{4,}\s*$`)

var (
	lldpSysNameRE  = regexp.MustCompile(`System Name:\s*(.+\S)`)
	lldpMgmtAddrRE = regexp.MustCompile(`Management Address:\s*(\S+)`)
	lldpSysDescRE  = regexp.MustCompile(`System Description:\s*(.+\S)`)
	lldpLocalIfRE  = regexp.MustCompile(`Local Interface:\s*(\S+)`)
	lldpPortIDRE   = regexp.MustCompile(`Port id:\s*(\S+)`)
	lldpHoldtimeRE = regexp.MustCompile(`Time remaining:\s*(\d+)`)
	lldpVLANRE     = regexp.MustCompile(`VLAN[^:]*:\s*(\d+)`)

	// junosBriefRowRE matches the columnar "show lldp neighbors" table:
	// Local Interface    Parent Interface    Chassis Id          Port info          System Name
	junosBriefRowRE = regexp.MustCompile(`^(\S+)\s+(\S+)\s+(\S+)\s+(\S+)\s+(\S.*\S)\s*$`)
)

// LLDPNeighbors parses "show lldp neighbors detail" (or family
// equivalent) text into neighbor claims. Sections are separated by a run
// of hyphens or equals signs. Juniper's brief columnar table has no such
// sections and is parsed line-by-line as a fallback when no detail
// sections are found.
func LLDPNeighbors(raw string, family models.FamilyTag) []models.NeighborClaim {
	sections := splitOnSeparator(raw, lldpSectionSepRE)

	var claims []models.NeighborClaim

	for _, section := range sections {
		if claim, ok := parseLLDPSection(section); ok {
			claims = append(claims, claim)
		}
	}

	if len(claims) == 0 && family == models.FamilyJunos {
		return lldpNeighborsJunosBrief(raw)
	}

	return claims
}

func parseLLDPSection(section string) (models.NeighborClaim, bool) {
	var claim models.NeighborClaim

	for _, line := range strings.Split(section, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case lldpSysNameRE.MatchString(trimmed):
			claim.Hostname = strings.TrimSpace(lldpSysNameRE.FindStringSubmatch(trimmed)[1])
		case lldpMgmtAddrRE.MatchString(trimmed):
			claim.IP = lldpMgmtAddrRE.FindStringSubmatch(trimmed)[1]
		case lldpSysDescRE.MatchString(trimmed):
			claim.Platform = strings.TrimSpace(lldpSysDescRE.FindStringSubmatch(trimmed)[1])
		case lldpLocalIfRE.MatchString(trimmed):
			claim.LocalInterface = lldpLocalIfRE.FindStringSubmatch(trimmed)[1]
		case lldpPortIDRE.MatchString(trimmed):
			claim.RemoteInterface = lldpPortIDRE.FindStringSubmatch(trimmed)[1]
		case lldpHoldtimeRE.MatchString(trimmed):
			if n, err := strconv.Atoi(lldpHoldtimeRE.FindStringSubmatch(trimmed)[1]); err == nil {
				claim.HoldtimeSec = n
			}
		case lldpVLANRE.MatchString(trimmed):
			if n, err := strconv.Atoi(lldpVLANRE.FindStringSubmatch(trimmed)[1]); err == nil {
				claim.VLAN = n
			}
		}
	}

	// Unlike CDP, LLDP detail sections commonly omit a management address
	// (no mgmt IP configured on the neighbor); only the hostname is
	// required to emit a claim. The walker skips claims with no IP when
	// deciding what to enqueue, rather than the parser discarding them.
	if claim.Hostname == "" {
		return models.NeighborClaim{}, false
	}

	return claim, true
}

// lldpNeighborsJunosBrief parses Juniper's columnar "show lldp neighbors"
// table line-by-line, skipping header rows. The brief table has no
// management address column, so claims here carry an empty IP and will
// not by themselves satisfy the "hostname and IP both present" rule
// higher-level callers expect from a neighbor claim used as a walk seed.
func lldpNeighborsJunosBrief(raw string) []models.NeighborClaim {
	var claims []models.NeighborClaim

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "Local Interface") {
			continue
		}

		m := junosBriefRowRE.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}

		claims = append(claims, models.NeighborClaim{
			LocalInterface:  m[1],
			RemoteInterface: m[4],
			Hostname:        m[5],
		})
	}

	return claims
}
