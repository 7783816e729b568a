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

var cdpSectionSepRE = regexp.MustCompile(`^-{4,}\s*$`)

var (
	cdpDeviceIDRE   = regexp.MustCompile(`^Device ID:\s*(.+\S)`)
	cdpIPRE         = regexp.MustCompile(`IPv?4?\s+address:\s*(\S+)`)
	cdpPlatformRE   = regexp.MustCompile(`^Platform:\s*([^,]+),`)
	cdpInterfaceRE  = regexp.MustCompile(`^Interface:\s*([^,]+),`)
	cdpPortIDRE     = regexp.MustCompile(`Port ID \(outgoing port\):\s*(\S+)`)
	cdpHoldtimeRE   = regexp.MustCompile(`Holdtime\s*:\s*(\d+)`)
	cdpVLANRE       = regexp.MustCompile(`Native VLAN:\s*(\d+)`)
	cdpDuplexRE     = regexp.MustCompile(`Duplex:\s*(\S+)`)
	cdpCapsRE       = regexp.MustCompile(`Capabilities\s*:\s*(.+\S)`)
)

// CDPNeighbors parses "show cdp neighbors detail" text into neighbor
// claims. Sections are separated by a run of four or more hyphens. A
// claim is emitted only when both a hostname (Device ID) and an IP
// address were present in its section.
func CDPNeighbors(raw string) []models.NeighborClaim {
	var claims []models.NeighborClaim

	for _, section := range splitOnSeparator(raw, cdpSectionSepRE) {
		claim, ok := parseCDPSection(section)
		if ok {
			claims = append(claims, claim)
		}
	}

	return claims
}

func parseCDPSection(section string) (models.NeighborClaim, bool) {
	var claim models.NeighborClaim

	for _, line := range strings.Split(section, "\n") {
		trimmed := strings.TrimSpace(line)

		// Real "show cdp neighbors detail" output packs several fields
		// onto one line (e.g. "Interface: X, Port ID (outgoing port): Y"),
		// so every pattern is tried against each line independently
		// rather than picking one match per line.
		if m := cdpDeviceIDRE.FindStringSubmatch(trimmed); m != nil {
			claim.Hostname = m[1]
		}

		if m := cdpIPRE.FindStringSubmatch(trimmed); m != nil {
			claim.IP = m[1]
		}

		if m := cdpPlatformRE.FindStringSubmatch(trimmed); m != nil {
			claim.Platform = strings.TrimSpace(m[1])
		}

		if m := cdpInterfaceRE.FindStringSubmatch(trimmed); m != nil {
			claim.LocalInterface = strings.TrimSpace(m[1])
		}

		if m := cdpPortIDRE.FindStringSubmatch(trimmed); m != nil {
			claim.RemoteInterface = m[1]
		}

		if m := cdpHoldtimeRE.FindStringSubmatch(trimmed); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				claim.HoldtimeSec = n
			}
		}

		if m := cdpVLANRE.FindStringSubmatch(trimmed); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				claim.VLAN = n
			}
		}

		if m := cdpDuplexRE.FindStringSubmatch(trimmed); m != nil {
			// Duplex has no dedicated field on NeighborClaim; folded into
			// Capabilities for display purposes, matching how the detail
			// output groups these physical-layer facts together.
			claim.Capabilities = appendFact(claim.Capabilities, "duplex="+m[1])
		}

		if m := cdpCapsRE.FindStringSubmatch(trimmed); m != nil {
			claim.Capabilities = appendFact(claim.Capabilities, strings.TrimSpace(m[1]))
		}
	}

	if claim.Hostname == "" || claim.IP == "" {
		return models.NeighborClaim{}, false
	}

	return claim, true
}

func appendFact(existing, fact string) string {
	if existing == "" {
		return fact
	}

	return existing + "; " + fact
}

// splitOnSeparator splits raw into sections wherever a line matches sep,
// discarding the separator lines themselves and any empty leading section.
func splitOnSeparator(raw string, sep *regexp.Regexp) []string {
	var sections []string

	var cur []string

	for _, line := range strings.Split(raw, "\n") {
		if sep.MatchString(line) {
			if len(cur) > 0 {
				sections = append(sections, strings.Join(cur, "\n"))
				cur = nil
			}

			continue
		}

		cur = append(cur, line)
	}

	if len(cur) > 0 {
		sections = append(sections, strings.Join(cur, "\n"))
	}

	return sections
}
