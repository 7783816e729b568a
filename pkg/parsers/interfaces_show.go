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
	"strings"

	"github.com/coriolis-net/discoveryd/pkg/models"
)

var (
	genericShowHeaderRE = regexp.MustCompile(`^(\S+) is (up|down|administratively down)`)
	internetAddrSlashRE = regexp.MustCompile(`Internet address is (\S+)/(\d+)`)
	internetAddrPairRE  = regexp.MustCompile(`Internet address is (\S+)\s+(\S+)`)
	showDescriptionRE   = regexp.MustCompile(`Description:\s*(.*\S)`)
	lineProtocolRE      = regexp.MustCompile(`line protocol is (up|down)`)

	junosHeaderRE = regexp.MustCompile(`^Physical interface:\s*([^,\s]+)`)
	junosLocalRE  = regexp.MustCompile(`Local:\s*([^/,\s]+)(?:/(\d+))?`)
)

// InterfacesFromShow parses "show interfaces" (or family equivalent)
// output into a slice of interfaces. Cisco-family dialects share one
// header/body grammar; Juniper uses "Physical interface: NAME" blocks
// with a "Local:" address line instead.
func InterfacesFromShow(raw string, family models.FamilyTag) []*models.Interface {
	if family == models.FamilyJunos {
		return interfacesFromShowJunos(raw)
	}

	return interfacesFromShowGeneric(raw)
}

func interfacesFromShowGeneric(raw string) []*models.Interface {
	var result []*models.Interface

	var cur *models.Interface

	flush := func() {
		if cur == nil {
			return
		}

		cur.Mask = applyMaskGuardrails(cur.IP, cur.Mask)
		result = append(result, cur)
		cur = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		if m := genericShowHeaderRE.FindStringSubmatch(line); m != nil && !strings.HasPrefix(line, " ") {
			flush()

			status := models.InterfaceUp
			if m[2] != "up" {
				status = models.InterfaceDown
			}

			cur = &models.Interface{Name: m[1], AdminStatus: status}

			continue
		}

		if cur == nil {
			continue
		}

		if m := internetAddrSlashRE.FindStringSubmatch(trimmed); m != nil {
			prefix, ok := parsePrefixLen(m[2])
			if ok {
				cur.IP = m[1]
				cur.Mask = prefixToMask(prefix)
			}

			continue
		}

		if m := internetAddrPairRE.FindStringSubmatch(trimmed); m != nil {
			cur.IP = m[1]
			cur.Mask = m[2]

			continue
		}

		if m := showDescriptionRE.FindStringSubmatch(trimmed); m != nil {
			cur.Description = m[1]
			continue
		}

		if m := lineProtocolRE.FindStringSubmatch(trimmed); m != nil && m[1] == "down" {
			cur.AdminStatus = models.InterfaceDown
		}
	}

	flush()

	return result
}

func interfacesFromShowJunos(raw string) []*models.Interface {
	var result []*models.Interface

	var cur *models.Interface

	flush := func() {
		if cur == nil {
			return
		}

		cur.Mask = applyMaskGuardrails(cur.IP, cur.Mask)
		result = append(result, cur)
		cur = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		if m := junosHeaderRE.FindStringSubmatch(trimmed); m != nil {
			flush()
			cur = &models.Interface{Name: m[1], AdminStatus: models.InterfaceUp}

			// The header line itself carries "Physical link is Up|Down", so
			// it falls through to the status check below.
		}

		if cur == nil {
			continue
		}

		if strings.Contains(trimmed, "Admin: down") || strings.Contains(trimmed, "Physical link is Down") {
			cur.AdminStatus = models.InterfaceDown
		}

		if m := junosLocalRE.FindStringSubmatch(trimmed); m != nil {
			cur.IP = m[1]

			if m[2] != "" {
				if prefix, ok := parsePrefixLen(m[2]); ok {
					cur.Mask = prefixToMask(prefix)
				}
			}
		}
	}

	flush()

	return result
}
