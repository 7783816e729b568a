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

var (
	interfaceHeaderRE  = regexp.MustCompile(`^interface\s+(\S+)`)
	ipAddressRE        = regexp.MustCompile(`^ip address\s+(\S+)\s+(\S+)(\s+secondary)?`)
	ipAddressSlashRE   = regexp.MustCompile(`^ip address\s+(\S+)/(\d+)`)
	ipAddressDHCPRE    = regexp.MustCompile(`^ip address\s+dhcp`)
	descriptionRE      = regexp.MustCompile(`^description\s+(.*\S)`)
	accessVLANRE       = regexp.MustCompile(`^switchport access vlan\s+(\d+)`)
	trunkModeRE        = regexp.MustCompile(`^switchport mode trunk`)
)

// InterfacesFromConfig splits running-config text into per-interface
// blocks (each starting at "interface NAME" and running to the next "!"
// sentinel) and parses the address/description/status/vlan facts out of
// each block.
func InterfacesFromConfig(raw string) []*models.Interface {
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

		if m := interfaceHeaderRE.FindStringSubmatch(trimmed); m != nil {
			flush()
			cur = &models.Interface{Name: m[1], AdminStatus: models.InterfaceUp}

			continue
		}

		if cur == nil {
			continue
		}

		if trimmed == "!" {
			flush()
			continue
		}

		parseConfigInterfaceLine(cur, trimmed)
	}

	flush()

	return result
}

func parseConfigInterfaceLine(iface *models.Interface, line string) {
	switch {
	case ipAddressDHCPRE.MatchString(line):
		iface.IP = "dhcp"

	case ipAddressSlashRE.MatchString(line):
		m := ipAddressSlashRE.FindStringSubmatch(line)

		prefix, ok := parsePrefixLen(m[2])
		if !ok {
			return
		}

		iface.IP = m[1]
		iface.Mask = prefixToMask(prefix)

	case ipAddressRE.MatchString(line):
		m := ipAddressRE.FindStringSubmatch(line)
		secondary := strings.TrimSpace(m[3]) != ""

		if secondary {
			iface.SecondaryIPs = append(iface.SecondaryIPs, models.SecondaryIP{IP: m[1], Mask: m[2]})
			return
		}

		iface.IP = m[1]
		iface.Mask = m[2]

	case strings.HasPrefix(line, "description "):
		if m := descriptionRE.FindStringSubmatch(line); m != nil {
			iface.Description = m[1]
		}

	case line == "shutdown":
		iface.AdminStatus = models.InterfaceDown

	case accessVLANRE.MatchString(line):
		m := accessVLANRE.FindStringSubmatch(line)

		vlan, err := strconv.Atoi(m[1])
		if err == nil {
			iface.AccessVLAN = vlan
		}

	case trunkModeRE.MatchString(line):
		iface.Trunk = true
	}
}
