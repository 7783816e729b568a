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
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ifBriefRowRE matches "show ip interface brief" rows:
	// "Interface  IP-Address  OK? Method Status  Protocol"
	ifBriefRowRE = regexp.MustCompile(`^(\S+)\s+(\d{1,3}(?:\.\d{1,3}){3})(?:/(\d+))?\s`)

	// routeConnectedCIDRRE matches "C|L  A.B.C.D/P  is directly connected, IfName".
	routeConnectedCIDRRE = regexp.MustCompile(`^[CL]\s+(\d{1,3}(?:\.\d{1,3}){3})/(\d+)\s+is directly connected`)

	// routeConnectedHostRE matches the no-prefix form: "A.B.C.D is directly connected".
	routeConnectedHostRE = regexp.MustCompile(`(\d{1,3}(?:\.\d{1,3}){3})\s+is directly connected`)
)

// HarvestResult is the set of subnets and loopback IPs found across a
// seed device's "show ip interface brief" and "show ip route connected"
// output.
type HarvestResult struct {
	Subnets   []string
	Loopbacks []string
}

// HarvestSubnets extracts probe-worthy subnets from "show ip interface
// brief" and "show ip route connected" output. From interface brief, a
// non-loopback row that carries a prefix yields its containing subnet; a
// row without a prefix yields nothing, and the interface IPs themselves
// are not returned. Loopback
// IPs are collected separately as future /32 targets rather than mixed
// into the subnet list. From route-connected output, "C|L A.B.C.D/P"
// rows yield that subnet directly, and the prefix-less "is directly
// connected" form yields a /32 of the host rather than a broader guess.
func HarvestSubnets(ifBriefOutput, routeConnectedOutput string) HarvestResult {
	var result HarvestResult

	seen := make(map[string]struct{})

	addSubnet := func(cidr string) {
		if _, ok := seen[cidr]; ok {
			return
		}

		seen[cidr] = struct{}{}
		result.Subnets = append(result.Subnets, cidr)
	}

	for _, line := range strings.Split(ifBriefOutput, "\n") {
		m := ifBriefRowRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		ifName, ip, prefixStr := m[1], m[2], m[3]

		if isLoopbackName(ifName) {
			result.Loopbacks = append(result.Loopbacks, ip)
			continue
		}

		if prefixStr == "" {
			continue
		}

		if cidr, ok := hostPrefixToCIDR(ip, prefixStr); ok {
			addSubnet(cidr)
		}
	}

	for _, line := range strings.Split(routeConnectedOutput, "\n") {
		if m := routeConnectedCIDRRE.FindStringSubmatch(line); m != nil {
			if cidr, ok := hostPrefixToCIDR(m[1], m[2]); ok {
				addSubnet(cidr)
			}

			continue
		}

		if m := routeConnectedHostRE.FindStringSubmatch(line); m != nil {
			addSubnet(m[1] + "/32")
		}
	}

	return result
}

// hostPrefixToCIDR normalizes host A.B.C.D and prefix P into the network
// CIDR that contains it (e.g. 10.0.0.5/24 -> 10.0.0.0/24).
func hostPrefixToCIDR(host, prefixStr string) (string, bool) {
	prefix, err := strconv.Atoi(prefixStr)
	if err != nil || prefix < 0 || prefix > 32 {
		return "", false
	}

	ip := net.ParseIP(host)
	if ip == nil || ip.To4() == nil {
		return "", false
	}

	_, ipnet, err := net.ParseCIDR(fmt.Sprintf("%s/%d", host, prefix))
	if err != nil {
		return "", false
	}

	return ipnet.String(), true
}
