/*
 * Copyright 2025 Carver Automation Corporation.
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

package reachability

import "net"

// ExpandCIDR lists every host address in cidr in ascending order. For an
// IPv4 network wider than /32 it skips the network and broadcast
// addresses, since neither is a probe-worthy host.
func ExpandCIDR(cidr string) ([]string, error) {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, err
	}

	ones, bits := ipNet.Mask.Size()
	skipEdges := bits == 32 && ones != 32

	var hosts []string

	for addr := cloneIP(ipNet.IP); ipNet.Contains(addr); stepIP(addr) {
		if skipEdges && (addr.Equal(ipNet.IP) || isBroadcastAddr(addr, ipNet)) {
			continue
		}

		hosts = append(hosts, addr.String())
	}

	return hosts, nil
}

func cloneIP(ip net.IP) net.IP {
	out := make(net.IP, len(ip))
	copy(out, ip)

	return out
}

// stepIP increments ip in place, treating it as a big-endian counter.
func stepIP(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] != 0 {
			return
		}
	}
}

func isBroadcastAddr(ip net.IP, ipNet *net.IPNet) bool {
	for i := range ip {
		if ip[i] != ipNet.IP[i]|^ipNet.Mask[i] {
			return false
		}
	}

	return true
}
