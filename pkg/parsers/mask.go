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

// Package parsers turns raw CLI text into structured records. Every
// exported function here is pure and total: it never panics, and a miss
// returns the zero value plus false/nil rather than an error.
package parsers

import (
	"fmt"
	"strconv"
	"strings"
)

const fullMask = "255.255.255.255"

// prefixToMask converts a CIDR prefix length to its dotted-decimal mask,
// e.g. 24 -> "255.255.255.0". Out-of-range prefixes
// return "" rather than panicking.
func prefixToMask(prefix int) string {
	if prefix < 0 || prefix > 32 {
		return ""
	}

	m := (uint32(0xffffffff) << (32 - prefix)) & 0xffffffff

	return fmt.Sprintf("%d.%d.%d.%d", byte(m>>24), byte(m>>16), byte(m>>8), byte(m))
}

// parsePrefixLen parses a "/P" suffix into its integer prefix length.
func parsePrefixLen(s string) (int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "/")

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 32 {
		return 0, false
	}

	return n, true
}

// isLoopbackName reports whether name is a loopback interface, matched
// case-insensitively.
func isLoopbackName(name string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(name)), "loopback")
}

// applyMaskGuardrails fills in a missing mask on an interface that has an
// IP. Loopback interfaces default to a full host mask; as a last-resort
// guardrail, any other IP-bearing interface with no mask is also treated
// as a /32 rather than left unmasked.
func applyMaskGuardrails(ip, mask string) string {
	if ip == "" || ip == "dhcp" || mask != "" {
		return mask
	}

	return fullMask
}
