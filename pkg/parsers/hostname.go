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
	configHostnameRE = regexp.MustCompile(`(?m)^hostname\s+(\S+)`)
	junosHostnameRE  = regexp.MustCompile(`Hostname:\s+(\S+)`)
)

// HostnameFromConfig extracts a hostname from running-config text: the
// first line matching "^hostname <name>" wins.
func HostnameFromConfig(raw string) (string, bool) {
	m := configHostnameRE.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}

	return m[1], true
}

// HostnameFromCommand extracts a hostname from a "show hostname"-style
// command's raw output. Juniper reports "Hostname: NAME"; other families
// print the bare hostname as the only meaningful line. A command-error
// echo (leading '^', or containing "Invalid input") is rejected rather
// than mistaken for a hostname.
func HostnameFromCommand(raw string, family models.FamilyTag) (string, bool) {
	if family == models.FamilyJunos {
		if m := junosHostnameRE.FindStringSubmatch(raw); m != nil {
			return m[1], true
		}

		return "", false
	}

	trimmed := firstNonEmptyLine(raw)
	if !models.IsValidHostname(trimmed) {
		return "", false
	}

	return trimmed, true
}

// firstNonEmptyLine returns the first line of raw with surrounding
// whitespace trimmed, skipping leading blank lines.
func firstNonEmptyLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}

	return ""
}
