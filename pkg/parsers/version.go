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

	"github.com/coriolis-net/discoveryd/pkg/models"
)

// VersionInfo is the subset of "show version" facts the walker records on
// a Device. Every field is optional: a regex miss leaves it empty rather
// than failing the parse.
type VersionInfo struct {
	Platform  string
	OSVersion string
	Model     string
	Serial    string
}

type versionPattern struct {
	field string
	re    *regexp.Regexp
}

// versionPatternsByFamily lists the regexes tried, in order, for each
// family's "show version" dialect. Missing fields are simply left unset;
// these patterns never raise, only miss.
var versionPatternsByFamily = map[models.FamilyTag][]versionPattern{
	models.FamilyDefault: {
		{"platform", regexp.MustCompile(`(?m)^Cisco (\S+(?: \S+)*) \(\S+\) processor`)},
		{"osversion", regexp.MustCompile(`Version\s+([^\s,]+)`)},
		{"model", regexp.MustCompile(`(?m)^[Cc]isco\s+(\S+)\s+\([^)]+\)\s+processor`)},
		{"serial", regexp.MustCompile(`[Pp]rocessor board ID\s+(\S+)`)},
	},
	models.FamilyNXOS: {
		{"osversion", regexp.MustCompile(`NXOS:\s*version\s+(\S+)`)},
		{"platform", regexp.MustCompile(`cisco\s+(Nexus\s*\S+)`)},
		{"model", regexp.MustCompile(`(?m)^\s*cisco\s+(\S+)\s+Chassis`)},
		{"serial", regexp.MustCompile(`[Pp]rocessor\s+[Bb]oard\s+ID\s+(\S+)`)},
	},
	models.FamilyEOS: {
		{"osversion", regexp.MustCompile(`Software image version:\s*(\S+)`)},
		{"model", regexp.MustCompile(`Arista\s+(\S+)`)},
		{"serial", regexp.MustCompile(`Serial number:\s*(\S+)`)},
	},
	models.FamilyIOSXE: {
		{"platform", regexp.MustCompile(`(?m)^Cisco (IOS[- ]XE) Software`)},
		{"osversion", regexp.MustCompile(`Version\s+([^\s,]+)`)},
		{"model", regexp.MustCompile(`[Mm]odel [Nn]umber\s*:\s*(\S+)`)},
		{"serial", regexp.MustCompile(`[Ss]ystem [Ss]erial [Nn]umber\s*:\s*(\S+)`)},
	},
	models.FamilyJunos: {
		{"osversion", regexp.MustCompile(`Junos:\s*(\S+)`)},
		{"model", regexp.MustCompile(`Model:\s*(\S+)`)},
		{"serial", regexp.MustCompile(`Chassis\s+(\S+)`)},
	},
}

// Version parses a "show version" (or family equivalent) response into a
// VersionInfo. Unmatched fields are left as zero values; the function
// never returns an error.
func Version(raw string, family models.FamilyTag) VersionInfo {
	patterns, ok := versionPatternsByFamily[family]
	if !ok {
		patterns = versionPatternsByFamily[models.FamilyDefault]
	}

	var info VersionInfo

	for _, p := range patterns {
		m := p.re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}

		switch p.field {
		case "platform":
			info.Platform = m[1]
		case "osversion":
			info.OSVersion = m[1]
		case "model":
			info.Model = m[1]
		case "serial":
			info.Serial = m[1]
		}
	}

	return info
}
