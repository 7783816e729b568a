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

// Package platform maps a device family and a logical operation to the
// exact CLI text that operation requires on that family. It is pure data:
// no I/O, no parsing, just command selection.
package platform

import "github.com/coriolis-net/discoveryd/pkg/models"

// Operation names a logical thing the walker wants from a device,
// independent of the CLI dialect used to ask for it.
type Operation string

const (
	OpVersion       Operation = "version"
	OpConfig        Operation = "config"
	OpInterfaces    Operation = "interfaces"
	OpHostname      Operation = "hostname"
	OpInventory     Operation = "inventory"
	OpCDPNeighbors  Operation = "cdp_neighbors"
	OpLLDPNeighbors Operation = "lldp_neighbors"
)

// commandTable holds, for each family, the command text for every
// operation that family supports. Families fall back to the "default"
// row entry for any operation they don't override.
var commandTable = map[models.FamilyTag]map[Operation]string{
	models.FamilyDefault: {
		OpVersion:       "show version",
		OpConfig:        "show running-config",
		OpInterfaces:    "show interfaces",
		OpHostname:      "show hostname",
		OpInventory:     "show inventory",
		OpCDPNeighbors:  "show cdp neighbors detail",
		OpLLDPNeighbors: "show lldp neighbors detail",
	},
	models.FamilyGenericIOS: {
		OpVersion:       "show version",
		OpConfig:        "show running-config",
		OpInterfaces:    "show interfaces",
		OpHostname:      "show hostname",
		OpInventory:     "show inventory",
		OpCDPNeighbors:  "show cdp neighbors detail",
		OpLLDPNeighbors: "show lldp neighbors detail",
	},
	models.FamilyIOSXE: {
		OpVersion:       "show version",
		OpConfig:        "show running-config",
		OpInterfaces:    "show interfaces",
		OpHostname:      "show hostname",
		OpInventory:     "show inventory",
		OpCDPNeighbors:  "show cdp neighbors detail",
		OpLLDPNeighbors: "show lldp neighbors detail",
	},
	models.FamilyNXOS: {
		OpVersion:       "show version",
		OpConfig:        "show running-config",
		OpInterfaces:    "show interface",
		OpHostname:      "show hostname",
		OpInventory:     "show inventory",
		OpCDPNeighbors:  "show cdp neighbors detail",
		OpLLDPNeighbors: "show lldp neighbors detail",
	},
	models.FamilyEOS: {
		OpVersion:       "show version",
		OpConfig:        "show running-config",
		OpInterfaces:    "show interfaces",
		OpHostname:      "show hostname",
		OpInventory:     "show inventory",
		OpCDPNeighbors:  "show cdp neighbors detail",
		OpLLDPNeighbors: "show lldp neighbors detail",
	},
	models.FamilyJunos: {
		OpVersion:       "show version",
		OpConfig:        "show configuration | display set",
		OpInterfaces:    "show interfaces",
		OpHostname:      "show configuration system host-name",
		OpInventory:     "show chassis hardware",
		OpCDPNeighbors:  "show cdp neighbors detail",
		OpLLDPNeighbors: "show lldp neighbors",
	},
}

// Command returns the CLI text for op on family, falling back to the
// default family row when family has no table entry, and to the literal
// operation name when neither the family nor the default row names op.
func Command(family models.FamilyTag, op Operation) string {
	if row, ok := commandTable[family]; ok {
		if cmd, ok := row[op]; ok {
			return cmd
		}
	}

	if cmd, ok := commandTable[models.FamilyDefault][op]; ok {
		return cmd
	}

	return string(op)
}

// ParserID names which parser function family to use for an operation's
// output. Most operations share one parser across families; Junos diverges
// enough in "show interfaces"/neighbor table formatting to need its own,
// and every other family uses ParserGeneric.
type ParserID string

const (
	ParserGeneric ParserID = "generic"
	ParserJunos   ParserID = "junos"
)

// parserTable maps family to the parser dialect its command output needs.
// Operations not listed here (hostname, version, neighbors) use family-
// aware regexes directly inside pkg/parsers rather than a second dispatch
// layer, since those parsers already branch on family internally.
var parserTable = map[models.FamilyTag]ParserID{
	models.FamilyJunos: ParserJunos,
}

// Parser returns the parser dialect registered for family, defaulting to
// ParserGeneric when family has no override.
func Parser(family models.FamilyTag) ParserID {
	if id, ok := parserTable[family]; ok {
		return id
	}

	return ParserGeneric
}
