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

package models

import (
	"regexp"
	"strings"
)

// FamilyTag identifies the command/parser dialect a device speaks. These
// are identifiers only; discoveryd does not guarantee vendor-accurate
// branding.
type FamilyTag string

const (
	FamilyGenericIOS FamilyTag = "generic_ios"
	FamilyNXOS       FamilyTag = "nxos"
	FamilyJunos      FamilyTag = "junos"
	FamilyEOS        FamilyTag = "eos"
	FamilyIOSXE      FamilyTag = "ios_xe"
	FamilyDefault    FamilyTag = "default"
)

// DiscoveryStatus is the lifecycle state of a single Device within a job.
type DiscoveryStatus string

const (
	StatusPending     DiscoveryStatus = "pending"
	StatusRunning     DiscoveryStatus = "running"
	StatusDiscovered  DiscoveryStatus = "discovered"
	StatusFailed      DiscoveryStatus = "failed"
	StatusUnreachable DiscoveryStatus = "unreachable"
)

// InterfaceAdminStatus is the administrative state of an Interface.
type InterfaceAdminStatus string

const (
	InterfaceUp   InterfaceAdminStatus = "up"
	InterfaceDown InterfaceAdminStatus = "down"
)

// SecondaryIP is an "ip address A B secondary" entry on an interface.
type SecondaryIP struct {
	IP   string
	Mask string
}

// Interface holds one parsed interface block, keyed by its verbatim
// device-reported name.
type Interface struct {
	Name          string
	IP            string
	Mask          string
	Description   string
	AdminStatus   InterfaceAdminStatus
	AccessVLAN    int
	Trunk         bool
	SecondaryIPs  []SecondaryIP
	ConnectedTo   string // set by the topology builder: "<peer-name>:<peer-port>"
}

// NeighborClaim is one row of a device's CDP/LLDP neighbor table.
type NeighborClaim struct {
	Hostname       string
	IP             string
	Platform       string
	LocalInterface string
	RemoteInterface string
	VLAN           int
	Capabilities   string
	HoldtimeSec    int
}

// Device is the canonical record for one discovered (or attempted) node.
type Device struct {
	PrimaryIP    string
	Identity     string // hostname when trustworthy, else PrimaryIP
	Family       FamilyTag
	Platform     string // vendor/platform string, e.g. from "show version"
	OSVersion    string
	Model        string
	Serial       string
	AllIPs       map[string]struct{} // primary + interface + secondary + loopback IPs
	Interfaces   []*Interface
	InterfaceIdx map[string]*Interface // name -> *Interface, same backing objects as Interfaces
	Neighbors    []NeighborClaim
	RawConfig    string
	Status       DiscoveryStatus
	Error        string
	CredUsed     *CredentialUsed
}

// NewDevice creates a pending Device seeded with its primary IP.
func NewDevice(primaryIP string) *Device {
	d := &Device{
		PrimaryIP:    primaryIP,
		Identity:     primaryIP,
		AllIPs:       map[string]struct{}{primaryIP: {}},
		InterfaceIdx: make(map[string]*Interface),
		Status:       StatusPending,
	}

	return d
}

// AddIP folds an IP into AllIPs, skipping the "dhcp" sentinel used for
// unresolved DHCP-assigned interfaces.
func (d *Device) AddIP(ip string) {
	if ip == "" || strings.EqualFold(ip, "dhcp") {
		return
	}

	d.AllIPs[ip] = struct{}{}
}

// UpsertInterface adds or replaces an interface by name, keeping
// Interfaces and InterfaceIdx in sync.
func (d *Device) UpsertInterface(iface *Interface) {
	if existing, ok := d.InterfaceIdx[iface.Name]; ok {
		*existing = *iface
		return
	}

	d.InterfaceIdx[iface.Name] = iface
	d.Interfaces = append(d.Interfaces, iface)
}

// errEchoSubstr flags a command-error echo as data rather than a real
// hostname: a device that rejects a command can echo text back that
// looks superficially like a hostname line.
var errEchoSubstr = "Invalid input"

// IsValidHostname reports whether a candidate hostname string is trustworthy:
// non-empty, not prefixed with '^', and not a command-error echo.
func IsValidHostname(candidate string) bool {
	c := strings.TrimSpace(candidate)
	if c == "" {
		return false
	}

	if strings.HasPrefix(c, "^") {
		return false
	}

	if strings.Contains(c, errEchoSubstr) {
		return false
	}

	return true
}

// hostnameToken matches a single non-whitespace token, used to sanity-check
// a harvested hostname before it becomes a DeviceId.
var hostnameToken = regexp.MustCompile(`^\S+$`)

// CanonicalIdentity computes a Device's DeviceId: the hostname when it is
// present and trustworthy, the primary IP otherwise.
func CanonicalIdentity(hostname, primaryIP string) string {
	if IsValidHostname(hostname) && hostnameToken.MatchString(strings.TrimSpace(hostname)) {
		return strings.TrimSpace(hostname)
	}

	return primaryIP
}
