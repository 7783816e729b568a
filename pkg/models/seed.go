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
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DefaultSSHPort is used whenever a seed or neighbor claim omits a port.
const DefaultSSHPort = 22

// SeedKind discriminates the three seed shapes an operator may submit.
type SeedKind string

const (
	SeedKindSingleHost SeedKind = "single_host"
	SeedKindSubnet     SeedKind = "subnet"
)

// Seed is a discriminated variant: {SingleHost(address, port), Subnet(cidr)}.
type Seed struct {
	Kind    SeedKind
	Address string // set for SingleHost
	Port    int    // set for SingleHost; DefaultSSHPort when not specified
	CIDR    string // set for Subnet
}

// ParseSeed accepts "HOST", "HOST:PORT", or "A.B.C.D/P" and returns the
// discriminated Seed. Malformed input returns an error wrapping ErrBadInput.
func ParseSeed(raw string) (Seed, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Seed{}, fmt.Errorf("%w: empty seed", ErrBadInput)
	}

	if strings.Contains(s, "/") {
		ip, ipnet, err := net.ParseCIDR(s)
		if err != nil {
			return Seed{}, fmt.Errorf("%w: invalid CIDR %q: %v", ErrBadInput, s, err)
		}

		ones, bits := ipnet.Mask.Size()
		if bits != 32 || ones < 0 || ones > 32 {
			return Seed{}, fmt.Errorf("%w: only IPv4 prefixes are supported: %q", ErrBadInput, s)
		}

		if ip.To4() == nil {
			return Seed{}, fmt.Errorf("%w: only IPv4 prefixes are supported: %q", ErrBadInput, s)
		}

		return Seed{Kind: SeedKindSubnet, CIDR: ipnet.String()}, nil
	}

	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		// No port supplied; treat the whole string as the host.
		return seedFromHost(s, DefaultSSHPort)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return Seed{}, fmt.Errorf("%w: invalid port in %q", ErrBadInput, s)
	}

	return seedFromHost(host, port)
}

func seedFromHost(host string, port int) (Seed, error) {
	if host == "" {
		return Seed{}, fmt.Errorf("%w: empty host", ErrBadInput)
	}

	return Seed{Kind: SeedKindSingleHost, Address: host, Port: port}, nil
}

// String renders the Seed back to the canonical input form, eliding the
// default port. parse(String(s)) == s for every valid Seed.
func (s Seed) String() string {
	switch s.Kind {
	case SeedKindSubnet:
		return s.CIDR
	case SeedKindSingleHost:
		if s.Port == DefaultSSHPort || s.Port == 0 {
			return s.Address
		}

		return fmt.Sprintf("%s:%d", s.Address, s.Port)
	default:
		return ""
	}
}

// AuthType enumerates the supported credential authentication mechanisms.
type AuthType string

const (
	AuthTypePassword AuthType = "password"
	AuthTypeKey      AuthType = "key"
	AuthTypeToken    AuthType = "token"
)

// Credential holds the secrets needed to log in to a device. Password and
// EnableSecret must never be logged, serialized to an artifact, or copied
// into CredentialUsed.
type Credential struct {
	Username     string
	Password     string
	EnableSecret string
	AuthType     AuthType
}

// CredentialUsed is the redacted record kept on a Device once a credential
// succeeds: username, auth type, and port only.
type CredentialUsed struct {
	Username string   `json:"username"`
	AuthType AuthType `json:"auth_type"`
	Port     int      `json:"port"`
}
