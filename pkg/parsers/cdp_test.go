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
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleCDPDetail = `-------------------------
Device ID: core-switch1.example.com
Entry address(es):
  IP address: 10.0.0.254
Platform: cisco WS-C3850-24P,  Capabilities: Switch IGMP
Interface: GigabitEthernet0/1,  Port ID (outgoing port): GigabitEthernet1/0/1
Holdtime : 137

Version :
Cisco IOS Software

Native VLAN: 1
Duplex: full
-------------------------
Device ID: orphan-no-ip
Platform: cisco ISR,  Capabilities: Router
Interface: GigabitEthernet0/2,  Port ID (outgoing port): GigabitEthernet0/3
-------------------------
`

func TestCDPNeighbors(t *testing.T) {
	t.Parallel()

	claims := CDPNeighbors(sampleCDPDetail)
	require.Len(t, claims, 1, "the section with no IP must not emit a claim")

	c := claims[0]
	require.Equal(t, "core-switch1.example.com", c.Hostname)
	require.Equal(t, "10.0.0.254", c.IP)
	require.Equal(t, "cisco WS-C3850-24P", c.Platform)
	require.Equal(t, "GigabitEthernet0/1", c.LocalInterface)
	require.Equal(t, "GigabitEthernet1/0/1", c.RemoteInterface)
	require.Equal(t, 137, c.HoldtimeSec)
	require.Equal(t, 1, c.VLAN)
	require.Contains(t, c.Capabilities, "duplex=full")
}

func TestCDPNeighbors_Empty(t *testing.T) {
	t.Parallel()

	require.Empty(t, CDPNeighbors(""))
	require.Empty(t, CDPNeighbors("no sections here at all"))
}
