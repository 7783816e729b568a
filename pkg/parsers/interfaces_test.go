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

	"github.com/coriolis-net/discoveryd/pkg/models"
)

const sampleRunningConfig = `
!
hostname switch1
!
interface GigabitEthernet0/1
 description uplink to core
 ip address 10.0.0.1 255.255.255.0
 ip address 10.0.0.2 255.255.255.0 secondary
 switchport mode trunk
!
interface GigabitEthernet0/2
 shutdown
 switchport access vlan 20
!
interface Ethernet1
 ip address 10.0.1.1/24
!
interface Loopback0
 ip address 10.255.0.1 255.255.255.255
!
interface Vlan10
 ip address dhcp
!
`

func TestInterfacesFromConfig(t *testing.T) {
	t.Parallel()

	ifaces := InterfacesFromConfig(sampleRunningConfig)
	byName := make(map[string]*models.Interface, len(ifaces))

	for _, iface := range ifaces {
		byName[iface.Name] = iface
	}

	gi1 := byName["GigabitEthernet0/1"]
	require.NotNil(t, gi1)
	require.Equal(t, "uplink to core", gi1.Description)
	require.Equal(t, "10.0.0.1", gi1.IP)
	require.Equal(t, "255.255.255.0", gi1.Mask)
	require.True(t, gi1.Trunk)
	require.Equal(t, models.InterfaceUp, gi1.AdminStatus)
	require.Len(t, gi1.SecondaryIPs, 1)
	require.Equal(t, "10.0.0.2", gi1.SecondaryIPs[0].IP)

	gi2 := byName["GigabitEthernet0/2"]
	require.NotNil(t, gi2)
	require.Equal(t, models.InterfaceDown, gi2.AdminStatus)
	require.Equal(t, 20, gi2.AccessVLAN)

	eth1 := byName["Ethernet1"]
	require.NotNil(t, eth1)
	require.Equal(t, "10.0.1.1", eth1.IP)
	require.Equal(t, "255.255.255.0", eth1.Mask)

	lo0 := byName["Loopback0"]
	require.NotNil(t, lo0)
	require.Equal(t, "255.255.255.255", lo0.Mask)

	vlan10 := byName["Vlan10"]
	require.NotNil(t, vlan10)
	require.Equal(t, "dhcp", vlan10.IP)
	require.Equal(t, "", vlan10.Mask)
}

func TestApplyMaskGuardrails_DefaultsToHostMask(t *testing.T) {
	t.Parallel()

	require.Equal(t, "255.255.255.255", applyMaskGuardrails("192.0.2.1", ""))
	require.Equal(t, "255.255.255.0", applyMaskGuardrails("192.0.2.1", "255.255.255.0"))
	require.Equal(t, "", applyMaskGuardrails("", ""))
	require.Equal(t, "", applyMaskGuardrails("dhcp", ""))
}

const sampleShowInterfaces = `GigabitEthernet0/1 is up, line protocol is up
  Description: uplink to core
  Internet address is 10.0.0.1/24
GigabitEthernet0/2 is administratively down, line protocol is down
  Internet address is 10.0.0.2 255.255.255.0
`

func TestInterfacesFromShow_Generic(t *testing.T) {
	t.Parallel()

	ifaces := InterfacesFromShow(sampleShowInterfaces, models.FamilyGenericIOS)
	require.Len(t, ifaces, 2)

	require.Equal(t, "GigabitEthernet0/1", ifaces[0].Name)
	require.Equal(t, "10.0.0.1", ifaces[0].IP)
	require.Equal(t, "255.255.255.0", ifaces[0].Mask)
	require.Equal(t, "uplink to core", ifaces[0].Description)
	require.Equal(t, models.InterfaceUp, ifaces[0].AdminStatus)

	require.Equal(t, models.InterfaceDown, ifaces[1].AdminStatus)
}

const sampleJunosShowInterfaces = `Physical interface: ge-0/0/0, Enabled, Physical link is Up
  Local: 10.1.1.1/30

Physical interface: ge-0/0/1, Enabled, Physical link is Down
  Local: 10.1.1.5/30
`

func TestInterfacesFromShow_Junos(t *testing.T) {
	t.Parallel()

	ifaces := InterfacesFromShow(sampleJunosShowInterfaces, models.FamilyJunos)
	require.Len(t, ifaces, 2)

	require.Equal(t, "ge-0/0/0", ifaces[0].Name)
	require.Equal(t, "10.1.1.1", ifaces[0].IP)
	require.Equal(t, "255.255.255.252", ifaces[0].Mask)
	require.Equal(t, models.InterfaceUp, ifaces[0].AdminStatus)

	require.Equal(t, models.InterfaceDown, ifaces[1].AdminStatus)
}
