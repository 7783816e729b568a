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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandCIDR_SkipsNetworkAndBroadcastForWiderSubnets(t *testing.T) {
	t.Parallel()

	hosts, err := ExpandCIDR("10.0.0.0/30")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, hosts)
}

func TestExpandCIDR_SingleHostIncludesItself(t *testing.T) {
	t.Parallel()

	hosts, err := ExpandCIDR("10.0.0.5/32")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.5"}, hosts)
}

func TestExpandCIDR_InvalidCIDRReturnsError(t *testing.T) {
	t.Parallel()

	_, err := ExpandCIDR("not-a-cidr")
	assert.Error(t, err)
}

func TestExpandCIDR_CountsEveryUsableHost(t *testing.T) {
	t.Parallel()

	hosts, err := ExpandCIDR("10.1.0.0/23")
	require.NoError(t, err)
	assert.Len(t, hosts, 510)
}
