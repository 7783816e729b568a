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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeed_RoundTrip(t *testing.T) {
	t.Parallel()

	cases := []string{
		"10.0.0.1",
		"10.0.0.1:2222",
		"switch1.example.com",
		"switch1.example.com:2222",
		"10.0.0.0/30",
		"192.168.1.0/24",
	}

	for _, raw := range cases {
		raw := raw
		t.Run(raw, func(t *testing.T) {
			t.Parallel()

			seed, err := ParseSeed(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, seed.String())
		})
	}
}

func TestParseSeed_DefaultPortElided(t *testing.T) {
	t.Parallel()

	seed, err := ParseSeed("10.0.0.1:22")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", seed.String())
	assert.Equal(t, DefaultSSHPort, seed.Port)
}

func TestParseSeed_BadInput(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"10.0.0.1:notaport",
		"10.0.0.1:999999",
		"10.0.0.0/40",
		"not a cidr/33",
	}

	for _, raw := range cases {
		_, err := ParseSeed(raw)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrBadInput), "expected ErrBadInput for %q, got %v", raw, err)
	}
}

func TestCanonicalIdentity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "R1", CanonicalIdentity("R1", "10.0.0.1"))
	assert.Equal(t, "10.0.0.1", CanonicalIdentity("", "10.0.0.1"))
	assert.Equal(t, "10.0.0.1", CanonicalIdentity("^\nInvalid input", "10.0.0.1"))
	assert.Equal(t, "10.0.0.1", CanonicalIdentity("Invalid input detected", "10.0.0.1"))
}
