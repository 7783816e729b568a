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

package seedintro

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/coriolis-net/discoveryd/pkg/logger"
	"github.com/coriolis-net/discoveryd/pkg/models"
)

func TestRun_IgnoresSubnetSeeds(t *testing.T) {
	t.Parallel()

	in := &Introspector{Timeout: 50 * time.Millisecond, Logger: logger.NewTestLogger()}

	result := in.Run(context.Background(), []models.Seed{{Kind: models.SeedKindSubnet, CIDR: "10.0.0.0/24"}})

	assert.Empty(t, result.Subnets)
	assert.Empty(t, result.Devices)
}

func TestRun_SkipsSeedWhenNoCredentialsConfigured(t *testing.T) {
	t.Parallel()

	in := &Introspector{Timeout: 50 * time.Millisecond, Logger: logger.NewTestLogger()}

	seed := models.Seed{Kind: models.SeedKindSingleHost, Address: "127.0.0.1", Port: 1}

	result := in.Run(context.Background(), []models.Seed{seed})

	assert.Empty(t, result.Devices, "a seed that never authenticates contributes nothing")
	assert.Empty(t, result.Subnets)
}

func TestRun_SkipsSeedWhenPortNeverOpens(t *testing.T) {
	t.Parallel()

	in := &Introspector{
		Credentials: []models.Credential{{Username: "admin", Password: "admin", AuthType: models.AuthTypePassword}},
		Timeout:     50 * time.Millisecond,
		Logger:      logger.NewTestLogger(),
	}

	// Port 1 is reserved and never listens locally, so Connect fails for
	// every credential and the seed contributes nothing to the result.
	seed := models.Seed{Kind: models.SeedKindSingleHost, Address: "127.0.0.1", Port: 1}

	result := in.Run(context.Background(), []models.Seed{seed})

	assert.Empty(t, result.Devices)
	assert.Empty(t, result.Subnets)
}

func TestRun_CancelledContextStopsBeforeConnecting(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := &Introspector{
		Credentials: []models.Credential{{Username: "admin", Password: "admin", AuthType: models.AuthTypePassword}},
		Timeout:     50 * time.Millisecond,
	}

	seed := models.Seed{Kind: models.SeedKindSingleHost, Address: "127.0.0.1", Port: 1}

	result := in.Run(ctx, []models.Seed{seed})

	assert.Empty(t, result.Devices)
}
