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

package job

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coriolis-net/discoveryd/pkg/logger"
	"github.com/coriolis-net/discoveryd/pkg/models"
)

type fakeCredentialSource struct {
	creds []models.Credential
	err   error
}

func (f *fakeCredentialSource) Credentials(_ context.Context) ([]models.Credential, error) {
	return f.creds, f.err
}

type fakeArtifactSink struct {
	mu      sync.Mutex
	written map[string][]byte
}

func newFakeArtifactSink() *fakeArtifactSink {
	return &fakeArtifactSink{written: make(map[string][]byte)}
}

func (f *fakeArtifactSink) Write(_ context.Context, jobID, name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.written[jobID+"/"+name] = data

	return nil
}

type fakeEventSink struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeEventSink) Emit(level string, _ map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, level)
}

func oneDiscoveredDevice(ip string) map[string]*models.Device {
	dev := models.NewDevice(ip)
	dev.Identity = ip
	dev.Status = models.StatusDiscovered

	return map[string]*models.Device{ip: dev}
}

func TestOrchestrator_Run_FinalizesCountersAndWritesArtifacts(t *testing.T) {
	t.Parallel()

	artifacts := newFakeArtifactSink()
	o := NewOrchestrator(&fakeCredentialSource{}, artifacts, &fakeEventSink{}, logger.NewTestLogger())

	o.modes = map[models.JobMode]modeFunc{
		models.JobModeFullPipeline: func(_ context.Context, _ *Orchestrator, _ parsedConfig, _ []models.Credential, result *models.JobResult) {
			result.Devices = oneDiscoveredDevice("10.0.0.1")
		},
	}

	result, err := o.Run(context.Background(), "job-1", models.JobConfig{
		SeedDevices: []string{"10.0.0.1"},
		Mode:        models.JobModeFullPipeline,
	})
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusCompleted, result.Status)
	assert.Equal(t, 1, result.Counters.Total)
	assert.Equal(t, 1, result.Counters.Discovered)

	artifacts.mu.Lock()
	_, ok := artifacts.written["job-1/extracted_subnets.json"]
	artifacts.mu.Unlock()
	assert.True(t, ok, "extracted_subnets.json is always written, even when empty")
}

func TestOrchestrator_Run_RecoversFromPanickingMode(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(&fakeCredentialSource{}, newFakeArtifactSink(), &fakeEventSink{}, logger.NewTestLogger())

	o.modes = map[models.JobMode]modeFunc{
		models.JobModeFullPipeline: func(context.Context, *Orchestrator, parsedConfig, []models.Credential, *models.JobResult) {
			panic("boom")
		},
	}

	result, err := o.Run(context.Background(), "job-2", models.JobConfig{
		SeedDevices: []string{"10.0.0.1"},
		Mode:        models.JobModeFullPipeline,
	})
	require.NoError(t, err, "a panicking mode is recovered into a failed JobResult, not an error")
	assert.Equal(t, models.JobStatusFailed, result.Status)
	assert.Contains(t, result.Error, "boom")
}

func TestOrchestrator_Run_RejectsBadInputBeforeRunningAMode(t *testing.T) {
	t.Parallel()

	called := false
	o := NewOrchestrator(&fakeCredentialSource{}, newFakeArtifactSink(), &fakeEventSink{}, logger.NewTestLogger())

	o.modes = map[models.JobMode]modeFunc{
		models.JobModeFullPipeline: func(context.Context, *Orchestrator, parsedConfig, []models.Credential, *models.JobResult) {
			called = true
		},
	}

	_, err := o.Run(context.Background(), "job-3", models.JobConfig{Mode: models.JobModeFullPipeline})
	require.Error(t, err)
	assert.False(t, called, "BadInput must abort before any mode runs")
}

func TestOrchestrator_Run_LoadsCredentialsWhenConfigOmitsThem(t *testing.T) {
	t.Parallel()

	want := []models.Credential{{Username: "admin", Password: "secret", AuthType: models.AuthTypePassword}}

	var got []models.Credential

	o := NewOrchestrator(&fakeCredentialSource{creds: want}, newFakeArtifactSink(), &fakeEventSink{}, logger.NewTestLogger())

	o.modes = map[models.JobMode]modeFunc{
		models.JobModeFullPipeline: func(_ context.Context, _ *Orchestrator, _ parsedConfig, credentials []models.Credential, _ *models.JobResult) {
			got = credentials
		},
	}

	_, err := o.Run(context.Background(), "job-4", models.JobConfig{
		SeedDevices: []string{"10.0.0.1"},
		Mode:        models.JobModeFullPipeline,
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestOrchestrator_Run_UnknownModeFailsCleanly(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(&fakeCredentialSource{}, newFakeArtifactSink(), &fakeEventSink{}, logger.NewTestLogger())
	o.modes = map[models.JobMode]modeFunc{}

	result, err := o.Run(context.Background(), "job-5", models.JobConfig{
		SeedDevices: []string{"10.0.0.1"},
		Mode:        models.JobModeFullPipeline,
	})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, result.Status)
}
