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
	"encoding/json"
	"fmt"
	"time"

	"github.com/coriolis-net/discoveryd/pkg/logger"
	"github.com/coriolis-net/discoveryd/pkg/models"
	"github.com/coriolis-net/discoveryd/pkg/reachability"
	"github.com/coriolis-net/discoveryd/pkg/topology"
)

// Orchestrator wires the three external ports to the core pipeline and
// runs one job to completion. It never imports the HTTP job API, the
// exporters, or a CLI package — cmd/discoveryd supplies concrete
// CredentialSource/ArtifactSink/EventSink implementations.
type Orchestrator struct {
	Credentials CredentialSource
	Artifacts   ArtifactSink
	Events      EventSink
	Logger      logger.Logger

	modes map[models.JobMode]modeFunc
}

// NewOrchestrator builds an Orchestrator with the default mode dispatch
// table. Tests may swap o.modes to exercise a single mode in isolation.
func NewOrchestrator(credentials CredentialSource, artifacts ArtifactSink, events EventSink, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		Credentials: credentials,
		Artifacts:   artifacts,
		Events:      events,
		Logger:      log,
		modes:       defaultModeTable(),
	}
}

// Run validates cfg, runs the job under the given jobID, executes
// the selected mode, finalizes the JobResult (topology + counters), and
// writes the core's artifacts. A BadInput validation failure aborts
// before any network I/O and is returned as an error rather than a
// JobResult.
func (o *Orchestrator) Run(ctx context.Context, jobID string, cfg models.JobConfig) (*models.JobResult, error) {
	pc, err := parseAndValidate(cfg)
	if err != nil {
		return nil, err
	}

	credentials := pc.cfg.Credentials
	if len(credentials) == 0 && o.Credentials != nil {
		credentials, err = o.Credentials.Credentials(ctx)
		if err != nil {
			return nil, fmt.Errorf("load credentials: %w", err)
		}
	}

	result := models.NewJobResult(jobID)

	fn, ok := o.modes[pc.cfg.Mode]
	if !ok {
		result.Status = models.JobStatusFailed
		result.Error = fmt.Sprintf("no handler registered for mode %q", pc.cfg.Mode)
		result.EndedAt = time.Now()

		return result, nil
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Status = models.JobStatusFailed
				result.Error = fmt.Sprintf("internal error: %v", r)
				o.emit("error", map[string]interface{}{"event": "panic", "job_id": jobID, "recover": fmt.Sprint(r)})
			}
		}()

		fn(ctx, o, pc, credentials, result)
	}()

	o.finalize(result)

	result.EndedAt = time.Now()
	if result.Status == models.JobStatusRunning {
		result.Status = models.JobStatusCompleted
	}

	o.writeArtifacts(ctx, result, pc)

	return result, nil
}

// finalize runs the topology builder over every discovered device and
// fills in the job counters.
func (o *Orchestrator) finalize(result *models.JobResult) {
	adjacency, edges := topology.Build(result.Devices)
	result.Adjacency = adjacency
	result.Edges = edges

	result.Counters = models.JobCounters{}

	for _, dev := range result.Devices {
		result.Counters.Total++

		switch dev.Status {
		case models.StatusDiscovered:
			result.Counters.Discovered++
		case models.StatusFailed, models.StatusUnreachable:
			result.Counters.Failed++
		}
	}
}

func (o *Orchestrator) writeArtifacts(ctx context.Context, result *models.JobResult, pc parsedConfig) {
	if o.Artifacts == nil {
		return
	}

	if result.ReachabilityMatrix != nil {
		if err := reachability.WriteMatrix(ctx, o.Artifacts, result.JobID, result.ReachabilityMatrix); err != nil {
			o.emit("error", map[string]interface{}{"event": "artifact_write_failed", "name": "reachability_matrix.json", "error": err.Error()})
		}
	}

	subnets := extractSubnetsMetadata(pc, result)
	if data, err := json.MarshalIndent(subnets, "", "  "); err == nil {
		if err := o.Artifacts.Write(ctx, result.JobID, "extracted_subnets.json", data); err != nil {
			o.emit("error", map[string]interface{}{"event": "artifact_write_failed", "name": "extracted_subnets.json", "error": err.Error()})
		}
	}
}

func extractSubnetsMetadata(pc parsedConfig, result *models.JobResult) []string {
	seen := make(map[string]struct{})

	var subnets []string

	for _, s := range pc.seeds {
		if s.Kind == models.SeedKindSubnet {
			if _, ok := seen[s.CIDR]; !ok {
				seen[s.CIDR] = struct{}{}
				subnets = append(subnets, s.CIDR)
			}
		}
	}

	return subnets
}

func (o *Orchestrator) emit(level string, fields map[string]interface{}) {
	if o.Events != nil {
		o.Events.Emit(level, fields)
	}
}
