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

import "time"

// JobMode selects which of the three discovery pipelines a job runs.
type JobMode string

const (
	JobModeSubnet        JobMode = "subnet"
	JobModeSeedDevice     JobMode = "seed-device"
	JobModeFullPipeline   JobMode = "full-pipeline"
)

// DiscoveryProtocol is a link-layer discovery protocol the walker will
// query for neighbor claims.
type DiscoveryProtocol string

const (
	ProtocolCDP  DiscoveryProtocol = "cdp"
	ProtocolLLDP DiscoveryProtocol = "lldp"
)

var (
	// DefaultProbePorts is used when a job omits probe_ports.
	DefaultProbePorts = []int{22, 443}

	// DefaultProbeConcurrency is used when a job omits probe_concurrency.
	DefaultProbeConcurrency = 200
)

// JobConfig is the full set of parameters a caller submits for one
// discovery job.
type JobConfig struct {
	JobID                 string
	SeedDevices           []string
	Credentials           []Credential
	Method                string // explicit method name, or "auto"
	Mode                  JobMode
	MaxDepth              int
	DiscoveryProtocols    []DiscoveryProtocol
	Timeout               time.Duration
	ConcurrentConnections int
	ExcludePatterns       []string
	ProbePorts            []int
	ProbeConcurrency      int
	RetryCount            int // accepted, consulted by pkg/walker send retries
}

// ApplyDefaults fills in default values for omitted fields, without
// mutating fields the caller explicitly set.
func (c *JobConfig) ApplyDefaults() {
	if len(c.ProbePorts) == 0 {
		c.ProbePorts = append([]int(nil), DefaultProbePorts...)
	}

	if c.ProbeConcurrency == 0 {
		c.ProbeConcurrency = DefaultProbeConcurrency
	}

	if c.ConcurrentConnections == 0 {
		c.ConcurrentConnections = 10
	}

	if c.MaxDepth == 0 {
		c.MaxDepth = 1
	}
}

// JobStatus is the terminal/in-flight state of a JobResult.
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobCounters summarizes a job's device outcomes.
type JobCounters struct {
	Total      int `json:"total"`
	Discovered int `json:"discovered"`
	Failed     int `json:"failed"`
}

// JobResult is the accumulated output of one discovery job.
type JobResult struct {
	JobID        string                 `json:"job_id"`
	Devices      map[string]*Device     `json:"devices"`
	Adjacency    map[string][]string    `json:"adjacency"`
	Edges        []Edge                 `json:"edges"`
	Reachability []ReachabilityRecord   `json:"reachability,omitempty"`
	// ReachabilityMatrix carries the full bit-exact matrix (summary,
	// duration, timestamp) used to write reachability_matrix.json; it is
	// excluded from the JobResult's own JSON shape since §3's JobResult
	// only promises the per-host record list, not the artifact envelope.
	ReachabilityMatrix *ReachabilityMatrix    `json:"-"`
	Counters     JobCounters            `json:"counters"`
	StartedAt    time.Time              `json:"started_at"`
	EndedAt      time.Time              `json:"ended_at"`
	Status       JobStatus              `json:"status"`
	Error        string                 `json:"error,omitempty"`
}

// NewJobResult returns an empty, running JobResult for the given job id.
func NewJobResult(jobID string) *JobResult {
	return &JobResult{
		JobID:     jobID,
		Devices:   make(map[string]*Device),
		Adjacency: make(map[string][]string),
		StartedAt: time.Now(),
		Status:    JobStatusRunning,
	}
}
