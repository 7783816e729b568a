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
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/coriolis-net/discoveryd/pkg/models"
)

// Registry accepts a job submission, hands back a job identifier
// immediately, and runs the job in its own goroutine against a
// background context derived from the submitting context, so a caller's
// request-scoped context going away doesn't abort an in-flight
// discovery. The eventual result is fetched later by that identifier.
type Registry struct {
	orchestrator *Orchestrator

	mu        sync.RWMutex
	running   map[string]struct{}
	completed map[string]*models.JobResult
}

// NewRegistry wraps an Orchestrator with the submit-now/fetch-later job
// bookkeeping the external job API needs.
func NewRegistry(o *Orchestrator) *Registry {
	return &Registry{
		orchestrator: o,
		running:      make(map[string]struct{}),
		completed:    make(map[string]*models.JobResult),
	}
}

// Submit validates cfg, assigns a job id (generating one via uuid when
// the caller didn't supply one), and starts the job running in the
// background. It returns immediately with the job id.
func (r *Registry) Submit(ctx context.Context, cfg models.JobConfig) (string, error) {
	if _, err := parseAndValidate(cfg); err != nil {
		return "", err
	}

	jobID := cfg.JobID
	if jobID == "" {
		jobID = uuid.New().String()
	}

	r.mu.Lock()
	r.running[jobID] = struct{}{}
	r.mu.Unlock()

	runCtx := context.WithoutCancel(ctx)

	go func() {
		result, err := r.orchestrator.Run(runCtx, jobID, cfg)
		if err != nil {
			result = models.NewJobResult(jobID)
			result.Status = models.JobStatusFailed
			result.Error = err.Error()
		}

		r.mu.Lock()
		delete(r.running, jobID)
		r.completed[jobID] = result
		r.mu.Unlock()
	}()

	return jobID, nil
}

// Result returns the JobResult for a completed job. It reports
// ErrJobNotFound for a job still running or one that was never submitted
// to this registry instance.
func (r *Registry) Result(jobID string) (*models.JobResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if result, ok := r.completed[jobID]; ok {
		return result, nil
	}

	if _, ok := r.running[jobID]; ok {
		return nil, fmt.Errorf("%w: job %s still running", ErrJobNotFound, jobID)
	}

	return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
}

// IsRunning reports whether jobID is currently executing.
func (r *Registry) IsRunning(jobID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.running[jobID]

	return ok
}
