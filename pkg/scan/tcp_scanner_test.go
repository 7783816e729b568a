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

package scan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coriolis-net/discoveryd/pkg/logger"
	"github.com/coriolis-net/discoveryd/pkg/models"
)

func TestNewTCPSweeper(t *testing.T) {
	tests := []struct {
		name        string
		timeout     time.Duration
		concurrency int
		wantTimeout time.Duration
		wantConc    int
	}{
		{
			name:        "default values",
			timeout:     0,
			concurrency: 0,
			wantTimeout: 5 * time.Second,
			wantConc:    500,
		},
		{
			name:        "custom values",
			timeout:     2 * time.Second,
			concurrency: 10,
			wantTimeout: 2 * time.Second,
			wantConc:    10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewTCPSweeper(tt.timeout, tt.concurrency, logger.NewTestLogger())

			if s.timeout != tt.wantTimeout {
				t.Errorf("timeout = %v, want %v", s.timeout, tt.wantTimeout)
			}

			if s.concurrency != tt.wantConc {
				t.Errorf("concurrency = %v, want %v", s.concurrency, tt.wantConc)
			}
		})
	}
}

func TestTCPSweeper_Scan(t *testing.T) {
	s := NewTCPSweeper(1*time.Second, 2, logger.NewTestLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	targets := []models.Target{
		{Host: "127.0.0.1", Port: 1, Mode: models.ProbeModeTCP},
		{Host: "127.0.0.1", Port: 2, Mode: models.ProbeModeTCP},
		{Host: "127.0.0.1", Port: 80, Mode: models.ProbeModeICMP}, // should be filtered out
	}

	resultCh, err := s.Scan(ctx, targets)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	results := make([]models.Result, 0, len(targets))
	for r := range resultCh {
		results = append(results, r)
	}

	if len(results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(results))
	}

	for _, r := range results {
		if r.Target.Mode != models.ProbeModeTCP {
			t.Errorf("Expected only TCP targets, got %v", r.Target.Mode)
		}
	}
}

func TestTCPSweeper_checkPort_Closed(t *testing.T) {
	s := NewTCPSweeper(1*time.Second, 2, logger.NewTestLogger())
	ctx := context.Background()

	// Nothing listens on 127.0.0.1:1 in the test sandbox, so the connect
	// attempt should be refused.
	state, rtt, err := s.checkPort(ctx, "127.0.0.1", 1)

	if state != models.PortClosed {
		t.Errorf("checkPort() state = %v, want %v", state, models.PortClosed)
	}

	if err == nil {
		t.Error("checkPort() expected a connect error for a closed port")
	}

	if rtt < 0 {
		t.Errorf("Expected non-negative RTT, got %v", rtt)
	}
}

func TestTCPSweeper_checkPort_Filtered(t *testing.T) {
	s := NewTCPSweeper(50*time.Millisecond, 2, logger.NewTestLogger())
	ctx := context.Background()

	// 198.51.100.1 is TEST-NET-2 (RFC 5737); nothing answers, so the
	// connect attempt times out rather than being refused.
	state, _, err := s.checkPort(ctx, "198.51.100.1", 9)

	if state != models.PortFiltered {
		t.Errorf("checkPort() state = %v, want %v", state, models.PortFiltered)
	}

	if err == nil {
		t.Error("checkPort() expected a timeout error for a filtered port")
	}
}

func TestTCPSweeper_worker(t *testing.T) {
	s := NewTCPSweeper(1*time.Second, 2, logger.NewTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workCh := make(chan models.Target, 1)
	resultCh := make(chan models.Result, 1)

	target := models.Target{Host: "127.0.0.1", Port: 1, Mode: models.ProbeModeTCP}
	workCh <- target
	close(workCh)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		s.worker(ctx, workCh, resultCh)
	}()

	wg.Wait()
	close(resultCh)
	result := <-resultCh

	if result.Target.Host != target.Host || result.Target.Port != target.Port || result.Target.Mode != target.Mode {
		t.Errorf("worker processed wrong target: got %+v, want %+v", result.Target, target)
	}

	if result.Available {
		t.Errorf("Expected unavailable result for a closed port")
	}

	if result.Err == nil {
		t.Errorf("Expected an error for a closed port")
	}
}

func TestTCPSweeper_Stop(t *testing.T) {
	s := NewTCPSweeper(1*time.Second, 2, logger.NewTestLogger())
	_, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestFilterTCPTargets(t *testing.T) {
	targets := []models.Target{
		{Host: "1.1.1.1", Port: 80, Mode: models.ProbeModeTCP},
		{Host: "2.2.2.2", Port: 22, Mode: models.ProbeModeTCP},
		{Host: "3.3.3.3", Mode: models.ProbeModeICMP},
	}

	filtered := filterTCPTargets(targets)
	if len(filtered) != 2 {
		t.Errorf("filterTCPTargets() len = %d, want 2", len(filtered))
	}

	for _, target := range filtered {
		if target.Mode != models.ProbeModeTCP {
			t.Errorf("Expected only TCP targets, got %v", target.Mode)
		}
	}
}
