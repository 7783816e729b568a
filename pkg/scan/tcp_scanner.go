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
	"errors"
	"fmt"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/coriolis-net/discoveryd/pkg/logger"
	"github.com/coriolis-net/discoveryd/pkg/models"
)

// TCPSweeper probes models.Target entries in ProbeModeTCP with a bounded
// worker pool of context-aware connect attempts.
type TCPSweeper struct {
	timeout     time.Duration
	concurrency int
	cancel      context.CancelFunc
	logger      logger.Logger
}

var _ Scanner = (*TCPSweeper)(nil)

func NewTCPSweeper(timeout time.Duration, concurrency int, log logger.Logger) *TCPSweeper {
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	if concurrency == 0 {
		// Increased default for large-scale scanning
		concurrency = 500
	}

	return &TCPSweeper{
		timeout:     timeout,
		concurrency: concurrency,
		logger:      log,
	}
}

const (
	defaultConcurrencyMultiplier = 2
)

// Scan probes every ProbeModeTCP target in targets and returns a channel of
// results. Non-TCP targets are silently skipped; pair with an ICMPSweeper to
// cover ProbeModeICMP targets in the same batch.
func (s *TCPSweeper) Scan(ctx context.Context, targets []models.Target) (<-chan models.Result, error) {
	tcpTargets := filterTCPTargets(targets)
	if len(tcpTargets) == 0 {
		ch := make(chan models.Result)
		close(ch)

		return ch, nil
	}

	scanCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	resultCh := make(chan models.Result, len(tcpTargets))
	workCh := make(chan models.Target, s.concurrency*defaultConcurrencyMultiplier)

	var wg sync.WaitGroup

	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			s.worker(scanCtx, workCh, resultCh)
		}()
	}

	go func() {
		defer close(workCh)

		for _, t := range tcpTargets {
			select {
			case <-scanCtx.Done():
				return
			case workCh <- t:
			}
		}
	}()

	go func() {
		wg.Wait()

		close(resultCh)
	}()

	return resultCh, nil
}

func (s *TCPSweeper) worker(ctx context.Context, workCh <-chan models.Target, resultCh chan<- models.Result) {
	for t := range workCh {
		state, rtt, err := s.checkPort(ctx, t.Host, t.Port)

		result := models.Result{
			Target:    t,
			Available: state == models.PortOpen,
			State:     state,
			RespTime:  rtt,
			Err:       err,
		}

		select {
		case <-ctx.Done():
			return
		case resultCh <- result:
		}
	}
}

// checkPort classifies a TCP target from the connect error alone: a refused
// connection is closed, any other connect error (a timed-out or
// unreachable host included) is filtered, and a completed connect is open
// even if the remote tears it down afterwards, since the handshake already
// proved liveness.
func (s *TCPSweeper) checkPort(ctx context.Context, host string, port int) (models.PortState, time.Duration, error) {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()

	var dialer net.Dialer

	conn, err := dialer.DialContext(probeCtx, "tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		elapsed := time.Since(start)

		if errors.Is(err, syscall.ECONNREFUSED) {
			return models.PortClosed, elapsed, err
		}

		if probeCtx.Err() != nil {
			return models.PortFiltered, elapsed, probeCtx.Err()
		}

		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return models.PortFiltered, elapsed, err
		}

		return models.PortFiltered, elapsed, err
	}

	defer func(conn net.Conn) {
		if closeErr := conn.Close(); closeErr != nil {
			s.logger.Error().Err(closeErr).Msg("failed to close connection")
		}
	}(conn)

	return models.PortOpen, time.Since(start), nil
}

func (s *TCPSweeper) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}

	return nil
}

func filterTCPTargets(targets []models.Target) []models.Target {
	var filtered []models.Target

	for _, t := range targets {
		if t.Mode == models.ProbeModeTCP {
			filtered = append(filtered, t)
		}
	}

	return filtered
}
