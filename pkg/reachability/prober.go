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

// Package reachability sweeps subnets for ICMP and TCP liveness and
// assembles the reachability_matrix.json artifact.
package reachability

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/coriolis-net/discoveryd/pkg/logger"
	"github.com/coriolis-net/discoveryd/pkg/models"
	"github.com/coriolis-net/discoveryd/pkg/scan"
)

// batchSize bounds how many hosts are probed in one ICMP call, keeping
// memory use flat for large subnets.
const batchSize = 256

// Prober composes an ICMP scanner and a TCP scanner behind one call that
// enumerates subnets, chunks them, and emits a ReachabilityMatrix.
type Prober struct {
	icmp        scan.Scanner
	tcp         scan.Scanner
	probePorts  []int
	concurrency int
	logger      logger.Logger
}

// NewProber builds a Prober from already-constructed scanners. probePorts
// defaults to models.DefaultProbePorts and concurrency to
// models.DefaultProbeConcurrency when zero/empty.
func NewProber(icmpScanner, tcpScanner scan.Scanner, probePorts []int, concurrency int, log logger.Logger) *Prober {
	if len(probePorts) == 0 {
		probePorts = append([]int(nil), models.DefaultProbePorts...)
	}

	if concurrency == 0 {
		concurrency = models.DefaultProbeConcurrency
	}

	return &Prober{
		icmp:        icmpScanner,
		tcp:         tcpScanner,
		probePorts:  probePorts,
		concurrency: concurrency,
		logger:      log,
	}
}

// Sweep enumerates every host in subnets (skipping network/broadcast
// addresses), probes them in batchSize-host batches, and returns the
// assembled matrix. The semaphore sized to p.concurrency bounds how many
// TCP probes run concurrently across the whole sweep, including across
// batches. Each Sweep call creates its own semaphore; concurrent Sweep
// calls on the same Prober do not share it.
func (p *Prober) Sweep(ctx context.Context, subnets []string) (*models.ReachabilityMatrix, error) {
	start := time.Now()

	var hosts []string

	for _, cidr := range subnets {
		expanded, err := ExpandCIDR(cidr)
		if err != nil {
			p.logger.Error().Str("cidr", cidr).Err(err).Msg("failed to expand subnet")
			continue
		}

		hosts = append(hosts, expanded...)
	}

	sem := make(chan struct{}, p.concurrency)

	records := make([]models.ReachabilityRecord, 0, len(hosts))
	summary := models.ReachabilitySummary{
		PortOpenCount: make(map[int]int),
	}

	for batchStart := 0; batchStart < len(hosts); batchStart += batchSize {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		batchEnd := batchStart + batchSize
		if batchEnd > len(hosts) {
			batchEnd = len(hosts)
		}

		batchRecords, err := p.sweepBatch(ctx, hosts[batchStart:batchEnd], sem)
		if err != nil {
			return nil, err
		}

		for _, rec := range batchRecords {
			records = append(records, rec)

			summary.TotalScanned++

			if rec.ICMPReachable {
				summary.ICMPReachable++
			}

			for _, port := range rec.OpenPorts {
				summary.PortOpenCount[port]++
			}
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].IP < records[j].IP })

	return &models.ReachabilityMatrix{
		Results:     records,
		Summary:     summary,
		DurationSec: time.Since(start).Seconds(),
		Timestamp:   start.UTC().Format(time.RFC3339),
	}, nil
}

func (p *Prober) sweepBatch(ctx context.Context, hosts []string, sem chan struct{}) ([]models.ReachabilityRecord, error) {
	icmpTargets := make([]models.Target, len(hosts))
	for i, h := range hosts {
		icmpTargets[i] = models.Target{Host: h, Mode: models.ProbeModeICMP}
	}

	icmpReachable := make(map[string]bool, len(hosts))

	icmpCh, err := p.icmp.Scan(ctx, icmpTargets)
	if err != nil {
		return nil, err
	}

	for res := range icmpCh {
		icmpReachable[res.Target.Host] = res.Available
	}

	openPorts := make(map[string][]int, len(hosts))

	var mu sync.Mutex

	var wg sync.WaitGroup

	for _, h := range hosts {
		for _, port := range p.probePorts {
			h, port := h, port

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				wg.Wait()
				return nil, ctx.Err()
			}

			wg.Add(1)

			go func() {
				defer wg.Done()
				defer func() { <-sem }()

				p.probeOnePort(ctx, h, port, &mu, openPorts)
			}()
		}
	}

	wg.Wait()

	records := make([]models.ReachabilityRecord, 0, len(hosts))
	for _, h := range hosts {
		ports := openPorts[h]
		if ports == nil {
			ports = []int{}
		}

		sort.Ints(ports)

		records = append(records, models.ReachabilityRecord{
			IP:            h,
			ICMPReachable: icmpReachable[h],
			OpenPorts:     ports,
		})
	}

	return records, nil
}

func (p *Prober) probeOnePort(ctx context.Context, host string, port int, mu *sync.Mutex, openPorts map[string][]int) {
	tcpCh, err := p.tcp.Scan(ctx, []models.Target{{Host: host, Port: port, Mode: models.ProbeModeTCP}})
	if err != nil {
		p.logger.Error().Str("host", host).Int("port", port).Err(err).Msg("tcp probe failed to start")
		return
	}

	for res := range tcpCh {
		if res.State != models.PortOpen {
			continue
		}

		mu.Lock()
		openPorts[host] = append(openPorts[host], port)
		mu.Unlock()
	}
}
