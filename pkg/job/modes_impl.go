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
	"time"

	"github.com/coriolis-net/discoveryd/pkg/models"
	"github.com/coriolis-net/discoveryd/pkg/reachability"
	"github.com/coriolis-net/discoveryd/pkg/scan"
	"github.com/coriolis-net/discoveryd/pkg/seedintro"
	"github.com/coriolis-net/discoveryd/pkg/walker"
)

// runSubnetMode implements the "subnet" pipeline: reachability sweep over
// the submitted CIDRs, producing only the reachability matrix.
func runSubnetMode(ctx context.Context, o *Orchestrator, pc parsedConfig, _ []models.Credential, result *models.JobResult) {
	cidrs := subnetsOf(pc.seeds)

	matrix, err := o.sweep(ctx, pc, cidrs)
	if err != nil {
		result.Status = models.JobStatusFailed
		result.Error = err.Error()

		return
	}

	result.Reachability = matrix.Results
	result.ReachabilityMatrix = matrix
}

// runSeedDeviceMode implements "seed-device": introspect the seeds, sweep
// the subnets they yield for reachability, then walk the union of the
// seeds and the sweep's hits.
func runSeedDeviceMode(ctx context.Context, o *Orchestrator, pc parsedConfig, credentials []models.Credential, result *models.JobResult) {
	in := &seedintro.Introspector{Credentials: credentials, Timeout: pc.cfg.Timeout, Logger: o.Logger}
	intro := in.Run(ctx, pc.seeds)

	if len(intro.Subnets) == 0 {
		// No seed yielded subnets: fall back to a full walk on the
		// original seeds.
		runFullPipelineMode(ctx, o, pc, credentials, result)
		return
	}

	var walkSeeds []walker.QueueEntry

	for _, s := range pc.seeds {
		if s.Kind == models.SeedKindSingleHost {
			walkSeeds = append(walkSeeds, walker.QueueEntry{IP: s.Address, Port: s.Port, Depth: 0})
		}
	}

	// intro.Subnets is non-empty here, so the reachability pass always
	// runs in this branch; the "seeds yielded devices but no subnets"
	// skip-reachability case is the len(intro.Subnets)==0 branch above.
	matrix, err := o.sweep(ctx, pc, intro.Subnets)
	if err != nil {
		o.emit("warn", map[string]interface{}{"event": "reachability_failed", "error": err.Error()})
	} else {
		result.Reachability = matrix.Results
		result.ReachabilityMatrix = matrix

		for _, rec := range matrix.Results {
			if rec.ICMPReachable || len(rec.OpenPorts) > 0 {
				walkSeeds = append(walkSeeds, walker.QueueEntry{IP: rec.IP, Port: models.DefaultSSHPort, Depth: 0})
			}
		}
	}

	engine := walker.New(walker.Config{
		Credentials:           credentials,
		MaxDepth:              pc.cfg.MaxDepth,
		ConcurrentConnections: pc.cfg.ConcurrentConnections,
		Timeout:               pc.cfg.Timeout,
		DiscoveryProtocols:    pc.cfg.DiscoveryProtocols,
		ExcludePatterns:       pc.excludes,
		RetryCount:            pc.cfg.RetryCount,
	}, o.Events)

	engine.Preload(intro.Devices)

	result.Devices = engine.Run(ctx, walkSeeds)
}

// runFullPipelineMode implements "full-pipeline": neighbor walk directly
// on the submitted seeds, expanding any CIDR seed into its member hosts
// first since the walker operates on individual addresses.
func runFullPipelineMode(ctx context.Context, o *Orchestrator, pc parsedConfig, credentials []models.Credential, result *models.JobResult) {
	var walkSeeds []walker.QueueEntry

	for _, s := range pc.seeds {
		switch s.Kind {
		case models.SeedKindSingleHost:
			walkSeeds = append(walkSeeds, walker.QueueEntry{IP: s.Address, Port: s.Port, Depth: 0})
		case models.SeedKindSubnet:
			hosts, err := reachability.ExpandCIDR(s.CIDR)
			if err != nil {
				o.emit("warn", map[string]interface{}{"event": "bad_subnet_seed", "cidr": s.CIDR, "error": err.Error()})
				continue
			}

			for _, h := range hosts {
				walkSeeds = append(walkSeeds, walker.QueueEntry{IP: h, Port: models.DefaultSSHPort, Depth: 0})
			}
		}
	}

	engine := walker.New(walker.Config{
		Credentials:           credentials,
		MaxDepth:              pc.cfg.MaxDepth,
		ConcurrentConnections: pc.cfg.ConcurrentConnections,
		Timeout:               pc.cfg.Timeout,
		DiscoveryProtocols:    pc.cfg.DiscoveryProtocols,
		ExcludePatterns:       pc.excludes,
		RetryCount:            pc.cfg.RetryCount,
	}, o.Events)

	result.Devices = engine.Run(ctx, walkSeeds)
}

func subnetsOf(seeds []models.Seed) []string {
	var cidrs []string

	for _, s := range seeds {
		if s.Kind == models.SeedKindSubnet {
			cidrs = append(cidrs, s.CIDR)
		}
	}

	return cidrs
}

// sweep builds a fresh ICMP/TCP scanner pair per call — reachability
// sweeps are infrequent relative to the neighbor walk and each job's
// probe_concurrency may differ, so scanners are not pooled across jobs.
func (o *Orchestrator) sweep(ctx context.Context, pc parsedConfig, cidrs []string) (*models.ReachabilityMatrix, error) {
	icmpSweeper, err := scan.NewICMPSweeper(2*time.Second, 1000, o.Logger)
	if err != nil {
		return nil, err
	}

	defer func() { _ = icmpSweeper.Stop() }()

	tcpSweeper := scan.NewTCPSweeper(2*time.Second, pc.cfg.ProbeConcurrency, o.Logger)
	defer func() { _ = tcpSweeper.Stop() }()

	prober := reachability.NewProber(icmpSweeper, tcpSweeper, pc.cfg.ProbePorts, pc.cfg.ProbeConcurrency, o.Logger)

	return prober.Sweep(ctx, cidrs)
}
