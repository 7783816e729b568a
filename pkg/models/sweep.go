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

// ProbeMode selects which probe primitive a Target is scanned with.
type ProbeMode string

const (
	ProbeModeICMP ProbeMode = "icmp"
	ProbeModeTCP  ProbeMode = "tcp"
)

// Target is a single scan unit handed to a scan.Scanner.
type Target struct {
	Host string
	Port int
	Mode ProbeMode
}

// PortState is the classification of one TCP port probe.
type PortState string

const (
	PortOpen     PortState = "open"
	PortClosed   PortState = "closed"
	PortFiltered PortState = "filtered"
)

// Result is the outcome of probing one Target.
type Result struct {
	Target    Target
	Available bool
	State     PortState // meaningful for ProbeModeTCP only
	RespTime  time.Duration
	Err       error
}

// ReachabilityRecord is the (ip, icmp_reachable, open_ports) tuple the
// prober emits for every scanned address.
type ReachabilityRecord struct {
	IP             string `json:"ip"`
	ICMPReachable  bool   `json:"icmp_reachable"`
	OpenPorts      []int  `json:"open_ports"`
}

// ReachabilitySummary is the aggregate counters published alongside the
// per-host records.
type ReachabilitySummary struct {
	TotalScanned  int            `json:"total_scanned"`
	ICMPReachable int            `json:"icmp_reachable"`
	PortOpenCount map[int]int    `json:"-"` // flattened into "port_<P>_open" keys on marshal
}

// ReachabilityMatrix is the bit-exact artifact shape written to
// reachability_matrix.json.
type ReachabilityMatrix struct {
	Results     []ReachabilityRecord `json:"results"`
	Summary     ReachabilitySummary  `json:"summary"`
	DurationSec float64              `json:"duration_sec"`
	Timestamp   string               `json:"timestamp"`
}
