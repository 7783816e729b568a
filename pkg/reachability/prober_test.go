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

package reachability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coriolis-net/discoveryd/pkg/logger"
	"github.com/coriolis-net/discoveryd/pkg/models"
)

// fakeScanner answers every target deterministically from a lookup table,
// so tests don't depend on real sockets.
type fakeScanner struct {
	icmpUp map[string]bool
	tcpUp  map[string]bool
}

func (f *fakeScanner) Scan(_ context.Context, targets []models.Target) (<-chan models.Result, error) {
	ch := make(chan models.Result, len(targets))

	for _, t := range targets {
		res := models.Result{Target: t}

		switch t.Mode {
		case models.ProbeModeICMP:
			res.Available = f.icmpUp[t.Host]
		case models.ProbeModeTCP:
			if f.tcpUp[t.Host] {
				res.State = models.PortOpen
				res.Available = true
			} else {
				res.State = models.PortClosed
			}
		}

		ch <- res
	}

	close(ch)

	return ch, nil
}

func (*fakeScanner) Stop() error { return nil }

func TestProber_Sweep(t *testing.T) {
	t.Parallel()

	icmp := &fakeScanner{icmpUp: map[string]bool{"10.0.0.1": true, "10.0.0.2": false}}
	tcp := &fakeScanner{tcpUp: map[string]bool{"10.0.0.1": true}}

	p := NewProber(icmp, tcp, []int{22, 443}, 10, logger.NewTestLogger())

	matrix, err := p.Sweep(context.Background(), []string{"10.0.0.0/30"})
	require.NoError(t, err)

	require.Len(t, matrix.Results, 2)
	require.Equal(t, 2, matrix.Summary.TotalScanned)
	require.Equal(t, 1, matrix.Summary.ICMPReachable)
	require.Equal(t, 1, matrix.Summary.PortOpenCount[22])
	require.Equal(t, 1, matrix.Summary.PortOpenCount[443])

	byIP := make(map[string]models.ReachabilityRecord, len(matrix.Results))
	for _, r := range matrix.Results {
		byIP[r.IP] = r
	}

	require.True(t, byIP["10.0.0.1"].ICMPReachable)
	require.ElementsMatch(t, []int{22, 443}, byIP["10.0.0.1"].OpenPorts)
	require.False(t, byIP["10.0.0.2"].ICMPReachable)
	require.Empty(t, byIP["10.0.0.2"].OpenPorts)
}

func TestProber_Sweep_ChunksLargeSubnets(t *testing.T) {
	t.Parallel()

	icmp := &fakeScanner{icmpUp: map[string]bool{}}
	tcp := &fakeScanner{tcpUp: map[string]bool{}}

	p := NewProber(icmp, tcp, []int{22}, 64, logger.NewTestLogger())

	// A /23 has 510 usable hosts, over the 256-host batch size, exercising
	// the multi-batch path without asserting on batch boundaries directly.
	matrix, err := p.Sweep(context.Background(), []string{"10.1.0.0/23"})
	require.NoError(t, err)
	require.Equal(t, 510, matrix.Summary.TotalScanned)
}

type failingSink struct{ err error }

func (f *failingSink) Write(context.Context, string, string, []byte) error { return f.err }

func TestWriteMatrix_PropagatesSinkError(t *testing.T) {
	t.Parallel()

	sink := &failingSink{err: context.Canceled}
	err := WriteMatrix(context.Background(), sink, "job-1", &models.ReachabilityMatrix{})
	require.ErrorIs(t, err, context.Canceled)
}
