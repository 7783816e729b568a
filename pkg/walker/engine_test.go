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

package walker

import (
	"context"
	"net"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coriolis-net/discoveryd/pkg/models"
)

type recordingSink struct {
	events []map[string]interface{}
}

func (r *recordingSink) Emit(_ string, fields map[string]interface{}) {
	r.events = append(r.events, fields)
}

func TestEngine_ClaimDedupesRepeatIP(t *testing.T) {
	t.Parallel()

	e := New(Config{MaxDepth: 1}, nil)

	_, first := e.claim(QueueEntry{IP: "10.0.0.1"})
	assert.True(t, first)

	_, second := e.claim(QueueEntry{IP: "10.0.0.1"})
	assert.False(t, second, "a visited IP must not be claimed twice")
}

func TestEngine_ClaimFoldsKnownIPOntoIdentity(t *testing.T) {
	t.Parallel()

	e := New(Config{MaxDepth: 1}, nil)

	dev, ok := e.claim(QueueEntry{IP: "10.0.0.1"})
	require.True(t, ok)

	dev.Identity = "core-switch"
	e.registerIdentity(dev)

	// A neighbor claim names a second IP (e.g. a loopback) that belongs to
	// the same already-identified device: claim must fold it in rather
	// than spawning a second pending Device.
	e.mu.Lock()
	e.ipToHostname["10.0.0.2"] = "core-switch"
	e.mu.Unlock()

	_, shouldProcess := e.claim(QueueEntry{IP: "10.0.0.2"})
	assert.False(t, shouldProcess)
	assert.Contains(t, dev.AllIPs, "10.0.0.2")
}

func TestEngine_Excluded(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(`^10\.0\.0\.`)
	e := New(Config{ExcludePatterns: []*regexp.Regexp{re}}, nil)

	assert.True(t, e.excluded("10.0.0.5"))
	assert.False(t, e.excluded("10.0.1.5"))
}

func TestEngine_Run_MarksUnreachableWhenPortNeverOpens(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	e := New(Config{
		MaxDepth:              1,
		ConcurrentConnections: 2,
		Timeout:               200 * time.Millisecond,
	}, sink)

	// Port 1 is a reserved, always-closed TCP port; portOpen fails fast
	// without any real device, exercising the unreachable path end to end.
	result := e.Run(context.Background(), []QueueEntry{{IP: "127.0.0.1", Port: 1, Depth: 0}})

	require.Contains(t, result, "127.0.0.1")
	assert.Equal(t, models.StatusUnreachable, result["127.0.0.1"].Status)
}

func TestEngine_Run_RespectsMaxDepth(t *testing.T) {
	t.Parallel()

	e := New(Config{MaxDepth: 0, ConcurrentConnections: 1, Timeout: 100 * time.Millisecond}, nil)

	result := e.Run(context.Background(), []QueueEntry{{IP: "127.0.0.1", Port: 1, Depth: 1}})

	assert.Empty(t, result, "an entry past max_depth is dropped before processing")
}

func TestEngine_Preload_MarksDeviceVisited(t *testing.T) {
	t.Parallel()

	e := New(Config{MaxDepth: 1}, nil)

	seed := models.NewDevice("10.0.0.1")
	seed.Identity = "seed-device"

	e.Preload(map[string]*models.Device{"10.0.0.1": seed})

	_, shouldProcess := e.claim(QueueEntry{IP: "10.0.0.1"})
	assert.False(t, shouldProcess, "a preloaded IP is already visited")
}

// ensure portOpen's dialer actually rejects a closed local port promptly.
func TestPortOpen_FalseOnClosedPort(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().(*net.TCPAddr)
	port := addr.Port

	require.NoError(t, l.Close())

	e := New(Config{}, nil)
	assert.False(t, e.portOpen(context.Background(), "127.0.0.1", port))
}
