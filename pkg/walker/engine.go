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
	"regexp"
	"sync"
	"time"

	"github.com/coriolis-net/discoveryd/pkg/models"
)

// EventSink receives structured progress/error events from the walk.
// Declared locally (rather than imported from pkg/job) so pkg/job can
// import pkg/walker without a cycle; any sink pkg/job or cmd/discoveryd
// builds satisfies this interface structurally.
type EventSink interface {
	Emit(level string, fields map[string]interface{})
}

// Config is the subset of models.JobConfig the walker needs, already
// resolved to concrete types (compiled exclusion regexes, a parsed
// per-device timeout) so Engine itself never parses configuration.
type Config struct {
	Credentials           []models.Credential
	MaxDepth              int
	ConcurrentConnections int
	Timeout               time.Duration
	DiscoveryProtocols    []models.DiscoveryProtocol
	ExcludePatterns       []*regexp.Regexp
	RetryCount            int
}

// Engine runs the breadth-first neighbor walk across discovered devices.
type Engine struct {
	cfg  Config
	sink EventSink

	mu           sync.Mutex
	visited      map[string]struct{}
	hostnameToIP map[string]string // hostname -> primary IP of the device record
	ipToHostname map[string]string // any known IP -> owning device's hostname
	devices      map[string]*models.Device // keyed by primary IP
}

// New builds an Engine ready to Run.
func New(cfg Config, sink EventSink) *Engine {
	return &Engine{
		cfg:          cfg,
		sink:         sink,
		visited:      make(map[string]struct{}),
		hostnameToIP: make(map[string]string),
		ipToHostname: make(map[string]string),
		devices:      make(map[string]*models.Device),
	}
}

// Preload seeds the engine with devices already known before the walk
// starts (e.g. from seed introspection), keyed by primary IP, and folds
// their identities into the dedup table so rediscovering one of these
// devices as a neighbor claim doesn't create a duplicate record.
func (e *Engine) Preload(devices map[string]*models.Device) {
	e.mu.Lock()
	for ip, dev := range devices {
		e.devices[ip] = dev
		e.visited[ip] = struct{}{}
	}
	e.mu.Unlock()

	for _, dev := range devices {
		e.registerIdentity(dev)
	}
}

// overallDeadline is the job-wide cancellation layer: max(timeout*3, 180s).
func (e *Engine) overallDeadline() time.Duration {
	floor := 180 * time.Second
	tripled := e.cfg.Timeout * 3

	if tripled > floor {
		return tripled
	}

	return floor
}

// Run seeds the queue with the given entries, drains it with
// ConcurrentConnections workers, and returns every Device the walk
// touched (pending, discovered, failed, and unreachable alike), keyed by
// its canonical identity. The caller folds these into the job's
// JobResult and runs the topology builder over them.
func (e *Engine) Run(ctx context.Context, seeds []QueueEntry) map[string]*models.Device {
	overall, cancel := context.WithTimeout(ctx, e.overallDeadline())
	defer cancel()

	q := newWorkQueue()
	for _, s := range seeds {
		q.Push(s)
	}

	go func() {
		<-overall.Done()
		q.Cancel()
	}()

	workers := e.cfg.ConcurrentConnections
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup

	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			e.runWorker(overall, q)
		}()
	}

	wg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()

	result := make(map[string]*models.Device, len(e.devices))
	for _, dev := range e.devices {
		result[dev.Identity] = dev
	}

	return result
}

func (e *Engine) runWorker(ctx context.Context, q *workQueue) {
	for {
		entry, ok := q.Pop()
		if !ok {
			return
		}

		e.handle(ctx, q, entry)
		q.Done()
	}
}

// handle applies the per-entry gating rules (depth bound, exclusion,
// visited set, identity dedup) and, for newly-visited IPs, runs
// processDevice under a per-device deadline.
func (e *Engine) handle(ctx context.Context, q *workQueue, entry QueueEntry) {
	if ctx.Err() != nil {
		return
	}

	if entry.Depth > e.cfg.MaxDepth {
		return
	}

	if e.excluded(entry.IP) {
		return
	}

	dev, shouldProcess := e.claim(entry)
	if !shouldProcess {
		return
	}

	deviceCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	e.emit("info", map[string]interface{}{"event": "device_start", "ip": entry.IP, "depth": entry.Depth})

	claims := e.processDevice(deviceCtx, dev, entry)

	for _, claim := range claims {
		if claim.IP == "" || e.excluded(claim.IP) {
			continue
		}

		if e.alreadyIdentified(claim.IP) {
			continue
		}

		e.mu.Lock()
		_, seen := e.visited[claim.IP]
		e.mu.Unlock()

		if seen {
			continue
		}

		q.Push(QueueEntry{IP: claim.IP, Port: models.DefaultSSHPort, Depth: entry.Depth + 1})
	}
}

// claim performs a single short critical section covering
// dedup-by-identity, the visited-set insertion, and pending-Device
// creation, all atomically, so no IP is ever processed twice.
func (e *Engine) claim(entry QueueEntry) (*models.Device, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if hostname, ok := e.ipToHostname[entry.IP]; ok {
		if primaryIP, ok := e.hostnameToIP[hostname]; ok {
			if dev, ok := e.devices[primaryIP]; ok {
				dev.AddIP(entry.IP)
				return nil, false
			}
		}
	}

	if _, ok := e.visited[entry.IP]; ok {
		return nil, false
	}

	e.visited[entry.IP] = struct{}{}

	dev, ok := e.devices[entry.IP]
	if !ok {
		dev = models.NewDevice(entry.IP)
		dev.Status = models.StatusRunning
		e.devices[entry.IP] = dev
	}

	return dev, true
}

func (e *Engine) alreadyIdentified(ip string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.ipToHostname[ip]

	return ok
}

func (e *Engine) excluded(addr string) bool {
	for _, re := range e.cfg.ExcludePatterns {
		if re.MatchString(addr) {
			return true
		}
	}

	return false
}

// registerIdentity folds hostname and every IP dev now knows about into
// the shared identity table under the engine's single critical section.
func (e *Engine) registerIdentity(dev *models.Device) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if models.IsValidHostname(dev.Identity) {
		e.hostnameToIP[dev.Identity] = dev.PrimaryIP
		e.ipToHostname[dev.PrimaryIP] = dev.Identity

		for ip := range dev.AllIPs {
			e.ipToHostname[ip] = dev.Identity
		}
	}
}

func (e *Engine) emit(level string, fields map[string]interface{}) {
	if e.sink != nil {
		e.sink.Emit(level, fields)
	}
}
