//go:build !windows

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
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const (
	defaultICMPRateLimit = 1000 // packets per second
	defaultICMPTimeout   = 5 * time.Second
	defaultIdentifierMod = 65536
	readPollInterval     = 100 * time.Millisecond
	readBufferSize       = 1500
)

// icmpProbe tracks one in-flight ping until a reply arrives or the sweep's
// timeout elapses.
type icmpProbe struct {
	target    models.Target
	sentAt    time.Time
	available bool
	respTime  time.Duration
}

// probeTable is the per-Scan-call bookkeeping the sender and listener
// goroutines share. It is scoped to a single Scan invocation rather than
// living on ICMPSweeper, so two overlapping Scan calls (which already
// can't share the underlying raw socket cleanly) never contend over a
// sweeper-lifetime map.
type probeTable struct {
	mu     sync.Mutex
	probes map[string]*icmpProbe
}

func newProbeTable(targets []models.Target) *probeTable {
	t := &probeTable{probes: make(map[string]*icmpProbe, len(targets))}
	for _, target := range targets {
		t.probes[target.Host] = &icmpProbe{target: target}
	}

	return t
}

func (t *probeTable) markSent(host string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p, ok := t.probes[host]; ok {
		p.sentAt = time.Now()
	}
}

func (t *probeTable) markReplied(host string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p, ok := t.probes[host]; ok && !p.sentAt.IsZero() {
		p.available = true
		p.respTime = time.Since(p.sentAt)
	}
}

func (t *probeTable) results() []models.Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.Result, 0, len(t.probes))
	for _, p := range t.probes {
		out = append(out, models.Result{
			Target:    p.target,
			Available: p.available,
			RespTime:  p.respTime,
		})
	}

	return out
}

// ICMPSweeper sends raw ICMP echo requests and matches replies by
// (identifier, source address) against the original target list.
type ICMPSweeper struct {
	rateLimit   int
	timeout     time.Duration
	identifier  int
	rawSocketFD int
	conn        *icmp.PacketConn
	cancel      context.CancelFunc
	logger      logger.Logger
}

var _ Scanner = (*ICMPSweeper)(nil)

// NewICMPSweeper creates a new scanner for ICMP sweeping.
func NewICMPSweeper(timeout time.Duration, rateLimit int, log logger.Logger) (*ICMPSweeper, error) {
	if timeout == 0 {
		timeout = defaultICMPTimeout
	}

	if rateLimit == 0 {
		rateLimit = defaultICMPRateLimit
	}

	identifier := int(time.Now().UnixNano() % defaultIdentifierMod)

	fd, err := syscall.Socket(syscall.AF_INET, syscall.SOCK_RAW, syscall.IPPROTO_ICMP)
	if err != nil {
		return nil, fmt.Errorf("failed to create raw socket: %w", err)
	}

	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		if closeErr := syscall.Close(fd); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close raw socket after listener setup failure")
		}

		return nil, fmt.Errorf("failed to create ICMP listener: %w", err)
	}

	return &ICMPSweeper{
		rateLimit:   rateLimit,
		timeout:     timeout,
		identifier:  identifier,
		rawSocketFD: fd,
		conn:        conn,
		logger:      log,
	}, nil
}

// Scan sends one echo request per target, paced to rateLimit, and
// collects replies until every target has answered or timeout elapses.
// pkg/reachability already chunks a sweep into bounded-size batches
// before calling Scan, so pacing here only needs to cover one such batch
// rather than re-implement its own sub-batching on top.
func (s *ICMPSweeper) Scan(ctx context.Context, targets []models.Target) (<-chan models.Result, error) {
	icmpTargets := filterICMPTargets(targets)

	if len(icmpTargets) == 0 {
		ch := make(chan models.Result)
		close(ch)

		return ch, nil
	}

	scanCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	table := newProbeTable(icmpTargets)
	resultCh := make(chan models.Result, len(icmpTargets))

	listenerDone := make(chan struct{})

	go func() {
		defer close(listenerDone)
		s.listenForReplies(scanCtx, table)
	}()

	senderDone := make(chan struct{})

	go func() {
		defer close(senderDone)
		s.sendPings(scanCtx, icmpTargets, table)
	}()

	go func() {
		defer close(resultCh)

		select {
		case <-senderDone:
			timer := time.NewTimer(s.timeout)
			select {
			case <-timer.C:
			case <-scanCtx.Done():
				if !timer.Stop() {
					<-timer.C
				}
			}
		case <-scanCtx.Done():
		}

		cancel()
		<-listenerDone

		for _, res := range table.results() {
			resultCh <- res
		}
	}()

	return resultCh, nil
}

// pacingInterval spaces consecutive sends so the sweeper stays under
// rateLimit packets per second.
func (s *ICMPSweeper) pacingInterval() time.Duration {
	limit := s.rateLimit
	if limit <= 0 {
		limit = defaultICMPRateLimit
	}

	interval := time.Second / time.Duration(limit)
	if interval < time.Microsecond {
		interval = time.Microsecond
	}

	return interval
}

// sendPings paces one echo request per target according to rateLimit.
func (s *ICMPSweeper) sendPings(ctx context.Context, targets []models.Target, table *probeTable) {
	data, err := s.prepareEchoRequest()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal ICMP echo request")
		return
	}

	ticker := time.NewTicker(s.pacingInterval())
	defer ticker.Stop()

	for _, target := range targets {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s.sendPingToTarget(target, data, table)
	}
}

// prepareEchoRequest builds the ICMP echo request template.
func (s *ICMPSweeper) prepareEchoRequest() ([]byte, error) {
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   s.identifier,
			Seq:  1,
			Data: []byte("ping"),
		},
	}

	return msg.Marshal(nil)
}

// sendPingToTarget sends a single ICMP echo request and records the send
// time so the listener can compute round-trip time on reply.
func (s *ICMPSweeper) sendPingToTarget(target models.Target, data []byte, table *probeTable) {
	ipAddr := net.ParseIP(target.Host)
	if ipAddr == nil || ipAddr.To4() == nil {
		s.logger.Warn().Str("host", target.Host).Msg("invalid IPv4 address")
		return
	}

	addr := [4]byte{}
	copy(addr[:], ipAddr.To4())
	sockaddr := &syscall.SockaddrInet4{Addr: addr}

	table.markSent(target.Host)

	if err := syscall.Sendto(s.rawSocketFD, data, 0, sockaddr); err != nil {
		s.logger.Error().Err(err).Str("host", target.Host).Msg("error sending ICMP echo request")
	}
}

// listenForReplies reads echo replies until ctx is cancelled, updating
// table for every reply that matches one of our targets and our
// identifier.
func (s *ICMPSweeper) listenForReplies(ctx context.Context, table *probeTable) {
	buf := make([]byte, readBufferSize)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.conn.SetReadDeadline(time.Now().Add(readPollInterval)); err != nil {
			s.logger.Error().Err(err).Msg("error setting ICMP read deadline")
			continue
		}

		n, addr, err := s.conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if !errors.As(err, &netErr) || !netErr.Timeout() {
				s.logger.Error().Err(err).Msg("error reading ICMP reply")
			}

			continue
		}

		s.handleReply(addr, buf[:n], table)
	}
}

// handleReply validates one inbound packet against our identifier and
// records a match in table.
func (s *ICMPSweeper) handleReply(addr net.Addr, data []byte, table *probeTable) {
	if addr == nil {
		return
	}

	msg, err := icmp.ParseMessage(1, data)
	if err != nil {
		s.logger.Error().Err(err).Str("ip", addr.String()).Msg("error parsing ICMP message")
		return
	}

	echo, ok := msg.Body.(*icmp.Echo)
	if !ok || msg.Type != ipv4.ICMPTypeEchoReply || echo.ID != s.identifier {
		return
	}

	table.markReplied(addr.String())
}

// Stop stops the scanner and releases resources.
func (s *ICMPSweeper) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.logger.Error().Err(err).Msg("error closing ICMP connection")
			return err
		}
	}

	if s.rawSocketFD != 0 {
		if err := syscall.Close(s.rawSocketFD); err != nil {
			s.logger.Error().Err(err).Msg("error closing raw socket")
			return err
		}

		s.rawSocketFD = 0
	}

	return nil
}

// filterICMPTargets filters only ICMP targets from the given slice.
func filterICMPTargets(targets []models.Target) []models.Target {
	var filtered []models.Target

	for _, t := range targets {
		if t.Mode == models.ProbeModeICMP {
			filtered = append(filtered, t)
		}
	}

	return filtered
}
