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
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/coriolis-net/discoveryd/pkg/models"
	"github.com/coriolis-net/discoveryd/pkg/parsers"
	"github.com/coriolis-net/discoveryd/pkg/platform"
	"github.com/coriolis-net/discoveryd/pkg/transport"
)

// processDevice tries each credential in order until one yields device
// facts, commits the Device, folds its identity into the shared table,
// and hands back every neighbor claim worth enqueueing.
func (e *Engine) processDevice(ctx context.Context, dev *models.Device, entry QueueEntry) []models.NeighborClaim {
	if ctx.Err() != nil {
		e.commitTimeout(dev)
		return nil
	}

	if !e.portOpen(ctx, entry.IP, entry.Port) {
		dev.Status = models.StatusUnreachable
		dev.Error = "port never opened"
		e.emit("warn", map[string]interface{}{"event": "unreachable", "ip": entry.IP})

		return nil
	}

	var lastErr error

	for _, cred := range e.cfg.Credentials {
		if ctx.Err() != nil {
			e.commitTimeout(dev)
			return nil
		}

		claims, err := e.tryCredential(ctx, dev, entry, cred)
		if err == nil {
			e.registerIdentity(dev)
			e.emit("info", map[string]interface{}{
				"event": "device_discovered", "ip": dev.PrimaryIP, "identity": dev.Identity,
			})

			return claims
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, models.ErrCancelled) {
			e.commitTimeout(dev)
			return nil
		}

		lastErr = err
	}

	dev.Status = models.StatusFailed
	if lastErr != nil {
		dev.Error = lastErr.Error()
	} else {
		dev.Error = "no credentials supplied"
	}

	e.emit("warn", map[string]interface{}{"event": "device_failed", "ip": entry.IP, "error": dev.Error})

	return nil
}

func (e *Engine) commitTimeout(dev *models.Device) {
	dev.Status = models.StatusFailed
	dev.Error = "Processing timed out"
	e.emit("warn", map[string]interface{}{"event": "device_timeout", "ip": dev.PrimaryIP})
}

// portOpen is a fast, single-host liveness gate distinct from
// pkg/reachability's subnet sweep: the walker only ever needs to know
// whether this one device's transport port is open before spending a
// credential try-loop on it.
func (e *Engine) portOpen(ctx context.Context, ip string, port int) bool {
	d := net.Dialer{Timeout: 2 * time.Second}

	conn, err := d.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", ip, port))
	if err != nil {
		return false
	}

	_ = conn.Close()

	return true
}

// tryCredential runs one full attempt of step (a): detect family (falling
// back to generic_ios when detection fails but the port is open),
// connect, and harvest version/hostname/interfaces/config/neighbors.
func (e *Engine) tryCredential(ctx context.Context, dev *models.Device, entry QueueEntry, cred models.Credential) ([]models.NeighborClaim, error) {
	family, err := transport.DetectFamily(ctx, entry.IP, entry.Port, cred, e.cfg.Timeout)
	if err != nil {
		family = models.FamilyGenericIOS
	}

	sess, err := transport.Connect(ctx, entry.IP, entry.Port, cred, e.cfg.Timeout)
	if err != nil {
		return nil, err
	}

	defer func() { _ = sess.Close() }()

	raw := func(op platform.Operation) (string, error) {
		return e.sendWithRetry(ctx, sess, platform.Command(family, op))
	}

	configText, _ := raw(platform.OpConfig)
	versionText, _ := raw(platform.OpVersion)
	hostnameText, hostnameErr := raw(platform.OpHostname)

	interfaces := parsers.InterfacesFromConfig(configText)
	if len(interfaces) == 0 {
		showText, err := raw(platform.OpInterfaces)
		if err == nil {
			interfaces = parsers.InterfacesFromShow(showText, family)
		}
	}

	hostname, ok := parsers.HostnameFromConfig(configText)
	if !ok {
		if hostnameErr == nil {
			hostname, ok = parsers.HostnameFromCommand(hostnameText, family)
		}
	}

	if !ok {
		hostname = ""
	}

	info := parsers.Version(versionText, family)

	var claims []models.NeighborClaim

	for _, proto := range e.cfg.DiscoveryProtocols {
		switch proto {
		case models.ProtocolCDP:
			if text, err := raw(platform.OpCDPNeighbors); err == nil {
				claims = append(claims, parsers.CDPNeighbors(text)...)
			}
		case models.ProtocolLLDP:
			if text, err := raw(platform.OpLLDPNeighbors); err == nil {
				claims = append(claims, parsers.LLDPNeighbors(text, family)...)
			}
		}
	}

	dev.Family = family
	dev.Platform = info.Platform
	dev.OSVersion = info.OSVersion
	dev.Model = info.Model
	dev.Serial = info.Serial
	dev.RawConfig = configText
	dev.Neighbors = claims
	dev.Identity = models.CanonicalIdentity(hostname, dev.PrimaryIP)
	dev.Status = models.StatusDiscovered
	dev.CredUsed = &models.CredentialUsed{Username: cred.Username, AuthType: cred.AuthType, Port: entry.Port}

	for _, iface := range interfaces {
		dev.UpsertInterface(iface)
		dev.AddIP(iface.IP)

		for _, sec := range iface.SecondaryIPs {
			dev.AddIP(sec.IP)
		}
	}

	return claims, nil
}

// sendWithRetry retries a command up to RetryCount additional times on a
// timeout or protocol error, giving models.JobConfig.RetryCount a
// concrete retry behavior rather than leaving it an accepted-but-ignored
// field.
func (e *Engine) sendWithRetry(ctx context.Context, sess *transport.Session, cmd string) (string, error) {
	var lastErr error

	attempts := e.cfg.RetryCount + 1
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		out, err := sess.Send(ctx, cmd, e.cfg.Timeout)
		if err == nil {
			return out, nil
		}

		lastErr = err

		if errors.Is(err, models.ErrAuthFailed) || errors.Is(err, models.ErrCancelled) {
			break
		}
	}

	return "", lastErr
}
