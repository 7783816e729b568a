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

// Package seedintro logs in to operator-supplied seed devices and
// harvests the subnet list and loopback addresses the reachability
// prober needs when the operator cannot supply them directly.
package seedintro

import (
	"context"
	"time"

	"github.com/coriolis-net/discoveryd/pkg/logger"
	"github.com/coriolis-net/discoveryd/pkg/models"
	"github.com/coriolis-net/discoveryd/pkg/parsers"
	"github.com/coriolis-net/discoveryd/pkg/platform"
	"github.com/coriolis-net/discoveryd/pkg/transport"
)

// Result is what one seed-introspection pass hands back to the
// orchestrator: the subnets worth sweeping for reachability (including
// loopbacks as /32 targets) and the Device records built directly from
// the seeds themselves.
type Result struct {
	Subnets []string
	Devices map[string]*models.Device // keyed by primary IP
}

// Introspector holds the credential list and per-device timeout every
// seed login attempt shares.
type Introspector struct {
	Credentials []models.Credential
	Timeout     time.Duration
	Logger      logger.Logger
}

// Run attempts, for each seed, family detection followed by the
// credential try-loop; on the first successful login it fetches the
// interface, route, neighbor, and config commands and harvests subnets,
// loopbacks, and interface IPs. A seed that exhausts every credential is
// simply absent from the result — seed introspection failures are not
// fatal to the job.
func (in *Introspector) Run(ctx context.Context, seeds []models.Seed) Result {
	result := Result{Devices: make(map[string]*models.Device)}

	seenSubnet := make(map[string]struct{})

	addSubnet := func(cidr string) {
		if _, ok := seenSubnet[cidr]; ok {
			return
		}

		seenSubnet[cidr] = struct{}{}
		result.Subnets = append(result.Subnets, cidr)
	}

	for _, seed := range seeds {
		if seed.Kind != models.SeedKindSingleHost {
			continue
		}

		dev, harvested, ok := in.introspectOne(ctx, seed)
		if !ok {
			continue
		}

		result.Devices[dev.PrimaryIP] = dev

		for _, cidr := range harvested.Subnets {
			addSubnet(cidr)
		}

		for _, lo := range harvested.Loopbacks {
			addSubnet(lo + "/32")
		}
	}

	return result
}

func (in *Introspector) introspectOne(ctx context.Context, seed models.Seed) (*models.Device, parsers.HarvestResult, bool) {
	dev := models.NewDevice(seed.Address)

	for _, cred := range in.Credentials {
		if ctx.Err() != nil {
			return nil, parsers.HarvestResult{}, false
		}

		family, err := transport.DetectFamily(ctx, seed.Address, seed.Port, cred, in.Timeout)
		if err != nil {
			family = models.FamilyGenericIOS
		}

		sess, err := transport.Connect(ctx, seed.Address, seed.Port, cred, in.Timeout)
		if err != nil {
			in.log(seed.Address, err)
			continue
		}

		harvest := in.harvest(ctx, sess, dev, family)

		_ = sess.Close()

		dev.Status = models.StatusDiscovered
		dev.CredUsed = &models.CredentialUsed{Username: cred.Username, AuthType: cred.AuthType, Port: seed.Port}

		return dev, harvest, true
	}

	return nil, parsers.HarvestResult{}, false
}

func (in *Introspector) harvest(
	ctx context.Context, sess *transport.Session, dev *models.Device, family models.FamilyTag,
) parsers.HarvestResult {
	send := func(op platform.Operation) string {
		return sendRaw(ctx, sess, platform.Command(family, op), in.Timeout)
	}

	ifBriefText := sendRaw(ctx, sess, "show ip interface brief", in.Timeout)
	interfacesText := send(platform.OpInterfaces)
	routeText := sendRaw(ctx, sess, "show ip route connected", in.Timeout)
	_ = send(platform.OpCDPNeighbors)
	configText := send(platform.OpConfig)

	hostname, ok := parsers.HostnameFromConfig(configText)
	if !ok {
		if hnText, err := sess.Send(ctx, platform.Command(family, platform.OpHostname), in.Timeout); err == nil {
			hostname, _ = parsers.HostnameFromCommand(hnText, family)
		}
	}

	dev.Family = family
	dev.RawConfig = configText
	dev.Identity = models.CanonicalIdentity(hostname, dev.PrimaryIP)

	interfaces := parsers.InterfacesFromConfig(configText)
	if len(interfaces) == 0 {
		interfaces = parsers.InterfacesFromShow(interfacesText, family)
	}

	for _, iface := range interfaces {
		dev.UpsertInterface(iface)
		dev.AddIP(iface.IP)

		for _, sec := range iface.SecondaryIPs {
			dev.AddIP(sec.IP)
		}
	}

	return parsers.HarvestSubnets(ifBriefText, routeText)
}

func (in *Introspector) log(addr string, err error) {
	if in.Logger == nil {
		return
	}

	in.Logger.Warn().Str("seed", addr).Err(err).Msg("seed introspection login failed")
}

func sendRaw(ctx context.Context, sess *transport.Session, cmd string, timeout time.Duration) string {
	out, err := sess.Send(ctx, cmd, timeout)
	if err != nil {
		return ""
	}

	return out
}
