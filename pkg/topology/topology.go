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

// Package topology folds per-device neighbor claims into a deduplicated,
// bidirectional adjacency map and edge set once the walk has quiesced.
package topology

import (
	"fmt"

	"github.com/coriolis-net/discoveryd/pkg/models"
)

// Build folds each device's discovered neighbors into an undirected
// topology graph. It mutates devices' adjacency-relevant fields
// (Interface.ConnectedTo) in place and returns the adjacency map and edge
// set to attach to the JobResult. devices must already be keyed by
// canonical identity.
func Build(devices map[string]*models.Device) (map[string][]string, []models.Edge) {
	ipToIdentity := make(map[string]string)

	for identity, dev := range devices {
		for ip := range dev.AllIPs {
			ipToIdentity[ip] = identity
		}
	}

	adjacency := make(map[string][]string)
	adjacencySeen := make(map[string]map[string]struct{})

	for identity, dev := range devices {
		if dev.Status != models.StatusDiscovered {
			continue
		}

		adjacency[identity] = []string{}
		adjacencySeen[identity] = make(map[string]struct{})
	}

	edges := models.NewEdgeSet()

	for identity, dev := range devices {
		if dev.Status != models.StatusDiscovered {
			continue
		}

		for _, claim := range dev.Neighbors {
			neighborIdentity, ok := ipToIdentity[claim.IP]
			if !ok {
				continue
			}

			if _, ok := devices[neighborIdentity]; !ok {
				continue
			}

			if neighborIdentity == identity {
				continue
			}

			if seen, ok := adjacencySeen[identity]; ok {
				if _, already := seen[neighborIdentity]; !already {
					seen[neighborIdentity] = struct{}{}
					adjacency[identity] = append(adjacency[identity], neighborIdentity)
				}
			}

			inserted := edges.Add(models.Edge{
				A: identity, B: neighborIdentity,
				IfA: claim.LocalInterface, IfB: claim.RemoteInterface,
			})

			if inserted {
				if iface, ok := dev.InterfaceIdx[claim.LocalInterface]; ok {
					iface.ConnectedTo = fmt.Sprintf("%s:%s", neighborIdentity, claim.RemoteInterface)
				}
			}
		}
	}

	return adjacency, edges.Edges()
}
