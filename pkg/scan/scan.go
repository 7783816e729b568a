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

// Package scan implements the ICMP and TCP probe primitives reachability
// scanning is built from.
package scan

import (
	"context"

	"github.com/coriolis-net/discoveryd/pkg/models"
)

// Scanner probes a batch of targets and streams results back as they
// resolve. Implementations own their own worker pool and respect ctx
// cancellation mid-batch.
type Scanner interface {
	Scan(ctx context.Context, targets []models.Target) (<-chan models.Result, error)
	Stop() error
}
