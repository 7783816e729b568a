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
	"encoding/json"
	"fmt"

	"github.com/coriolis-net/discoveryd/pkg/models"
)

const matrixArtifactName = "reachability_matrix.json"

// ArtifactSink persists a named JSON artifact under a job id. Satisfied by
// the sink implementation cmd/discoveryd wires in; declared here so this
// package stays free of any concrete storage dependency.
type ArtifactSink interface {
	Write(ctx context.Context, jobID, name string, data []byte) error
}

// WriteMatrix marshals m and writes it to sink as reachability_matrix.json.
// A write failure is returned to the caller to log and otherwise ignore,
// per the ArtifactSink contract.
func WriteMatrix(ctx context.Context, sink ArtifactSink, jobID string, m *models.ReachabilityMatrix) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal reachability matrix: %w", err)
	}

	return sink.Write(ctx, jobID, matrixArtifactName, data)
}
