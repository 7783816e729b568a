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

// Package job is the orchestrator and job registry: it routes a
// submitted JobConfig through one of the three discovery modes and
// exposes the resulting JobResult to whatever
// external job API sits in front of it. The core never imports that API,
// an exporter, or a CLI package; it only declares the three ports below.
package job

import (
	"context"

	"github.com/coriolis-net/discoveryd/pkg/models"
)

// CredentialSource supplies the credential list when a submitted
// JobConfig omits one, letting the surrounding job API keep secrets out
// of the request body.
type CredentialSource interface {
	Credentials(ctx context.Context) ([]models.Credential, error)
}

// ArtifactSink persists a named JSON artifact under a job id. Write must
// be idempotent; a failure is logged and the job proceeds regardless.
type ArtifactSink interface {
	Write(ctx context.Context, jobID, name string, data []byte) error
}

// EventSink receives structured progress/error events. level is a short
// string such as "info" or "warn"; fields never include a plaintext
// password or enable secret.
type EventSink interface {
	Emit(level string, fields map[string]interface{})
}
