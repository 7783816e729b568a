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

package job

import (
	"context"

	"github.com/coriolis-net/discoveryd/pkg/models"
)

// modeFunc runs one of the three discovery pipelines over an
// already-validated job and returns the populated result. Each mode is
// wired into modeTable explicitly in NewOrchestrator rather than
// self-registering at package init, avoiding an import-order-dependent
// global registry.
type modeFunc func(ctx context.Context, o *Orchestrator, pc parsedConfig, credentials []models.Credential, result *models.JobResult)

func defaultModeTable() map[models.JobMode]modeFunc {
	return map[models.JobMode]modeFunc{
		models.JobModeSubnet:      runSubnetMode,
		models.JobModeSeedDevice:  runSeedDeviceMode,
		models.JobModeFullPipeline: runFullPipelineMode,
	}
}
