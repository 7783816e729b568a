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
	"fmt"
	"regexp"

	"github.com/coriolis-net/discoveryd/pkg/models"
)

var jobIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// parsedConfig is a models.JobConfig with every string field resolved
// into the types the rest of the package works with: parsed seeds and
// compiled exclusion regexes. Building this once up front is what lets
// BadInput abort the job before any network I/O.
type parsedConfig struct {
	cfg      models.JobConfig
	seeds    []models.Seed
	excludes []*regexp.Regexp
}

func parseAndValidate(cfg models.JobConfig) (parsedConfig, error) {
	cfg.ApplyDefaults()

	if cfg.JobID != "" && !jobIDRE.MatchString(cfg.JobID) {
		return parsedConfig{}, fmt.Errorf("%w: invalid job_id %q", models.ErrBadInput, cfg.JobID)
	}

	if len(cfg.SeedDevices) == 0 {
		return parsedConfig{}, fmt.Errorf("%w: no seed_devices supplied", models.ErrBadInput)
	}

	seeds := make([]models.Seed, 0, len(cfg.SeedDevices))

	for _, raw := range cfg.SeedDevices {
		seed, err := models.ParseSeed(raw)
		if err != nil {
			return parsedConfig{}, err
		}

		seeds = append(seeds, seed)
	}

	excludes := make([]*regexp.Regexp, 0, len(cfg.ExcludePatterns))

	for _, pattern := range cfg.ExcludePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return parsedConfig{}, fmt.Errorf("%w: invalid exclude pattern %q: %v", models.ErrBadInput, pattern, err)
		}

		excludes = append(excludes, re)
	}

	switch cfg.Mode {
	case models.JobModeSubnet, models.JobModeSeedDevice, models.JobModeFullPipeline:
	default:
		return parsedConfig{}, fmt.Errorf("%w: unknown mode %q", models.ErrBadInput, cfg.Mode)
	}

	return parsedConfig{cfg: cfg, seeds: seeds, excludes: excludes}, nil
}
