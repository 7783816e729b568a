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

// Command discoveryd is a thin, standalone runner that wires the three
// external ports (CredentialSource, ArtifactSink, EventSink) to local,
// single-process implementations and runs one discovery job to
// completion, printing the resulting JobResult as JSON. It is not the
// HTTP job API; it exists to exercise pkg/job end to end.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/coriolis-net/discoveryd/pkg/config"
	"github.com/coriolis-net/discoveryd/pkg/job"
	"github.com/coriolis-net/discoveryd/pkg/logger"
	"github.com/coriolis-net/discoveryd/pkg/models"
)

var (
	credsFile   = flag.String("credentials", "", "Path to a JSON file holding a []models.Credential list")
	outDir      = flag.String("out-dir", "/var/lib/discoveryd", "Directory artifacts are written under, one subdirectory per job id")
	seeds       = flag.String("seeds", "", "Comma-separated seed list: host, host:port, or CIDR")
	mode        = flag.String("mode", string(models.JobModeFullPipeline), "Discovery mode: subnet, seed-device, full-pipeline")
	maxDepth    = flag.Int("max-depth", 1, "Maximum neighbor-walk hop count")
	protocols   = flag.String("protocols", "cdp,lldp", "Comma-separated discovery protocols to query")
	timeout     = flag.Duration("timeout", 30*time.Second, "Per-device/per-command timeout")
	concurrency = flag.Int("concurrency", 10, "Concurrent device connections during the walk")
	logLevel    = flag.String("log-level", "info", "Log level: trace, debug, info, warn, error")
)

func main() {
	flag.Parse()

	log1, err := logger.New(&logger.Config{Level: *logLevel, Output: "stdout"})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log1.Info().Str("signal", sig.String()).Msg("received signal, cancelling job")
		cancel()
	}()

	if *seeds == "" {
		log.Fatal("at least one -seeds entry is required")
	}

	credSource, err := newFileCredentialSource(*credsFile, log1)
	if err != nil {
		log.Fatalf("failed to load credentials: %v", err)
	}

	artifacts := &fileArtifactSink{rootDir: *outDir}
	events := &zerologEventSink{log: log1}

	orchestrator := job.NewOrchestrator(credSource, artifacts, events, log1)

	cfg := models.JobConfig{
		SeedDevices:           strings.Split(*seeds, ","),
		Mode:                  models.JobMode(*mode),
		MaxDepth:              *maxDepth,
		DiscoveryProtocols:    parseProtocols(*protocols),
		Timeout:               *timeout,
		ConcurrentConnections: *concurrency,
	}

	result, err := orchestrator.Run(ctx, uuid.New().String(), cfg)
	if err != nil {
		log.Fatalf("job rejected: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal result: %v", err)
	}

	fmt.Println(string(out))

	if result.Status == models.JobStatusFailed {
		os.Exit(1)
	}
}

func parseProtocols(raw string) []models.DiscoveryProtocol {
	var protos []models.DiscoveryProtocol

	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		protos = append(protos, models.DiscoveryProtocol(p))
	}

	return protos
}

// newFileCredentialSource loads a static credential list from path once at
// startup. An empty path yields a source that always returns an empty
// list, letting -mode=subnet jobs (which never log in to a device) run
// without a credentials file.
func newFileCredentialSource(path string, log1 logger.Logger) (*fileCredentialSource, error) {
	if path == "" {
		return &fileCredentialSource{}, nil
	}

	loader := config.NewFileConfigLoader(log1)

	var creds []models.Credential
	if err := loader.Load(context.Background(), path, &creds); err != nil {
		return nil, err
	}

	return &fileCredentialSource{credentials: creds}, nil
}

type fileCredentialSource struct {
	credentials []models.Credential
}

func (f *fileCredentialSource) Credentials(_ context.Context) ([]models.Credential, error) {
	return f.credentials, nil
}

// fileArtifactSink writes each named artifact to <rootDir>/<jobID>/<name>,
// creating the per-job directory on first write.
type fileArtifactSink struct {
	rootDir string
}

func (f *fileArtifactSink) Write(_ context.Context, jobID, name string, data []byte) error {
	dir := fmt.Sprintf("%s/%s", f.rootDir, jobID)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir %s: %w", dir, err)
	}

	path := fmt.Sprintf("%s/%s", dir, name)

	return os.WriteFile(path, data, 0o644)
}

// zerologEventSink renders each job event as a structured log line.
type zerologEventSink struct {
	log logger.Logger
}

func (z *zerologEventSink) Emit(level string, fields map[string]interface{}) {
	var evt *zerolog.Event

	switch level {
	case "warn":
		evt = z.log.Warn()
	case "error":
		evt = z.log.Error()
	default:
		evt = z.log.Info()
	}

	for key, value := range fields {
		evt = evt.Interface(key, value)
	}

	evt.Msg("job event")
}
