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

package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// globalLogger implements Logger by delegating to the package-level
// singleton, letting cmd/discoveryd pass a real Logger value to
// constructors that want one without each holding its own zerolog.Logger.
type globalLogger struct{}

// New initializes the package singleton from cfg (nil for DefaultConfig)
// and returns a Logger backed by it.
func New(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := Init(context.Background(), cfg); err != nil {
		return nil, err
	}

	return globalLogger{}, nil
}

func (globalLogger) Trace() *zerolog.Event { return Trace() }
func (globalLogger) Debug() *zerolog.Event { return Debug() }
func (globalLogger) Info() *zerolog.Event  { return Info() }
func (globalLogger) Warn() *zerolog.Event  { return Warn() }
func (globalLogger) Error() *zerolog.Event { return Error() }
func (globalLogger) Fatal() *zerolog.Event { return Fatal() }
func (globalLogger) Panic() *zerolog.Event { return Panic() }
func (globalLogger) With() zerolog.Context { return With() }

func (globalLogger) WithComponent(component string) zerolog.Logger {
	return WithComponent(component)
}

func (globalLogger) WithFields(fields map[string]interface{}) zerolog.Logger {
	return WithFields(fields)
}

func (globalLogger) SetLevel(level zerolog.Level) { SetLevel(level) }
func (globalLogger) SetDebug(debug bool)           { SetDebug(debug) }
