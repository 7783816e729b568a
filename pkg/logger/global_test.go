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
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ReturnsWorkingLogger(t *testing.T) {
	l, err := New(&Config{Level: "warn", Output: "stdout"})
	require.NoError(t, err)

	assert.Nil(t, l.Info(), "info is below the configured warn level")
	assert.NotNil(t, l.Warn())

	l.SetLevel(zerolog.ErrorLevel)
	l.SetDebug(true)
}

func TestNew_DefaultsConfigWhenNil(t *testing.T) {
	l, err := New(nil)
	require.NoError(t, err)
	assert.NotNil(t, l)
}
