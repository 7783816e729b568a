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

package transport

import (
	"context"
	"strings"
	"time"

	"github.com/coriolis-net/discoveryd/pkg/models"
)

// familySignatures maps substrings found in a "show version" banner to the
// family they identify. Order matters: more specific signatures are
// checked before the generic IOS fallback.
var familySignatures = []struct {
	substr string
	family models.FamilyTag
}{
	{"NX-OS", models.FamilyNXOS},
	{"JUNOS", models.FamilyJunos},
	{"Arista", models.FamilyEOS},
	{"IOS-XE", models.FamilyIOSXE},
	{"IOS XE", models.FamilyIOSXE},
	{"IOS Software", models.FamilyGenericIOS},
	{"Cisco IOS", models.FamilyGenericIOS},
}

// versionProbeCommands lists the "show version"-equivalent commands to
// try, in order, before giving up. Each family's CLI rejects the others'
// syntax outright rather than erroring gracefully, so probing in order and
// reading the banner text is the only reliable way to classify a device
// before its family is known.
var versionProbeCommands = []string{
	"show version",
	"show version brief",
}

// DetectFamily opens its own short-lived session to addr:port, sends
// banner-safe version probes, and classifies the response into a
// FamilyTag. It never issues a command that could drop the device into a
// paging prompt or a destructive context, since the family is not yet
// known. The probe session is always closed before returning, whether or
// not classification succeeded; callers open a fresh Connect afterward for
// the real work.
func DetectFamily(ctx context.Context, addr string, port int, cred models.Credential, timeout time.Duration) (models.FamilyTag, error) {
	sess, err := Connect(ctx, addr, port, cred, timeout)
	if err != nil {
		return "", err
	}

	defer func() { _ = sess.Close() }()

	var lastErr error

	for _, cmd := range versionProbeCommands {
		out, err := sess.Send(ctx, cmd, timeout)
		if err != nil {
			lastErr = err
			continue
		}

		if family, ok := classifyBanner(out); ok {
			return family, nil
		}
	}

	if lastErr != nil {
		return "", lastErr
	}

	return models.FamilyDefault, nil
}

func classifyBanner(banner string) (models.FamilyTag, bool) {
	for _, sig := range familySignatures {
		if strings.Contains(banner, sig.substr) {
			return sig.family, true
		}
	}

	return "", false
}
