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

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// MarshalJSON flattens PortOpenCount into sibling "port_<P>_open" keys so
// the artifact matches the bit-exact reachability_matrix.json shape.
func (s ReachabilitySummary) MarshalJSON() ([]byte, error) {
	fields := map[string]interface{}{
		"total_scanned":  s.TotalScanned,
		"icmp_reachable": s.ICMPReachable,
	}

	ports := make([]int, 0, len(s.PortOpenCount))
	for p := range s.PortOpenCount {
		ports = append(ports, p)
	}

	sort.Ints(ports)

	for _, p := range ports {
		fields[fmt.Sprintf("port_%d_open", p)] = s.PortOpenCount[p]
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(fields); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
