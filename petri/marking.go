// Copyright 2026 The JazzPetri Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package petri

import (
	"fmt"
	"sort"
	"strings"
)

// Marking is a snapshot of token counts at each place, keyed by place ID
// (spec.md §3's "A marking is a map P→ℕ"). Unlike the general workflow
// engine's token-carrying places, a Marking here only ever needs counts:
// the translator's value places track aggregate effect on global
// dimensions, not per-instance payload data.
type Marking map[string]int64

// Key returns a canonical string key for this marking, independent of map
// iteration order, for deterministic replay traces (spec.md §5).
func (m Marking) Key() string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s:%d", k, m[k])
	}
	return strings.Join(parts, ",")
}

// Copy returns a deep copy of m; mutating the result never affects m.
func (m Marking) Copy() Marking {
	c := make(Marking, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Get returns the token count at place id, or 0 if absent.
func (m Marking) Get(id string) int64 {
	return m[id]
}
