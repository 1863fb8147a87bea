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

// Package optimize runs a query's Kleene evaluation under every combination
// of spec.md §4.7's four independently-disableable optimization switches
// (Bidirectional, RemoveRedundant, GenerateLess, SmartOrder), confirming the
// decided emptiness answer does not depend on which combination ran, and
// reports which combination ran fastest.
package optimize

import "github.com/serialcheck/engine/kleene"

// switchCount is the number of independent boolean knobs spec.md §4.7
// names; AllVariants enumerates every 2^switchCount combination.
const switchCount = 4

// Variant names one combination of the four optimization switches.
type Variant struct {
	Bidirectional   bool
	RemoveRedundant bool
	GenerateLess    bool
	SmartOrder      bool
}

// String renders a Variant as the four switches' initials, lowercased when
// disabled, e.g. "BrGS" for Bidirectional+GenerateLess+SmartOrder without
// RemoveRedundant.
func (v Variant) String() string {
	letter := func(enabled bool, upper, lower byte) byte {
		if enabled {
			return upper
		}
		return lower
	}
	buf := [4]byte{
		letter(v.Bidirectional, 'B', 'b'),
		letter(v.RemoveRedundant, 'R', 'r'),
		letter(v.GenerateLess, 'G', 'g'),
		letter(v.SmartOrder, 'S', 's'),
	}
	return string(buf[:])
}

// Apply overlays v's four switches onto base, leaving every other Config
// field (MaxStarIterations, RedundancyBailout, Logger) untouched.
func (v Variant) Apply(base kleene.Config) kleene.Config {
	base.Bidirectional = v.Bidirectional
	base.RemoveRedundant = v.RemoveRedundant
	base.GenerateLess = v.GenerateLess
	base.SmartOrder = v.SmartOrder
	return base
}

// AllVariants enumerates all 16 combinations of the four switches, in a
// fixed order (the all-disabled variant first, the all-enabled variant
// last) so results are reproducible across runs.
func AllVariants() []Variant {
	out := make([]Variant, 0, 1<<switchCount)
	for mask := 0; mask < 1<<switchCount; mask++ {
		out = append(out, Variant{
			Bidirectional:   mask&1 != 0,
			RemoveRedundant: mask&2 != 0,
			GenerateLess:    mask&4 != 0,
			SmartOrder:      mask&8 != 0,
		})
	}
	return out
}
