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
	"strings"
)

// ToNet renders the net and an initial marking as the line-based ".net"
// format spec.md §6 names as an output artifact and the input the
// reachability subprocess (package oracle) consumes: one place per line
// (ID, kind, capacity with 0 for unbounded, initial tokens), one transition
// per line (ID, kind),
// one arc per line (source, target, weight). Places and transitions are
// listed in sorted ID order for reproducibility (spec.md §5), the same rule
// ToDOT follows.
func (pn *PetriNet) ToNet(init Marking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "net %s\n", pn.ID)

	for _, id := range sortedKeys(pn.Places) {
		p := pn.Places[id]
		cap := int64(0)
		if !p.Unbounded() {
			cap = p.Capacity
		}
		fmt.Fprintf(&sb, "place %s %s %d %d\n", p.ID, p.PlaceKind, cap, init.Get(p.ID))
	}
	for _, id := range sortedKeys(pn.Transitions) {
		t := pn.Transitions[id]
		fmt.Fprintf(&sb, "transition %s %s\n", t.ID, t.Kind)
	}
	for _, id := range sortedKeys(pn.Arcs) {
		a := pn.Arcs[id]
		fmt.Fprintf(&sb, "arc %s %s %d\n", a.SourceID, a.TargetID, a.Weight)
	}
	return sb.String()
}
