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

// ToDOT renders the net as Graphviz DOT (spec.md §6's network.dot /
// petri.dot output artifacts). It is a thin, lossless emitter: layout and
// rendering to SVG are left to the `dot` binary, not reimplemented here.
func (pn *PetriNet) ToDOT() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("digraph \"%s\" {\n", escapeLabel(pn.Name)))
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [fontname=\"Helvetica\"];\n")
	sb.WriteString("  edge [fontname=\"Helvetica\"];\n\n")

	for _, id := range sortedKeys(pn.Places) {
		place := pn.Places[id]
		shape := "circle"
		if place.PlaceKind == ControlPlace {
			shape = "doublecircle"
		}
		sb.WriteString(fmt.Sprintf("  %q [label=%q shape=%s];\n", place.ID, escapeLabel(place.Name), shape))
	}
	sb.WriteString("\n")

	for _, id := range sortedKeys(pn.Transitions) {
		t := pn.Transitions[id]
		sb.WriteString(fmt.Sprintf("  %q [label=%q shape=box];\n", t.ID, escapeLabel(t.Name)))
	}
	sb.WriteString("\n")

	for _, id := range sortedKeys(pn.Arcs) {
		arc := pn.Arcs[id]
		label := ""
		if arc.Weight > 1 {
			label = fmt.Sprintf(" [label=\"%d\"]", arc.Weight)
		}
		sb.WriteString(fmt.Sprintf("  %q -> %q%s;\n", arc.SourceID, arc.TargetID, label))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
