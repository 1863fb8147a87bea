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

import "fmt"

// ReplayResult is the marking reached by replaying a firing sequence, with
// the intermediate marking recorded after every step for trace reporting.
type ReplayResult struct {
	Final Marking
	Trace []Marking
}

// Replay fires each transition ID in sequence, starting from init, and
// returns the resulting trace. It exists to check a reachability oracle's
// counterexample firing sequence (spec.md §6's FiringSequence, §4.8's proof
// checker), not to drive live execution: this net has no guards, tasks, or
// triggers, only the effect of a single weighted firing. Replay fails at
// the first transition that is not enabled or not present in the net,
// naming the step index so the caller can report where the oracle's
// sequence diverges from the net's actual semantics.
func Replay(net *PetriNet, init Marking, sequence []string) (*ReplayResult, error) {
	if !net.Resolved() {
		if err := net.Resolve(); err != nil {
			return nil, fmt.Errorf("petri: replay: %w", err)
		}
	}

	current := init.Copy()
	trace := make([]Marking, 0, len(sequence))
	for i, id := range sequence {
		t, err := net.GetTransition(id)
		if err != nil {
			return nil, fmt.Errorf("petri: replay step %d: %w", i, err)
		}
		next, err := net.Fire(current, t)
		if err != nil {
			return nil, fmt.Errorf("petri: replay step %d (%s): %w", i, id, err)
		}
		current = next
		trace = append(trace, current.Copy())
	}
	return &ReplayResult{Final: current, Trace: trace}, nil
}

// Satisfies reports whether m assigns every value place the coordinate
// named by target, for checking whether a replayed marking actually lands
// in the target vector a counterexample claimed to reach.
func Satisfies(m Marking, target map[string]int64) bool {
	for g, want := range target {
		if m.Get(valuePlaceID(g)) != want {
			return false
		}
	}
	return true
}
