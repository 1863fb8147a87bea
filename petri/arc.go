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

// Arc connects a place to a transition or vice versa. Weight is the
// number of tokens consumed (place->transition) or produced
// (transition->place) per firing; it is always positive, since a
// transition's negative effect on a value place is expressed as a
// separate input arc rather than a negative weight (spec.md §4.5).
//
// The hybrid structure stores ID references for the net's build phase and
// resolves them to direct pointers once, in PetriNet.Resolve().
type Arc struct {
	ID       string
	SourceID string
	TargetID string
	Weight   int64

	Source interface{}
	Target interface{}

	resolved bool
}

// NewArc returns a new arc of the given weight. weight <= 0 becomes 1.
func NewArc(id, sourceID, targetID string, weight int64) *Arc {
	if weight <= 0 {
		weight = 1
	}
	return &Arc{ID: id, SourceID: sourceID, TargetID: targetID, Weight: weight}
}

func (a *Arc) String() string {
	return fmt.Sprintf("Arc[%s: %s -> %s w=%d]", a.ID, a.SourceID, a.TargetID, a.Weight)
}
