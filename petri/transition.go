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

// Transition consumes tokens from input places and produces tokens to
// output places. Request and Component identify the summary-relation
// linear component this transition belongs to (empty for transitions not
// built from a request's summary, such as an identity transition).
type Transition struct {
	ID        string
	Name      string
	Kind      TransitionKind
	Request   string
	Component int

	InputArcIDs  []string
	OutputArcIDs []string

	inputArcs  []*Arc
	outputArcs []*Arc
	resolved   bool
}

// NewTransition returns a transition of the given kind.
func NewTransition(id, name string, kind TransitionKind) *Transition {
	return &Transition{
		ID:           id,
		Name:         name,
		Kind:         kind,
		InputArcIDs:  make([]string, 0),
		OutputArcIDs: make([]string, 0),
	}
}

// InputArcs returns the resolved input arcs, available only after
// PetriNet.Resolve().
func (t *Transition) InputArcs() []*Arc { return t.inputArcs }

// OutputArcs returns the resolved output arcs, available only after
// PetriNet.Resolve().
func (t *Transition) OutputArcs() []*Arc { return t.outputArcs }

func (t *Transition) String() string {
	return fmt.Sprintf("Transition[%s: %q kind=%s]", t.ID, t.Name, t.Kind)
}
