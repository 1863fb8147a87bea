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

// PetriNet is a complete Petri net graph: places, transitions, and arcs,
// addressed by ID for construction and resolved to direct pointers before
// enablement/firing queries (spec.md §4.5).
type PetriNet struct {
	ID   string
	Name string

	Places      map[string]*Place
	Transitions map[string]*Transition
	Arcs        map[string]*Arc

	resolved bool
}

// NewPetriNet returns an empty net.
func NewPetriNet(id, name string) *PetriNet {
	return &PetriNet{
		ID:          id,
		Name:        name,
		Places:      make(map[string]*Place),
		Transitions: make(map[string]*Transition),
		Arcs:        make(map[string]*Arc),
	}
}

// AddPlace adds p to the net. Returns an error if p.ID is already used.
func (pn *PetriNet) AddPlace(p *Place) error {
	if _, exists := pn.Places[p.ID]; exists {
		return fmt.Errorf("petri: place %s already exists", p.ID)
	}
	pn.Places[p.ID] = p
	pn.resolved = false
	return nil
}

// AddTransition adds t to the net. Returns an error if t.ID is already used.
func (pn *PetriNet) AddTransition(t *Transition) error {
	if _, exists := pn.Transitions[t.ID]; exists {
		return fmt.Errorf("petri: transition %s already exists", t.ID)
	}
	pn.Transitions[t.ID] = t
	pn.resolved = false
	return nil
}

// AddArc adds a to the net, updating the incident place's/transition's arc
// ID lists. Returns an error if a.ID is already used.
func (pn *PetriNet) AddArc(a *Arc) error {
	if _, exists := pn.Arcs[a.ID]; exists {
		return fmt.Errorf("petri: arc %s already exists", a.ID)
	}
	pn.Arcs[a.ID] = a

	if place, ok := pn.Places[a.SourceID]; ok {
		if trans, ok := pn.Transitions[a.TargetID]; ok {
			place.OutgoingArcIDs = append(place.OutgoingArcIDs, a.ID)
			trans.InputArcIDs = append(trans.InputArcIDs, a.ID)
		}
	}
	if trans, ok := pn.Transitions[a.SourceID]; ok {
		if place, ok := pn.Places[a.TargetID]; ok {
			trans.OutputArcIDs = append(trans.OutputArcIDs, a.ID)
			place.IncomingArcIDs = append(place.IncomingArcIDs, a.ID)
		}
	}

	pn.resolved = false
	return nil
}

// Validate checks that every arc connects to an existing place/transition.
func (pn *PetriNet) Validate() error {
	for _, arc := range pn.Arcs {
		_, srcPlace := pn.Places[arc.SourceID]
		_, srcTrans := pn.Transitions[arc.SourceID]
		if !srcPlace && !srcTrans {
			return fmt.Errorf("petri: arc %s: source %s does not exist", arc.ID, arc.SourceID)
		}
		_, dstPlace := pn.Places[arc.TargetID]
		_, dstTrans := pn.Transitions[arc.TargetID]
		if !dstPlace && !dstTrans {
			return fmt.Errorf("petri: arc %s: target %s does not exist", arc.ID, arc.TargetID)
		}
	}
	return nil
}

// Resolve converts ID references into direct pointers. Idempotent.
func (pn *PetriNet) Resolve() error {
	if pn.resolved {
		return nil
	}
	if err := pn.Validate(); err != nil {
		return fmt.Errorf("petri: resolve: %w", err)
	}

	for _, p := range pn.Places {
		p.incomingArcs = p.incomingArcs[:0]
		p.outgoingArcs = p.outgoingArcs[:0]
	}
	for _, t := range pn.Transitions {
		t.inputArcs = t.inputArcs[:0]
		t.outputArcs = t.outputArcs[:0]
	}

	for _, arc := range pn.Arcs {
		if place, ok := pn.Places[arc.SourceID]; ok {
			arc.Source = place
		} else if trans, ok := pn.Transitions[arc.SourceID]; ok {
			arc.Source = trans
		} else {
			return fmt.Errorf("petri: arc %s: source %s not found", arc.ID, arc.SourceID)
		}
		if place, ok := pn.Places[arc.TargetID]; ok {
			arc.Target = place
		} else if trans, ok := pn.Transitions[arc.TargetID]; ok {
			arc.Target = trans
		} else {
			return fmt.Errorf("petri: arc %s: target %s not found", arc.ID, arc.TargetID)
		}
		arc.resolved = true
	}

	for _, p := range pn.Places {
		for _, id := range p.IncomingArcIDs {
			p.incomingArcs = append(p.incomingArcs, pn.Arcs[id])
		}
		for _, id := range p.OutgoingArcIDs {
			p.outgoingArcs = append(p.outgoingArcs, pn.Arcs[id])
		}
		p.resolved = true
	}
	for _, t := range pn.Transitions {
		for _, id := range t.InputArcIDs {
			t.inputArcs = append(t.inputArcs, pn.Arcs[id])
		}
		for _, id := range t.OutputArcIDs {
			t.outputArcs = append(t.outputArcs, pn.Arcs[id])
		}
		t.resolved = true
	}

	pn.resolved = true
	return nil
}

// Resolved reports whether Resolve has already converted ID references.
func (pn *PetriNet) Resolved() bool { return pn.resolved }

// GetPlace looks up a place by ID.
func (pn *PetriNet) GetPlace(id string) (*Place, error) {
	p, ok := pn.Places[id]
	if !ok {
		return nil, fmt.Errorf("petri: place %s not found", id)
	}
	return p, nil
}

// GetTransition looks up a transition by ID.
func (pn *PetriNet) GetTransition(id string) (*Transition, error) {
	t, ok := pn.Transitions[id]
	if !ok {
		return nil, fmt.Errorf("petri: transition %s not found", id)
	}
	return t, nil
}

// Enabled reports whether t may fire from marking m: every input place
// holds at least its arc's weight.
func (pn *PetriNet) Enabled(m Marking, t *Transition) bool {
	if !t.resolved {
		return false
	}
	for _, arc := range t.inputArcs {
		place := arc.Source.(*Place)
		if m.Get(place.ID) < arc.Weight {
			return false
		}
	}
	return true
}

// Fire returns the marking reached by firing t from m, without mutating m.
// Returns an error if t is not enabled or firing would exceed a bounded
// output place's capacity.
func (pn *PetriNet) Fire(m Marking, t *Transition) (Marking, error) {
	if !pn.Enabled(m, t) {
		return nil, fmt.Errorf("petri: transition %s not enabled", t.ID)
	}
	next := m.Copy()
	for _, arc := range t.inputArcs {
		place := arc.Source.(*Place)
		next[place.ID] -= arc.Weight
	}
	for _, arc := range t.outputArcs {
		place := arc.Target.(*Place)
		next[place.ID] += arc.Weight
		if !place.Unbounded() && next[place.ID] > place.Capacity {
			return nil, fmt.Errorf("petri: firing %s exceeds capacity of place %s", t.ID, place.ID)
		}
	}
	return next, nil
}

// InitialMarking returns a marking over every place of the net, taking each
// place's token count from initial (0 for a place initial does not name).
// Places carry no initial count of their own.
func (pn *PetriNet) InitialMarking(initial map[string]int64) Marking {
	m := make(Marking, len(pn.Places))
	for id := range pn.Places {
		m[id] = initial[id]
	}
	return m
}
