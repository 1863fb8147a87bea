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

// Package petri translates a request's symbolic summary relations into the
// Petri net whose reachable markings describe the aggregate effect of any
// multiset of concurrent request instances (spec.md §4.5). Unlike the
// workflow engine this package is descended from, a place here never
// carries typed token payloads -- only integer counts -- because the
// question the net answers is purely about reachable vectors over global
// dimensions, not about routing individual pieces of work.
package petri

import "fmt"

// Kind distinguishes the two families of places spec.md §3's data model
// names: value places track an integer coordinate of the global state
// vector and are unbounded over ℕ; control places gate how many times a
// request's transition family may contribute to the aggregate effect.
type Kind int

const (
	// ValuePlace holds the current coordinate of one global dimension.
	ValuePlace Kind = iota
	// ControlPlace gates a request/component's transition family.
	ControlPlace
)

func (k Kind) String() string {
	if k == ValuePlace {
		return "value"
	}
	return "control"
}

// Place is a node of the net. Capacity bounds the place's token count: 0
// means unbounded (the default for value places, and for the control
// places §4.5 builds for the serializability query, which must allow an
// unbounded number of request instances); 1 makes the place 1-safe, the
// bound spec.md §3 reserves for control places used outside the
// unbounded-instance construction (e.g. a single request's own
// program-location places, if a future translator needs them).
type Place struct {
	// ID is the unique identifier for this place.
	ID string

	// Name is the human-readable name (a dimension name for value
	// places, a "request/component" label for control places).
	Name string

	// PlaceKind distinguishes value places from control places.
	PlaceKind Kind

	// Capacity bounds the place's token count. 0 means unbounded.
	Capacity int64

	// IncomingArcIDs and OutgoingArcIDs are ID references, resolved by
	// PetriNet.Resolve() into incomingArcs/outgoingArcs.
	IncomingArcIDs []string
	OutgoingArcIDs []string

	incomingArcs []*Arc
	outgoingArcs []*Arc
	resolved     bool
}

// NewPlace returns a place of the given kind. capacity <= 0 means unbounded.
func NewPlace(id, name string, kind Kind, capacity int64) *Place {
	if capacity < 0 {
		capacity = 0
	}
	return &Place{
		ID:             id,
		Name:           name,
		PlaceKind:      kind,
		Capacity:       capacity,
		IncomingArcIDs: make([]string, 0),
		OutgoingArcIDs: make([]string, 0),
	}
}

// Unbounded reports whether the place imposes no capacity bound.
func (p *Place) Unbounded() bool { return p.Capacity <= 0 }

// IncomingArcs returns the resolved incoming arcs, available only after
// PetriNet.Resolve().
func (p *Place) IncomingArcs() []*Arc { return p.incomingArcs }

// OutgoingArcs returns the resolved outgoing arcs, available only after
// PetriNet.Resolve().
func (p *Place) OutgoingArcs() []*Arc { return p.outgoingArcs }

// String renders the place for debugging and DOT/trace output.
func (p *Place) String() string {
	cap := "unbounded"
	if p.Capacity > 0 {
		cap = fmt.Sprintf("cap=%d", p.Capacity)
	}
	return fmt.Sprintf("Place[%s: %q %s %s]", p.ID, p.Name, p.PlaceKind, cap)
}
