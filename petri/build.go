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

	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

// RequestSummary pairs a request's name with its summary relation -- the
// semilinear set over schema.Doubled(globals) that §4.4's AST lowering
// produces -- for consumption by Build.
type RequestSummary struct {
	Name    string
	Summary semilin.SemilinearSet
}

// Build constructs the aggregate-effect net of spec.md §4.5: "there exists
// a firing sequence of any multiset of request instances (chosen with
// multiplicity) whose aggregate effect on globals is some vector in target
// set T." One value place is created per dimension of globalSchema; one
// control place and transition family is created per (request,
// linear-component) pair of every request's summary. Control places are
// built unbounded, since the serializability query must allow an
// unbounded number of concurrent instances of each request.
//
// Requests are processed in name order and their components in index order
// so the resulting place/transition/arc IDs -- and therefore iteration over
// the net's maps in any later schema-order pass -- are reproducible
// (spec.md §5).
func Build(globalSchema *schema.Schema, requests []RequestSummary) (*PetriNet, error) {
	return build(globalSchema, requests, false)
}

// BuildWithRequests constructs the petri_with_requests variant of Build: it
// adds one unbounded accounting place per (request, linear-component) pair
// that accumulates one token per instance chosen (one per BaseTransition
// firing). Accounting places never feed back into any transition, so they
// do not affect the reachable set over value places; they exist solely so
// the oracle's counterexample trace can report how many instances of each
// request/component a firing sequence used (spec.md §4.5).
func BuildWithRequests(globalSchema *schema.Schema, requests []RequestSummary) (*PetriNet, error) {
	return build(globalSchema, requests, true)
}

func build(globalSchema *schema.Schema, requests []RequestSummary, accounting bool) (*PetriNet, error) {
	net := NewPetriNet("aggregate", "aggregate effect")

	globals := globalSchema.Globals()
	for _, g := range globals {
		if err := net.AddPlace(NewPlace(valuePlaceID(g), g, ValuePlace, 0)); err != nil {
			return nil, err
		}
	}

	ordered := append([]RequestSummary(nil), requests...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	for _, req := range ordered {
		for ci, comp := range req.Summary.Components {
			if err := addComponentFamily(net, globals, req.Name, ci, comp, accounting); err != nil {
				return nil, fmt.Errorf("petri: build %s component %d: %w", req.Name, ci, err)
			}
		}
	}

	if err := net.Resolve(); err != nil {
		return nil, err
	}
	return net, nil
}

func addComponentFamily(net *PetriNet, globals []string, request string, component int, comp semilin.LinearSet, accounting bool) error {
	controlID := controlPlaceID(request, component)
	if err := net.AddPlace(NewPlace(controlID, fmt.Sprintf("%s#%d", request, component), ControlPlace, 0)); err != nil {
		return err
	}

	var acctID string
	if accounting {
		acctID = controlID + "_count"
		if err := net.AddPlace(NewPlace(acctID, acctID, ControlPlace, 0)); err != nil {
			return err
		}
	}

	baseID := controlID + "_base"
	base := NewTransition(baseID, fmt.Sprintf("%s base", controlID), BaseTransition)
	base.Request, base.Component = request, component
	if err := net.AddTransition(base); err != nil {
		return err
	}
	if err := wireEffect(net, base, controlID, globals, effectOf(comp.Base, globals), true); err != nil {
		return err
	}
	if accounting {
		if err := net.AddArc(NewArc(baseID+"_acct", baseID, acctID, 1)); err != nil {
			return err
		}
	}

	for pi, period := range comp.Periods {
		periodID := fmt.Sprintf("%s_p%d", controlID, pi)
		t := NewTransition(periodID, fmt.Sprintf("%s period %d", controlID, pi), PeriodTransition)
		t.Request, t.Component = request, component
		if err := net.AddTransition(t); err != nil {
			return err
		}
		if err := wireEffect(net, t, controlID, globals, effectOf(period, globals), false); err != nil {
			return err
		}
	}
	return nil
}

// effectOf reads the net change a pre/post vector v imposes on each global,
// aligned with globals' order: v's schema must name each global dimension
// g as g+"$pre" and g+"$post" (schema.Doubled's convention). Vector.At
// returns 0 for a missing dimension, so a summary schema that has already
// dropped an unused global is handled safely.
func effectOf(v schema.Vector, globals []string) []int64 {
	delta := make([]int64, len(globals))
	for i, g := range globals {
		delta[i] = v.At(g+"$post") - v.At(g+"$pre")
	}
	return delta
}

// wireEffect connects t to controlID and to the value places named by
// globals according to delta. oneShot transitions (BaseTransition) consume
// their control token; non-one-shot transitions (PeriodTransition) self-loop
// on it so firing never exhausts the permission to fire again.
func wireEffect(net *PetriNet, t *Transition, controlID string, globals []string, delta []int64, oneShot bool) error {
	if err := net.AddArc(NewArc(t.ID+"_in_ctrl", controlID, t.ID, 1)); err != nil {
		return err
	}
	if !oneShot {
		if err := net.AddArc(NewArc(t.ID+"_out_ctrl", t.ID, controlID, 1)); err != nil {
			return err
		}
	}
	for i, g := range globals {
		d := delta[i]
		switch {
		case d > 0:
			if err := net.AddArc(NewArc(fmt.Sprintf("%s_out_%s", t.ID, g), t.ID, valuePlaceID(g), d)); err != nil {
				return err
			}
		case d < 0:
			if err := net.AddArc(NewArc(fmt.Sprintf("%s_in_%s", t.ID, g), valuePlaceID(g), t.ID, -d)); err != nil {
				return err
			}
		}
	}
	return nil
}

func valuePlaceID(global string) string   { return "v:" + global }
func controlPlaceID(request string, component int) string {
	return fmt.Sprintf("c:%s#%d", request, component)
}
