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

package serialnfa

import (
	"fmt"

	"github.com/serialcheck/engine/kleene"
	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

// RelaxedReach computes a sound over-approximation of the concurrent
// Petri-net reachable set (spec.md §4.6's Reach) without invoking the
// external reachability subprocess.
//
// The net petri.Build constructs wires one control-place family per
// (request, component): a component's base vector and each of its period
// vectors fire independently of every other component, including the other
// components of the *same* request (they share no place besides the global
// value places, which only ever accumulate net effects additively). A
// concurrent schedule can therefore interleave any number of in-flight
// instances' components in any order, unlike a serial schedule, which
// ParikhImage models as one atom per whole request because each instance
// runs to completion, coupled, before the next starts.
//
// Dropping that per-instance coupling and closing over one atom per
// (request, component) -- rather than one atom per whole request -- is
// exactly the relaxation needed: every interleaving the real net can
// produce is also an interleaving of this looser alphabet (the real net's
// interleavings are a subset of what this alphabet's star allows, since the
// real net additionally constrains which components belong to the same
// instance), so the resulting closure is a superset of the true reachable
// set by monotonicity of union and star. When its image already sits
// inside Seq, that containment transfers to the true reachable set for
// free (reach_actual ⊆ reach_relaxed ⊆ seq ⟹ reach_actual ⊆ seq), letting
// the coordinator skip the subprocess whenever this fast path succeeds.
func RelaxedReach(solver semilin.Solver, globals *schema.Schema, cfg kleene.Config, summaries []RequestSummary) (semilin.SemilinearSet, error) {
	keep := make([]string, 0, 2*globals.Len())
	for _, g := range globals.Globals() {
		keep = append(keep, g+"$pre", g+"$post")
	}

	var terms []kleene.Expr
	for _, s := range summaries {
		for ci, comp := range s.Summary.Components {
			single := semilin.SemilinearSet{Schema: s.Summary.Schema, Components: []semilin.LinearSet{comp}}
			restricted, err := semilin.Project(single, keep)
			if err != nil {
				return semilin.SemilinearSet{}, fmt.Errorf("serialnfa: relaxed reach: project %s#%d: %w", s.Name, ci, err)
			}
			terms = append(terms, kleene.Atom(fmt.Sprintf("%s#%d", s.Name, ci), restricted))
		}
	}
	if len(terms) == 0 {
		return semilin.Identity(globals), nil
	}

	star := kleene.StarOf(kleene.UnionOf(terms...))
	reach, err := kleene.Eval(solver, globals, cfg, star)
	if err != nil {
		return semilin.SemilinearSet{}, fmt.Errorf("serialnfa: relaxed reach: %w", err)
	}
	return reach, nil
}
