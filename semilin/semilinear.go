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

package semilin

import (
	"fmt"
	"strings"

	"github.com/serialcheck/engine/schema"
)

// SemilinearSet is a finite union of LinearSets (spec.md §4.1). It is the
// representation carried end to end between the Kleene evaluator, the Petri
// translator, and the serial-execution NFA.
type SemilinearSet struct {
	Schema     *schema.Schema
	Components []LinearSet
}

// Empty returns the empty semilinear set over sch.
func Empty(sch *schema.Schema) SemilinearSet {
	return SemilinearSet{Schema: sch}
}

// Point returns the single-point semilinear set {x}.
func Point(x schema.Vector) SemilinearSet {
	return SemilinearSet{Schema: x.Schema, Components: []LinearSet{{Schema: x.Schema, Base: x}}}
}

// Harmonize re-expresses sets a and b over their schema union, per spec.md
// §4.1's "schema harmonization" rule, so that every other operation can
// assume its operands already share one schema.
func Harmonize(a, b SemilinearSet) (SemilinearSet, SemilinearSet, error) {
	u, err := schema.Union(a.Schema, b.Schema)
	if err != nil {
		return SemilinearSet{}, SemilinearSet{}, fmt.Errorf("semilin: harmonize: %w", err)
	}
	return a.Embed(u), b.Embed(u), nil
}

// Embed re-expresses s over a larger schema.
func (s SemilinearSet) Embed(target *schema.Schema) SemilinearSet {
	comps := make([]LinearSet, len(s.Components))
	for i, c := range s.Components {
		comps[i] = c.Embed(target)
	}
	return SemilinearSet{Schema: target, Components: comps}
}

// Union returns the union of sets a and b (their component lists
// concatenated; duplicates are left for RemoveRedundant to clean up).
func Union(a, b SemilinearSet) (SemilinearSet, error) {
	ha, hb, err := Harmonize(a, b)
	if err != nil {
		return SemilinearSet{}, err
	}
	out := SemilinearSet{Schema: ha.Schema}
	out.Components = append(out.Components, ha.Components...)
	out.Components = append(out.Components, hb.Components...)
	return out, nil
}

// ToDNF converts s to its constraint-form representation: a disjunction of
// conjuncts, one per component, each namespaced so its existential
// multiplier dimensions cannot collide with another component's.
func (s SemilinearSet) ToDNF() (DNF, error) {
	out := DNF{Schema: s.Schema}
	ext := s.Schema
	for i, comp := range s.Components {
		conj, extended, err := comp.ToConjunct(fmt.Sprintf("c%d", i))
		if err != nil {
			return DNF{}, err
		}
		if extended.Len() > ext.Len() {
			ext = extended
		}
		out.Conjuncts = append(out.Conjuncts, conj)
		for _, d := range extended.Dims() {
			if !s.Schema.Has(d.Name) {
				out.Exists = append(out.Exists, d.Name)
			}
		}
	}
	// Re-embed every conjunct onto the widest extended schema seen, since
	// each component introduces its own namespaced multiplier dimensions.
	for i, c := range out.Conjuncts {
		out.Conjuncts[i] = c.Embed(ext)
	}
	out.Schema = ext
	return out, nil
}

// IsEmpty reports whether s has no member points, deferring the actual
// decision to solver (spec.md §4.2's "oracle" — a linear set in generator
// form is always inhabited by its base point, so this only ever returns
// true for the zero-component set; it exists for symmetry with the
// constraint-form emptiness check used after Intersect).
func (s SemilinearSet) IsEmpty() bool {
	return len(s.Components) == 0
}

// RemoveRedundant drops components that are generator-identical to an
// earlier one (spec.md §4.7's "remove-redundant-component" optimization,
// applied unconditionally here since exact duplicates never add coverage).
func (s SemilinearSet) RemoveRedundant() SemilinearSet {
	out := SemilinearSet{Schema: s.Schema}
	for _, c := range s.Components {
		dup := false
		for _, kept := range out.Components {
			if linearSetEqual(c, kept) {
				dup = true
				break
			}
		}
		if !dup {
			out.Components = append(out.Components, c)
		}
	}
	return out
}

func linearSetEqual(a, b LinearSet) bool {
	if !a.Base.Equal(b.Base) || len(a.Periods) != len(b.Periods) {
		return false
	}
	used := make([]bool, len(b.Periods))
	for _, pa := range a.Periods {
		found := false
		for j, pb := range b.Periods {
			if !used[j] && pa.Equal(pb) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s SemilinearSet) String() string {
	if len(s.Components) == 0 {
		return "∅"
	}
	parts := make([]string, len(s.Components))
	for i, c := range s.Components {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ∪ ")
}
