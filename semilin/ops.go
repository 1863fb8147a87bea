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

	"github.com/serialcheck/engine/schema"
)

// Project restricts s onto the dimensions named keep. Projection of a
// generator-form linear set is itself linear (it commutes with the linear
// map that drops coordinates), so this never needs the oracle — matching
// spec.md §4.1's note that project only fails on resource exhaustion, not
// on the mathematics.
func Project(s SemilinearSet, keep []string) (SemilinearSet, error) {
	sch, err := schema.New(projectDims(s.Schema, keep)...)
	if err != nil {
		return SemilinearSet{}, fmt.Errorf("semilin: project: %w", err)
	}
	out := SemilinearSet{Schema: sch}
	for _, c := range s.Components {
		out.Components = append(out.Components, restrict(c, sch))
	}
	return out.RemoveRedundant(), nil
}

func projectDims(sch *schema.Schema, keep []string) []schema.Dim {
	wanted := make(map[string]bool, len(keep))
	for _, name := range keep {
		wanted[name] = true
	}
	var out []schema.Dim
	for _, d := range sch.Dims() {
		if wanted[d.Name] {
			out = append(out, d)
		}
	}
	return out
}

func restrict(l LinearSet, sch *schema.Schema) LinearSet {
	base := schema.Zero(sch)
	for _, d := range sch.Dims() {
		base = base.Set(d.Name, l.Base.At(d.Name))
	}
	periods := make([]schema.Vector, len(l.Periods))
	for i, p := range l.Periods {
		np := schema.Zero(sch)
		for _, d := range sch.Dims() {
			np = np.Set(d.Name, p.At(d.Name))
		}
		periods[i] = np
	}
	return LinearSet{Schema: sch, Base: base, Periods: periods}
}

// Intersect computes a ∩ b. Intersection distributes over union, so the
// result is built as the union, over every pair of components (one from
// each side), of their conjoined constraint systems — concatenating literal
// lists requires no solver — then handed to solver.Canonicalize to drop
// infeasible pairs and rebuild generator form (spec.md §4.2).
func Intersect(solver Solver, a, b SemilinearSet) (SemilinearSet, error) {
	ha, hb, err := Harmonize(a, b)
	if err != nil {
		return SemilinearSet{}, err
	}

	var candidatePeriods []schema.Vector
	var conjuncts []Conjunct
	ext := ha.Schema
	for i, ca := range ha.Components {
		ac, extA, err := ca.ToConjunct(fmt.Sprintf("a%d", i))
		if err != nil {
			return SemilinearSet{}, err
		}
		if extA.Len() > ext.Len() {
			ext = extA
		}
		candidatePeriods = append(candidatePeriods, ca.Periods...)
		for j, cb := range hb.Components {
			bc, extB, err := cb.ToConjunct(fmt.Sprintf("b%d_%d", i, j))
			if err != nil {
				return SemilinearSet{}, err
			}
			if extB.Len() > ext.Len() {
				ext = extB
			}
			candidatePeriods = append(candidatePeriods, cb.Periods...)
			conjuncts = append(conjuncts, append(append(Conjunct(nil), ac...), bc...))
		}
	}

	d := DNF{Schema: ext}
	for _, c := range conjuncts {
		d.Conjuncts = append(d.Conjuncts, c.Embed(ext))
	}

	result, err := solver.Canonicalize(d, candidatePeriods)
	if err != nil {
		return SemilinearSet{}, fmt.Errorf("semilin: intersect: %w", err)
	}
	keep := make([]string, 0, ha.Schema.Len())
	for _, dim := range ha.Schema.Dims() {
		keep = append(keep, dim.Name)
	}
	return Project(*result, keep)
}

// Compose computes relational composition r ; s over relations represented
// as semilinear sets on a Doubled schema ($pre/$post dimensions): it renames
// r's $post dimensions and s's $pre dimensions to a shared set of fresh
// middle names, intersects, then projects the middle names away (spec.md
// §4.1's "compose(R, S)").
func Compose(solver Solver, r, s SemilinearSet, base *schema.Schema) (SemilinearSet, error) {
	mid := make([]schema.Dim, 0, base.Len())
	for _, d := range base.Dims() {
		mid = append(mid, schema.Dim{Name: d.Name + "$mid", Kind: d.Kind})
	}
	midSchema, err := schema.New(mid...)
	if err != nil {
		return SemilinearSet{}, fmt.Errorf("semilin: compose: %w", err)
	}

	rRenamed := renameSuffix(r, base, "$post", "$mid")
	sRenamed := renameSuffix(s, base, "$pre", "$mid")

	joined, err := Intersect(solver, rRenamed, sRenamed)
	if err != nil {
		return SemilinearSet{}, fmt.Errorf("semilin: compose: %w", err)
	}

	keep := make([]string, 0, joined.Schema.Len())
	for _, d := range joined.Schema.Dims() {
		skip := false
		for _, m := range midSchema.Dims() {
			if d.Name == m.Name {
				skip = true
				break
			}
		}
		if !skip {
			keep = append(keep, d.Name)
		}
	}
	return Project(joined, keep)
}

// renameSuffix rewrites every dimension of base suffixed `from` in s's
// schema to be suffixed `to` instead, leaving other dimensions untouched.
func renameSuffix(s SemilinearSet, base *schema.Schema, from, to string) SemilinearSet {
	renamed := make(map[string]string, base.Len())
	dims := make([]schema.Dim, 0, s.Schema.Len())
	for _, d := range s.Schema.Dims() {
		newName := d.Name
		for _, bd := range base.Dims() {
			if d.Name == bd.Name+from {
				newName = bd.Name + to
				break
			}
		}
		renamed[d.Name] = newName
		dims = append(dims, schema.Dim{Name: newName, Kind: d.Kind})
	}
	sch, _ := schema.New(dims...)

	out := SemilinearSet{Schema: sch}
	for _, c := range s.Components {
		out.Components = append(out.Components, renameLinear(c, sch, renamed))
	}
	return out
}

func renameLinear(l LinearSet, sch *schema.Schema, renamed map[string]string) LinearSet {
	base := renameVector(l.Base, sch, renamed)
	periods := make([]schema.Vector, len(l.Periods))
	for i, p := range l.Periods {
		periods[i] = renameVector(p, sch, renamed)
	}
	return LinearSet{Schema: sch, Base: base, Periods: periods}
}

func renameVector(v schema.Vector, sch *schema.Schema, renamed map[string]string) schema.Vector {
	out := schema.Zero(sch)
	for _, d := range v.Schema.Dims() {
		out = out.Set(renamed[d.Name], v.At(d.Name))
	}
	return out
}

// Star computes the Kleene star (reflexive-transitive closure) of a
// relation r over base by one composition step per round: R₀ is the
// identity and Rₖ₊₁ = Rₖ ∪ (Rₖ ; R), stopping once Rₖ₊₁ is covered by Rₖ (an inclusion test against the oracle — the
// Open Question resolution recorded in DESIGN.md: Rₖ₊₁ ⊆ Rₖ is used
// directly as the saturation test rather than syntactic component
// stability). maxIter bounds pathological non-convergence.
func Star(solver Solver, r SemilinearSet, base *schema.Schema, maxIter int) (SemilinearSet, error) {
	identity := identityRelation(base)
	acc := identity
	for i := 0; i < maxIter; i++ {
		step, err := Compose(solver, acc, r, base)
		if err != nil {
			return SemilinearSet{}, fmt.Errorf("semilin: star: %w", err)
		}
		next, err := Union(acc, step)
		if err != nil {
			return SemilinearSet{}, err
		}
		next = next.RemoveRedundant()
		covered, err := Subset(solver, next, acc)
		if err != nil {
			return SemilinearSet{}, fmt.Errorf("semilin: star: %w", err)
		}
		acc = next
		if covered {
			return acc, nil
		}
	}
	return SemilinearSet{}, fmt.Errorf("semilin: star: did not converge within %d iterations", maxIter)
}

// Identity returns the identity relation over base: {(pre, post) | post = pre}.
// Atomic relation constructors outside this package (package dsl's untouched
// dimensions, for instance) build on the same generator shape, so it is
// exported rather than re-derived at each call site.
func Identity(base *schema.Schema) SemilinearSet {
	return identityRelation(base)
}

func identityRelation(base *schema.Schema) SemilinearSet {
	doubled := base.Doubled()
	b := schema.Zero(doubled)
	var periods []schema.Vector
	for _, d := range base.Dims() {
		unit, _ := schema.Unit(doubled, d.Name+"$pre")
		unit = unit.Set(d.Name+"$post", 1)
		periods = append(periods, unit)
	}
	return SemilinearSet{Schema: doubled, Components: []LinearSet{{Schema: doubled, Base: b, Periods: periods}}}
}

// Subset reports whether a ⊆ b: b's complement is built implicitly by the
// solver as Exclude, and the query is feasible exactly when some point of a
// escapes b.
func Subset(solver Solver, a, b SemilinearSet) (bool, error) {
	ha, hb, err := Harmonize(a, b)
	if err != nil {
		return false, err
	}
	da, err := ha.ToDNF()
	if err != nil {
		return false, err
	}
	db, err := hb.ToDNF()
	if err != nil {
		return false, err
	}
	escapes, err := solver.Feasible(Query{Include: da, Exclude: []DNF{db}})
	if err != nil {
		return false, fmt.Errorf("semilin: subset: %w", err)
	}
	return !escapes, nil
}

// IsEmptyViaSolver decides emptiness of an arbitrary constraint formula
// (used after operations like Intersect build a DNF directly, before it has
// been canonicalized back to generator form).
func IsEmptyViaSolver(solver Solver, d DNF) (bool, error) {
	feasible, err := solver.Feasible(Query{Include: d})
	if err != nil {
		return false, fmt.Errorf("semilin: is_empty: %w", err)
	}
	return !feasible, nil
}
