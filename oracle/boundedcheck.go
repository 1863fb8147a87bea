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

package oracle

import (
	"github.com/irifrance/gini"
	"github.com/irifrance/gini/z"

	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

// BoundedSolver is a fast, incomplete pre-filter tried before the external
// integer-set oracle (spec.md §4.2, §4.7's "bidirectional pruning" family of
// cheap filters). It has two stages:
//
//  1. A propositional refutation pass: each conjunct's literals are asserted
//     as mandatory booleans in a gini instance, with conflict clauses added
//     between pairs of literals that are syntactically contradictory (same
//     affine combination pinned to incompatible values). A conjunct whose
//     boolean skeleton is already unsatisfiable can be dropped without ever
//     touching the integers.
//  2. For conjuncts that survive stage one, a bounded brute-force search
//     over small non-negative integers, up to Bound per dimension.
//
// BoundedSolver never claims to decide a formula it cannot settle within its
// bound: Feasible returns ErrUnknown rather than a wrong answer, and callers
// (Handle) fall back to Z3Solver in that case.
type BoundedSolver struct {
	Bound int64
}

// NewBoundedSolver returns a BoundedSolver searching dimensions up to bound.
func NewBoundedSolver(bound int64) *BoundedSolver {
	return &BoundedSolver{Bound: bound}
}

// Feasible implements semilin.Solver.
func (b *BoundedSolver) Feasible(q semilin.Query) (bool, error) {
	var live []semilin.Conjunct
	for _, c := range q.Include.Conjuncts {
		if conjunctRefuted(c) {
			continue
		}
		live = append(live, c)
	}
	if len(live) == 0 {
		return false, nil
	}

	for _, c := range live {
		witness, ok := searchConjunct(c, b.Bound)
		if !ok {
			continue
		}
		if excluded(witness, q.Exclude) {
			continue
		}
		return true, nil
	}
	return false, ErrUnknown
}

// Solve implements semilin.Solver.
func (b *BoundedSolver) Solve(sch *schema.Schema, c semilin.Conjunct) (schema.Vector, bool, error) {
	if conjunctRefuted(c) {
		return schema.Vector{}, false, nil
	}
	witness, ok := searchConjunct(c, b.Bound)
	if !ok {
		return schema.Vector{}, false, ErrUnknown
	}
	return witness, true, nil
}

// Canonicalize implements semilin.Solver. BoundedSolver cannot generalize a
// witness into periods reliably within a bounded search, so it always
// reports ErrUnknown and lets the caller fall back to Z3Solver.
func (b *BoundedSolver) Canonicalize(semilin.DNF, []schema.Vector) (*semilin.SemilinearSet, error) {
	return nil, ErrUnknown
}

// conjunctRefuted reports whether c's literals are propositionally
// contradictory regardless of the integers involved, using gini to solve the
// boolean skeleton: one mandatory variable per literal, plus a conflict
// clause for every pair of literals that pin the same affine combination to
// values that cannot both hold.
func conjunctRefuted(c semilin.Conjunct) bool {
	if len(c) < 2 {
		return false
	}
	g := gini.New()
	vars := make([]z.Lit, len(c))
	for i := range c {
		vars[i] = z.Dimacs2Lit(i + 1)
		g.Add(vars[i])
		g.Add(0)
	}
	for i := 0; i < len(c); i++ {
		for j := i + 1; j < len(c); j++ {
			if literalsConflict(c[i], c[j]) {
				g.Add(vars[i].Not())
				g.Add(vars[j].Not())
				g.Add(0)
			}
		}
	}
	return g.Solve() == -1
}

func literalsConflict(a, b semilin.Literal) bool {
	if !a.Coeffs.Equal(b.Coeffs) {
		return false
	}
	switch {
	case a.Op == semilin.Eq && b.Op == semilin.Eq:
		return a.Const != b.Const
	case a.Op == semilin.Eq && b.Op == semilin.Neq, a.Op == semilin.Neq && b.Op == semilin.Eq:
		return a.Const == b.Const
	case a.Op == semilin.Leq && b.Op == semilin.Geq:
		return a.Const < b.Const
	case a.Op == semilin.Geq && b.Op == semilin.Leq:
		return b.Const < a.Const
	case a.Op == semilin.Lt && b.Op == semilin.Geq:
		return a.Const <= b.Const
	case a.Op == semilin.Geq && b.Op == semilin.Lt:
		return b.Const <= a.Const
	default:
		return false
	}
}

func searchConjunct(c semilin.Conjunct, bound int64) (schema.Vector, bool) {
	if len(c) == 0 {
		return schema.Vector{}, false
	}
	sch := c[0].Coeffs.Schema
	var found schema.Vector
	ok := boundedSearch(sch, c, 0, schema.Zero(sch), bound, &found)
	return found, ok
}

func boundedSearch(sch *schema.Schema, c semilin.Conjunct, dim int, acc schema.Vector, bound int64, out *schema.Vector) bool {
	if dim == sch.Len() {
		if c.Holds(acc) {
			*out = acc
			return true
		}
		return false
	}
	for v := int64(0); v <= bound; v++ {
		next := acc.Copy()
		next.Coeffs[dim] = v
		if boundedSearch(sch, c, dim+1, next, bound, out) {
			return true
		}
	}
	return false
}

func excluded(x schema.Vector, sets []semilin.DNF) bool {
	for _, d := range sets {
		for _, c := range d.Conjuncts {
			if c.Holds(x) {
				return true
			}
		}
	}
	return false
}
