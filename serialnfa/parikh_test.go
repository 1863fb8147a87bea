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
	"testing"

	"github.com/serialcheck/engine/kleene"
	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

// bruteSolver is a bounded, brute-force semilin.Solver for this package's
// own tests; production solvers live in package oracle.
type bruteSolver struct{ bound int64 }

func (b bruteSolver) Feasible(q semilin.Query) (bool, error) {
	return b.search(q.Include, q.Exclude, 0, schema.Zero(q.Include.Schema)), nil
}

func (b bruteSolver) search(inc semilin.DNF, exc []semilin.DNF, dim int, acc schema.Vector) bool {
	if dim == inc.Schema.Len() {
		ok := false
		for _, c := range inc.Conjuncts {
			if c.Holds(acc) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
		for _, e := range exc {
			for _, c := range e.Conjuncts {
				if c.Holds(acc) {
					return false
				}
			}
		}
		return true
	}
	for v := int64(0); v <= b.bound; v++ {
		next := acc.Copy()
		next.Coeffs[dim] = v
		if b.search(inc, exc, dim+1, next) {
			return true
		}
	}
	return false
}

func (b bruteSolver) Solve(sch *schema.Schema, c semilin.Conjunct) (schema.Vector, bool, error) {
	var found schema.Vector
	ok := b.searchOne(sch, c, 0, schema.Zero(sch), &found)
	return found, ok, nil
}

func (b bruteSolver) searchOne(sch *schema.Schema, c semilin.Conjunct, dim int, acc schema.Vector, out *schema.Vector) bool {
	if dim == sch.Len() {
		if c.Holds(acc) {
			*out = acc
			return true
		}
		return false
	}
	for v := int64(0); v <= b.bound; v++ {
		next := acc.Copy()
		next.Coeffs[dim] = v
		if b.searchOne(sch, c, dim+1, next, out) {
			return true
		}
	}
	return false
}

func (b bruteSolver) Canonicalize(d semilin.DNF, candidatePeriods []schema.Vector) (*semilin.SemilinearSet, error) {
	out := &semilin.SemilinearSet{Schema: d.Schema}
	for _, c := range d.Conjuncts {
		witness, ok, err := b.Solve(d.Schema, c)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		var periods []schema.Vector
		for _, p := range candidatePeriods {
			pe := p.Embed(d.Schema)
			if c.Holds(witness.Add(pe)) && c.Holds(witness.Add(pe.Scale(2))) {
				periods = append(periods, pe)
			}
		}
		out.Components = append(out.Components, semilin.LinearSet{Schema: d.Schema, Base: witness, Periods: periods})
	}
	return out, nil
}

func incrementRelation(doubled *schema.Schema) semilin.SemilinearSet {
	base := schema.Zero(doubled).Set("x$post", 1)
	period := schema.Zero(doubled).Set("x$pre", 1).Set("x$post", 1)
	return semilin.SemilinearSet{
		Schema:     doubled,
		Components: []semilin.LinearSet{{Schema: doubled, Base: base, Periods: []schema.Vector{period}}},
	}
}

func globalSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New(schema.Dim{Name: "x", Kind: schema.Global})
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return s
}

func TestParikhImageOfIncrementIsMonotoneClosure(t *testing.T) {
	base := globalSchema(t)
	doubled := base.Doubled()
	summaries := []RequestSummary{{Name: "incr", Summary: incrementRelation(doubled)}}

	seq, err := ParikhImage(bruteSolver{bound: 6}, base, kleene.DefaultConfig(), summaries)
	if err != nil {
		t.Fatalf("ParikhImage: %v", err)
	}

	noop := schema.Zero(doubled).Set("x$pre", 2).Set("x$post", 2)
	forward := schema.Zero(doubled).Set("x$pre", 2).Set("x$post", 5)
	backward := schema.Zero(doubled).Set("x$pre", 5).Set("x$post", 2)

	if !containsPoint(seq, noop, 6) {
		t.Error("zero applications (no change) should be in Seq")
	}
	if !containsPoint(seq, forward, 6) {
		t.Error("three applications (x += 3) should be in Seq")
	}
	if containsPoint(seq, backward, 6) {
		t.Error("a decrease should never be in Seq, since increment never decreases x")
	}
}

func TestParikhImageOfNoRequestsIsIdentity(t *testing.T) {
	base := globalSchema(t)
	seq, err := ParikhImage(bruteSolver{bound: 4}, base, kleene.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("ParikhImage: %v", err)
	}
	doubled := base.Doubled()
	same := schema.Zero(doubled).Set("x$pre", 3).Set("x$post", 3)
	diff := schema.Zero(doubled).Set("x$pre", 3).Set("x$post", 4)
	if !containsPoint(seq, same, 4) {
		t.Error("empty request set should still permit the empty schedule (no change)")
	}
	if containsPoint(seq, diff, 4) {
		t.Error("empty request set should not permit any change")
	}
}

func TestSymbolsEnumeratesEveryComponent(t *testing.T) {
	base := globalSchema(t)
	doubled := base.Doubled()
	twoComponents := semilin.SemilinearSet{
		Schema: doubled,
		Components: []semilin.LinearSet{
			{Schema: doubled, Base: schema.Zero(doubled)},
			{Schema: doubled, Base: schema.Zero(doubled).Set("x$post", 1)},
		},
	}
	summaries := []RequestSummary{{Name: "r", Summary: twoComponents}}
	syms := Symbols(summaries)
	if len(syms) != 2 {
		t.Fatalf("want 2 symbols, got %d", len(syms))
	}
	if syms[0] != (Symbol{Request: "r", Component: 0}) || syms[1] != (Symbol{Request: "r", Component: 1}) {
		t.Errorf("Symbols = %v", syms)
	}
}

func TestNonSerializableIsEmptyDecidesSubset(t *testing.T) {
	base := globalSchema(t)
	doubled := base.Doubled()
	seq := incrementRelation(doubled)

	solver := bruteSolver{bound: 6}
	inSeq := semilin.Point(schema.Zero(doubled).Set("x$pre", 1).Set("x$post", 2))
	empty, err := NonSerializableIsEmpty(solver, inSeq, seq)
	if err != nil {
		t.Fatalf("NonSerializableIsEmpty: %v", err)
	}
	if !empty {
		t.Error("a reachable set fully inside Seq should have an empty non-serializable difference")
	}

	outsideSeq := semilin.Point(schema.Zero(doubled).Set("x$pre", 2).Set("x$post", 1))
	empty, err = NonSerializableIsEmpty(solver, outsideSeq, seq)
	if err != nil {
		t.Fatalf("NonSerializableIsEmpty: %v", err)
	}
	if empty {
		t.Error("a point outside Seq should make the non-serializable difference non-empty")
	}
}

func containsPoint(s semilin.SemilinearSet, x schema.Vector, bound int64) bool {
	for _, c := range s.Components {
		if c.Contains(x, bound) {
			return true
		}
	}
	return false
}
