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

package dsl

import (
	"testing"

	"github.com/serialcheck/engine/kleene"
	"github.com/serialcheck/engine/qerr"
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

func globalSchema(t *testing.T, names ...string) *schema.Schema {
	t.Helper()
	dims := make([]schema.Dim, len(names))
	for i, n := range names {
		dims[i] = schema.Dim{Name: n, Kind: schema.Global}
	}
	s, err := schema.New(dims...)
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return s
}

func TestLowerWriteGlobalBuildsAffineRelation(t *testing.T) {
	base := globalSchema(t, "x")
	body := WriteGlobal{Var: "x", Value: Add{L: Read{Var: "x"}, R: Const{N: 1}}}

	expr, err := Lower(base, body)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	rel, err := kleene.Eval(bruteSolver{bound: 6}, base, kleene.DefaultConfig(), expr)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(rel.Components) != 1 {
		t.Fatalf("want 1 component, got %d", len(rel.Components))
	}
	c := rel.Components[0]
	if c.Base.At("x$post") != 1 {
		t.Errorf("base x$post = %d, want 1", c.Base.At("x$post"))
	}
	foundCoupled := false
	for _, p := range c.Periods {
		if p.At("x$pre") == 1 && p.At("x$post") == 1 {
			foundCoupled = true
		}
	}
	if !foundCoupled {
		t.Errorf("expected a period coupling x$pre into x$post, got %v", c)
	}
}

func TestLowerIfProducesUnionOfBranches(t *testing.T) {
	base := globalSchema(t, "x")
	body := If{
		Cond: Eq{L: Read{Var: "x"}, R: Const{N: 0}},
		Then: WriteGlobal{Var: "x", Value: Const{N: 1}},
		Else: WriteGlobal{Var: "x", Value: Const{N: 2}},
	}

	expr, err := Lower(base, body)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	rel, err := kleene.Eval(bruteSolver{bound: 4}, base, kleene.DefaultConfig(), expr)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}

	doubled := base.Doubled()
	wantThen := schema.Zero(doubled).Set("x$pre", 0).Set("x$post", 1)
	wantElse := schema.Zero(doubled).Set("x$pre", 3).Set("x$post", 2)
	var hasThen, hasElse bool
	for _, c := range rel.Components {
		if c.Contains(wantThen, 4) {
			hasThen = true
		}
		if c.Contains(wantElse, 4) {
			hasElse = true
		}
	}
	if !hasThen {
		t.Errorf("then-branch point %v not reachable", wantThen)
	}
	if !hasElse {
		t.Errorf("else-branch point %v not reachable", wantElse)
	}
}

func TestLowerWhileWrapsBodyInStar(t *testing.T) {
	base := globalSchema(t, "x")
	body := While{
		Cond: Eq{L: Read{Var: "x"}, R: Const{N: 0}},
		Body: WriteGlobal{Var: "x", Value: Const{N: 1}},
	}
	expr, err := Lower(base, body)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	concat, ok := expr.(kleene.ConcatExpr)
	if !ok || len(concat.Terms) != 2 {
		t.Fatalf("Lower(While) = %T, want a 2-term ConcatExpr(loop, exit)", expr)
	}
	if _, ok := concat.Terms[0].(kleene.StarExpr); !ok {
		t.Errorf("first term = %T, want StarExpr", concat.Terms[0])
	}
}

func TestHoistRewritesNestedComparison(t *testing.T) {
	ls := &lowerState{base: globalSchema(t, "a", "b")}
	prefix, rewritten, err := ls.hoist(Eq{L: Eq{L: Read{Var: "a"}, R: Read{Var: "b"}}, R: Const{N: 1}})
	if err != nil {
		t.Fatalf("hoist: %v", err)
	}
	if len(prefix) != 1 {
		t.Fatalf("want 1 hoisted prefix statement, got %d", len(prefix))
	}
	if _, ok := rewritten.(Read); !ok {
		t.Errorf("rewritten node = %T, want Read of the fresh local", rewritten)
	}
	if _, ok := prefix[0].(If); !ok {
		t.Errorf("prefix[0] = %T, want an If defining the fresh local", prefix[0])
	}
}

func TestAssumeRelationRejectsNonUnitCoefficient(t *testing.T) {
	base := globalSchema(t, "x")
	aff := affineTerm{coeffs: map[string]int64{"x": 2}, constant: -4} // 2x - 4 = 0
	_, err := assumeRelation(base, aff, semilin.Eq)
	if err == nil {
		t.Fatal("expected an error for a non-unit coefficient condition")
	}
	qe, ok := qerr.As(err, qerr.SchemaError)
	if !ok {
		t.Fatalf("error = %v, want a SchemaError", err)
	}
	_ = qe
}

func TestSummarizeKeepsGlobalsAndReturnValue(t *testing.T) {
	base := globalSchema(t, "balance")
	req := Request{
		Name:   "deposit",
		Body:   WriteGlobal{Var: "balance", Value: Add{L: Read{Var: "balance"}, R: Const{N: 5}}},
		Return: Read{Var: "balance"},
	}
	rel, err := Summarize(bruteSolver{bound: 8}, kleene.DefaultConfig(), base, req)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !rel.Schema.Has("balance$pre") || !rel.Schema.Has("balance$post") {
		t.Errorf("summary schema %v missing balance$pre/balance$post", rel.Schema.Dims())
	}
}

func TestLowerSeqOfWritesComposesInOrder(t *testing.T) {
	base := globalSchema(t, "x")
	body := Seq{Stmts: []Node{
		WriteGlobal{Var: "x", Value: Const{N: 1}},
		WriteGlobal{Var: "x", Value: Add{L: Read{Var: "x"}, R: Const{N: 1}}},
	}}
	expr, err := Lower(base, body)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	rel, err := kleene.Eval(bruteSolver{bound: 6}, base, kleene.DefaultConfig(), expr)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	doubled := base.Doubled()
	want := schema.Zero(doubled).Set("x$pre", 0).Set("x$post", 2)
	found := false
	for _, c := range rel.Components {
		if c.Contains(want, 4) {
			found = true
		}
	}
	if !found {
		t.Errorf("sequential writes should reach x$post=2 from any x$pre, got %v", rel)
	}
}
