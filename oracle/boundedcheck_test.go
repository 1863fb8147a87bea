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
	"testing"

	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New(schema.Dim{Name: "x", Kind: schema.Global})
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return s
}

func TestConjunctRefutedDetectsConflictingEqualities(t *testing.T) {
	s := testSchema(t)
	coeffs, _ := schema.Unit(s, "x")
	c := semilin.Conjunct{
		{Coeffs: coeffs, Op: semilin.Eq, Const: 1},
		{Coeffs: coeffs, Op: semilin.Eq, Const: 2},
	}
	if !conjunctRefuted(c) {
		t.Error("expected conjunct pinning x=1 and x=2 to be refuted")
	}
}

func TestConjunctRefutedAllowsConsistentLiterals(t *testing.T) {
	s := testSchema(t)
	coeffs, _ := schema.Unit(s, "x")
	c := semilin.Conjunct{
		{Coeffs: coeffs, Op: semilin.Geq, Const: 0},
		{Coeffs: coeffs, Op: semilin.Leq, Const: 10},
	}
	if conjunctRefuted(c) {
		t.Error("0 <= x <= 10 should not be refuted")
	}
}

func TestBoundedSolverFindsSmallWitness(t *testing.T) {
	s := testSchema(t)
	coeffs, _ := schema.Unit(s, "x")
	q := semilin.Query{Include: semilin.DNF{
		Schema:    s,
		Conjuncts: []semilin.Conjunct{{{Coeffs: coeffs, Op: semilin.Eq, Const: 3}}},
	}}
	solver := NewBoundedSolver(4)
	ok, err := solver.Feasible(q)
	if err != nil {
		t.Fatalf("Feasible: %v", err)
	}
	if !ok {
		t.Error("x = 3 should be feasible within bound 4")
	}
}

func TestBoundedSolverRefutesDisjointConjuncts(t *testing.T) {
	s := testSchema(t)
	coeffs, _ := schema.Unit(s, "x")
	q := semilin.Query{Include: semilin.DNF{
		Schema: s,
		Conjuncts: []semilin.Conjunct{{
			{Coeffs: coeffs, Op: semilin.Eq, Const: 1},
			{Coeffs: coeffs, Op: semilin.Eq, Const: 2},
		}},
	}}
	solver := NewBoundedSolver(4)
	ok, err := solver.Feasible(q)
	if err != nil {
		t.Fatalf("Feasible: %v", err)
	}
	if ok {
		t.Error("self-contradictory conjunct should be infeasible")
	}
}
