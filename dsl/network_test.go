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
	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

func TestParseGuardVariants(t *testing.T) {
	if g, err := parseGuard(""); err != nil || g != nil {
		t.Errorf("parseGuard(\"\") = (%v, %v), want (nil, nil)", g, err)
	}
	if g, err := parseGuard("true"); err != nil || g != nil {
		t.Errorf("parseGuard(true) = (%v, %v), want (nil, nil)", g, err)
	}
	g, err := parseGuard("x=1")
	if err != nil {
		t.Fatalf("parseGuard(x=1): %v", err)
	}
	eq, ok := g.(Eq)
	if !ok {
		t.Fatalf("parseGuard(x=1) = %T, want Eq", g)
	}
	if r, ok := eq.L.(Read); !ok || r.Var != "x" {
		t.Errorf("LHS = %v, want Read{x}", eq.L)
	}
	if c, ok := eq.R.(Const); !ok || c.N != 1 {
		t.Errorf("RHS = %v, want Const{1}", eq.R)
	}
	if _, err := parseGuard("not-an-equation"); err == nil {
		t.Error("expected an error for a malformed guard")
	}
}

func TestLoadNetworkSystemDecodesJSON(t *testing.T) {
	doc := []byte(`{
		"requests": [["deposit", "idle"]],
		"responses": [["idle", "ok"]],
		"transitions": [["idle", "", "idle", ""]]
	}`)
	ns, err := LoadNetworkSystem(doc)
	if err != nil {
		t.Fatalf("LoadNetworkSystem: %v", err)
	}
	if len(ns.Requests) != 1 || ns.Requests[0][0] != "deposit" || ns.Requests[0][1] != "idle" {
		t.Errorf("Requests = %v", ns.Requests)
	}
	if len(ns.Responses) != 1 || ns.Responses[0][1] != "ok" {
		t.Errorf("Responses = %v", ns.Responses)
	}
	if len(ns.Transitions) != 1 {
		t.Errorf("Transitions = %v", ns.Transitions)
	}
}

func TestLoadNetworkSystemRejectsMalformedJSON(t *testing.T) {
	if _, err := LoadNetworkSystem([]byte("not json")); err == nil {
		t.Error("expected a decode error")
	}
}

func TestLowerNetworkSystemSimplePathIsIdentity(t *testing.T) {
	base := globalSchema(t, "x")
	ns := &NetworkSystem{
		Requests:    [][2]string{{"req1", "A"}},
		Responses:   [][2]string{{"B", "ok"}},
		Transitions: [][4]string{{"A", "", "B", ""}},
	}
	exprs, err := LowerNetworkSystem(base, ns)
	if err != nil {
		t.Fatalf("LowerNetworkSystem: %v", err)
	}
	expr, ok := exprs["req1"]
	if !ok {
		t.Fatal("missing expression for req1")
	}
	rel, err := kleene.Eval(bruteSolver{bound: 4}, base, kleene.DefaultConfig(), expr)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	doubled := base.Doubled()
	same := schema.Zero(doubled).Set("x$pre", 2).Set("x$post", 2)
	diff := schema.Zero(doubled).Set("x$pre", 2).Set("x$post", 3)
	if !containsPoint(rel, same, 4) {
		t.Errorf("identity path should reach %v", same)
	}
	if containsPoint(rel, diff, 4) {
		t.Errorf("identity path should not change x, but reached %v", diff)
	}
}

func TestStateEliminationFoldsSelfLoopIntoStar(t *testing.T) {
	base := globalSchema(t, "x")
	ns := &NetworkSystem{
		Requests:  [][2]string{{"req", "A"}},
		Responses: [][2]string{{"B", "ok"}},
		Transitions: [][4]string{
			{"A", "", "A", ""}, // self loop
			{"A", "", "B", ""},
		},
	}
	exprs, err := LowerNetworkSystem(base, ns)
	if err != nil {
		t.Fatalf("LowerNetworkSystem: %v", err)
	}
	expr := exprs["req"]
	if !containsStar(expr) {
		t.Errorf("expected the self loop at A to introduce a star, got %s", expr)
	}
}

func containsPoint(rel semilin.SemilinearSet, x schema.Vector, bound int64) bool {
	for _, c := range rel.Components {
		if c.Contains(x, bound) {
			return true
		}
	}
	return false
}

func containsStar(e kleene.Expr) bool {
	switch v := e.(type) {
	case kleene.StarExpr:
		return true
	case kleene.UnionExpr:
		for _, t := range v.Terms {
			if containsStar(t) {
				return true
			}
		}
	case kleene.ConcatExpr:
		for _, t := range v.Terms {
			if containsStar(t) {
				return true
			}
		}
	}
	return false
}
