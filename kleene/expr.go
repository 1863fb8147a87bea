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

// Package kleene evaluates a per-request Kleene expression over atomic
// relations into a single semilinear summary relation, bottom-up (spec.md
// §4.3). The expression tree is built by package dsl's AST lowering; this
// package only knows about union, concatenation, and star of already-built
// relations, plus the optimization switches of spec.md §4.7 that shape how
// those three operations are evaluated.
package kleene

import (
	"fmt"
	"strings"

	"github.com/serialcheck/engine/semilin"
)

// Expr is a node of a Kleene expression over atomic relations.
type Expr interface {
	isExpr()
	String() string
}

// AtomExpr wraps an already-built relation -- typically an atomic relation
// from package dsl's lowering of a single statement, or an `assume p`
// relation from an If/While guard.
type AtomExpr struct {
	Label    string
	Relation semilin.SemilinearSet
}

func (AtomExpr) isExpr() {}

// Atom wraps r as a leaf expression. label is used only for String().
func Atom(label string, r semilin.SemilinearSet) Expr {
	return AtomExpr{Label: label, Relation: r}
}

func (a AtomExpr) String() string {
	if a.Label != "" {
		return a.Label
	}
	return a.Relation.String()
}

// UnionExpr is the n-ary disjunction of its terms.
type UnionExpr struct{ Terms []Expr }

func (UnionExpr) isExpr() {}

// UnionOf builds a UnionExpr. A single term is returned unwrapped.
func UnionOf(terms ...Expr) Expr {
	if len(terms) == 1 {
		return terms[0]
	}
	return UnionExpr{Terms: terms}
}

func (u UnionExpr) String() string {
	parts := make([]string, len(u.Terms))
	for i, t := range u.Terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " ∪ ") + ")"
}

// ConcatExpr is the ordered sequential composition of its terms.
// Concatenation is not commutative, so, unlike UnionExpr, its term order is
// never reordered by the optimization layer.
type ConcatExpr struct{ Terms []Expr }

func (ConcatExpr) isExpr() {}

// ConcatOf builds a ConcatExpr. A single term is returned unwrapped.
func ConcatOf(terms ...Expr) Expr {
	if len(terms) == 1 {
		return terms[0]
	}
	return ConcatExpr{Terms: terms}
}

func (c ConcatExpr) String() string {
	parts := make([]string, len(c.Terms))
	for i, t := range c.Terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " ; ") + ")"
}

// StarExpr is the Kleene star (reflexive-transitive closure) of Body.
type StarExpr struct{ Body Expr }

func (StarExpr) isExpr() {}

// StarOf wraps body in a StarExpr.
func StarOf(body Expr) Expr { return StarExpr{Body: body} }

func (s StarExpr) String() string { return fmt.Sprintf("(%s)*", s.Body) }
