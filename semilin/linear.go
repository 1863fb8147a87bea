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

// LinearSet is a generator-form linear set {base + Σ nᵢ·periodᵢ | nᵢ ∈ ℕ}
// (spec.md §4.1, GLOSSARY "linear set"). It is the representation produced
// by the Kleene evaluator and consumed by the Petri translator; DNF
// (constraint form) is used internally by operations that need the oracle.
type LinearSet struct {
	Schema  *schema.Schema
	Base    schema.Vector
	Periods []schema.Vector
}

// NewLinearSet validates that base and every period share sch and returns a
// LinearSet. Periods may be empty (a single point).
func NewLinearSet(sch *schema.Schema, base schema.Vector, periods []schema.Vector) LinearSet {
	return LinearSet{Schema: sch, Base: base, Periods: append([]schema.Vector(nil), periods...)}
}

// Embed re-expresses l over a larger schema, inserting zero columns.
func (l LinearSet) Embed(target *schema.Schema) LinearSet {
	periods := make([]schema.Vector, len(l.Periods))
	for i, p := range l.Periods {
		periods[i] = p.Embed(target)
	}
	return LinearSet{Schema: target, Base: l.Base.Embed(target), Periods: periods}
}

// Contains reports whether x is exactly reachable by some small combination
// of non-negative multipliers up to bound. It is a bounded membership check
// used by tests and by the bounded SAT pre-filter (package oracle); it is
// not a general decision procedure (that requires the Solver).
func (l LinearSet) Contains(x schema.Vector, bound int64) bool {
	return searchCombination(l.Base, l.Periods, x, bound)
}

func searchCombination(acc schema.Vector, periods []schema.Vector, target schema.Vector, bound int64) bool {
	if len(periods) == 0 {
		return acc.Equal(target)
	}
	p := periods[0]
	for n := int64(0); n <= bound; n++ {
		next := acc.Add(p.Scale(n))
		if searchCombination(next, periods[1:], target, bound) {
			return true
		}
	}
	return false
}

// multiplierName returns the existential dimension name for the i'th period
// multiplier of a linear set whose generator-form encoding is tagged ns.
func multiplierName(ns string, i int) string {
	return fmt.Sprintf("$%s_n%d", ns, i)
}

// ToConjunct encodes l's generator-form definition as a constraint conjunct
// over an extended schema that adds one fresh existential multiplier
// dimension per period: x = base + Σ nᵢ·periodᵢ, nᵢ ≥ 0. ns namespaces the
// multiplier dimensions so that several linear sets can be encoded into the
// same extended schema (e.g. during intersect) without collision.
func (l LinearSet) ToConjunct(ns string) (Conjunct, *schema.Schema, error) {
	extra := make([]schema.Dim, len(l.Periods))
	for i := range l.Periods {
		extra[i] = schema.Dim{Name: multiplierName(ns, i), Kind: schema.Local}
	}
	ext, err := schema.New(append(append([]schema.Dim(nil), l.Schema.Dims()...), extra...)...)
	if err != nil {
		return nil, nil, fmt.Errorf("semilin: encode linear set %s: %w", ns, err)
	}

	base := l.Base.Embed(ext)
	var out Conjunct
	for _, d := range l.Schema.Dims() {
		coeffs := schema.Zero(ext).Set(d.Name, 1)
		for i, p := range l.Periods {
			coeffs = coeffs.Set(multiplierName(ns, i), -p.At(d.Name))
		}
		out = append(out, Literal{Coeffs: coeffs, Op: Eq, Const: base.At(d.Name)})
	}
	for i := range l.Periods {
		mult, _ := schema.Unit(ext, multiplierName(ns, i))
		out = append(out, Literal{Coeffs: mult, Op: Geq, Const: 0})
	}
	return out, ext, nil
}

func (l LinearSet) String() string {
	parts := make([]string, 0, len(l.Periods))
	for _, p := range l.Periods {
		parts = append(parts, p.String())
	}
	if len(parts) == 0 {
		return l.Base.String()
	}
	return fmt.Sprintf("%s + ℕ·{%s}", l.Base, strings.Join(parts, ", "))
}
