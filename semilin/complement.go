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

import "github.com/serialcheck/engine/schema"

// Complement returns the constraint formula for every point d does not
// accept, by De Morgan: ¬(C₁ ∨ C₂ ∨ …) = ¬C₁ ∧ ¬C₂ ∧ …, and within one
// conjunct ¬(l₁ ∧ l₂ ∧ …) = ¬l₁ ∨ ¬l₂ ∨ …. Negating one literal flips its
// comparison operator (a single literal for every Op but ModEq, which
// expands to one literal per excluded residue class).
//
// d must already have its existential bookkeeping dimensions (d.Exists)
// eliminated -- negating an existentially-quantified formula is not itself
// existential in general, and this package's only caller (a coordinator
// complementing Seq, spec.md §4.6) only ever calls it after EvaluateAt has
// already projected those away.
func Complement(d DNF) DNF {
	if len(d.Conjuncts) == 0 {
		return DNF{Schema: d.Schema, Conjuncts: []Conjunct{{}}}
	}
	acc := negateConjunct(d.Schema, d.Conjuncts[0])
	for _, c := range d.Conjuncts[1:] {
		acc = andDNF(acc, negateConjunct(d.Schema, c))
	}
	acc.Schema = d.Schema
	return acc
}

// negateConjunct returns the DNF for ¬c: an empty conjunct (accepting
// everything) negates to no conjuncts (accepting nothing), and vice versa.
func negateConjunct(sch *schema.Schema, c Conjunct) DNF {
	if len(c) == 0 {
		return DNF{Schema: sch}
	}
	out := DNF{Schema: sch}
	for _, lit := range c {
		for _, neg := range negateLiteral(lit) {
			out.Conjuncts = append(out.Conjuncts, Conjunct{neg})
		}
	}
	return out
}

func negateLiteral(l Literal) []Literal {
	switch l.Op {
	case Eq:
		return []Literal{{Coeffs: l.Coeffs, Op: Neq, Const: l.Const}}
	case Neq:
		return []Literal{{Coeffs: l.Coeffs, Op: Eq, Const: l.Const}}
	case Leq:
		return []Literal{{Coeffs: l.Coeffs, Op: Gt, Const: l.Const}}
	case Lt:
		return []Literal{{Coeffs: l.Coeffs, Op: Geq, Const: l.Const}}
	case Geq:
		return []Literal{{Coeffs: l.Coeffs, Op: Lt, Const: l.Const}}
	case Gt:
		return []Literal{{Coeffs: l.Coeffs, Op: Leq, Const: l.Const}}
	case ModEq:
		modulus := l.Modulus
		if modulus <= 0 {
			modulus = 1
		}
		residue := ((l.Const % modulus) + modulus) % modulus
		var out []Literal
		for r := int64(0); r < modulus; r++ {
			if r == residue {
				continue
			}
			out = append(out, Literal{Coeffs: l.Coeffs, Op: ModEq, Const: r, Modulus: modulus})
		}
		return out
	default:
		return nil
	}
}

// andDNF AND-distributes two DNFs sharing one schema -- plain concatenation
// of conjuncts' literal lists, no renaming needed since Complement only
// ever combines conjuncts drawn from the same source DNF.
func andDNF(a, b DNF) DNF {
	if len(a.Conjuncts) == 0 {
		return a
	}
	if len(b.Conjuncts) == 0 {
		return b
	}
	out := DNF{Schema: a.Schema}
	for _, ca := range a.Conjuncts {
		for _, cb := range b.Conjuncts {
			out.Conjuncts = append(out.Conjuncts, append(append(Conjunct(nil), ca...), cb...))
		}
	}
	return out
}
