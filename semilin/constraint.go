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

// Package semilin implements the Presburger / semilinear set algebra of
// spec.md §4.1: linear sets, semilinear sets (unions of linear sets), and
// the operations (union, intersect, project, compose, star, harmonize,
// emptiness, subset, redundancy removal) that the rest of the pipeline is
// built from. Non-trivial decisions (feasibility, canonicalization after
// intersection) are delegated to a Solver, implemented outside this package
// by the oracle adapter (package oracle) so that semilin has no dependency
// on any particular external integer-set library.
package semilin

import (
	"fmt"

	"github.com/serialcheck/engine/schema"
)

// Op is the comparison operator of a linear Literal.
type Op int

const (
	Eq Op = iota
	Neq
	Leq
	Lt
	Geq
	Gt
	ModEq // Coeffs·x ≡ Const (mod Modulus)
)

func (o Op) String() string {
	switch o {
	case Eq:
		return "="
	case Neq:
		return "≠"
	case Leq:
		return "≤"
	case Lt:
		return "<"
	case Geq:
		return "≥"
	case Gt:
		return ">"
	case ModEq:
		return "≡"
	default:
		return "?"
	}
}

// Literal is a single affine (in)equality or modular constraint:
// Coeffs·x Op Const, read as a dot product over the literal's schema.
type Literal struct {
	Coeffs  schema.Vector
	Op      Op
	Const   int64
	Modulus int64 // only meaningful when Op == ModEq
}

// Holds reports whether the literal is satisfied by the point x. x must be
// embeddable onto the literal's schema (extra dimensions in x are ignored;
// missing ones read as zero, per schema.Vector.Embed semantics).
func (l Literal) Holds(x schema.Vector) bool {
	v := x.Embed(l.Coeffs.Schema)
	var dot int64
	for i := range v.Coeffs {
		dot += l.Coeffs.Coeffs[i] * v.Coeffs[i]
	}
	switch l.Op {
	case Eq:
		return dot == l.Const
	case Neq:
		return dot != l.Const
	case Leq:
		return dot <= l.Const
	case Lt:
		return dot < l.Const
	case Geq:
		return dot >= l.Const
	case Gt:
		return dot > l.Const
	case ModEq:
		if l.Modulus == 0 {
			return dot == l.Const
		}
		return ((dot-l.Const)%l.Modulus+l.Modulus)%l.Modulus == 0
	default:
		return false
	}
}

// Embed re-expresses l over a larger schema, matching schema.Vector.Embed.
func (l Literal) Embed(target *schema.Schema) Literal {
	l.Coeffs = l.Coeffs.Embed(target)
	return l
}

func (l Literal) String() string {
	if l.Op == ModEq {
		return fmt.Sprintf("(%s) %s %d (mod %d)", l.Coeffs, l.Op, l.Const, l.Modulus)
	}
	return fmt.Sprintf("(%s) %s %d", l.Coeffs, l.Op, l.Const)
}

// Conjunct is a conjunction (AND) of literals: one linear system, equivalent
// to a single LinearSet's defining constraints once its period multipliers
// are existentially quantified (see LinearSet.ToConjunct).
type Conjunct []Literal

// Embed re-expresses every literal of c over a larger schema.
func (c Conjunct) Embed(target *schema.Schema) Conjunct {
	out := make(Conjunct, len(c))
	for i, l := range c {
		out[i] = l.Embed(target)
	}
	return out
}

// Holds reports whether x satisfies every literal in c.
func (c Conjunct) Holds(x schema.Vector) bool {
	for _, l := range c {
		if !l.Holds(x) {
			return false
		}
	}
	return true
}

// DNF is a disjunction (OR) of conjuncts: the constraint-formula
// representation of a SemilinearSet (GLOSSARY: "expressively equivalent to
// semilinear sets").
type DNF struct {
	Schema   *schema.Schema
	Conjuncts []Conjunct
	// Exists lists dimensions of Schema that are existentially quantified
	// bookkeeping (e.g. star-period multipliers) rather than visible state
	// dimensions; callers projecting or stringifying a DNF for display
	// should normally eliminate these first.
	Exists []string
}
