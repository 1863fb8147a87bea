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

package certificate

import (
	"strconv"
	"strings"

	"github.com/serialcheck/engine/qerr"
	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

// ParseInvariant parses the oracle's invariant language (spec.md §4.8) into
// Presburger constraint form: disjuncts separated by "||", conjuncts by
// "&&", each literal an affine comparison over sch's dimension names, e.g.
//
//	balance >= 0 && 2*balance <= limit || locked = 1
//
// The grammar is deliberately small (no parentheses, no multiplication of
// two variables, since a Presburger literal is linear by definition) and
// is parsed with plain string splitting in the same style as dsl's guard
// parser, rather than a grammar/parser-combinator library -- none of the
// pack's dependencies offer one, and this sub-language is one order of
// magnitude smaller than what such a library would be for.
func ParseInvariant(sch *schema.Schema, text string) (semilin.DNF, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == "true" {
		return semilin.DNF{Schema: sch, Conjuncts: []semilin.Conjunct{{}}}, nil
	}
	out := semilin.DNF{Schema: sch}
	for _, part := range strings.Split(text, "||") {
		conj, err := parseConjunct(sch, part)
		if err != nil {
			return semilin.DNF{}, err
		}
		out.Conjuncts = append(out.Conjuncts, conj)
	}
	return out, nil
}

func parseConjunct(sch *schema.Schema, s string) (semilin.Conjunct, error) {
	var out semilin.Conjunct
	for _, lit := range strings.Split(s, "&&") {
		l, err := parseLiteral(sch, lit)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// invariantOps lists comparison tokens longest-first so "<=" is recognized
// before the "<" it contains.
var invariantOps = []struct {
	token string
	op    semilin.Op
}{
	{"<=", semilin.Leq},
	{">=", semilin.Geq},
	{"!=", semilin.Neq},
	{"==", semilin.Eq},
	{"<", semilin.Lt},
	{">", semilin.Gt},
	{"=", semilin.Eq},
}

func parseLiteral(sch *schema.Schema, s string) (semilin.Literal, error) {
	s = strings.TrimSpace(s)
	for _, cand := range invariantOps {
		idx := strings.Index(s, cand.token)
		if idx < 0 {
			continue
		}
		lhs, lhsConst, err := parseAffine(sch, s[:idx])
		if err != nil {
			return semilin.Literal{}, err
		}
		rhs, rhsConst, err := parseAffine(sch, s[idx+len(cand.token):])
		if err != nil {
			return semilin.Literal{}, err
		}
		coeffs := schema.Zero(sch)
		for _, d := range sch.Dims() {
			coeffs = coeffs.Set(d.Name, lhs[d.Name]-rhs[d.Name])
		}
		return semilin.Literal{Coeffs: coeffs, Op: cand.op, Const: rhsConst - lhsConst}, nil
	}
	return semilin.Literal{}, qerr.Parse("invariant", "no comparison operator in %q", s)
}

func parseAffine(sch *schema.Schema, s string) (map[string]int64, int64, error) {
	coeffs := map[string]int64{}
	var constant int64
	s = strings.TrimSpace(s)
	if s == "" {
		return coeffs, 0, nil
	}
	for _, term := range splitSigned(s) {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		sign := int64(1)
		switch {
		case strings.HasPrefix(term, "-"):
			sign, term = -1, term[1:]
		case strings.HasPrefix(term, "+"):
			term = term[1:]
		}
		term = strings.TrimSpace(term)

		name, coeff, isVar := splitCoeffVar(term)
		if !isVar {
			n, err := strconv.ParseInt(term, 10, 64)
			if err != nil {
				return nil, 0, qerr.Parse("invariant", "malformed term %q", term)
			}
			constant += sign * n
			continue
		}
		if !sch.Has(name) {
			return nil, 0, qerr.Parse("invariant", "unknown variable %q", name)
		}
		coeffs[name] += sign * coeff
	}
	return coeffs, constant, nil
}

// splitSigned splits s on every internal '+' or '-', keeping the sign
// attached to the term that follows it. The very first character is never
// treated as a split point, so a leading "-x" stays one term.
func splitSigned(s string) []string {
	var terms []string
	start := 0
	for i := 1; i < len(s); i++ {
		if s[i] == '+' || s[i] == '-' {
			terms = append(terms, s[start:i])
			start = i
		}
	}
	return append(terms, s[start:])
}

// splitCoeffVar recognizes "coeff*name" or a bare "name", returning
// isVar=false for a term that is just an integer constant.
func splitCoeffVar(term string) (name string, coeff int64, isVar bool) {
	if idx := strings.Index(term, "*"); idx >= 0 {
		c, err := strconv.ParseInt(strings.TrimSpace(term[:idx]), 10, 64)
		if err != nil {
			return "", 0, false
		}
		return strings.TrimSpace(term[idx+1:]), c, true
	}
	if _, err := strconv.ParseInt(term, 10, 64); err == nil {
		return "", 0, false
	}
	return term, 1, true
}

// dnfHolds reports whether x satisfies some conjunct of d.
func dnfHolds(d semilin.DNF, x schema.Vector) bool {
	for _, c := range d.Conjuncts {
		if c.Holds(x) {
			return true
		}
	}
	return false
}

// embedDNF re-expresses every literal of d, defined over the plain global
// schema, onto doubled's pre- or post- half by appending suffix to each
// dimension name -- the rename package semilin's own renameSuffix performs
// internally for relations, done by hand here since that helper is
// unexported and this package only ever needs it for one DNF at a time.
func embedDNF(d semilin.DNF, doubled *schema.Schema, suffix string) semilin.DNF {
	out := semilin.DNF{Schema: doubled, Exists: d.Exists}
	for _, c := range d.Conjuncts {
		nc := make(semilin.Conjunct, len(c))
		for i, l := range c {
			nc[i] = renameLiteral(l, doubled, suffix)
		}
		out.Conjuncts = append(out.Conjuncts, nc)
	}
	return out
}

func renameLiteral(l semilin.Literal, doubled *schema.Schema, suffix string) semilin.Literal {
	coeffs := schema.Zero(doubled)
	for _, d := range l.Coeffs.Schema.Dims() {
		coeffs = coeffs.Set(d.Name+suffix, l.Coeffs.At(d.Name))
	}
	l.Coeffs = coeffs
	return l
}

// crossAnd distributes AND over two DNFs' disjunctions: (a₁∨a₂∨...) ∧
// (b₁∨b₂∨...) = (a₁∧b₁) ∨ (a₁∧b₂) ∨ ....
func crossAnd(a, b semilin.DNF) (semilin.DNF, error) {
	sch, err := schema.Union(a.Schema, b.Schema)
	if err != nil {
		return semilin.DNF{}, err
	}
	out := semilin.DNF{Schema: sch, Exists: append(append([]string{}, a.Exists...), b.Exists...)}
	for _, ca := range a.Conjuncts {
		for _, cb := range b.Conjuncts {
			merged := make(semilin.Conjunct, 0, len(ca)+len(cb))
			merged = append(merged, ca...)
			merged = append(merged, cb...)
			out.Conjuncts = append(out.Conjuncts, merged)
		}
	}
	return out, nil
}
