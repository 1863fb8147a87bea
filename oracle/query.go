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
	"fmt"
	"strings"

	"github.com/serialcheck/engine/semilin"
)

// opToken renders an Op as the ASCII comparison token the query XML uses,
// rather than semilin.Op's Unicode String() form, to keep the query file
// plain ASCII for the subprocess.
func opToken(op semilin.Op) string {
	switch op {
	case semilin.Eq:
		return "="
	case semilin.Neq:
		return "!="
	case semilin.Leq:
		return "<="
	case semilin.Lt:
		return "<"
	case semilin.Geq:
		return ">="
	case semilin.Gt:
		return ">"
	case semilin.ModEq:
		return "%="
	default:
		return "?"
	}
}

// WriteQuery renders target as the XML reachability query spec.md §6's
// smpt_constraints_disjunct_i.xml names: one <disjunct> per conjunct of
// target's constraint form, one <literal> per affine comparison, each
// literal's place names taken from placeOf (package petri's
// valuePlaceID convention, applied by the caller since this package must
// not import petri to stay a leaf of the oracle boundary). target is
// already the region to search for -- callers asking "can the net leave
// Seq" pass semilin.Complement(seq) here, not seq itself; this function has
// no opinion on which region it is. Built with plain string building in the
// same manual-emitter style as petri.ToDOT, rather than encoding/xml, since
// the pack carries no XML library and this format has no nesting beyond two
// levels.
func WriteQuery(target semilin.DNF, placeOf func(string) string) string {
	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\"?>\n<query>\n")
	for _, conj := range target.Conjuncts {
		sb.WriteString("  <disjunct>\n")
		for _, lit := range conj {
			writeLiteral(&sb, lit, placeOf)
		}
		sb.WriteString("  </disjunct>\n")
	}
	sb.WriteString("</query>\n")
	return sb.String()
}

func writeLiteral(sb *strings.Builder, lit semilin.Literal, placeOf func(string) string) {
	var terms []string
	for _, d := range lit.Coeffs.Schema.Dims() {
		coeff := lit.Coeffs.At(d.Name)
		if coeff == 0 {
			continue
		}
		terms = append(terms, fmt.Sprintf("%d*%s", coeff, placeOf(d.Name)))
	}
	expr := strings.Join(terms, "+")
	if expr == "" {
		expr = "0"
	}
	fmt.Fprintf(sb, "    <literal expr=%q op=%q const=\"%d\"", expr, opToken(lit.Op), lit.Const)
	if lit.Op == semilin.ModEq {
		fmt.Fprintf(sb, " mod=\"%d\"", lit.Modulus)
	}
	sb.WriteString("/>\n")
}
