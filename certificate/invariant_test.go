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
	"testing"

	"github.com/serialcheck/engine/qerr"
	"github.com/serialcheck/engine/schema"
)

func invariantTestSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch, err := schema.New(
		schema.Dim{Name: "balance", Kind: schema.Global},
		schema.Dim{Name: "limit", Kind: schema.Global},
		schema.Dim{Name: "locked", Kind: schema.Global},
	)
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return sch
}

func TestParseInvariantEmptyAndTrueAreVacuous(t *testing.T) {
	sch := invariantTestSchema(t)
	for _, text := range []string{"", "true"} {
		dnf, err := ParseInvariant(sch, text)
		if err != nil {
			t.Fatalf("ParseInvariant(%q): %v", text, err)
		}
		if len(dnf.Conjuncts) != 1 || len(dnf.Conjuncts[0]) != 0 {
			t.Errorf("ParseInvariant(%q) = %+v, want one empty conjunct", text, dnf)
		}
		if !dnfHolds(dnf, schema.Zero(sch)) {
			t.Errorf("ParseInvariant(%q) should hold everywhere", text)
		}
	}
}

func TestParseInvariantSimpleLiteral(t *testing.T) {
	sch := invariantTestSchema(t)
	dnf, err := ParseInvariant(sch, "balance >= 0")
	if err != nil {
		t.Fatalf("ParseInvariant: %v", err)
	}
	if !dnfHolds(dnf, schema.Zero(sch).Set("balance", 5)) {
		t.Errorf("balance=5 should satisfy balance >= 0")
	}
	neg := schema.Zero(sch).Set("balance", -3)
	if dnfHolds(dnf, neg) {
		t.Errorf("balance=-3 should not satisfy balance >= 0")
	}
}

func TestParseInvariantConjunction(t *testing.T) {
	sch := invariantTestSchema(t)
	dnf, err := ParseInvariant(sch, "balance >= 0 && 2*balance <= limit")
	if err != nil {
		t.Fatalf("ParseInvariant: %v", err)
	}
	if len(dnf.Conjuncts) != 1 || len(dnf.Conjuncts[0]) != 2 {
		t.Fatalf("want one conjunct with two literals, got %+v", dnf)
	}
	ok := schema.Zero(sch).Set("balance", 3).Set("limit", 10)
	if !dnfHolds(dnf, ok) {
		t.Errorf("balance=3,limit=10 should satisfy both literals")
	}
	bad := schema.Zero(sch).Set("balance", 8).Set("limit", 10)
	if dnfHolds(dnf, bad) {
		t.Errorf("balance=8,limit=10 should fail 2*balance <= limit")
	}
}

func TestParseInvariantDisjunction(t *testing.T) {
	sch := invariantTestSchema(t)
	dnf, err := ParseInvariant(sch, "locked = 1 || balance >= 0")
	if err != nil {
		t.Fatalf("ParseInvariant: %v", err)
	}
	if len(dnf.Conjuncts) != 2 {
		t.Fatalf("want two disjuncts, got %d", len(dnf.Conjuncts))
	}
	lockedOnly := schema.Zero(sch).Set("locked", 1).Set("balance", -9)
	if !dnfHolds(dnf, lockedOnly) {
		t.Errorf("locked=1 should satisfy the disjunction regardless of balance")
	}
}

func TestParseInvariantAllComparisonOperators(t *testing.T) {
	sch := invariantTestSchema(t)
	cases := []struct {
		text string
		x    schema.Vector
		want bool
	}{
		{"balance <= 5", schema.Zero(sch).Set("balance", 5), true},
		{"balance <= 5", schema.Zero(sch).Set("balance", 6), false},
		{"balance >= 5", schema.Zero(sch).Set("balance", 5), true},
		{"balance != 5", schema.Zero(sch).Set("balance", 6), true},
		{"balance != 5", schema.Zero(sch).Set("balance", 5), false},
		{"balance == 5", schema.Zero(sch).Set("balance", 5), true},
		{"balance < 5", schema.Zero(sch).Set("balance", 4), true},
		{"balance < 5", schema.Zero(sch).Set("balance", 5), false},
		{"balance > 5", schema.Zero(sch).Set("balance", 6), true},
		{"balance = 5", schema.Zero(sch).Set("balance", 5), true},
	}
	for _, c := range cases {
		dnf, err := ParseInvariant(sch, c.text)
		if err != nil {
			t.Fatalf("ParseInvariant(%q): %v", c.text, err)
		}
		if got := dnfHolds(dnf, c.x); got != c.want {
			t.Errorf("ParseInvariant(%q) holds at %v = %v, want %v", c.text, c.x, got, c.want)
		}
	}
}

func TestParseInvariantMalformedTerm(t *testing.T) {
	sch := invariantTestSchema(t)
	if _, err := ParseInvariant(sch, "balance >= not_a_number"); err == nil {
		t.Fatal("want an error for a malformed term")
	} else if qe, ok := qerr.As(err, qerr.ParseError); !ok {
		t.Errorf("want a qerr.ParseError, got %T: %v", err, err)
	} else if qe.Location != "invariant" {
		t.Errorf("want Location=invariant, got %q", qe.Location)
	}
}

func TestParseInvariantUnknownVariable(t *testing.T) {
	sch := invariantTestSchema(t)
	if _, err := ParseInvariant(sch, "nonexistent >= 0"); err == nil {
		t.Fatal("want an error for an unknown variable")
	} else if _, ok := qerr.As(err, qerr.ParseError); !ok {
		t.Errorf("want a qerr.ParseError, got %T: %v", err, err)
	}
}

func TestParseInvariantNoOperator(t *testing.T) {
	sch := invariantTestSchema(t)
	if _, err := ParseInvariant(sch, "balance"); err == nil {
		t.Fatal("want an error for a literal with no comparison operator")
	}
}

func TestCrossAndDistributesOverDisjunctions(t *testing.T) {
	sch := invariantTestSchema(t)
	a, err := ParseInvariant(sch, "balance >= 0 || locked = 1")
	if err != nil {
		t.Fatalf("ParseInvariant: %v", err)
	}
	b, err := ParseInvariant(sch, "limit >= 10")
	if err != nil {
		t.Fatalf("ParseInvariant: %v", err)
	}
	out, err := crossAnd(a, b)
	if err != nil {
		t.Fatalf("crossAnd: %v", err)
	}
	if len(out.Conjuncts) != 2 {
		t.Fatalf("want 2 conjuncts (2 disjuncts x 1 disjunct), got %d", len(out.Conjuncts))
	}
	x := schema.Zero(sch).Set("balance", 3).Set("limit", 10)
	if !dnfHolds(out, x) {
		t.Errorf("balance=3,limit=10 should satisfy (balance>=0||locked=1) && limit>=10")
	}
	y := schema.Zero(sch).Set("balance", 3).Set("limit", 5)
	if dnfHolds(out, y) {
		t.Errorf("limit=5 should fail limit >= 10")
	}
}

func TestEmbedDNFRenamesToDoubledSchema(t *testing.T) {
	sch := invariantTestSchema(t)
	doubled := sch.Doubled()
	dnf, err := ParseInvariant(sch, "balance >= 1")
	if err != nil {
		t.Fatalf("ParseInvariant: %v", err)
	}
	pre := embedDNF(dnf, doubled, "$pre")
	if !doubled.Has("balance$pre") {
		t.Fatalf("doubled schema should carry balance$pre")
	}
	x := schema.Zero(doubled).Set("balance$pre", 7)
	if !dnfHolds(pre, x) {
		t.Errorf("balance$pre=7 should satisfy the renamed invariant")
	}
	y := schema.Zero(doubled).Set("balance$post", 7)
	if dnfHolds(pre, y) {
		t.Errorf("setting only balance$post should not satisfy a $pre-renamed invariant")
	}
}
