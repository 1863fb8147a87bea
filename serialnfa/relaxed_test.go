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

package serialnfa

import (
	"testing"

	"github.com/serialcheck/engine/kleene"
	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

func TestRelaxedReachOfSingleComponentMatchesParikh(t *testing.T) {
	base := globalSchema(t)
	doubled := base.Doubled()
	summaries := []RequestSummary{{Name: "incr", Summary: incrementRelation(doubled)}}
	solver := bruteSolver{bound: 6}

	seq, err := ParikhImage(solver, base, kleene.DefaultConfig(), summaries)
	if err != nil {
		t.Fatalf("ParikhImage: %v", err)
	}
	reach, err := RelaxedReach(solver, base, kleene.DefaultConfig(), summaries)
	if err != nil {
		t.Fatalf("RelaxedReach: %v", err)
	}

	forward := schema.Zero(doubled).Set("x$pre", 2).Set("x$post", 5)
	if !containsPoint(seq, forward, 6) || !containsPoint(reach, forward, 6) {
		t.Error("a single-component request should agree between Seq and the relaxed reachable set")
	}
}

func TestRelaxedReachContainsSeq(t *testing.T) {
	base := globalSchema(t)
	doubled := base.Doubled()
	solver := bruteSolver{bound: 6}

	// Two components of the same request: one that adds 1, one that adds 2,
	// unioned into a single disjunctive summary (e.g. an if/else branch).
	addOne := semilin.LinearSet{Schema: doubled, Base: schema.Zero(doubled).Set("x$post", 1)}
	addTwo := semilin.LinearSet{Schema: doubled, Base: schema.Zero(doubled).Set("x$post", 2)}
	summary := semilin.SemilinearSet{Schema: doubled, Components: []semilin.LinearSet{addOne, addTwo}}
	summaries := []RequestSummary{{Name: "req", Summary: summary}}

	seq, err := ParikhImage(solver, base, kleene.DefaultConfig(), summaries)
	if err != nil {
		t.Fatalf("ParikhImage: %v", err)
	}
	reach, err := RelaxedReach(solver, base, kleene.DefaultConfig(), summaries)
	if err != nil {
		t.Fatalf("RelaxedReach: %v", err)
	}

	subset, err := semilin.Subset(solver, seq, reach)
	if err != nil {
		t.Fatalf("semilin.Subset: %v", err)
	}
	if !subset {
		t.Error("Seq should always be contained in the relaxed reachable set")
	}
}

func TestRelaxedReachOfNoRequestsIsIdentity(t *testing.T) {
	base := globalSchema(t)
	doubled := base.Doubled()
	reach, err := RelaxedReach(bruteSolver{bound: 4}, base, kleene.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("RelaxedReach: %v", err)
	}
	same := schema.Zero(doubled).Set("x$pre", 3).Set("x$post", 3)
	diff := schema.Zero(doubled).Set("x$pre", 3).Set("x$post", 4)
	if !containsPoint(reach, same, 4) {
		t.Error("empty request set should still permit the empty schedule")
	}
	if containsPoint(reach, diff, 4) {
		t.Error("empty request set should not permit any change")
	}
}
