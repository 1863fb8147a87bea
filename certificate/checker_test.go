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

	"github.com/serialcheck/engine/petri"
	"github.com/serialcheck/engine/qerr"
	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

// bruteSolver is a bounded, brute-force semilin.Solver for this package's
// own tests; production solvers live in package oracle.
type bruteSolver struct{ bound int64 }

func (b bruteSolver) Feasible(q semilin.Query) (bool, error) {
	return b.search(q.Include, q.Exclude, 0, schema.Zero(q.Include.Schema)), nil
}

func (b bruteSolver) search(inc semilin.DNF, exc []semilin.DNF, dim int, acc schema.Vector) bool {
	if dim == inc.Schema.Len() {
		ok := false
		for _, c := range inc.Conjuncts {
			if c.Holds(acc) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
		for _, e := range exc {
			for _, c := range e.Conjuncts {
				if c.Holds(acc) {
					return false
				}
			}
		}
		return true
	}
	for v := int64(0); v <= b.bound; v++ {
		next := acc.Copy()
		next.Coeffs[dim] = v
		if b.search(inc, exc, dim+1, next) {
			return true
		}
	}
	return false
}

func (b bruteSolver) Solve(sch *schema.Schema, c semilin.Conjunct) (schema.Vector, bool, error) {
	var found schema.Vector
	ok := b.searchOne(sch, c, 0, schema.Zero(sch), &found)
	return found, ok, nil
}

func (b bruteSolver) searchOne(sch *schema.Schema, c semilin.Conjunct, dim int, acc schema.Vector, out *schema.Vector) bool {
	if dim == sch.Len() {
		if c.Holds(acc) {
			*out = acc
			return true
		}
		return false
	}
	for v := int64(0); v <= b.bound; v++ {
		next := acc.Copy()
		next.Coeffs[dim] = v
		if b.searchOne(sch, c, dim+1, next, out) {
			return true
		}
	}
	return false
}

func (b bruteSolver) Canonicalize(d semilin.DNF, candidatePeriods []schema.Vector) (*semilin.SemilinearSet, error) {
	out := &semilin.SemilinearSet{Schema: d.Schema}
	for _, c := range d.Conjuncts {
		witness, ok, err := b.Solve(d.Schema, c)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out.Components = append(out.Components, semilin.LinearSet{Schema: d.Schema, Base: witness})
	}
	return out, nil
}

// checkerGlobalSchema returns a single-dimension "x" globals schema, shared
// by the invariant-obligation tests below.
func checkerGlobalSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch, err := schema.New(schema.Dim{Name: "x", Kind: schema.Global})
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return sch
}

// incrementTransition returns the doubled-schema relation {(n, n+1) : n >=
// 0}, the unconditional "x := x+1" atomic relation -- the same generator
// encoding used by package serialnfa's own tests: a base point plus one
// period that shifts pre and post together, so every non-negative pre has a
// matching post one greater.
func incrementTransition(doubled *schema.Schema) semilin.SemilinearSet {
	base := schema.Zero(doubled).Set("x$pre", 0).Set("x$post", 1)
	period := schema.Zero(doubled).Set("x$pre", 1).Set("x$post", 1)
	return semilin.SemilinearSet{Schema: doubled, Components: []semilin.LinearSet{
		{Schema: doubled, Base: base, Periods: []schema.Vector{period}},
	}}
}

func TestCheckInvariantAllObligationsSatisfied(t *testing.T) {
	sch := checkerGlobalSchema(t)
	doubled := sch.Doubled()
	solver := bruteSolver{bound: 8}

	initial := schema.Zero(sch).Set("x", 0)
	transitions := []semilin.SemilinearSet{incrementTransition(doubled)}
	target := semilin.Point(schema.Zero(sch).Set("x", -1))

	cert, err := CheckInvariant(solver, sch, initial, transitions, target, "x >= 0")
	if err != nil {
		t.Fatalf("CheckInvariant: %v", err)
	}
	if !cert.AllSatisfied() {
		t.Fatalf("want every obligation satisfied, got %+v", cert.Results)
	}
	if len(cert.Results) != 3 {
		t.Fatalf("want 3 obligations checked, got %d", len(cert.Results))
	}
}

func TestCheckInvariantFailsInitialMarking(t *testing.T) {
	sch := checkerGlobalSchema(t)
	doubled := sch.Doubled()
	solver := bruteSolver{bound: 8}

	initial := schema.Zero(sch).Set("x", 0)
	transitions := []semilin.SemilinearSet{incrementTransition(doubled)}
	target := semilin.Point(schema.Zero(sch).Set("x", -1))

	cert, err := CheckInvariant(solver, sch, initial, transitions, target, "x >= 1")
	if err == nil {
		t.Fatal("want an error when the invariant fails to hold at the initial state")
	}
	qe, ok := qerr.As(err, qerr.InvalidProof)
	if !ok {
		t.Fatalf("want a qerr.InvalidProof, got %T: %v", err, err)
	}
	if qe.Obligation != "initial_marking" {
		t.Errorf("want Obligation=initial_marking, got %q", qe.Obligation)
	}
	if cert.AllSatisfied() {
		t.Error("cert should record the failing obligation")
	}
}

func TestCheckInvariantFailsTransitionClosure(t *testing.T) {
	sch := checkerGlobalSchema(t)
	doubled := sch.Doubled()
	solver := bruteSolver{bound: 8}

	initial := schema.Zero(sch).Set("x", 0)
	transitions := []semilin.SemilinearSet{incrementTransition(doubled)}
	// x <= 3 holds at x=0 but the increment relation can reach x=4 from
	// x=3, leaving the claimed invariant's region.
	target := semilin.Point(schema.Zero(sch).Set("x", -1))

	cert, err := CheckInvariant(solver, sch, initial, transitions, target, "x <= 3")
	if err == nil {
		t.Fatal("want an error when the invariant is not closed under a transition")
	}
	qe, ok := qerr.As(err, qerr.InvalidProof)
	if !ok {
		t.Fatalf("want a qerr.InvalidProof, got %T: %v", err, err)
	}
	if qe.Obligation != "transition_closure" {
		t.Errorf("want Obligation=transition_closure, got %q", qe.Obligation)
	}
	first := cert.FirstFailure()
	if first == nil || first.Obligation != "transition_closure" {
		t.Errorf("cert.FirstFailure() = %+v, want transition_closure", first)
	}
}

func TestCheckInvariantFailsTargetExclusion(t *testing.T) {
	sch := checkerGlobalSchema(t)
	doubled := sch.Doubled()
	solver := bruteSolver{bound: 8}

	initial := schema.Zero(sch).Set("x", 0)
	transitions := []semilin.SemilinearSet{incrementTransition(doubled)}
	// The invariant x >= 0 holds initially and is closed under the
	// increment, but it permits x=5, and the target set is exactly x=5, so
	// they intersect.
	target := semilin.Point(schema.Zero(sch).Set("x", 5))

	_, err := CheckInvariant(solver, sch, initial, transitions, target, "x >= 0")
	if err == nil {
		t.Fatal("want an error when the invariant intersects the target set")
	}
	qe, ok := qerr.As(err, qerr.InvalidProof)
	if !ok {
		t.Fatalf("want a qerr.InvalidProof, got %T: %v", err, err)
	}
	if qe.Obligation != "target_exclusion" {
		t.Errorf("want Obligation=target_exclusion, got %q", qe.Obligation)
	}
}

// buildIncrementNet constructs a one-request aggregate-effect net whose
// single request "incr" has one component matching incrementTransition,
// for exercising CheckCounterexample against a real petri.PetriNet.
func buildIncrementNet(t *testing.T) (*petri.PetriNet, *schema.Schema) {
	t.Helper()
	sch := checkerGlobalSchema(t)
	doubled := sch.Doubled()
	summary := semilin.SemilinearSet{Schema: doubled, Components: []semilin.LinearSet{
		{Schema: doubled, Base: schema.Zero(doubled).Set("x$pre", 0).Set("x$post", 1)},
	}}
	net, err := petri.Build(sch, []petri.RequestSummary{{Name: "incr", Summary: summary}})
	if err != nil {
		t.Fatalf("petri.Build: %v", err)
	}
	return net, sch
}

func TestCheckCounterexampleReplaysToTarget(t *testing.T) {
	net, _ := buildIncrementNet(t)
	init := net.InitialMarking(map[string]int64{"v:x": 0, "c:incr#0": 1})

	cert, err := CheckCounterexample(net, init, []string{"c:incr#0_base"}, map[string]int64{"x": 1})
	if err != nil {
		t.Fatalf("CheckCounterexample: %v", err)
	}
	if !cert.AllSatisfied() {
		t.Fatalf("want the replay to satisfy the claimed target, got %+v", cert.Results)
	}
}

func TestCheckCounterexampleFailsOnBadTransitionID(t *testing.T) {
	net, _ := buildIncrementNet(t)
	init := net.InitialMarking(map[string]int64{"v:x": 0, "c:incr#0": 1})

	_, err := CheckCounterexample(net, init, []string{"not_a_real_transition"}, map[string]int64{"x": 1})
	if err == nil {
		t.Fatal("want an error for a firing sequence naming a nonexistent transition")
	}
	qe, ok := qerr.As(err, qerr.InvalidProof)
	if !ok {
		t.Fatalf("want a qerr.InvalidProof, got %T: %v", err, err)
	}
	if qe.Obligation != "counterexample_replay" {
		t.Errorf("want Obligation=counterexample_replay, got %q", qe.Obligation)
	}
}

func TestCheckCounterexampleFailsOnTargetMismatch(t *testing.T) {
	net, _ := buildIncrementNet(t)
	init := net.InitialMarking(map[string]int64{"v:x": 0, "c:incr#0": 1})

	cert, err := CheckCounterexample(net, init, []string{"c:incr#0_base"}, map[string]int64{"x": 5})
	if err == nil {
		t.Fatal("want an error when the replayed marking does not satisfy the claimed target")
	}
	qe, ok := qerr.As(err, qerr.InvalidProof)
	if !ok {
		t.Fatalf("want a qerr.InvalidProof, got %T: %v", err, err)
	}
	if qe.Obligation != "counterexample_replay" {
		t.Errorf("want Obligation=counterexample_replay, got %q", qe.Obligation)
	}
	if cert.AllSatisfied() {
		t.Error("cert should record the target mismatch as unsatisfied")
	}
}

func TestCheckCounterexampleRegionAcceptsAnyPointInTheRegion(t *testing.T) {
	net, sch := buildIncrementNet(t)
	init := net.InitialMarking(map[string]int64{"v:x": 0, "c:incr#0": 1})

	region, err := ParseInvariant(sch, "x >= 1")
	if err != nil {
		t.Fatalf("ParseInvariant: %v", err)
	}

	cert, err := CheckCounterexampleRegion(net, init, []string{"c:incr#0_base"}, sch, region)
	if err != nil {
		t.Fatalf("CheckCounterexampleRegion: %v", err)
	}
	if !cert.AllSatisfied() {
		t.Fatalf("want both obligations satisfied, got %+v", cert.Results)
	}
	if len(cert.Results) != 2 {
		t.Fatalf("want 2 obligations checked, got %d", len(cert.Results))
	}
}

func TestCheckCounterexampleRegionRejectsPointOutsideRegion(t *testing.T) {
	net, sch := buildIncrementNet(t)
	init := net.InitialMarking(map[string]int64{"v:x": 0, "c:incr#0": 1})

	region, err := ParseInvariant(sch, "x >= 5")
	if err != nil {
		t.Fatalf("ParseInvariant: %v", err)
	}

	_, err = CheckCounterexampleRegion(net, init, []string{"c:incr#0_base"}, sch, region)
	if err == nil {
		t.Fatal("want an error when the replayed state falls outside the claimed region")
	}
	qe, ok := qerr.As(err, qerr.InvalidProof)
	if !ok {
		t.Fatalf("want a qerr.InvalidProof, got %T: %v", err, err)
	}
	if qe.Obligation != "counterexample_target_membership" {
		t.Errorf("want Obligation=counterexample_target_membership, got %q", qe.Obligation)
	}
}

func TestCheckCounterexampleFailsWhenNotEnabled(t *testing.T) {
	net, _ := buildIncrementNet(t)
	// No control tokens granted: the base transition is never enabled.
	init := net.InitialMarking(map[string]int64{"v:x": 0})

	_, err := CheckCounterexample(net, init, []string{"c:incr#0_base"}, map[string]int64{"x": 1})
	if err == nil {
		t.Fatal("want an error when the firing sequence is not actually enabled")
	}
	if _, ok := qerr.As(err, qerr.InvalidProof); !ok {
		t.Fatalf("want a qerr.InvalidProof, got %T: %v", err, err)
	}
}
