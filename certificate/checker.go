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
	"fmt"

	"github.com/serialcheck/engine/petri"
	"github.com/serialcheck/engine/qerr"
	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

// CheckInvariant validates an oracle-provided inductive invariant against
// spec.md §4.8's three obligations:
//
//   - initial_marking: the invariant holds at the initial global state.
//   - transition_closure: for every transition (one per Petri component,
//     i.e. one per dsl atomic relation), invariant(pre) ∧ transition(pre,
//     post) implies invariant(post).
//   - target_exclusion: the invariant and the target region share no point.
//
// transitions and target are relations/sets already over globals' Doubled
// schema or plain schema respectively -- the caller (package engine) is
// responsible for deriving target as the non-serializable region fixed at
// the run's actual initial state, since this package has no opinion on how
// the reachability query was built, only on whether its answer checks out.
// Any failing obligation is returned as a *qerr.Error of kind InvalidProof
// naming the obligation, per spec.md §4.8's "any failure yields
// InvalidProof with the offending obligation."
func CheckInvariant(solver semilin.Solver, globals *schema.Schema, initial schema.Vector, transitions []semilin.SemilinearSet, target semilin.SemilinearSet, invariantText string) (*ProofCertificate, error) {
	inv, err := ParseInvariant(globals, invariantText)
	if err != nil {
		return nil, err
	}
	cert := &ProofCertificate{Invariant: invariantText}

	initResult := checkInitialMarking(inv, initial)
	cert.Results = append(cert.Results, initResult)
	if !initResult.Satisfied {
		return cert, qerr.Proof(initResult.Obligation, "%s", initResult.Message)
	}

	doubled := globals.Doubled()
	closureResult, err := checkTransitionClosure(solver, inv, doubled, transitions)
	if err != nil {
		return cert, err
	}
	cert.Results = append(cert.Results, closureResult)
	if !closureResult.Satisfied {
		return cert, qerr.Proof(closureResult.Obligation, "%s", closureResult.Message)
	}

	exclusionResult, err := checkTargetExclusion(solver, inv, target)
	if err != nil {
		return cert, err
	}
	cert.Results = append(cert.Results, exclusionResult)
	if !exclusionResult.Satisfied {
		return cert, qerr.Proof(exclusionResult.Obligation, "%s", exclusionResult.Message)
	}

	return cert, nil
}

func checkInitialMarking(inv semilin.DNF, initial schema.Vector) VerificationResult {
	if dnfHolds(inv, initial) {
		return VerificationResult{Obligation: "initial_marking", Satisfied: true, Message: "invariant holds at the initial state"}
	}
	return VerificationResult{
		Obligation: "initial_marking",
		Satisfied:  false,
		Message:    fmt.Sprintf("invariant does not hold at initial state %s", initial),
	}
}

func checkTransitionClosure(solver semilin.Solver, inv semilin.DNF, doubled *schema.Schema, transitions []semilin.SemilinearSet) (VerificationResult, error) {
	preInv := embedDNF(inv, doubled, "$pre")
	postInv := embedDNF(inv, doubled, "$post")

	for i, t := range transitions {
		transDNF, err := t.ToDNF()
		if err != nil {
			return VerificationResult{}, fmt.Errorf("certificate: transition_closure: %w", err)
		}
		include, err := crossAnd(preInv, transDNF)
		if err != nil {
			return VerificationResult{}, fmt.Errorf("certificate: transition_closure: %w", err)
		}
		violated, err := solver.Feasible(semilin.Query{Include: include, Exclude: []semilin.DNF{postInv}})
		if err != nil {
			return VerificationResult{}, fmt.Errorf("certificate: transition_closure: %w", err)
		}
		if violated {
			return VerificationResult{
				Obligation: "transition_closure",
				Satisfied:  false,
				Message:    fmt.Sprintf("transition %d can leave the invariant's region", i),
			}, nil
		}
	}
	return VerificationResult{
		Obligation: "transition_closure",
		Satisfied:  true,
		Message:    fmt.Sprintf("invariant is closed under all %d transitions", len(transitions)),
	}, nil
}

func checkTargetExclusion(solver semilin.Solver, inv semilin.DNF, target semilin.SemilinearSet) (VerificationResult, error) {
	targetDNF, err := target.ToDNF()
	if err != nil {
		return VerificationResult{}, fmt.Errorf("certificate: target_exclusion: %w", err)
	}
	combined, err := crossAnd(inv, targetDNF)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("certificate: target_exclusion: %w", err)
	}
	empty, err := semilin.IsEmptyViaSolver(solver, combined)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("certificate: target_exclusion: %w", err)
	}
	if !empty {
		return VerificationResult{
			Obligation: "target_exclusion",
			Satisfied:  false,
			Message:    "invariant's region intersects the non-serializable target set",
		}, nil
	}
	return VerificationResult{Obligation: "target_exclusion", Satisfied: true, Message: "invariant excludes the target set"}, nil
}

// CheckCounterexample validates an oracle-provided firing sequence claiming
// to witness the target region (spec.md §6's FiringSequence, §4.8's "a
// negative answer [accompanied] by a reachable counterexample marking"):
// replaying the sequence against net from init must both succeed (every
// transition enabled in turn) and land on a marking satisfying target. A
// sequence that doesn't replay, or replays somewhere other than target, is
// an InvalidProof the same way a broken invariant is -- the oracle or
// adapter produced a witness that doesn't actually check out.
func CheckCounterexample(net *petri.PetriNet, init petri.Marking, sequence []string, target map[string]int64) (*ProofCertificate, error) {
	cert := &ProofCertificate{}

	replay, err := petri.Replay(net, init, sequence)
	if err != nil {
		result := VerificationResult{
			Obligation: "counterexample_replay",
			Satisfied:  false,
			Message:    fmt.Sprintf("firing sequence did not replay: %v", err),
			Witness:    sequence,
		}
		cert.Results = append(cert.Results, result)
		return cert, qerr.Proof(result.Obligation, "%s", result.Message)
	}

	if !petri.Satisfies(replay.Final, target) {
		result := VerificationResult{
			Obligation: "counterexample_replay",
			Satisfied:  false,
			Message:    fmt.Sprintf("replayed marking %s does not satisfy the claimed target", replay.Final.Key()),
			Witness:    sequence,
		}
		cert.Results = append(cert.Results, result)
		return cert, qerr.Proof(result.Obligation, "%s", result.Message)
	}

	cert.Results = append(cert.Results, VerificationResult{
		Obligation: "counterexample_replay",
		Satisfied:  true,
		Message:    fmt.Sprintf("firing sequence replays to the target marking in %d steps", len(sequence)),
		Witness:    sequence,
	})
	return cert, nil
}

// CheckCounterexampleRegion is CheckCounterexample's counterpart for a
// whole target region rather than one exact marking: the oracle's query
// named the full non-serializable set, so its firing sequence may land on
// any point of that set, not one the coordinator can predict in advance.
// It replays the sequence the same way, then tests the landing global
// values against every disjunct of target directly (Literal.Holds is
// exported, so no solver call is needed for this membership test) instead
// of exact marking equality.
func CheckCounterexampleRegion(net *petri.PetriNet, init petri.Marking, sequence []string, globals *schema.Schema, target semilin.DNF) (*ProofCertificate, error) {
	cert := &ProofCertificate{}

	replay, err := petri.Replay(net, init, sequence)
	if err != nil {
		result := VerificationResult{
			Obligation: "counterexample_replay",
			Satisfied:  false,
			Message:    fmt.Sprintf("firing sequence did not replay: %v", err),
			Witness:    sequence,
		}
		cert.Results = append(cert.Results, result)
		return cert, qerr.Proof(result.Obligation, "%s", result.Message)
	}
	cert.Results = append(cert.Results, VerificationResult{
		Obligation: "counterexample_replay",
		Satisfied:  true,
		Message:    fmt.Sprintf("firing sequence replays cleanly in %d steps", len(sequence)),
		Witness:    sequence,
	})

	point := globalsVectorFromMarking(replay.Final, globals)
	if !dnfHolds(target, point) {
		result := VerificationResult{
			Obligation: "counterexample_target_membership",
			Satisfied:  false,
			Message:    fmt.Sprintf("replayed state %s does not lie in the claimed non-serializable region", point),
			Witness:    sequence,
		}
		cert.Results = append(cert.Results, result)
		return cert, qerr.Proof(result.Obligation, "%s", result.Message)
	}
	cert.Results = append(cert.Results, VerificationResult{
		Obligation: "counterexample_target_membership",
		Satisfied:  true,
		Message:    "replayed state lies in the claimed non-serializable region",
		Witness:    sequence,
	})
	return cert, nil
}

// globalsVectorFromMarking reads off each global's value-place token count,
// duplicating petri.valuePlaceID's "v:"-prefix convention locally since it
// is not exported across the package boundary.
func globalsVectorFromMarking(m petri.Marking, globals *schema.Schema) schema.Vector {
	v := schema.Zero(globals)
	for _, d := range globals.Dims() {
		v = v.Set(d.Name, m.Get("v:"+d.Name))
	}
	return v
}
