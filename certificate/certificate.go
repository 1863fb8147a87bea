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

// Package certificate parses and checks the two shapes a reachability
// oracle verdict can take (spec.md §4.8): an inductive invariant proving
// the target set unreachable (serializable), or a firing sequence claiming
// to reach it (a non-serializability counterexample). Checking either one
// is independent of how the oracle produced it, so a certificate is
// trusted only once every one of its obligations has been verified here.
package certificate

// VerificationResult is the outcome of checking one obligation.
type VerificationResult struct {
	// Obligation names which check this result is for, e.g.
	// "initial_marking", "transition_closure", "target_exclusion", or
	// "counterexample_replay".
	Obligation string

	Satisfied bool
	Message   string

	// Witness is the offending point or firing sequence, present only
	// when Satisfied is false.
	Witness []string
}

// ProofCertificate aggregates every obligation's VerificationResult for one
// oracle verdict.
type ProofCertificate struct {
	// Invariant is the raw oracle-provided text this certificate was
	// built from (empty for a counterexample certificate).
	Invariant string

	Results []VerificationResult
}

// AllSatisfied reports whether every obligation held. A certificate with no
// results is vacuously satisfied.
func (c *ProofCertificate) AllSatisfied() bool {
	for _, r := range c.Results {
		if !r.Satisfied {
			return false
		}
	}
	return true
}

// FirstFailure returns the first unsatisfied result, or nil if none.
func (c *ProofCertificate) FirstFailure() *VerificationResult {
	for i := range c.Results {
		if !c.Results[i].Satisfied {
			return &c.Results[i]
		}
	}
	return nil
}
