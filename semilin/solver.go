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

// Query asks whether some point satisfies Include while avoiding every set
// listed in Exclude entirely — i.e. whether
//
//	Include ∧ ¬Exclude₁ ∧ ¬Exclude₂ ∧ ...
//
// is feasible. IsEmpty(A) is Query{Include: A}; Subset(A, B) is
// !Feasible(Query{Include: A, Exclude: []DNF{B}}).
type Query struct {
	Include DNF
	Exclude []DNF
}

// Solver is the external decision procedure that semilin's operations defer
// to for anything beyond pure generator-level manipulation (feasibility,
// and canonicalizing an arbitrary constraint formula back into generator
// form after Intersect). Implementations live in package oracle, which
// depends on semilin rather than the reverse, so semilin itself stays free
// of any particular integer-set library.
type Solver interface {
	// Feasible reports whether q has a satisfying integer point.
	Feasible(q Query) (bool, error)

	// Solve returns one witness point satisfying c, if one exists.
	Solve(sch *schema.Schema, c Conjunct) (witness schema.Vector, ok bool, err error)

	// Canonicalize simplifies an arbitrary constraint formula back into a
	// generator-form SemilinearSet: infeasible conjuncts are dropped, and
	// each surviving conjunct is re-expressed as a base point plus the
	// periods (drawn from candidates) that keep it satisfied.
	Canonicalize(d DNF, candidatePeriods []schema.Vector) (*SemilinearSet, error)
}
