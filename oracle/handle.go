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
	"errors"

	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

// Handle is the process-wide integer-set oracle acquired once per query and
// released at query end (spec.md §4.2, §5). It tries the bounded pre-filter
// first and only falls through to Z3 when the bound is inconclusive,
// minimizing how often the (comparatively expensive) Z3 context is used.
type Handle struct {
	bounded *BoundedSolver
	z3      *Z3Solver
}

// Acquire opens a Handle. bound sizes the bounded pre-filter's search
// space; 0 selects a small default.
func Acquire(bound int64) *Handle {
	if bound <= 0 {
		bound = 8
	}
	return &Handle{bounded: NewBoundedSolver(bound), z3: NewZ3Solver()}
}

// Release closes the underlying Z3 context.
func (h *Handle) Release() {
	h.z3.Close()
}

var _ semilin.Solver = (*Handle)(nil)

// Feasible implements semilin.Solver.
func (h *Handle) Feasible(q semilin.Query) (bool, error) {
	ok, err := h.bounded.Feasible(q)
	if err == nil {
		return ok, nil
	}
	if !errors.Is(err, ErrUnknown) {
		return false, err
	}
	return h.z3.Feasible(q)
}

// Solve implements semilin.Solver.
func (h *Handle) Solve(sch *schema.Schema, c semilin.Conjunct) (schema.Vector, bool, error) {
	witness, ok, err := h.bounded.Solve(sch, c)
	if err == nil {
		return witness, ok, nil
	}
	if !errors.Is(err, ErrUnknown) {
		return schema.Vector{}, false, err
	}
	return h.z3.Solve(sch, c)
}

// Canonicalize implements semilin.Solver. Only Z3Solver can generalize a
// witness into periods with any confidence, so Canonicalize always defers
// to it.
func (h *Handle) Canonicalize(d semilin.DNF, candidatePeriods []schema.Vector) (*semilin.SemilinearSet, error) {
	return h.z3.Canonicalize(d, candidatePeriods)
}
