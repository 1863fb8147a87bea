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

//go:build !cgo

package oracle

import (
	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

// Z3Solver is a placeholder used in builds without cgo (install Z3 and
// build with cgo enabled to use the real binding). Every method reports
// ErrUnavailable so callers fall back to BoundedSolver or, failing that,
// surface an OracleError to the query caller.
type Z3Solver struct{}

// NewZ3Solver returns a stub solver that cannot answer any query.
func NewZ3Solver() *Z3Solver { return &Z3Solver{} }

// Close is a no-op on the stub.
func (z *Z3Solver) Close() {}

// Feasible implements semilin.Solver.
func (z *Z3Solver) Feasible(semilin.Query) (bool, error) {
	return false, ErrUnavailable
}

// Solve implements semilin.Solver.
func (z *Z3Solver) Solve(*schema.Schema, semilin.Conjunct) (schema.Vector, bool, error) {
	return schema.Vector{}, false, ErrUnavailable
}

// Canonicalize implements semilin.Solver.
func (z *Z3Solver) Canonicalize(semilin.DNF, []schema.Vector) (*semilin.SemilinearSet, error) {
	return nil, ErrUnavailable
}
