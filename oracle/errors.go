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

// Package oracle adapts semilin.Solver onto concrete external decision
// procedures: a Z3-backed QF_LIA solver (spec.md §4.2) available only in
// cgo builds, a pure-Go bounded SAT pre-filter built on gini used as a fast
// path ahead of Z3, and a subprocess-based reachability oracle modeled on
// task.CommandTask's subprocess shape (spec.md §4.6).
package oracle

import "errors"

// ErrUnavailable is returned by the cgo-less Z3 stub: the binary was built
// without cgo, so no native integer-set oracle is reachable. Callers should
// fall back to BoundedSolver or surface qerr.OracleError to the caller.
var ErrUnavailable = errors.New("oracle: z3 backend unavailable (built without cgo)")

// ErrUnknown is returned when a decision procedure terminates without a
// definite answer (a genuine "unknown" from Z3, or a bounded solver running
// out of its search budget without either proving or refuting feasibility).
var ErrUnknown = errors.New("oracle: decision procedure returned unknown")
