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

package kleene

// ConvergenceState describes the outcome of a star-closure's saturation
// loop (spec.md §4.3: "Rₖ₊₁ = Rₖ ∪ compose(Rₖ, R); terminate when
// Rₖ₊₁ ⊆ Rₖ"). Eval's StarExpr case reports it through Config.Logger for
// progress observability; it has no bearing on control flow, which is
// semilin.Star's iterate-then-test loop.
type ConvergenceState int

const (
	// Growing indicates the most recent iteration added at least one
	// linear component not covered by the accumulator so far.
	Growing ConvergenceState = iota

	// Saturated indicates Rₖ₊₁ ⊆ Rₖ: the star has reached its fixpoint.
	Saturated

	// Stalled indicates the loop reached its iteration bound without
	// saturating -- spec.md §4.3 treats this as an implementation bug,
	// since every star must decrease a well-founded measure under
	// saturation, not as a legitimate query outcome.
	Stalled
)

func (s ConvergenceState) String() string {
	switch s {
	case Growing:
		return "growing"
	case Saturated:
		return "saturated"
	case Stalled:
		return "stalled"
	default:
		return "unknown"
	}
}
