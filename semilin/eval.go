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

import (
	"fmt"

	"github.com/serialcheck/engine/schema"
)

// EvaluateAt computes the post-image of a relation r (over base.Doubled(),
// $pre/$post dimensions) at a fixed input point, as a semilinear set over
// base's plain dimension names: {post : (initial, post) ∈ r}. This is the
// conversion coordinators need to turn a reachability/serial relation (which
// spec.md §4.6-4.7 build as $pre/$post relations so they compose freely)
// into a plain global-state set a proof certificate's CheckInvariant or an
// external reachability query can consume, by slicing at one assumed initial
// state rather than carrying the whole relation forward.
func EvaluateAt(solver Solver, r SemilinearSet, base *schema.Schema, initial schema.Vector) (SemilinearSet, error) {
	doubled := base.Doubled()
	slice := fixPre(doubled, base, initial)

	joined, err := Intersect(solver, r, slice)
	if err != nil {
		return SemilinearSet{}, fmt.Errorf("semilin: evaluate_at: %w", err)
	}

	postNames := make([]string, 0, base.Len())
	for _, d := range base.Dims() {
		postNames = append(postNames, d.Name+"$post")
	}
	postOnly, err := Project(joined, postNames)
	if err != nil {
		return SemilinearSet{}, fmt.Errorf("semilin: evaluate_at: %w", err)
	}
	return renamePostToPlain(postOnly, base), nil
}

// fixPre returns the generator-form relation over doubled pinning every
// $pre dimension to initial's value while leaving every $post dimension
// free, the "slice" of the identity relation's domain at one point.
func fixPre(doubled, base *schema.Schema, initial schema.Vector) SemilinearSet {
	b := schema.Zero(doubled)
	for _, d := range base.Dims() {
		b = b.Set(d.Name+"$pre", initial.At(d.Name))
	}
	var periods []schema.Vector
	for _, d := range base.Dims() {
		unit, _ := schema.Unit(doubled, d.Name+"$post")
		periods = append(periods, unit)
	}
	return SemilinearSet{Schema: doubled, Components: []LinearSet{{Schema: doubled, Base: b, Periods: periods}}}
}

// renamePostToPlain strips the "$post" suffix from every dimension of s,
// the inverse of renameSuffix's from/to rewrite restricted to one direction
// and to a schema that is already post-only.
func renamePostToPlain(s SemilinearSet, base *schema.Schema) SemilinearSet {
	out := SemilinearSet{Schema: base}
	for _, c := range s.Components {
		out.Components = append(out.Components, renameLinear(c, base, postToPlainNames(s.Schema, base)))
	}
	return out
}

func postToPlainNames(doubledPostOnly, base *schema.Schema) map[string]string {
	renamed := make(map[string]string, doubledPostOnly.Len())
	for _, d := range doubledPostOnly.Dims() {
		for _, bd := range base.Dims() {
			if d.Name == bd.Name+"$post" {
				renamed[d.Name] = bd.Name
				break
			}
		}
	}
	return renamed
}
