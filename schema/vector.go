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

package schema

import (
	"fmt"
	"strings"
)

// Vector is an integer point or direction over a Schema's dimensions,
// indexed in schema order. Vectors are the base and period components of a
// LinearSet (see package semilin) and are value-typed: copying a Vector
// copies its backing slice, so callers may freely share a Schema pointer
// across many independent Vectors.
type Vector struct {
	Schema *Schema
	Coeffs []int64
}

// Zero returns the all-zero vector over s.
func Zero(s *Schema) Vector {
	return Vector{Schema: s, Coeffs: make([]int64, s.Len())}
}

// Unit returns the vector with 1 at dimension name and 0 elsewhere.
func Unit(s *Schema, name string) (Vector, error) {
	v := Zero(s)
	i := s.Index(name)
	if i < 0 {
		return Vector{}, fmt.Errorf("vector: unknown dimension %q", name)
	}
	v.Coeffs[i] = 1
	return v, nil
}

// At returns the coefficient at dimension name, or 0 if the dimension does
// not exist in this vector's schema.
func (v Vector) At(name string) int64 {
	i := v.Schema.Index(name)
	if i < 0 {
		return 0
	}
	return v.Coeffs[i]
}

// Set returns a copy of v with dimension name set to value.
func (v Vector) Set(name string, value int64) Vector {
	out := v.Copy()
	if i := out.Schema.Index(name); i >= 0 {
		out.Coeffs[i] = value
	}
	return out
}

// Copy returns an independent copy of v.
func (v Vector) Copy() Vector {
	c := make([]int64, len(v.Coeffs))
	copy(c, v.Coeffs)
	return Vector{Schema: v.Schema, Coeffs: c}
}

// Add returns v + w, element-wise. Both vectors must share a schema.
func (v Vector) Add(w Vector) Vector {
	out := v.Copy()
	for i := range out.Coeffs {
		out.Coeffs[i] += w.Coeffs[i]
	}
	return out
}

// Scale returns v scaled by n.
func (v Vector) Scale(n int64) Vector {
	out := v.Copy()
	for i := range out.Coeffs {
		out.Coeffs[i] *= n
	}
	return out
}

// Equal reports whether v and w have identical coefficients over the same
// schema dimensions (by name, not by pointer identity of the Schema).
func (v Vector) Equal(w Vector) bool {
	if v.Schema.Len() != w.Schema.Len() {
		return false
	}
	for _, d := range v.Schema.Dims() {
		if v.At(d.Name) != w.At(d.Name) {
			return false
		}
	}
	return true
}

// Embed re-expresses v over a larger schema, inserting zero coefficients
// for dimensions absent from v's original schema. This is the mechanical
// step behind Schema harmonization (spec.md §3, §4.1).
func (v Vector) Embed(target *Schema) Vector {
	out := Zero(target)
	for _, d := range v.Schema.Dims() {
		if i := target.Index(d.Name); i >= 0 {
			out.Coeffs[i] = v.At(d.Name)
		}
	}
	return out
}

// String renders v as "name=value" pairs in schema order, for debugging and
// for deterministic canonical keys (spec.md §5's reproducibility rule).
func (v Vector) String() string {
	parts := make([]string, 0, len(v.Coeffs))
	for _, d := range v.Schema.Dims() {
		parts = append(parts, fmt.Sprintf("%s=%d", d.Name, v.At(d.Name)))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
