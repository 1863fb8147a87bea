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

import "testing"

func TestNewRejectsDuplicateDimension(t *testing.T) {
	_, err := New(Dim{Name: "x", Kind: Global}, Dim{Name: "x", Kind: Local})
	if err == nil {
		t.Fatal("expected error for duplicate dimension name")
	}
}

func TestUnionOrdersByFirstOccurrence(t *testing.T) {
	a, _ := New(Dim{Name: "g", Kind: Global}, Dim{Name: "x", Kind: Local})
	b, _ := New(Dim{Name: "y", Kind: Local}, Dim{Name: "g", Kind: Global})

	u, err := Union(a, b)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	want := []string{"g", "x", "y"}
	if u.Len() != len(want) {
		t.Fatalf("Union len = %d, want %d", u.Len(), len(want))
	}
	for i, name := range want {
		if u.Dims()[i].Name != name {
			t.Errorf("Union dims[%d] = %q, want %q", i, u.Dims()[i].Name, name)
		}
	}
}

func TestUnionRejectsKindMismatch(t *testing.T) {
	a, _ := New(Dim{Name: "x", Kind: Global})
	b, _ := New(Dim{Name: "x", Kind: Local})
	if _, err := Union(a, b); err == nil {
		t.Fatal("expected error for dimension used as both global and local")
	}
}

func TestVectorEmbedInsertsZeroColumns(t *testing.T) {
	small, _ := New(Dim{Name: "x", Kind: Local})
	big, _ := New(Dim{Name: "g", Kind: Global}, Dim{Name: "x", Kind: Local})

	v, _ := Unit(small, "x")
	embedded := v.Embed(big)

	if embedded.At("x") != 1 {
		t.Errorf("embedded x = %d, want 1", embedded.At("x"))
	}
	if embedded.At("g") != 0 {
		t.Errorf("embedded g = %d, want 0", embedded.At("g"))
	}
}

func TestVectorAddAndScale(t *testing.T) {
	s, _ := New(Dim{Name: "a", Kind: Global}, Dim{Name: "b", Kind: Global})
	v := Zero(s).Set("a", 2).Set("b", 3)
	w := Zero(s).Set("a", 1).Set("b", 1)

	sum := v.Add(w)
	if sum.At("a") != 3 || sum.At("b") != 4 {
		t.Errorf("Add = %v, want a=3 b=4", sum)
	}

	scaled := v.Scale(2)
	if scaled.At("a") != 4 || scaled.At("b") != 6 {
		t.Errorf("Scale = %v, want a=4 b=6", scaled)
	}
}

func TestDoubledSchemaSuffixesDimensions(t *testing.T) {
	s, _ := New(Dim{Name: "x", Kind: Global})
	d := s.Doubled()
	if d.Len() != 2 {
		t.Fatalf("Doubled len = %d, want 2", d.Len())
	}
	if !d.Has("x$pre") || !d.Has("x$post") {
		t.Errorf("Doubled schema missing pre/post dims: %v", d.Dims())
	}
}
