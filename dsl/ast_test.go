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

package dsl

import "testing"

func TestNodeStringRendering(t *testing.T) {
	cases := []struct {
		name string
		n    Node
		want string
	}{
		{"const", Const{N: 3}, "3"},
		{"read", Read{Var: "x"}, "x"},
		{"add", Add{L: Read{Var: "x"}, R: Const{N: 1}}, "(x + 1)"},
		{"sub", Sub{L: Read{Var: "x"}, R: Const{N: 1}}, "(x - 1)"},
		{"eq", Eq{L: Read{Var: "x"}, R: Const{N: 0}}, "(x = 0)"},
		{"write_local", WriteLocal{Var: "t", Value: Const{N: 1}}, "t := 1"},
		{"write_global", WriteGlobal{Var: "g", Value: Const{N: 1}}, "global g := 1"},
		{"yield_unlabeled", Yield{}, "yield"},
		{"yield_labeled", Yield{Label: "resp"}, "yield resp"},
		{"comment", Comment{Text: "note"}, "# note"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.n.String(); got != c.want {
				t.Errorf("String() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestSeqStringReportsLength(t *testing.T) {
	s := Seq{Stmts: []Node{Const{N: 1}, Const{N: 2}, Const{N: 3}}}
	if got, want := s.String(), "seq(3)"; got != want {
		t.Errorf("Seq.String() = %q, want %q", got, want)
	}
}

func TestProgramHoldsOrderedRequests(t *testing.T) {
	p := Program{Requests: []Request{
		{Name: "deposit", Body: Seq{}},
		{Name: "withdraw", Body: Seq{}},
	}}
	if len(p.Requests) != 2 || p.Requests[0].Name != "deposit" || p.Requests[1].Name != "withdraw" {
		t.Errorf("Program.Requests = %+v, want [deposit withdraw] in order", p.Requests)
	}
}
