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

package serialnfa

import (
	"fmt"

	"github.com/serialcheck/engine/kleene"
	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

// RequestSummary pairs a request's name with its summary relation over
// schema.Doubled(globals) -- the same shape package petri consumes, kept as
// an independent type here so this package does not need to import petri
// just to describe its own input.
type RequestSummary struct {
	Name    string
	Summary semilin.SemilinearSet
}

// ParikhImage computes Seq, the semilinear set of every net effect on
// globals reachable by some finite serial schedule (spec.md §4.6).
//
// A word of the automaton Build constructs is a sequence of (request,
// component) symbols; the net effect of running that word is exactly the
// relational composition of each symbol's own generator-form linear
// component, in order -- which is what semilin.Compose already computes.
// Folding over every word the automaton accepts is therefore the reflexive-
// transitive closure of the union of every symbol's relation: Seq =
// (⋃ᵣ Sᵣ)*, restricted to globals. This sidesteps building the automaton's
// Parikh polytope over symbol-occurrence counts and then re-interpreting it
// against each request's effect, since composing the relations directly
// computes the same projection in one pass -- the generator-form algebra
// kleene.Eval already performs is the Parikh homomorphism for this
// alphabet.
func ParikhImage(solver semilin.Solver, globals *schema.Schema, cfg kleene.Config, summaries []RequestSummary) (semilin.SemilinearSet, error) {
	keep := make([]string, 0, 2*globals.Len())
	for _, g := range globals.Globals() {
		keep = append(keep, g+"$pre", g+"$post")
	}

	var terms []kleene.Expr
	for _, s := range summaries {
		restricted, err := semilin.Project(s.Summary, keep)
		if err != nil {
			return semilin.SemilinearSet{}, fmt.Errorf("serialnfa: parikh image: project %s: %w", s.Name, err)
		}
		terms = append(terms, kleene.Atom(s.Name, restricted))
	}
	if len(terms) == 0 {
		return semilin.Identity(globals), nil
	}

	star := kleene.StarOf(kleene.UnionOf(terms...))
	seq, err := kleene.Eval(solver, globals, cfg, star)
	if err != nil {
		return semilin.SemilinearSet{}, fmt.Errorf("serialnfa: parikh image: %w", err)
	}
	return seq, nil
}

// Symbols enumerates the alphabet Build(symbols) needs: one symbol per
// linear component of every summary, in (request, component) order.
func Symbols(summaries []RequestSummary) []Symbol {
	var out []Symbol
	for _, s := range summaries {
		for ci := range s.Summary.Components {
			out = append(out, Symbol{Request: s.Name, Component: ci})
		}
	}
	return out
}

// NonSerializableIsEmpty decides spec.md §4.6's central question: whether
// Reach \ Seq is empty, i.e. whether every concurrently reachable global
// state is also reachable by some serial schedule. Reach \ Seq is empty
// exactly when Reach ⊆ Seq, so this is semilin.Subset run the other way
// around from how package kleene's redundancy pass uses it.
func NonSerializableIsEmpty(solver semilin.Solver, reach, seq semilin.SemilinearSet) (bool, error) {
	empty, err := semilin.Subset(solver, reach, seq)
	if err != nil {
		return false, fmt.Errorf("serialnfa: non_serializable: %w", err)
	}
	return empty, nil
}
