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

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/serialcheck/engine/kleene"
	"github.com/serialcheck/engine/qerr"
	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

// NetworkSystem is the "network system" input format of spec.md §6: a
// shared location graph that every request traverses from its own initial
// location to any location carrying a response. There is no ecosystem
// library in the retrieved examples worth adopting over encoding/json for
// this one list-of-tuples shape (unlike the YAML config surface documented
// in SPEC_FULL.md, it is a data format, not ambient configuration), so this
// loader uses the standard decoder directly.
type NetworkSystem struct {
	Requests    [][2]string `json:"requests"`    // [req_name, initial_loc]
	Responses   [][2]string `json:"responses"`   // [loc, resp_name]
	Transitions [][4]string `json:"transitions"` // [src_loc, src_guard, dst_loc, dst_guard]
}

// LoadNetworkSystem decodes a network system document.
func LoadNetworkSystem(data []byte) (*NetworkSystem, error) {
	var ns NetworkSystem
	if err := json.Unmarshal(data, &ns); err != nil {
		return nil, qerr.Parse("network system", "decode: %v", err)
	}
	return &ns, nil
}

// LowerNetworkSystem builds one kleene.Expr per request named in ns,
// grounded in the classic state-elimination construction of a regular
// expression from a finite automaton, generalized from alphabet symbols to
// atomic relations: each location is a graph state, each transition an edge
// labeled by the relation its guards define, and a request's expression is
// the union of every path from its initial location to any location that
// carries a response.
func LowerNetworkSystem(base *schema.Schema, ns *NetworkSystem) (map[string]kleene.Expr, error) {
	edges, err := transitionEdges(base, ns.Transitions)
	if err != nil {
		return nil, err
	}
	accepting := make(map[string]bool, len(ns.Responses))
	for _, r := range ns.Responses {
		accepting[r[0]] = true
	}

	out := make(map[string]kleene.Expr, len(ns.Requests))
	for _, req := range ns.Requests {
		name, initLoc := req[0], req[1]
		expr, err := stateElimination(base, edges, initLoc, accepting)
		if err != nil {
			return nil, fmt.Errorf("dsl: network request %s: %w", name, err)
		}
		out[name] = expr
	}
	return out, nil
}

// transitionEdges converts the raw [src, src_guard, dst, dst_guard] tuples
// into a location adjacency map, unioning parallel transitions between the
// same pair of locations.
func transitionEdges(base *schema.Schema, transitions [][4]string) (map[string]map[string]kleene.Expr, error) {
	edges := make(map[string]map[string]kleene.Expr)
	for i, t := range transitions {
		src, srcGuard, dst, dstGuard := t[0], t[1], t[2], t[3]
		srcCond, err := parseGuard(srcGuard)
		if err != nil {
			return nil, fmt.Errorf("dsl: transition %d: %w", i, err)
		}
		dstCond, err := parseGuard(dstGuard)
		if err != nil {
			return nil, fmt.Errorf("dsl: transition %d: %w", i, err)
		}
		rel, err := transitionRelation(base, srcCond, dstCond)
		if err != nil {
			return nil, fmt.Errorf("dsl: transition %d (%s -> %s): %w", i, src, dst, err)
		}
		addEdge(edges, src, dst, kleene.Atom(fmt.Sprintf("%s->%s", src, dst), rel))
	}
	return edges, nil
}

// parseGuard reads the minimal guard syntax the network system format uses:
// "" or "true" (no constraint), "var=const", or "var1=var2".
func parseGuard(guard string) (Node, error) {
	g := strings.TrimSpace(guard)
	if g == "" || g == "true" {
		return nil, nil
	}
	parts := strings.SplitN(g, "=", 2)
	if len(parts) != 2 {
		return nil, qerr.Parse("guard", "malformed guard %q, want var=value", guard)
	}
	return Eq{L: guardOperand(parts[0]), R: guardOperand(parts[1])}, nil
}

func guardOperand(s string) Node {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Const{N: n}
	}
	return Read{Var: s}
}

// transitionRelation builds the atomic relation a network-system transition
// denotes: srcGuard restricts the pre-state, dstGuard restricts the
// post-state, and every dimension named by neither guard is left untouched
// (pre = post), matching how dsl's AST lowering treats reads versus writes.
func transitionRelation(base *schema.Schema, srcGuard, dstGuard Node) (semilin.SemilinearSet, error) {
	doubled := base.Doubled()

	srcPivot, srcRhs, srcCoupling, err := guardPivot(base, srcGuard)
	if err != nil {
		return semilin.SemilinearSet{}, fmt.Errorf("src guard: %w", err)
	}
	dstPivot, dstRhs, dstCoupling, err := guardPivot(base, dstGuard)
	if err != nil {
		return semilin.SemilinearSet{}, fmt.Errorf("dst guard: %w", err)
	}

	base0 := schema.Zero(doubled)
	if srcPivot != "" {
		base0 = base0.Set(srcPivot+"$pre", srcRhs)
	}
	if dstPivot != "" {
		base0 = base0.Set(dstPivot+"$post", dstRhs)
	}

	var periods []schema.Vector
	for _, d := range base.Dims() {
		isSrc := d.Name == srcPivot
		isDst := d.Name == dstPivot
		switch {
		case isSrc && isDst:
			// Pinned independently at both ends; no freedom of its own.
			continue
		case isSrc:
			p := schema.Zero(doubled).Set(d.Name+"$post", 1)
			periods = append(periods, p)
		case isDst:
			p := schema.Zero(doubled).Set(d.Name+"$pre", 1)
			periods = append(periods, p)
		default:
			p := schema.Zero(doubled).Set(d.Name+"$pre", 1).Set(d.Name+"$post", 1)
			if c := srcCoupling[d.Name]; c != 0 && srcPivot != "" {
				p = p.Set(srcPivot+"$pre", p.At(srcPivot+"$pre")+c)
			}
			if c := dstCoupling[d.Name]; c != 0 && dstPivot != "" {
				p = p.Set(dstPivot+"$post", p.At(dstPivot+"$post")+c)
			}
			periods = append(periods, p)
		}
	}
	return semilin.SemilinearSet{
		Schema:     doubled,
		Components: []semilin.LinearSet{semilin.NewLinearSet(doubled, base0, periods)},
	}, nil
}

// guardPivot reduces a guard (nil, or an Eq node) to the variable it pins
// and the value it pins it to, in the style of assumeRelation's pivot
// elimination. An empty pivot name means "no constraint".
func guardPivot(base *schema.Schema, guard Node) (pivot string, rhs int64, coupling map[string]int64, err error) {
	if guard == nil {
		return "", 0, nil, nil
	}
	eq, ok := guard.(Eq)
	if !ok {
		return "", 0, nil, qerr.Schema("guard must be an equality, got %T", guard)
	}
	la, err := lowerAffine(eq.L)
	if err != nil {
		return "", 0, nil, err
	}
	ra, err := lowerAffine(eq.R)
	if err != nil {
		return "", 0, nil, err
	}
	term := la.sub(ra)
	p, sign, ok := findPivot(base, term.coeffs)
	if !ok {
		return "", 0, nil, qerr.Schema("guard %s has no unit-coefficient variable", guard)
	}
	rhs = -sign * term.constant
	coupling = make(map[string]int64, len(term.coeffs))
	for d, c := range term.coeffs {
		if d == p {
			continue
		}
		coupling[d] = -sign * c
	}
	return p, rhs, coupling, nil
}

func addEdge(edges map[string]map[string]kleene.Expr, src, dst string, e kleene.Expr) {
	if edges[src] == nil {
		edges[src] = make(map[string]kleene.Expr)
	}
	if existing, ok := edges[src][dst]; ok {
		edges[src][dst] = kleene.UnionOf(existing, e)
	} else {
		edges[src][dst] = e
	}
}

// stateElimination runs the McNaughton-Yamada / Brzozowski construction: it
// adds a fresh start state with an identity edge into initLoc and a fresh
// final state reachable by an identity edge from every accepting location,
// then eliminates every location in between one at a time, folding each
// elimination's self-loop into a star factor threaded between the
// predecessor and successor edges it connects.
func stateElimination(base *schema.Schema, edges map[string]map[string]kleene.Expr, initLoc string, accepting map[string]bool) (kleene.Expr, error) {
	const start, final = "$start", "$final"
	g := cloneEdges(edges)
	idAtom := kleene.Atom("id", semilin.Identity(base))
	addEdge(g, start, initLoc, idAtom)
	for loc := range accepting {
		if _, ok := g[loc]; ok || hasIncoming(g, loc) || loc == initLoc {
			addEdge(g, loc, final, idAtom)
		}
	}
	if accepting[initLoc] {
		addEdge(g, initLoc, final, idAtom)
	}

	order := locationsToEliminate(g, start, final)
	for _, q := range order {
		self := g[q][q]
		preds := incomingFrom(g, q)
		succs := g[q]
		for _, p := range preds {
			if p == q {
				continue
			}
			for r, succEdge := range succs {
				if r == q {
					continue
				}
				terms := []kleene.Expr{g[p][q]}
				if self != nil {
					terms = append(terms, kleene.StarOf(self))
				}
				terms = append(terms, succEdge)
				addEdge(g, p, r, kleene.ConcatOf(terms...))
			}
		}
		removeLocation(g, q)
	}

	if e, ok := g[start][final]; ok {
		return e, nil
	}
	return kleene.Atom("unreachable", semilin.Empty(base.Doubled())), nil
}

func cloneEdges(edges map[string]map[string]kleene.Expr) map[string]map[string]kleene.Expr {
	out := make(map[string]map[string]kleene.Expr, len(edges))
	for src, m := range edges {
		inner := make(map[string]kleene.Expr, len(m))
		for dst, e := range m {
			inner[dst] = e
		}
		out[src] = inner
	}
	return out
}

func hasIncoming(g map[string]map[string]kleene.Expr, loc string) bool {
	for _, m := range g {
		if _, ok := m[loc]; ok {
			return true
		}
	}
	return false
}

func incomingFrom(g map[string]map[string]kleene.Expr, q string) []string {
	var preds []string
	for p, m := range g {
		if _, ok := m[q]; ok {
			preds = append(preds, p)
		}
	}
	sort.Strings(preds)
	return preds
}

// locationsToEliminate lists every graph node except start/final, in sorted
// order so elimination (and therefore the final expression's shape) is
// reproducible across runs (spec.md §5).
func locationsToEliminate(g map[string]map[string]kleene.Expr, start, final string) []string {
	seen := map[string]bool{start: true, final: true}
	var out []string
	for src, m := range g {
		if !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
		for dst := range m {
			if !seen[dst] {
				seen[dst] = true
				out = append(out, dst)
			}
		}
	}
	sort.Strings(out)
	return out
}

func removeLocation(g map[string]map[string]kleene.Expr, q string) {
	delete(g, q)
	for _, m := range g {
		delete(m, q)
	}
}
