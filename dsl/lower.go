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
	"fmt"

	"github.com/serialcheck/engine/kleene"
	"github.com/serialcheck/engine/qerr"
	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

// affineTerm is Σ coeffs[v]·v + constant, the normal form every Const/Read/
// Add/Sub expression reduces to once nested comparisons have been hoisted
// out (spec.md §4.4: "pure arithmetic expressions lower to an affine term").
type affineTerm struct {
	coeffs   map[string]int64
	constant int64
}

func constAffine(n int64) affineTerm { return affineTerm{constant: n} }

func readAffine(v string) affineTerm { return affineTerm{coeffs: map[string]int64{v: 1}} }

func (a affineTerm) add(b affineTerm) affineTerm {
	out := affineTerm{coeffs: map[string]int64{}, constant: a.constant + b.constant}
	for v, c := range a.coeffs {
		out.coeffs[v] += c
	}
	for v, c := range b.coeffs {
		out.coeffs[v] += c
	}
	return out
}

func (a affineTerm) neg() affineTerm {
	out := affineTerm{coeffs: map[string]int64{}, constant: -a.constant}
	for v, c := range a.coeffs {
		out.coeffs[v] = -c
	}
	return out
}

func (a affineTerm) sub(b affineTerm) affineTerm { return a.add(b.neg()) }

// lowerState threads the fresh-local counter used to hoist nested
// comparisons (spec.md §4.4) through one request's lowering.
type lowerState struct {
	base  *schema.Schema
	fresh int
}

func (ls *lowerState) freshName() string {
	ls.fresh++
	return fmt.Sprintf("$hoist%d", ls.fresh)
}

// Lower lowers a single request body (a statement Node) into a kleene.Expr
// over base's doubled schema. base must contain every local and global
// dimension the body reads or writes.
func Lower(base *schema.Schema, body Node) (kleene.Expr, error) {
	ls := &lowerState{base: base}
	return ls.lowerStmt(body)
}

func (ls *lowerState) lowerStmt(n Node) (kleene.Expr, error) {
	switch v := n.(type) {
	case nil:
		return kleene.Atom("skip", semilin.Identity(ls.base)), nil
	case Comment:
		return kleene.Atom("skip", semilin.Identity(ls.base)), nil
	case Seq:
		if len(v.Stmts) == 0 {
			return kleene.Atom("skip", semilin.Identity(ls.base)), nil
		}
		terms := make([]kleene.Expr, 0, len(v.Stmts))
		for _, s := range v.Stmts {
			t, err := ls.lowerStmt(s)
			if err != nil {
				return nil, err
			}
			terms = append(terms, t)
		}
		return kleene.ConcatOf(terms...), nil
	case WriteLocal:
		return ls.lowerWrite(v.Var, v.Value)
	case WriteGlobal:
		return ls.lowerWrite(v.Var, v.Value)
	case Yield:
		return kleene.Atom(v.String(), semilin.Identity(ls.base)), nil
	case Choice:
		a, err := ls.lowerStmt(v.A)
		if err != nil {
			return nil, err
		}
		b, err := ls.lowerStmt(v.B)
		if err != nil {
			return nil, err
		}
		return kleene.UnionOf(a, b), nil
	case If:
		return ls.lowerIf(v)
	case While:
		return ls.lowerWhile(v)
	case Eq:
		// A bare comparison used as a statement is an assume, matching how
		// If/While consume one: it restricts the run to the branch where
		// the comparison holds without otherwise changing state.
		aff, op, prefix, err := ls.lowerGuard(v)
		if err != nil {
			return nil, err
		}
		rel, err := assumeRelation(ls.base, aff, op)
		if err != nil {
			return nil, err
		}
		if len(prefix) == 0 {
			return kleene.Atom("assume", rel), nil
		}
		guardPrefix, err := ls.lowerStmt(Seq{Stmts: prefix})
		if err != nil {
			return nil, err
		}
		return kleene.ConcatOf(guardPrefix, kleene.Atom("assume", rel)), nil
	default:
		return nil, qerr.Schema("dsl: lower: %T is not a statement", n)
	}
}

func (ls *lowerState) lowerIf(v If) (kleene.Expr, error) {
	aff, op, prefix, err := ls.lowerGuard(v.Cond)
	if err != nil {
		return nil, err
	}
	thenRel, err := assumeRelation(ls.base, aff, op)
	if err != nil {
		return nil, err
	}
	elseRel, err := assumeRelation(ls.base, aff, negateOp(op))
	if err != nil {
		return nil, err
	}
	thenBody, err := ls.lowerStmt(v.Then)
	if err != nil {
		return nil, err
	}
	elseBody, err := ls.lowerStmt(v.Else)
	if err != nil {
		return nil, err
	}
	thenBranch := kleene.ConcatOf(kleene.Atom("assume", thenRel), thenBody)
	elseBranch := kleene.ConcatOf(kleene.Atom("assume_not", elseRel), elseBody)
	branches := kleene.UnionOf(thenBranch, elseBranch)
	if len(prefix) == 0 {
		return branches, nil
	}
	guardPrefix, err := ls.lowerStmt(Seq{Stmts: prefix})
	if err != nil {
		return nil, err
	}
	return kleene.ConcatOf(guardPrefix, branches), nil
}

func (ls *lowerState) lowerWhile(v While) (kleene.Expr, error) {
	aff, op, prefix, err := ls.lowerGuard(v.Cond)
	if err != nil {
		return nil, err
	}
	loopRel, err := assumeRelation(ls.base, aff, op)
	if err != nil {
		return nil, err
	}
	exitRel, err := assumeRelation(ls.base, aff, negateOp(op))
	if err != nil {
		return nil, err
	}
	body, err := ls.lowerStmt(v.Body)
	if err != nil {
		return nil, err
	}
	// While re-evaluates its guard on every iteration, so any hoisted
	// comparison in Cond must be recomputed inside the loop body, not just
	// once up front -- the prefix statements are part of the loop's step.
	step := kleene.ConcatOf(kleene.Atom("assume", loopRel), body)
	if len(prefix) > 0 {
		guardPrefix, err := ls.lowerStmt(Seq{Stmts: prefix})
		if err != nil {
			return nil, err
		}
		step = kleene.ConcatOf(guardPrefix, step)
	}
	loop := kleene.StarOf(step)
	exit := kleene.Atom("assume_not", exitRel)
	if len(prefix) == 0 {
		return kleene.ConcatOf(loop, exit), nil
	}
	guardPrefix, err := ls.lowerStmt(Seq{Stmts: prefix})
	if err != nil {
		return nil, err
	}
	return kleene.ConcatOf(loop, guardPrefix, exit), nil
}

// lowerWrite lowers WriteLocal/WriteGlobal uniformly: both are silent atoms
// that equate the written dimension's post-value to the RHS and leave every
// other dimension untouched (spec.md §4.4).
func (ls *lowerState) lowerWrite(varName string, value Node) (kleene.Expr, error) {
	if !ls.base.Has(varName) {
		return nil, qerr.Schema("dsl: write to unknown variable %q", varName)
	}
	prefix, rewritten, err := ls.hoist(value)
	if err != nil {
		return nil, err
	}
	aff, err := lowerAffine(rewritten)
	if err != nil {
		return nil, err
	}
	rel, err := writeRelation(ls.base, varName, aff)
	if err != nil {
		return nil, err
	}
	atom := kleene.Atom("write:"+varName, rel)
	if len(prefix) == 0 {
		return atom, nil
	}
	prefixExpr, err := ls.lowerStmt(Seq{Stmts: prefix})
	if err != nil {
		return nil, err
	}
	return kleene.ConcatOf(prefixExpr, atom), nil
}

// lowerGuard reduces cond -- conventionally an Eq node -- to a single affine
// term standing for "term = 0" (op is the comparison to apply against that
// term; always semilin.Eq for a guard as written, left as a parameter so
// If/While's negation can reuse the same term with semilin.Neq), plus any
// statements that must run first to compute a hoisted nested comparison.
func (ls *lowerState) lowerGuard(cond Node) (affineTerm, semilin.Op, []Node, error) {
	eq, ok := cond.(Eq)
	if !ok {
		return affineTerm{}, 0, nil, qerr.Schema("dsl: condition must be an Eq node, got %T", cond)
	}
	prefixL, l, err := ls.hoist(eq.L)
	if err != nil {
		return affineTerm{}, 0, nil, err
	}
	prefixR, r, err := ls.hoist(eq.R)
	if err != nil {
		return affineTerm{}, 0, nil, err
	}
	la, err := lowerAffine(l)
	if err != nil {
		return affineTerm{}, 0, nil, err
	}
	ra, err := lowerAffine(r)
	if err != nil {
		return affineTerm{}, 0, nil, err
	}
	// term := L - R; the guard holds exactly when term = 0.
	term := la.sub(ra)
	return term, semilin.Eq, append(prefixL, prefixR...), nil
}

func negateOp(op semilin.Op) semilin.Op {
	if op == semilin.Eq {
		return semilin.Neq
	}
	return semilin.Eq
}

// hoist rewrites n, replacing any nested Eq subterm with a Read of a fresh
// local that an inserted If/WriteLocal pair defines as 1 or 0 (spec.md
// §4.4: "non-affine operands ... are lowered by introducing a fresh local
// with its defining equality"). The returned prefix must be lowered and
// concatenated before whatever consumes the rewritten node.
func (ls *lowerState) hoist(n Node) ([]Node, Node, error) {
	switch v := n.(type) {
	case Const:
		return nil, v, nil
	case Read:
		return nil, v, nil
	case Add:
		pl, l, err := ls.hoist(v.L)
		if err != nil {
			return nil, nil, err
		}
		pr, r, err := ls.hoist(v.R)
		if err != nil {
			return nil, nil, err
		}
		return append(pl, pr...), Add{L: l, R: r}, nil
	case Sub:
		pl, l, err := ls.hoist(v.L)
		if err != nil {
			return nil, nil, err
		}
		pr, r, err := ls.hoist(v.R)
		if err != nil {
			return nil, nil, err
		}
		return append(pl, pr...), Sub{L: l, R: r}, nil
	case Eq:
		pl, l, err := ls.hoist(v.L)
		if err != nil {
			return nil, nil, err
		}
		pr, r, err := ls.hoist(v.R)
		if err != nil {
			return nil, nil, err
		}
		name := ls.freshName()
		def := If{
			Cond: Eq{L: l, R: r},
			Then: WriteLocal{Var: name, Value: Const{N: 1}},
			Else: WriteLocal{Var: name, Value: Const{N: 0}},
		}
		prefix := append(append(pl, pr...), def)
		return prefix, Read{Var: name}, nil
	default:
		return nil, nil, qerr.Schema("dsl: %T is not an arithmetic expression", n)
	}
}

// lowerAffine reduces an expression already free of nested comparisons to
// its affineTerm normal form.
func lowerAffine(n Node) (affineTerm, error) {
	switch v := n.(type) {
	case Const:
		return constAffine(v.N), nil
	case Read:
		return readAffine(v.Var), nil
	case Add:
		l, err := lowerAffine(v.L)
		if err != nil {
			return affineTerm{}, err
		}
		r, err := lowerAffine(v.R)
		if err != nil {
			return affineTerm{}, err
		}
		return l.add(r), nil
	case Sub:
		l, err := lowerAffine(v.L)
		if err != nil {
			return affineTerm{}, err
		}
		r, err := lowerAffine(v.R)
		if err != nil {
			return affineTerm{}, err
		}
		return l.sub(r), nil
	default:
		return affineTerm{}, qerr.Schema("dsl: %T is not an affine expression", n)
	}
}

// writeRelation builds, directly in generator form, the relation {(pre,
// post) | post_w = constant + Σ coeffs[d]·pre_d ; post_d = pre_d for d ≠ w}.
// Projection of a write never needs the oracle: the substitution is linear,
// so its generator form is read straight off the coefficients (spec.md
// §4.1's note that only intersection-shaped operations need Solver).
func writeRelation(base *schema.Schema, w string, aff affineTerm) (semilin.SemilinearSet, error) {
	doubled := base.Doubled()
	basePt := schema.Zero(doubled).Set(w+"$post", aff.constant)

	var periods []schema.Vector
	for _, d := range base.Dims() {
		coupling := aff.coeffs[d.Name]
		p := schema.Zero(doubled).Set(d.Name+"$pre", 1)
		if d.Name == w {
			p = p.Set(w+"$post", coupling)
		} else {
			p = p.Set(d.Name+"$post", 1)
			if coupling != 0 {
				p = p.Set(w+"$post", p.At(w+"$post")+coupling)
			}
		}
		periods = append(periods, p)
	}
	return semilin.SemilinearSet{
		Schema:     doubled,
		Components: []semilin.LinearSet{semilin.NewLinearSet(doubled, basePt, periods)},
	}, nil
}

// assumeRelation builds the identity relation restricted to the pre-state
// satisfying "aff.coeffs·pre + aff.constant op 0" (op is semilin.Eq or
// semilin.Neq; those are the only comparisons an If/While guard or its
// negation ever needs).
func assumeRelation(base *schema.Schema, aff affineTerm, op semilin.Op) (semilin.SemilinearSet, error) {
	doubled := base.Doubled()
	pivot, sign, ok := findPivot(base, aff.coeffs)
	if !ok {
		if len(aff.coeffs) != 0 {
			return semilin.SemilinearSet{}, qerr.Schema("dsl: assume: condition has no unit-coefficient variable; repeated reads of one variable are not supported")
		}
		// No variable is referenced at all: the condition is either a
		// tautology or a contradiction over every point.
		holds := aff.constant == 0
		switch op {
		case semilin.Eq:
			if holds {
				return semilin.Identity(base), nil
			}
			return semilin.Empty(doubled), nil
		case semilin.Neq:
			if !holds {
				return semilin.Identity(base), nil
			}
			return semilin.Empty(doubled), nil
		default:
			return semilin.SemilinearSet{}, qerr.Schema("dsl: assume: unsupported operator %s", op)
		}
	}

	// Eliminate the pivot: pivot = rhsConst - Σ_other coupling[d]·d, where
	// rhsConst and coupling are aff's pivot-coefficient normalized to 1.
	rhsConst := -sign * aff.constant
	coupling := make(map[string]int64, len(aff.coeffs))
	for d, c := range aff.coeffs {
		if d == pivot {
			continue
		}
		coupling[d] = -sign * c
	}

	switch op {
	case semilin.Eq:
		return pinnedRelation(base, pivot, coupling, rhsConst), nil
	case semilin.Neq:
		below := rayRelation(base, pivot, coupling, rhsConst-1, -1)
		above := rayRelation(base, pivot, coupling, rhsConst+1, 1)
		return semilin.Union(below, above)
	default:
		return semilin.SemilinearSet{}, qerr.Schema("dsl: assume: unsupported operator %s", op)
	}
}

// findPivot scans base's dimensions in schema order rather than coeffs'
// randomized map order, so the same guard always eliminates the same
// variable (spec.md §5's bit-reproducibility requirement).
func findPivot(base *schema.Schema, coeffs map[string]int64) (name string, sign int64, ok bool) {
	for _, d := range base.Dims() {
		if coeffs[d.Name] == 1 {
			return d.Name, 1, true
		}
	}
	for _, d := range base.Dims() {
		if coeffs[d.Name] == -1 {
			return d.Name, -1, true
		}
	}
	return "", 0, false
}

// pinnedRelation builds {(pre, post) | pre_pivot = post_pivot = rhsConst +
// Σ coupling[d]·pre_d ; post_d = pre_d for d ≠ pivot}.
func pinnedRelation(base *schema.Schema, pivot string, coupling map[string]int64, rhsConst int64) semilin.SemilinearSet {
	doubled := base.Doubled()
	basePt := schema.Zero(doubled).Set(pivot+"$pre", rhsConst).Set(pivot+"$post", rhsConst)

	var periods []schema.Vector
	for _, d := range base.Dims() {
		if d.Name == pivot {
			continue
		}
		c := coupling[d.Name]
		p := schema.Zero(doubled).Set(d.Name+"$pre", 1).Set(d.Name+"$post", 1)
		if c != 0 {
			p = p.Set(pivot+"$pre", c).Set(pivot+"$post", c)
		}
		periods = append(periods, p)
	}
	return semilin.SemilinearSet{
		Schema:     doubled,
		Components: []semilin.LinearSet{semilin.NewLinearSet(doubled, basePt, periods)},
	}
}

// rayRelation builds {(pre, post) | pre_pivot = post_pivot = rayConst +
// Σ coupling[d]·pre_d + n·direction, n ∈ ℕ ; post_d = pre_d for d ≠ pivot}:
// one half of a Neq guard's disjunction (spec.md §4.4's restriction of the
// identity relation to the complement of a single pinned value).
func rayRelation(base *schema.Schema, pivot string, coupling map[string]int64, rayConst, direction int64) semilin.SemilinearSet {
	doubled := base.Doubled()
	basePt := schema.Zero(doubled).Set(pivot+"$pre", rayConst).Set(pivot+"$post", rayConst)

	var periods []schema.Vector
	for _, d := range base.Dims() {
		if d.Name == pivot {
			continue
		}
		c := coupling[d.Name]
		p := schema.Zero(doubled).Set(d.Name+"$pre", 1).Set(d.Name+"$post", 1)
		if c != 0 {
			p = p.Set(pivot+"$pre", c).Set(pivot+"$post", c)
		}
		periods = append(periods, p)
	}
	ray := schema.Zero(doubled).Set(pivot+"$pre", direction).Set(pivot+"$post", direction)
	periods = append(periods, ray)

	return semilin.SemilinearSet{
		Schema:     doubled,
		Components: []semilin.LinearSet{semilin.NewLinearSet(doubled, basePt, periods)},
	}
}

// Summarize lowers req's body, evaluates it under cfg, and applies the
// terminal projection of spec.md §4.4: the result retains every global
// dimension of base (both $pre and $post, which package petri's Build needs
// to read the request's net effect) and, if req.Return is a bare Read, that
// local's final value.
func Summarize(solver semilin.Solver, cfg kleene.Config, base *schema.Schema, req Request) (semilin.SemilinearSet, error) {
	expr, err := Lower(base, req.Body)
	if err != nil {
		return semilin.SemilinearSet{}, fmt.Errorf("dsl: summarize %s: %w", req.Name, err)
	}
	full, err := kleene.Eval(solver, base, cfg, expr)
	if err != nil {
		return semilin.SemilinearSet{}, fmt.Errorf("dsl: summarize %s: %w", req.Name, err)
	}
	keep := terminalKeep(base, req.Return)
	out, err := semilin.Project(full, keep)
	if err != nil {
		return semilin.SemilinearSet{}, fmt.Errorf("dsl: summarize %s: %w", req.Name, err)
	}
	return out, nil
}

func terminalKeep(base *schema.Schema, ret Node) []string {
	var keep []string
	for _, g := range base.Globals() {
		keep = append(keep, g+"$pre", g+"$post")
	}
	if r, ok := ret.(Read); ok {
		keep = append(keep, r.Var+"$post")
	}
	return keep
}
