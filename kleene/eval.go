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

import (
	"fmt"
	"sort"

	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

// Eval evaluates e bottom-up into a single semilinear relation over sch's
// doubled schema (spec.md §4.3). cfg's four switches each shape one stage of
// the evaluation without changing the relation any stage ultimately
// produces -- spec.md §8's invariance property.
func Eval(solver semilin.Solver, sch *schema.Schema, cfg Config, e Expr) (semilin.SemilinearSet, error) {
	switch v := e.(type) {
	case AtomExpr:
		return v.Relation, nil
	case UnionExpr:
		return evalUnion(solver, sch, cfg, v)
	case ConcatExpr:
		return evalConcat(solver, sch, cfg, v)
	case StarExpr:
		return evalStar(solver, sch, cfg, v)
	default:
		return semilin.SemilinearSet{}, fmt.Errorf("kleene: eval: unknown expression type %T", e)
	}
}

func evalUnion(solver semilin.Solver, sch *schema.Schema, cfg Config, u UnionExpr) (semilin.SemilinearSet, error) {
	rels := make([]semilin.SemilinearSet, 0, len(u.Terms))
	for _, term := range u.Terms {
		r, err := Eval(solver, sch, cfg, term)
		if err != nil {
			return semilin.SemilinearSet{}, err
		}
		if cfg.Bidirectional {
			empty, err := isProvablyEmpty(solver, r)
			if err != nil {
				return semilin.SemilinearSet{}, err
			}
			if empty {
				continue
			}
		}
		rels = append(rels, r)
	}
	if len(rels) == 0 {
		return semilin.Empty(sch.Doubled()), nil
	}

	if cfg.SmartOrder {
		sort.SliceStable(rels, func(i, j int) bool {
			return componentWeight(rels[i]) < componentWeight(rels[j])
		})
	}

	out := rels[0]
	var err error
	for _, r := range rels[1:] {
		out, err = semilin.Union(out, r)
		if err != nil {
			return semilin.SemilinearSet{}, fmt.Errorf("kleene: union: %w", err)
		}
	}
	out = out.RemoveRedundant()

	if cfg.RemoveRedundant {
		out, err = removeSubsumed(solver, out, cfg.RedundancyBailout)
		if err != nil {
			return semilin.SemilinearSet{}, err
		}
	}
	return out, nil
}

func evalConcat(solver semilin.Solver, sch *schema.Schema, cfg Config, c ConcatExpr) (semilin.SemilinearSet, error) {
	rels := make([]semilin.SemilinearSet, 0, len(c.Terms))
	for _, term := range c.Terms {
		r, err := Eval(solver, sch, cfg, term)
		if err != nil {
			return semilin.SemilinearSet{}, err
		}
		rels = append(rels, r)
	}
	if len(rels) == 0 {
		return semilin.Empty(sch.Doubled()), nil
	}

	out := rels[0]
	for i := 1; i < len(rels); i++ {
		if cfg.GenerateLess {
			dead, err := noOverlap(solver, sch, out, rels[i])
			if err != nil {
				return semilin.SemilinearSet{}, err
			}
			if dead {
				return semilin.Empty(sch.Doubled()), nil
			}
		}
		var err error
		out, err = semilin.Compose(solver, out, rels[i], sch)
		if err != nil {
			return semilin.SemilinearSet{}, fmt.Errorf("kleene: concat: %w", err)
		}
	}
	return out, nil
}

func evalStar(solver semilin.Solver, sch *schema.Schema, cfg Config, s StarExpr) (semilin.SemilinearSet, error) {
	body, err := Eval(solver, sch, cfg, s.Body)
	if err != nil {
		return semilin.SemilinearSet{}, err
	}
	result, err := semilin.Star(solver, body, sch, cfg.maxStarIterations())
	if err != nil {
		cfg.logger().Warn("star did not converge", map[string]interface{}{
			"state": Stalled.String(),
			"error": err.Error(),
		})
		return semilin.SemilinearSet{}, fmt.Errorf("kleene: star: %w", err)
	}
	cfg.logger().Debug("star converged", map[string]interface{}{
		"state":      Saturated.String(),
		"components": len(result.Components),
	})
	return result, nil
}

// isProvablyEmpty decides emptiness of a relation already in generator
// form: the cheap syntactic check first (a zero-component set has no
// points), falling through to the oracle only when that is inconclusive.
func isProvablyEmpty(solver semilin.Solver, r semilin.SemilinearSet) (bool, error) {
	if r.IsEmpty() {
		return true, nil
	}
	d, err := r.ToDNF()
	if err != nil {
		return false, fmt.Errorf("kleene: is_provably_empty: %w", err)
	}
	return semilin.IsEmptyViaSolver(solver, d)
}

// componentWeight is the well-founded measure spec.md §4.3 orders union
// terms by under SmartOrder: component count first (cheaper Union/Subset
// calls downstream), then the largest period coefficient magnitude seen in
// any component (a proxy for how quickly the term's contribution to a later
// star will saturate).
func componentWeight(r semilin.SemilinearSet) int64 {
	weight := int64(len(r.Components)) * 1_000_000
	var maxCoeff int64
	for _, c := range r.Components {
		for _, p := range c.Periods {
			for _, v := range p.Coeffs {
				if v < 0 {
					v = -v
				}
				if v > maxCoeff {
					maxCoeff = v
				}
			}
		}
	}
	return weight + maxCoeff
}

// removeSubsumed drops a union component once it is a subset of the
// components already kept -- beyond RemoveRedundant's unconditional
// exact-duplicate removal (spec.md §4.7's "remove-redundant-component"). It
// keeps components incrementally, checking each candidate only against
// what has already survived, so that of two mutually-redundant components
// exactly one is kept rather than both being dropped.
func removeSubsumed(solver semilin.Solver, s semilin.SemilinearSet, bailout int) (semilin.SemilinearSet, error) {
	if bailout > 0 && len(s.Components) > bailout {
		return s, nil
	}
	kept := semilin.SemilinearSet{Schema: s.Schema}
	for _, c := range s.Components {
		candidate := semilin.SemilinearSet{Schema: s.Schema, Components: []semilin.LinearSet{c}}
		if len(kept.Components) > 0 {
			subsumed, err := semilin.Subset(solver, candidate, kept)
			if err != nil {
				return semilin.SemilinearSet{}, fmt.Errorf("kleene: remove_subsumed: %w", err)
			}
			if subsumed {
				continue
			}
		}
		kept.Components = append(kept.Components, c)
	}
	return kept, nil
}

// noOverlap reports whether out's post-image and next's pre-image, each
// restricted onto sch's un-suffixed dimensions, are disjoint -- in which
// case their composition is provably empty without running Compose at all
// (spec.md §4.7's "generate-less" optimization).
func noOverlap(solver semilin.Solver, sch *schema.Schema, out, next semilin.SemilinearSet) (bool, error) {
	post := restrictToBase(out, sch, "$post")
	pre := restrictToBase(next, sch, "$pre")
	joined, err := semilin.Intersect(solver, post, pre)
	if err != nil {
		return false, fmt.Errorf("kleene: generate_less: %w", err)
	}
	return isProvablyEmpty(solver, joined)
}

// restrictToBase re-expresses s, whose schema carries dimensions suffixed
// suffix (plus possibly others), as a relation over base's un-suffixed
// dimensions -- reading each kept coordinate via schema.Vector.At and
// rebuilding fresh vectors, since semilin's own rename helpers are
// unexported.
func restrictToBase(s semilin.SemilinearSet, base *schema.Schema, suffix string) semilin.SemilinearSet {
	out := semilin.SemilinearSet{Schema: base}
	for _, c := range s.Components {
		out.Components = append(out.Components, restrictLinear(c, base, suffix))
	}
	return out
}

func restrictLinear(l semilin.LinearSet, base *schema.Schema, suffix string) semilin.LinearSet {
	b := restrictVector(l.Base, base, suffix)
	periods := make([]schema.Vector, len(l.Periods))
	for i, p := range l.Periods {
		periods[i] = restrictVector(p, base, suffix)
	}
	return semilin.NewLinearSet(base, b, periods)
}

func restrictVector(v schema.Vector, base *schema.Schema, suffix string) schema.Vector {
	out := schema.Zero(base)
	for _, d := range base.Dims() {
		out = out.Set(d.Name, v.At(d.Name+suffix))
	}
	return out
}
