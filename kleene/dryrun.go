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

import "fmt"

// DryRunResult reports structural issues found in an Expr tree without
// invoking the solver -- the Kleene-expression analog of the workflow
// engine's pre-flight net check.
type DryRunResult struct {
	Valid       bool
	Issues      []DryRunIssue
	UnionArity  int
	ConcatDepth int
	StarDepth   int
}

// DryRunIssue names one structural concern DryRun flagged.
type DryRunIssue struct {
	Path string
	Note string
}

// DryRun walks e once, tallying union arity, concatenation chain length, and
// star nesting depth, and flags two patterns that are always a sign of a
// lowering bug rather than a legitimate query: an empty union or
// concatenation, and a star whose body is itself directly a star (star of
// star adds no expressive power and only costs an extra saturation pass).
func DryRun(e Expr) DryRunResult {
	var res DryRunResult
	walkDryRun(e, "root", 0, &res)
	res.Valid = len(res.Issues) == 0
	return res
}

func walkDryRun(e Expr, path string, starDepth int, res *DryRunResult) {
	if starDepth > res.StarDepth {
		res.StarDepth = starDepth
	}
	switch v := e.(type) {
	case AtomExpr:
		// leaf; nothing to recurse into.
	case UnionExpr:
		if len(v.Terms) > res.UnionArity {
			res.UnionArity = len(v.Terms)
		}
		if len(v.Terms) == 0 {
			res.Issues = append(res.Issues, DryRunIssue{Path: path, Note: "union with no terms"})
		}
		for i, t := range v.Terms {
			walkDryRun(t, fmt.Sprintf("%s/union[%d]", path, i), starDepth, res)
		}
	case ConcatExpr:
		if len(v.Terms) > res.ConcatDepth {
			res.ConcatDepth = len(v.Terms)
		}
		if len(v.Terms) == 0 {
			res.Issues = append(res.Issues, DryRunIssue{Path: path, Note: "concatenation with no terms"})
		}
		for i, t := range v.Terms {
			walkDryRun(t, fmt.Sprintf("%s/concat[%d]", path, i), starDepth, res)
		}
	case StarExpr:
		if _, nested := v.Body.(StarExpr); nested {
			res.Issues = append(res.Issues, DryRunIssue{Path: path, Note: "star of star adds no coverage over a single star"})
		}
		walkDryRun(v.Body, path+"/star", starDepth+1, res)
	default:
		res.Issues = append(res.Issues, DryRunIssue{Path: path, Note: fmt.Sprintf("unknown expression type %T", e)})
	}
}
