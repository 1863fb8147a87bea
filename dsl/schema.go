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
	"sort"
	"strconv"
	"strings"

	"github.com/serialcheck/engine/schema"
)

// InferNetworkSchema derives the global variable schema a NetworkSystem
// implies: the format (spec.md §6) carries no separate schema section, and
// unlike the `.ser` DSL -- where a real surface-syntax parser (out of
// scope here) resolves each Read to a declared local or global -- a network
// system has no local-variable concept at all, since a request is only an
// entry location, not a sequence of statements with its own temporaries.
// Every variable name mentioned in a transition guard is therefore global
// by construction.
func InferNetworkSchema(ns *NetworkSystem) (*schema.Schema, error) {
	seen := map[string]bool{}
	var order []string
	note := func(name string) {
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	for _, t := range ns.Transitions {
		noteGuardVars(t[1], note)
		noteGuardVars(t[3], note)
	}

	sort.Strings(order)
	dims := make([]schema.Dim, 0, len(order))
	for _, name := range order {
		dims = append(dims, schema.Dim{Name: name, Kind: schema.Global})
	}
	return schema.New(dims...)
}

// noteGuardVars extracts the variable token(s) of one guard string -- the
// same "" / "true" / "var=const" / "var1=var2" syntax parseGuard reads --
// without building an AST node, since InferNetworkSchema only needs names.
func noteGuardVars(guard string, note func(string)) {
	g := strings.TrimSpace(guard)
	if g == "" || g == "true" {
		return
	}
	parts := strings.SplitN(g, "=", 2)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			continue
		}
		if p != "" {
			note(p)
		}
	}
}
