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

import "github.com/serialcheck/engine/rctx"

// Config holds the four independently-disableable optimization switches of
// spec.md §4.7, each correctness-preserving on its own, plus the bounds the
// evaluator must respect. Package optimize builds a Config per CLI flag
// combination (spec.md §6) and runs the same query under each to check the
// "results must be invariant under any combination" testable property.
type Config struct {
	// Bidirectional drops a union term as soon as it is proven empty,
	// rather than carrying dead disjuncts through every later stage.
	Bidirectional bool

	// RemoveRedundant drops a union component L once subset(L, union of
	// the rest) holds, beyond the unconditional exact-duplicate removal
	// SemilinearSet.RemoveRedundant always performs.
	RemoveRedundant bool

	// GenerateLess checks, before composing two relations, whether the
	// left relation's post-image and the right relation's pre-domain
	// even intersect; an empty intersection makes the whole
	// concatenation provably empty without running Compose.
	GenerateLess bool

	// SmartOrder reorders an n-ary union's terms -- never a
	// concatenation's, since composition is not commutative -- to
	// evaluate low-component-count terms first.
	SmartOrder bool

	// MaxStarIterations bounds a star's saturation loop. <= 0 selects a
	// small default.
	MaxStarIterations int64

	// RedundancyBailout caps the component count RemoveRedundant's
	// subset checks run over; above it, the cost-bounded rule of
	// spec.md §4.1 skips the pass rather than pay oracle calls
	// quadratic in component count. <= 0 means unbounded.
	RedundancyBailout int

	// Logger receives convergence/pruning progress notes. Nil is
	// treated as rctx.NoOpLogger{}.
	Logger rctx.Logger
}

// DefaultConfig returns every switch enabled, matching the CLI's default
// (spec.md §6 flags are all --without-*, i.e. opt-out).
func DefaultConfig() Config {
	return Config{
		Bidirectional:     true,
		RemoveRedundant:   true,
		GenerateLess:      true,
		SmartOrder:        true,
		MaxStarIterations: 64,
		RedundancyBailout: 32,
		Logger:            rctx.NoOpLogger{},
	}
}

func (c Config) logger() rctx.Logger {
	if c.Logger == nil {
		return rctx.NoOpLogger{}
	}
	return c.Logger
}

func (c Config) maxStarIterations() int {
	if c.MaxStarIterations <= 0 {
		return 64
	}
	return int(c.MaxStarIterations)
}
