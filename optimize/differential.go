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

package optimize

import (
	"sync"
	"time"

	"github.com/serialcheck/engine/kleene"
	"github.com/serialcheck/engine/qerr"
	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
)

// Outcome is one Variant's result from a differential run.
type Outcome struct {
	Variant  Variant
	Empty    bool
	Duration time.Duration
	Err      error
}

// Report aggregates every Variant's Outcome from a differential run.
type Report struct {
	Outcomes []Outcome

	// Agreed is true when every Variant that evaluated without error
	// reached the same emptiness answer.
	Agreed bool

	// Fastest is the quickest Variant among those that agreed with the
	// majority answer and evaluated without error.
	Fastest Variant
}

// Run evaluates expr under every combination AllVariants returns,
// concurrently, mirroring the fan-out-then-collect shape of a parallel task
// runner: each Variant gets its own goroutine and its own Config derived
// from base, writing to its own slice index, and a sync.WaitGroup gates
// collection the same way concurrent task results are gathered before being
// folded into one report.
//
// Run does not stop at the first disagreement; it always evaluates every
// Variant; errors are how a particular combination failing (e.g. a solver
// timeout at a low MaxStarIterations) gets reported without aborting the
// others, the same way ParallelTask collects every task's result before
// deciding whether to report a MultiError.
func Run(solver semilin.Solver, sch *schema.Schema, base kleene.Config, e kleene.Expr) (*Report, error) {
	variants := AllVariants()
	outcomes := make([]Outcome, len(variants))

	var wg sync.WaitGroup
	for i, v := range variants {
		wg.Add(1)
		go func(index int, variant Variant) {
			defer wg.Done()
			cfg := variant.Apply(base)
			start := time.Now()
			result, err := kleene.Eval(solver, sch, cfg, e)
			outcome := Outcome{Variant: variant, Duration: time.Since(start), Err: err}
			if err == nil {
				outcome.Empty = result.IsEmpty()
			}
			outcomes[index] = outcome
		}(i, v)
	}
	wg.Wait()

	return summarize(outcomes)
}

func summarize(outcomes []Outcome) (*Report, error) {
	report := &Report{Outcomes: outcomes}

	var errs multiErr
	votes := map[bool]int{}
	for _, o := range outcomes {
		if o.Err != nil {
			errs.add(o.Err)
			continue
		}
		votes[o.Empty]++
	}
	if len(votes) == 0 {
		return report, qerr.Internal("optimize: run: every variant failed")
	}

	majority := votes[true] >= votes[false]
	report.Agreed = len(votes) == 1

	var fastestSeen time.Duration
	var fastestSet bool
	for _, o := range outcomes {
		if o.Err != nil || o.Empty != majority {
			continue
		}
		if !fastestSet || o.Duration < fastestSeen {
			report.Fastest = o.Variant
			fastestSeen = o.Duration
			fastestSet = true
		}
	}
	if err := errs.errorOrNil(); err != nil {
		return report, err
	}
	if !report.Agreed {
		return report, qerr.Internal("optimize: run: variants disagree on emptiness: %d say empty, %d say non-empty", votes[true], votes[false])
	}
	return report, nil
}

// multiErr collects evaluation failures across variants, mirroring the
// teacher's MultiError without its flatten-on-add: single-error passthrough,
// joined message otherwise.
type multiErr struct {
	errs []error
}

func (m *multiErr) add(err error) {
	if err == nil {
		return
	}
	m.errs = append(m.errs, err)
}

func (m *multiErr) errorOrNil() error {
	switch len(m.errs) {
	case 0:
		return nil
	case 1:
		return m.errs[0]
	default:
		return qerr.Internal("optimize: run: %d of the variants failed, first error: %v", len(m.errs), m.errs[0])
	}
}
