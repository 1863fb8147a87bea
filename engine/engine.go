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

// Package engine coordinates the full serializability decision: it lowers
// every request to a semilinear summary, tries the relaxed-reachability
// fast path, and on an inconclusive result builds the real Petri net and
// drives the external reachability subprocess per disjunct of the
// non-serializable target, checking whatever proof obligation the
// subprocess's verdict implies.
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/serialcheck/engine/certificate"
	"github.com/serialcheck/engine/dsl"
	"github.com/serialcheck/engine/kleene"
	"github.com/serialcheck/engine/oracle"
	"github.com/serialcheck/engine/petri"
	"github.com/serialcheck/engine/qerr"
	"github.com/serialcheck/engine/rctx"
	"github.com/serialcheck/engine/schema"
	"github.com/serialcheck/engine/semilin"
	"github.com/serialcheck/engine/serialnfa"
)

// Config controls one coordinator run.
type Config struct {
	Kleene kleene.Config

	// SolverBound sizes the bounded pre-filter's search space before it
	// falls back to the SMT solver (oracle.Acquire).
	SolverBound int64

	// ReachabilityCommand/ReachabilityArgs name the external reachability
	// subprocess. An empty ReachabilityCommand disables the slow path: a
	// run whose fast path is inconclusive then fails with an OracleError
	// instead of attempting to exec an empty command.
	ReachabilityCommand string
	ReachabilityArgs    []string

	// InstanceBound approximates "an unbounded number of concurrent
	// instances" with a large but finite initial control-place token
	// count -- see DESIGN.md's "Unbounded instance count" decision.
	InstanceBound int64

	// Accounting builds the requests-annotated net variant alongside the
	// plain net, so a reachable counterexample's trace can be attributed
	// to the request instances that produced it.
	Accounting bool

	// OutputDir is the scratch directory run artifacts (the net, the
	// per-disjunct query files, their stdout/stderr) are written under.
	// Empty selects a fresh os.MkdirTemp directory.
	OutputDir string
}

// DefaultConfig mirrors every optimization switch on and a generous but
// bounded instance count, matching DefaultConfig's role elsewhere in this
// module as the configuration a caller reaches for first.
func DefaultConfig() Config {
	return Config{
		Kleene:              kleene.DefaultConfig(),
		SolverBound:         8,
		ReachabilityCommand: "smpt",
		InstanceBound:       1 << 20,
		Accounting:          true,
	}
}

// degraded drops the next optimization switch, in the order spec.md §4.7
// lists them, so two consecutive OracleErrors never retry with an
// identical configuration.
func degraded(cfg kleene.Config) kleene.Config {
	switch {
	case cfg.Bidirectional:
		cfg.Bidirectional = false
	case cfg.RemoveRedundant:
		cfg.RemoveRedundant = false
	case cfg.GenerateLess:
		cfg.GenerateLess = false
	case cfg.SmartOrder:
		cfg.SmartOrder = false
	}
	return cfg
}

// Verdict is the decided (or undecided) answer for one run.
type Verdict string

const (
	Serializable    Verdict = "serializable"
	NotSerializable Verdict = "not_serializable"
	TimedOut        Verdict = "timeout"
)

// Result is the outcome of one coordinator run, carrying enough detail for
// a caller to emit a stats record without re-deriving it.
type Result struct {
	Verdict Verdict

	// Certificate is nil when the relaxed-reachability fast path alone
	// decided the run -- no Petri net was ever built.
	Certificate *certificate.ProofCertificate

	UsedOracle      bool
	Retried         bool
	DisjunctCount   int
	PlaceCount      int
	TransitionCount int
	ComponentCount  int
}

// summarizeFunc reduces whichever input format a caller holds down to one
// semilin.SemilinearSet per request name, using solver/kcfg for whatever
// symbolic evaluation that reduction needs. Run and RunNetworkSystem each
// supply their own summarizeFunc over the same shared pipeline below, since
// the surface syntax differs but everything from the relaxed-reachability
// fast path onward does not.
type summarizeFunc func(solver semilin.Solver, kcfg kleene.Config) (map[string]semilin.SemilinearSet, error)

// Run decides serializability of the `.ser` AST requests in requests,
// retrying once with a degraded kleene.Config if the oracle path fails
// with a retryable OracleError (spec.md §7).
func Run(qc *rctx.QueryContext, cfg Config, example string, base *schema.Schema, requests []dsl.Request) (*Result, error) {
	summarize := func(solver semilin.Solver, kcfg kleene.Config) (map[string]semilin.SemilinearSet, error) {
		out := make(map[string]semilin.SemilinearSet, len(requests))
		for _, req := range requests {
			summary, err := dsl.Summarize(solver, kcfg, base, req)
			if err != nil {
				return nil, err
			}
			out[req.Name] = summary
		}
		return out, nil
	}
	return run(qc, cfg, example, base, summarize)
}

// RunNetworkSystem decides serializability of the spec.md §6 JSON "network
// system" input format: ns carries no schema of its own, so base must come
// from dsl.InferNetworkSchema(ns) (or an explicit caller-supplied schema, if
// the input is meant to share dimensions with a sibling file). Every
// request's kleene.Expr (dsl.LowerNetworkSystem's state-elimination
// construction) is evaluated with the same solver and kleene.Config the
// rest of the pipeline uses, so a degraded retry also degrades this step.
func RunNetworkSystem(qc *rctx.QueryContext, cfg Config, example string, base *schema.Schema, ns *dsl.NetworkSystem) (*Result, error) {
	exprs, err := dsl.LowerNetworkSystem(base, ns)
	if err != nil {
		return nil, err
	}
	summarize := func(solver semilin.Solver, kcfg kleene.Config) (map[string]semilin.SemilinearSet, error) {
		out := make(map[string]semilin.SemilinearSet, len(exprs))
		for name, expr := range exprs {
			summary, err := kleene.Eval(solver, base, kcfg, expr)
			if err != nil {
				return nil, err
			}
			out[name] = summary
		}
		return out, nil
	}
	return run(qc, cfg, example, base, summarize)
}

func run(qc *rctx.QueryContext, cfg Config, example string, base *schema.Schema, summarize summarizeFunc) (*Result, error) {
	res, err := runAttempt(qc, cfg, example, base, summarize)
	if err == nil {
		return res, nil
	}
	qe, ok := qerr.As(err, qerr.OracleError)
	if !ok || !qe.Retryable() {
		return nil, err
	}
	qc.Logger.Warn("oracle error, retrying with degraded configuration", map[string]interface{}{
		"example": example,
		"error":   qe.Error(),
	})
	retryCfg := cfg
	retryCfg.Kleene = degraded(cfg.Kleene)
	res, err = runAttempt(qc, retryCfg, example, base, summarize)
	if err != nil {
		return nil, err
	}
	res.Retried = true
	return res, nil
}

func runAttempt(qc *rctx.QueryContext, cfg Config, example string, base *schema.Schema, summarize summarizeFunc) (*Result, error) {
	if qc.Done() {
		return &Result{Verdict: TimedOut}, nil
	}

	handle := oracle.Acquire(cfg.SolverBound)
	defer handle.Release()

	byName, err := summarize(handle, cfg.Kleene)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	serialSummaries := make([]serialnfa.RequestSummary, 0, len(names))
	petriSummaries := make([]petri.RequestSummary, 0, len(names))
	for _, name := range names {
		summary := byName[name]
		serialSummaries = append(serialSummaries, serialnfa.RequestSummary{Name: name, Summary: summary})
		petriSummaries = append(petriSummaries, petri.RequestSummary{Name: name, Summary: summary})
	}

	if qc.Done() {
		return &Result{Verdict: TimedOut}, nil
	}

	seq, err := serialnfa.ParikhImage(handle, base, cfg.Kleene, serialSummaries)
	if err != nil {
		return nil, err
	}
	relaxedReach, err := serialnfa.RelaxedReach(handle, base, cfg.Kleene, serialSummaries)
	if err != nil {
		return nil, err
	}

	fastEmpty, err := serialnfa.NonSerializableIsEmpty(handle, relaxedReach, seq)
	if err != nil {
		return nil, err
	}
	if fastEmpty {
		qc.Logger.Info("serializable via relaxed-reachability fast path", map[string]interface{}{"example": example})
		return &Result{Verdict: Serializable, ComponentCount: len(seq.Components)}, nil
	}

	if qc.Done() {
		return &Result{Verdict: TimedOut}, nil
	}

	if cfg.ReachabilityCommand == "" {
		return nil, qerr.Oracle(fmt.Errorf("engine: relaxed-reachability fast path was inconclusive and no reachability command is configured"))
	}

	return runOraclePath(qc, cfg, example, base, seq, petriSummaries, handle)
}

// runOraclePath is spec.md §4.5/§4.6's slow path: fix Seq at the real
// initial state, complement it to get the region that would witness
// non-serializability, build the real Petri net, and drive the external
// reachability subprocess once per disjunct of that target -- "earlier
// disjuncts' proofs may not be reused," so each disjunct gets its own query
// file and, on a NotReachable verdict, its own target-exclusion check.
func runOraclePath(qc *rctx.QueryContext, cfg Config, example string, base *schema.Schema, seq semilin.SemilinearSet, petriSummaries []petri.RequestSummary, solver semilin.Solver) (*Result, error) {
	initial := schema.Zero(base)

	seqAtInit, err := semilin.EvaluateAt(solver, seq, base, initial)
	if err != nil {
		return nil, err
	}
	seqDNF, err := seqAtInit.ToDNF()
	if err != nil {
		return nil, qerr.Oracle(fmt.Errorf("engine: seq at initial state to DNF: %w", err))
	}
	targetDNF := semilin.Complement(seqDNF)
	disjunctCount := len(targetDNF.Conjuncts)

	net, err := buildNet(base, petriSummaries, cfg.Accounting)
	if err != nil {
		return nil, fmt.Errorf("engine: build net: %w", err)
	}

	initMarking := initialMarking(base, net, cfg.InstanceBound)
	initVal := net.InitialMarking(initMarking)

	dir, cleanup, err := scratchDir(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("engine: scratch directory: %w", err)
	}
	defer cleanup()

	plainNet := net
	if cfg.Accounting {
		plainNet, err = petri.Build(base, petriSummaries)
		if err != nil {
			return nil, fmt.Errorf("engine: build plain net: %w", err)
		}
	}
	if err := writeNetArtifacts(dir, plainNet, net, initMarking, cfg.Accounting); err != nil {
		return nil, fmt.Errorf("engine: write net artifacts: %w", err)
	}
	// The reachability subprocess must query the net that initVal/net (the
	// accounting-annotated net, when accounting is on) actually describes,
	// not the plain net written alongside it for inspection.
	netFile := "petri.net"
	if cfg.Accounting {
		netFile = "petri_with_requests.net"
	}
	netPath := filepath.Join(dir, netFile)

	transitions := make([]semilin.SemilinearSet, len(petriSummaries))
	for i, p := range petriSummaries {
		transitions[i] = p.Summary
	}

	placeOf := func(name string) string { return "v:" + name }
	reach := oracle.NewReachability(cfg.ReachabilityCommand, cfg.ReachabilityArgs...)

	var lastCert *certificate.ProofCertificate
	for i, conj := range targetDNF.Conjuncts {
		if qc.Done() {
			return &Result{
				Verdict:         TimedOut,
				UsedOracle:      true,
				DisjunctCount:   disjunctCount,
				PlaceCount:      len(net.Places),
				TransitionCount: len(net.Transitions),
				ComponentCount:  len(seq.Components),
			}, nil
		}

		disjunctDNF := semilin.DNF{Schema: targetDNF.Schema, Conjuncts: []semilin.Conjunct{conj}}
		queryPath := filepath.Join(dir, fmt.Sprintf("smpt_constraints_disjunct_%d.xml", i))
		if err := os.WriteFile(queryPath, []byte(oracle.WriteQuery(disjunctDNF, placeOf)), 0o644); err != nil {
			return nil, fmt.Errorf("engine: write query %d: %w", i, err)
		}

		result, err := reach.Check(qc, oracle.ReachabilityRequest{NetPath: netPath, QueryPath: queryPath})
		if err != nil {
			return nil, err
		}
		writeProcessArtifacts(dir, i, result)

		switch result.Status {
		case oracle.Reachable:
			cert, err := certificate.CheckCounterexampleRegion(net, initVal, result.FiringSequence, base, targetDNF)
			if err != nil {
				return nil, err
			}
			return &Result{
				Verdict:         NotSerializable,
				Certificate:     cert,
				UsedOracle:      true,
				DisjunctCount:   disjunctCount,
				PlaceCount:      len(net.Places),
				TransitionCount: len(net.Transitions),
				ComponentCount:  len(seq.Components),
			}, nil

		case oracle.NotReachable:
			disjunctSet, err := solver.Canonicalize(disjunctDNF, nil)
			if err != nil {
				return nil, qerr.Oracle(fmt.Errorf("engine: canonicalize disjunct %d: %w", i, err))
			}
			cert, err := certificate.CheckInvariant(solver, base, initial, transitions, *disjunctSet, result.Invariant)
			if err != nil {
				return nil, err
			}
			lastCert = cert

		default:
			return &Result{
				Verdict:         TimedOut,
				UsedOracle:      true,
				DisjunctCount:   disjunctCount,
				PlaceCount:      len(net.Places),
				TransitionCount: len(net.Transitions),
				ComponentCount:  len(seq.Components),
			}, nil
		}
	}

	return &Result{
		Verdict:         Serializable,
		Certificate:     lastCert,
		UsedOracle:      true,
		DisjunctCount:   disjunctCount,
		PlaceCount:      len(net.Places),
		TransitionCount: len(net.Transitions),
		ComponentCount:  len(seq.Components),
	}, nil
}

func buildNet(base *schema.Schema, requests []petri.RequestSummary, accounting bool) (*petri.PetriNet, error) {
	if accounting {
		return petri.BuildWithRequests(base, requests)
	}
	return petri.Build(base, requests)
}

// initialMarking assigns every value place zero and every genuine control
// place bound tokens -- the finite approximation of "unboundedly many
// concurrent instances" (DESIGN.md). Accounting places (suffixed
// "_count") are deliberately left unset so InitialMarking's zero-extension
// starts them empty; they exist to be written to, not read from, at time
// zero.
func initialMarking(base *schema.Schema, net *petri.PetriNet, bound int64) map[string]int64 {
	m := make(map[string]int64, base.Len()+len(net.Places))
	for _, g := range base.Globals() {
		m["v:"+g] = 0
	}
	for id, p := range net.Places {
		if p.PlaceKind == petri.ControlPlace && !strings.HasSuffix(id, "_count") {
			m[id] = bound
		}
	}
	return m
}

func scratchDir(configured string) (dir string, cleanup func(), err error) {
	if configured != "" {
		if err := os.MkdirAll(configured, 0o755); err != nil {
			return "", nil, err
		}
		return configured, func() {}, nil
	}
	dir, err = os.MkdirTemp("", "serialcheck-")
	if err != nil {
		return "", nil, err
	}
	return dir, func() {}, nil
}

// writeNetArtifacts emits plainNet (no accounting places) to petri.net and,
// when accounting is set, the richer requestsNet to petri_with_requests.net
// alongside it, so the two §6-named artifacts are actually distinct rather
// than the same bytes under two names. initMarking is built against
// requestsNet's (superset) places and reused for plainNet's marking too,
// since PetriNet.InitialMarking only reads the keys its own places need.
func writeNetArtifacts(dir string, plainNet, requestsNet *petri.PetriNet, initMarking map[string]int64, accounting bool) error {
	plainInit := plainNet.InitialMarking(initMarking)
	if err := os.WriteFile(filepath.Join(dir, "petri.net"), []byte(plainNet.ToNet(plainInit)), 0o644); err != nil {
		return err
	}
	if accounting {
		requestsInit := requestsNet.InitialMarking(initMarking)
		if err := os.WriteFile(filepath.Join(dir, "petri_with_requests.net"), []byte(requestsNet.ToNet(requestsInit)), 0o644); err != nil {
			return err
		}
	}
	return os.WriteFile(filepath.Join(dir, "petri.dot"), []byte(requestsNet.ToDOT()), 0o644)
}

func writeProcessArtifacts(dir string, disjunct int, result *oracle.ReachabilityResult) {
	base := filepath.Join(dir, fmt.Sprintf("smpt_constraints_disjunct_%d", disjunct))
	_ = os.WriteFile(base+".stdout", []byte(result.Stdout), 0o644)
	_ = os.WriteFile(base+".stderr", []byte(result.Stderr), 0o644)
}
