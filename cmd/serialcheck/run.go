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

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/serialcheck/engine/clock"
	"github.com/serialcheck/engine/dsl"
	"github.com/serialcheck/engine/engine"
	"github.com/serialcheck/engine/qerr"
	"github.com/serialcheck/engine/rctx"
	"github.com/serialcheck/engine/stats"
)

// runCheck is serialcheck's single action: load inputPath, decide
// serializability, print a colored summary, write the run's artifacts
// under out/<example>/, and append a stats.Record.
func runCheck(cc *cli.Context, cliCfg *Config, inputPath string) error {
	if override, err := loadYAMLOverrides(cliCfg.ConfigFile); err != nil {
		return err
	} else if override != nil {
		override.applyTo(cliCfg)
	}

	example := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outRoot := cliCfg.OutDir
	if outRoot == "" {
		outRoot = "out"
	}
	exampleDir := filepath.Join(outRoot, example)
	if err := os.MkdirAll(exampleDir, 0o755); err != nil {
		return fmt.Errorf("serialcheck: create output directory: %w", err)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("serialcheck: read %s: %w", inputPath, err)
	}
	if err := os.WriteFile(filepath.Join(exampleDir, filepath.Base(inputPath)), data, 0o644); err != nil {
		return fmt.Errorf("serialcheck: copy input into %s: %w", exampleDir, err)
	}

	cfg := engine.DefaultConfig()
	cfg.Kleene.Bidirectional = !cliCfg.WithoutBidirectional
	cfg.Kleene.RemoveRedundant = !cliCfg.WithoutRemoveRedundant
	cfg.Kleene.GenerateLess = !cliCfg.WithoutGenerateLess
	cfg.Kleene.SmartOrder = !cliCfg.WithoutSmartKleeneOrder
	if cliCfg.ReachabilityCommand != "" {
		cfg.ReachabilityCommand = cliCfg.ReachabilityCommand
	}
	if cliCfg.InstanceBound > 0 {
		cfg.InstanceBound = cliCfg.InstanceBound
	}
	cfg.OutputDir = exampleDir

	qc := newQueryContext(cliCfg)
	if cliCfg.Timeout > 0 {
		ctx, cancel := context.WithTimeout(qc.Context, time.Duration(cliCfg.Timeout)*time.Second)
		defer cancel()
		qc.Context = ctx
	}

	start := qc.Clock.Now()
	res, runErr := decide(qc, cfg, example, data, inputPath)
	elapsed := qc.Clock.Now().Sub(start).Seconds()

	record := stats.Record{
		Example:          example,
		CPUSeconds:       elapsed,
		Bidirectional:    cfg.Kleene.Bidirectional,
		RemoveRedundant:  cfg.Kleene.RemoveRedundant,
		GenerateLess:     cfg.Kleene.GenerateLess,
		SmartKleeneOrder: cfg.Kleene.SmartOrder,
	}
	if runErr != nil {
		record.Result = stats.Error
		record.Error = runErr.Error()
	} else {
		record.Result = stats.Result(res.Verdict)
		record.DisjunctCount = res.DisjunctCount
		record.PlaceCount = res.PlaceCount
		record.TransitionCount = res.TransitionCount
		record.ComponentCount = res.ComponentCount
		record.UsedOracle = res.UsedOracle
		record.Retried = res.Retried
	}
	if err := appendStats(outRoot, record); err != nil {
		fmt.Fprintf(cc.Out, "serialcheck: warning: failed to append stats record: %v\n", err)
	}

	if runErr != nil {
		return runErr
	}

	if err := writeSummaryArtifact(exampleDir, res); err != nil {
		return fmt.Errorf("serialcheck: write summary: %w", err)
	}
	printSummary(cc, example, res)

	if res.Verdict == engine.TimedOut {
		return cli.ExitCodeErr(2)
	}
	return nil
}

func decide(qc *rctx.QueryContext, cfg engine.Config, example string, data []byte, inputPath string) (*engine.Result, error) {
	switch strings.ToLower(filepath.Ext(inputPath)) {
	case ".json":
		ns, err := dsl.LoadNetworkSystem(data)
		if err != nil {
			return nil, err
		}
		base, err := dsl.InferNetworkSchema(ns)
		if err != nil {
			return nil, err
		}
		return engine.RunNetworkSystem(qc, cfg, example, base, ns)
	case ".ser":
		return nil, qerr.Parse(inputPath, "the `.ser` surface-syntax parser is out of scope; supply a JSON network system or embed this module and call engine.Run directly with a dsl.Program you built yourself")
	default:
		return nil, qerr.Parse(inputPath, "unrecognized input format %q, want .json or .ser", filepath.Ext(inputPath))
	}
}

func newQueryContext(cliCfg *Config) *rctx.QueryContext {
	qc := rctx.New(context.Background(), clock.NewRealTimeClock())
	if cliCfg.Verbose {
		qc = qc.WithLogger(rctx.NewProductionZapLogger())
	}
	return qc
}

func appendStats(outRoot string, r stats.Record) error {
	w, err := stats.Open(filepath.Join(outRoot, "serializability_stats.jsonl"))
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Append(r)
}

func writeSummaryArtifact(exampleDir string, res *engine.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "verdict: %s\n", res.Verdict)
	fmt.Fprintf(&b, "used_oracle: %v\n", res.UsedOracle)
	fmt.Fprintf(&b, "retried: %v\n", res.Retried)
	fmt.Fprintf(&b, "disjunct_count: %d\n", res.DisjunctCount)
	fmt.Fprintf(&b, "place_count: %d\n", res.PlaceCount)
	fmt.Fprintf(&b, "transition_count: %d\n", res.TransitionCount)
	fmt.Fprintf(&b, "component_count: %d\n", res.ComponentCount)
	if res.Certificate != nil {
		fmt.Fprintf(&b, "certificate_satisfied: %v\n", res.Certificate.AllSatisfied())
	}
	return os.WriteFile(filepath.Join(exampleDir, "semilinear.txt"), []byte(b.String()), 0o644)
}

func printSummary(cc *cli.Context, example string, res *engine.Result) {
	var verdict string
	switch res.Verdict {
	case engine.Serializable:
		verdict = color.GreenString(string(res.Verdict))
	case engine.NotSerializable:
		verdict = color.RedString(string(res.Verdict))
	default:
		verdict = color.YellowString(string(res.Verdict))
	}
	fmt.Fprintf(cc.Out, "%s: %s\n", example, verdict)
}
