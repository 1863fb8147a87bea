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
	"fmt"

	"github.com/scott-cotton/cli"
)

// Config is serialcheck's flag surface (spec.md §6):
//
//	serialcheck <input-path> [--timeout SECS] [--without-bidirectional]
//	  [--without-remove-redundant] [--without-generate-less]
//	  [--without-smart-kleene-order]
//
// plus the ambient options (output directory, reachability subprocess,
// instance bound, an optional YAML config file) SPEC_FULL.md's ambient
// stack adds around it.
type Config struct {
	*cli.Command

	Timeout int `cli:"name=timeout desc='wall-clock budget in seconds (0 = no deadline)'"`

	WithoutBidirectional    bool `cli:"name=without-bidirectional desc='disable bidirectional reachability pruning'"`
	WithoutRemoveRedundant  bool `cli:"name=without-remove-redundant desc='disable redundancy elimination'"`
	WithoutGenerateLess     bool `cli:"name=without-generate-less desc='disable generate-less narrowing'"`
	WithoutSmartKleeneOrder bool `cli:"name=without-smart-kleene-order desc='disable Kleene evaluation ordering heuristics'"`

	ConfigFile          string `cli:"name=config desc='optional YAML file overriding these flags'"`
	OutDir              string `cli:"name=out desc='output artifact root directory (default: out)'"`
	ReachabilityCommand string `cli:"name=reachability-cmd desc='external reachability subprocess (default: smpt)'"`
	InstanceBound       int64  `cli:"name=instance-bound desc='finite approximation of unboundedly many concurrent instances (default: 1048576)'"`
	Verbose             bool   `cli:"name=verbose aliases=v desc='emit structured zap logging instead of a silent run'"`
}

// RootCommand returns serialcheck's single top-level command. There is
// exactly one action (decide serializability of one input file), so unlike
// the multi-subcommand CLIs in the retrieved pack this stays a flat
// command with no WithSubs tree.
func RootCommand() *cli.Command {
	cfg := &Config{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "serialcheck").
		WithSynopsis("serialcheck <input-path> [opts] - decide serializability of a concurrent request program").
		WithDescription("Reads a JSON network system (`.ser` input is rejected) and reports " +
			"serializable, not_serializable, or timeout, appending one record to " +
			"out/serializability_stats.jsonl.").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *Config) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) < 1 {
		return fmt.Errorf("%w: usage: serialcheck <input-path> [opts]", cli.ErrUsage)
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: usage: serialcheck <input-path> [opts], got extra arguments %v", cli.ErrUsage, args[1:])
	}
	return runCheck(cc, cfg, args[0])
}
