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
	"os"

	"github.com/goccy/go-yaml"
)

// yamlOverrides is the optional on-disk companion to Config's flags
// (SPEC_FULL.md's ambient "Configuration" section): every field is a
// pointer so an absent key leaves the corresponding flag's value alone
// rather than zeroing it out.
type yamlOverrides struct {
	Timeout                 *int     `yaml:"timeout"`
	WithoutBidirectional    *bool    `yaml:"without_bidirectional"`
	WithoutRemoveRedundant  *bool    `yaml:"without_remove_redundant"`
	WithoutGenerateLess     *bool    `yaml:"without_generate_less"`
	WithoutSmartKleeneOrder *bool    `yaml:"without_smart_kleene_order"`
	OutDir                  *string  `yaml:"out"`
	ReachabilityCommand     *string  `yaml:"reachability_cmd"`
	InstanceBound           *int64   `yaml:"instance_bound"`
	Verbose                 *bool    `yaml:"verbose"`
}

// loadYAMLOverrides reads path if non-empty, returning nil with no error
// when no config file was named.
func loadYAMLOverrides(path string) (*yamlOverrides, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("serialcheck: read config %s: %w", path, err)
	}
	var o yamlOverrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("serialcheck: parse config %s: %w", path, err)
	}
	return &o, nil
}

// applyTo overlays every set field of o onto cfg. A flag the user passed
// explicitly on the command line and a config-file value both land in the
// same Config fields, so config-file values always win here -- callers
// load the file after flag parsing on purpose, matching spec.md §6's
// "optional YAML config file" being a way to pin defaults for a whole
// batch of runs, not a per-invocation override a flag should lose to.
func (o *yamlOverrides) applyTo(cfg *Config) {
	if o.Timeout != nil {
		cfg.Timeout = *o.Timeout
	}
	if o.WithoutBidirectional != nil {
		cfg.WithoutBidirectional = *o.WithoutBidirectional
	}
	if o.WithoutRemoveRedundant != nil {
		cfg.WithoutRemoveRedundant = *o.WithoutRemoveRedundant
	}
	if o.WithoutGenerateLess != nil {
		cfg.WithoutGenerateLess = *o.WithoutGenerateLess
	}
	if o.WithoutSmartKleeneOrder != nil {
		cfg.WithoutSmartKleeneOrder = *o.WithoutSmartKleeneOrder
	}
	if o.OutDir != nil {
		cfg.OutDir = *o.OutDir
	}
	if o.ReachabilityCommand != nil {
		cfg.ReachabilityCommand = *o.ReachabilityCommand
	}
	if o.InstanceBound != nil {
		cfg.InstanceBound = *o.InstanceBound
	}
	if o.Verbose != nil {
		cfg.Verbose = *o.Verbose
	}
}
