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

// Package stats appends one JSON object per run to out/serializability_stats.jsonl
// (spec.md §6): the decided answer, timings, the optimization switches that
// were in effect, and the net/relation sizes the run produced. Records are
// immutable once appended: the file is only ever opened for appending.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Result mirrors engine.Verdict's string values without importing package
// engine, keeping this package a leaf any caller (the CLI, a future batch
// runner) can depend on without pulling in the whole coordinator.
type Result string

const (
	Serializable    Result = "serializable"
	NotSerializable Result = "not_serializable"
	TimedOut        Result = "timeout"
	Error           Result = "error"
)

// Record is one line of out/serializability_stats.jsonl.
type Record struct {
	Example string `json:"example"`
	Result  Result `json:"result"`

	CPUSeconds      float64 `json:"cpu_seconds"`
	FastPathSeconds float64 `json:"fast_path_seconds,omitempty"`
	OracleSeconds   float64 `json:"oracle_seconds,omitempty"`

	Bidirectional     bool `json:"bidirectional"`
	RemoveRedundant   bool `json:"remove_redundant"`
	GenerateLess      bool `json:"generate_less"`
	SmartKleeneOrder  bool `json:"smart_kleene_order"`

	DisjunctCount   int `json:"disjunct_count"`
	PlaceCount      int `json:"place_count"`
	TransitionCount int `json:"transition_count"`
	ComponentCount  int `json:"component_count"`

	UsedOracle bool   `json:"used_oracle"`
	Retried    bool   `json:"retried"`
	Error      string `json:"error,omitempty"`
}

// Writer appends Records to one JSONL file, one json.Marshal per line. All
// methods are safe for concurrent use: a batch run over many examples may
// append from several goroutines at once, and each Append must be one
// atomic write so lines never interleave.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// Open appends to (creating if necessary) the JSONL file at path.
func Open(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("stats: open %s: %w", path, err)
	}
	return &Writer{file: f, enc: json.NewEncoder(f)}, nil
}

// Append writes r as one line. json.Encoder.Encode already appends the
// trailing newline JSONL requires.
func (w *Writer) Append(r Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("stats: append record for %q: %w", r.Example, err)
	}
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
