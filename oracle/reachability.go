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

package oracle

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/serialcheck/engine/qerr"
	"github.com/serialcheck/engine/rctx"
)

// ReachStatus is the verdict returned by the reachability subprocess
// (spec.md §6's "Oracle boundary").
type ReachStatus int

const (
	NotReachable ReachStatus = iota
	Reachable
	TimedOut
)

func (s ReachStatus) String() string {
	switch s {
	case Reachable:
		return "REACHABLE"
	case NotReachable:
		return "NOT REACHABLE"
	case TimedOut:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// ReachabilityRequest names the net file and XML query file the subprocess
// should check reachability of (spec.md §6).
type ReachabilityRequest struct {
	NetPath   string
	QueryPath string
}

// ReachabilityResult is the subprocess's parsed verdict. Invariant is set
// only on NotReachable; FiringSequence is set only on Reachable.
type ReachabilityResult struct {
	Status         ReachStatus
	Invariant      string
	FiringSequence []string
	Stdout, Stderr string
}

// Reachability invokes an external reachability checker (an SMPT-shaped
// tool: https://github.com/nicolasamat/smpt or equivalent) as a subprocess
// taking a net file and an XML query and returning REACHABLE / NOT
// REACHABLE / TIMEOUT on stdout, modeled on CommandTask's subprocess shape.
// The adapter may be swapped for a different binary; only the Command and
// Args need to change, since the query file format is fixed (spec.md §6).
type Reachability struct {
	Command string
	Args    []string // extra flags prepended to net/query paths
}

// NewReachability returns a Reachability invoking the named binary.
func NewReachability(command string, extraArgs ...string) *Reachability {
	return &Reachability{Command: command, Args: extraArgs}
}

// Check runs the reachability subprocess for req and parses its verdict.
// Cancellation of qc.Context kills the subprocess; a non-timeout failure is
// wrapped as a qerr.OracleError so the coordinator can apply its
// single-retry policy (spec.md §7).
func (r *Reachability) Check(qc *rctx.QueryContext, req ReachabilityRequest) (*ReachabilityResult, error) {
	span := qc.Tracer.StartSpan("oracle.reachability")
	defer span.End()
	span.SetAttribute("net", req.NetPath)
	span.SetAttribute("query", req.QueryPath)

	qc.Metrics.Inc("reachability_calls_total")
	qc.Logger.Debug("invoking reachability oracle", map[string]interface{}{
		"command": r.Command,
		"net":     req.NetPath,
		"query":   req.QueryPath,
	})

	args := append(append([]string(nil), r.Args...), req.NetPath, req.QueryPath)
	cmd := exec.CommandContext(qc.Context, r.Command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := qc.Clock.Now()
	err := cmd.Run()
	duration := qc.Clock.Now().Sub(start).Seconds()
	qc.Metrics.Observe("reachability_duration_seconds", duration)

	out := stdout.String()
	result, parseErr := parseReachability(out)
	if result == nil {
		result = &ReachabilityResult{}
	}
	result.Stdout = out
	result.Stderr = stderr.String()

	if qc.Done() {
		result.Status = TimedOut
		qc.Metrics.Inc("reachability_timeouts_total")
		return result, nil
	}

	if err != nil {
		span.RecordError(err)
		qc.Metrics.Inc("reachability_errors_total")
		qc.ErrorRecorder.RecordError(err, map[string]interface{}{
			"command": r.Command,
			"net":     req.NetPath,
			"stderr":  truncate(result.Stderr, 500),
		})
		qc.Logger.Error("reachability oracle failed", map[string]interface{}{
			"command": r.Command,
			"error":   err.Error(),
			"stderr":  truncate(result.Stderr, 500),
		})
		return nil, qerr.Oracle(fmt.Errorf("reachability subprocess: %w", err))
	}
	if parseErr != nil {
		return nil, qerr.Oracle(fmt.Errorf("reachability subprocess: %w", parseErr))
	}

	qc.Metrics.Inc("reachability_success_total")
	return result, nil
}

func parseReachability(stdout string) (*ReachabilityResult, error) {
	switch {
	case strings.Contains(stdout, "NOT REACHABLE"):
		return &ReachabilityResult{Status: NotReachable, Invariant: extractAfter(stdout, "INVARIANT:")}, nil
	case strings.Contains(stdout, "REACHABLE"):
		seq := extractAfter(stdout, "SEQUENCE:")
		var fired []string
		if seq != "" {
			fired = strings.Fields(seq)
		}
		return &ReachabilityResult{Status: Reachable, FiringSequence: fired}, nil
	case strings.Contains(stdout, "TIMEOUT"):
		return &ReachabilityResult{Status: TimedOut}, nil
	default:
		return nil, fmt.Errorf("reachability: unrecognized subprocess output: %s", truncate(stdout, 200))
	}
}

func extractAfter(s, marker string) string {
	i := strings.Index(s, marker)
	if i < 0 {
		return ""
	}
	rest := s[i+len(marker):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
