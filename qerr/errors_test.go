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

package qerr

import (
	"errors"
	"testing"
)

func TestOracleErrorIsRetryable(t *testing.T) {
	err := Oracle(errors.New("z3 timed out"))
	if !err.Retryable() {
		t.Error("OracleError should be retryable")
	}
}

func TestNonOracleErrorsAreNotRetryable(t *testing.T) {
	for _, err := range []*Error{
		Parse("line 3", "unexpected token"),
		Schema("x used as both local and global"),
		TimedOut("deadline exceeded"),
		Proof("closure", "transition t3 escapes invariant"),
		Internal("star did not converge"),
	} {
		if err.Retryable() {
			t.Errorf("%v should not be retryable", err.Kind)
		}
	}
}

func TestAsMatchesKind(t *testing.T) {
	err := Proof("initial-membership", "initial marking excluded by invariant")
	qe, ok := As(err, InvalidProof)
	if !ok || qe.Obligation != "initial-membership" {
		t.Fatalf("As(InvalidProof) = %v, %v", qe, ok)
	}
	if _, ok := As(err, SchemaError); ok {
		t.Error("As(SchemaError) should not match an InvalidProof")
	}
}
