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

// Package qerr defines the error-kind hierarchy a query can fail with
// (spec.md §7): ParseError, SchemaError, OracleError, Timeout, InvalidProof,
// and InternalError. Every kind but OracleError is fatal to the run; the
// coordinator (package engine) is the only place that inspects Kind to
// decide whether to retry.
package qerr

import "fmt"

// Kind classifies a query failure.
type Kind int

const (
	// ParseError is malformed input; fatal.
	ParseError Kind = iota
	// SchemaError is a harmonization inconsistency (a name used as both
	// local and global); fatal.
	SchemaError
	// OracleError is an integer-set library or reachability subprocess
	// failure. A single retry with the next optimization-degraded
	// configuration is permitted; otherwise fatal.
	OracleError
	// Timeout is a deadline exceeded. It is not an error for the outer
	// driver, which reports result: timeout rather than aborting.
	Timeout
	// InvalidProof means a certificate check failed; it indicates an
	// oracle or adapter bug and is always fatal.
	InvalidProof
	// InternalError is an invariant violation (e.g. non-terminating star);
	// always fatal.
	InternalError
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case SchemaError:
		return "SchemaError"
	case OracleError:
		return "OracleError"
	case Timeout:
		return "Timeout"
	case InvalidProof:
		return "InvalidProof"
	case InternalError:
		return "InternalError"
	default:
		return "UnknownError"
	}
}

// Error is a query failure tagged with its Kind, an optional Location (for
// ParseError) and Obligation (for InvalidProof), and the wrapped cause.
type Error struct {
	Kind       Kind
	Message    string
	Location   string // set for ParseError
	Obligation string // set for InvalidProof: which obligation failed
	Cause      error
}

func (e *Error) Error() string {
	switch {
	case e.Location != "":
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Location, e.Message)
	case e.Obligation != "":
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Obligation, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Retryable reports whether the coordinator may retry the query once with a
// degraded optimization configuration (spec.md §7: true only for
// OracleError).
func (e *Error) Retryable() bool { return e.Kind == OracleError }

// Parse builds a ParseError at the given input location.
func Parse(location, format string, args ...interface{}) *Error {
	return &Error{Kind: ParseError, Location: location, Message: fmt.Sprintf(format, args...)}
}

// Schema builds a SchemaError.
func Schema(format string, args ...interface{}) *Error {
	return &Error{Kind: SchemaError, Message: fmt.Sprintf(format, args...)}
}

// Oracle wraps cause as an OracleError.
func Oracle(cause error) *Error {
	return &Error{Kind: OracleError, Message: cause.Error(), Cause: cause}
}

// TimedOut builds a Timeout.
func TimedOut(format string, args ...interface{}) *Error {
	return &Error{Kind: Timeout, Message: fmt.Sprintf(format, args...)}
}

// Proof builds an InvalidProof naming the failing obligation.
func Proof(obligation, format string, args ...interface{}) *Error {
	return &Error{Kind: InvalidProof, Obligation: obligation, Message: fmt.Sprintf(format, args...)}
}

// Internal builds an InternalError.
func Internal(format string, args ...interface{}) *Error {
	return &Error{Kind: InternalError, Message: fmt.Sprintf(format, args...)}
}

// As reports whether err is a *qerr.Error of the given kind, returning it if
// so. Callers use this instead of errors.Is, since Kind is a field, not a
// sentinel value.
func As(err error, kind Kind) (*Error, bool) {
	qe, ok := err.(*Error)
	if !ok || qe.Kind != kind {
		return nil, false
	}
	return qe, true
}
