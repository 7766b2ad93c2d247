// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reflog implements the logging and error-classification idiom
// shared by every operator and driver package in refmesh.
package reflog

import (
	"fmt"

	"github.com/cpmech/gosl/io"
)

// Kind classifies the outcome of an operator invocation or a driver step.
type Kind int

const (
	// OK means the operation committed successfully.
	OK Kind = iota
	// Declined means a precondition was not met; not an error.
	Declined
	// Recoverable means a bounded local inconsistency occurred and a
	// fallback was used; logged but not fatal.
	Recoverable
	// Fatal means an invariant was violated; the process must abort.
	Fatal
	// OutOfRange means an input violated a documented precondition.
	OutOfRange
)

// String implements fmt.Stringer
func (k Kind) String() string {
	switch k {
	case OK:
		return "ok"
	case Declined:
		return "declined"
	case Recoverable:
		return "recoverable"
	case Fatal:
		return "fatal"
	case OutOfRange:
		return "out-of-range"
	}
	return "unknown"
}

// Status is the sum-typed result every operator returns: Declined,
// Recoverable(reason), Fatal(diagnostic), OutOfRange(reason), or OK.
type Status struct {
	Kind   Kind
	Reason string
}

// Ok returns the OK status
func Ok() Status { return Status{Kind: OK} }

// Decline returns a Declined status carrying why the precondition failed
func Decline(reason string, a ...interface{}) Status {
	return Status{Kind: Declined, Reason: fmt.Sprintf(reason, a...)}
}

// Recover returns a Recoverable status; the caller already applied a
// fallback and only needs this logged
func Recover(reason string, a ...interface{}) Status {
	return Status{Kind: Recoverable, Reason: fmt.Sprintf(reason, a...)}
}

// FatalStatus returns a Fatal status carrying a diagnostic string
func FatalStatus(reason string, a ...interface{}) Status {
	return Status{Kind: Fatal, Reason: fmt.Sprintf(reason, a...)}
}

// OutOfRangeStatus returns an OutOfRange status
func OutOfRangeStatus(reason string, a ...interface{}) Status {
	return Status{Kind: OutOfRange, Reason: fmt.Sprintf(reason, a...)}
}

// IsOk tells whether this status is OK
func (s Status) IsOk() bool { return s.Kind == OK }

// IsDeclined tells whether this status is Declined
func (s Status) IsDeclined() bool { return s.Kind == Declined }

// IsFatal tells whether this status is Fatal
func (s Status) IsFatal() bool { return s.Kind == Fatal }

// Error implements the error interface so a Status can be returned/wrapped
// as a normal Go error wherever that is more idiomatic than passing Status
// by value (e.g. across an external-collaborator interface boundary).
func (s Status) Error() string {
	if s.Reason == "" {
		return s.Kind.String()
	}
	return fmt.Sprintf("%s: %s", s.Kind, s.Reason)
}

// LogErr logs err (if non-nil) prefixed with msg and returns whether to
// stop; a single call site usable in an early-return chain.
func LogErr(err error, msg string) (stop bool) {
	if err != nil {
		io.Pfred("ERROR: %s: %v\n", msg, err)
		return true
	}
	return false
}

// LogErrCond logs msg (formatted) when condition is true and returns it back
func LogErrCond(condition bool, msg string, a ...interface{}) (stop bool) {
	if condition {
		io.Pfred("ERROR: "+msg+"\n", a...)
		return true
	}
	return false
}

// LogDeclined logs a Declined status at low verbosity; the driver only
// counts these for bookkeeping
func LogDeclined(what string, s Status) {
	if s.Kind != Declined {
		return
	}
	io.Pfgrey("declined %s: %s\n", what, s.Reason)
}

// LogRecoverable logs a Recoverable status
func LogRecoverable(what string, s Status) {
	if s.Kind != Recoverable {
		return
	}
	io.Pfyel("recoverable %s: %s\n", what, s.Reason)
}
