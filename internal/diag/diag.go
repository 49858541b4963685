// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package diag implements a small diagnostics accumulator, modeled on
// the severity/accumulation shape of internal/tfdiags but scoped down
// to what a library resolver needs: no HCL source ranges, just
// severity-tagged messages a caller can collect across a whole
// resolution pass and inspect afterward, plus a multierror-backed
// conversion to a single error for callers that just want err != nil.
package diag

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Severity distinguishes diagnostics that stop resolution (Error) from
// ones that are surfaced only for visibility (Warning).
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is one accumulated message.
type Diagnostic struct {
	Severity Severity
	Summary  string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Severity, d.Summary)
}

// Diagnostics accumulates zero or more Diagnostic values across a
// resolver pass. The zero value is ready to use.
type Diagnostics []Diagnostic

// Errorf appends an Error-severity diagnostic.
func (d *Diagnostics) Errorf(format string, args ...any) {
	*d = append(*d, Diagnostic{Severity: Error, Summary: fmt.Sprintf(format, args...)})
}

// Warnf appends a Warning-severity diagnostic.
func (d *Diagnostics) Warnf(format string, args ...any) {
	*d = append(*d, Diagnostic{Severity: Warning, Summary: fmt.Sprintf(format, args...)})
}

// Append merges other's diagnostics onto d.
func (d *Diagnostics) Append(other Diagnostics) {
	*d = append(*d, other...)
}

// HasErrors reports whether any accumulated diagnostic is Error
// severity.
func (d Diagnostics) HasErrors() bool {
	for _, diag := range d {
		if diag.Severity == Error {
			return true
		}
	}
	return false
}

// Err flattens the Error-severity diagnostics into a single
// *multierror.Error, or returns nil if there are none. Warnings are
// not included; callers that need them should range over Diagnostics
// directly.
func (d Diagnostics) Err() error {
	var merr *multierror.Error
	for _, diag := range d {
		if diag.Severity == Error {
			merr = multierror.Append(merr, diag)
		}
	}
	if merr == nil {
		return nil
	}
	return merr
}

// InvariantViolation is a programmer-error panic raised when resolver
// code detects a state that should be provably impossible (for example
// a monotonicity violation in flag propagation). It is always recovered
// at the resolver's public entry point and turned into an Error
// diagnostic, never allowed to escape as a panic to library callers.
type InvariantViolation struct {
	Summary string
}

func (e InvariantViolation) Error() string {
	return "invariant violation: " + e.Summary
}
