// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package diag

import "testing"

func TestDiagnosticsHasErrors(t *testing.T) {
	var d Diagnostics
	if d.HasErrors() {
		t.Fatal("empty Diagnostics should not report errors")
	}

	d.Warnf("heads up: %s", "something")
	if d.HasErrors() {
		t.Fatal("a warning alone should not count as an error")
	}

	d.Errorf("boom: %d", 42)
	if !d.HasErrors() {
		t.Fatal("expected HasErrors() once an Error diagnostic is appended")
	}
	if len(d) != 2 {
		t.Fatalf("len(d) = %d, want 2", len(d))
	}
}

func TestDiagnosticsErrCollectsOnlyErrors(t *testing.T) {
	var d Diagnostics
	d.Warnf("just fyi")
	if err := d.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil when only warnings are present", err)
	}

	d.Errorf("real problem")
	err := d.Err()
	if err == nil {
		t.Fatal("Err() = nil, want a non-nil error once an Error diagnostic exists")
	}
}

func TestDiagnosticsAppend(t *testing.T) {
	var a, b Diagnostics
	a.Errorf("from a")
	b.Warnf("from b")

	a.Append(b)
	if len(a) != 2 {
		t.Fatalf("len(a) = %d, want 2 after Append", len(a))
	}
}

func TestInvariantViolationError(t *testing.T) {
	iv := InvariantViolation{Summary: "flags decreased monotonicity"}
	want := "invariant violation: flags decreased monotonicity"
	if got := iv.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
