// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package resource implements the action.Resource contract
// for each of the four composite-tree variants the resolver recognizes:
// primitive, group, clone and bundle. Variant-specific propagation
// (spec §4.4's "resource callback" hooks) lives in one file per variant;
// the shared bookkeeping — action list, flags, node lookup — lives in
// Base and is embedded by all four.
package resource

//go:generate go tool golang.org/x/tools/cmd/stringer -type Flags -trimprefix Flag

// Flags is the bitset of static properties a resource carries into
// resolution, independent of any one action's state.
type Flags uint8

const (
	// FlagManaged marks a resource the cluster is allowed to start and
	// stop. When an unmanaged, blocked resource's stop is unrunnable,
	// the evaluator's blocked-unmanaged-stop special case makes the
	// actions ordered after that stop unrunnable too.
	FlagManaged Flags = 1 << iota

	// FlagBlocked marks a resource whose actions must not run because
	// an ancestor in the composite tree has failed in a way that
	// prevents further operations on its descendants.
	FlagBlocked

	// FlagNotifyAllowed marks a resource that accepts notify-form
	// actions (the <id>_<qualifier>_notify_<interval> uuid grammar in C4).
	FlagNotifyAllowed

	// FlagReload marks a resource with a reload pending, cleared by
	// the ThenCancelsFirst rule when the cancelled first action is the
	// resource's reload (spec §4.2).
	FlagReload
)

func (f Flags) Has(other Flags) bool { return f&other == other }
func (f Flags) Any(other Flags) bool { return f&other != 0 }
