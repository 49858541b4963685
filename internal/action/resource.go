// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package action

import "github.com/clusterkit/ordergraph/internal/orderkind"

// Resource is the contract the resolver requires of every resource it
// sees (spec §6, "resource-variant contract"). Package resource provides
// the concrete implementation, dispatching per variant; this interface is
// declared here, at the point of use, so that package action never needs
// to import package resource even though package resource must import
// package action to hold Action values in its own action list.
type Resource interface {
	// Name is used only for logging and dot-graph output.
	Name() string

	// Variant reports the resource's composite-tree rank, ordered
	// Primitive < Group < Clone < Bundle.
	Variant() Variant

	// Actions returns the resource's own actions, keyed by their
	// expanded or unexpanded uuid, for C4's expansion lookup.
	Actions() map[string]*Action

	// IsManaged, IsBlocked and NotifyAllowed surface the resource flags
	// the evaluator's blocked-unmanaged-stop and notify-form rules need
	// (spec §4.4, §4.5).
	IsManaged() bool
	IsBlocked() bool
	NotifyAllowed() bool

	// ActionFlags is C3's action_flags callback: variant-aware effective
	// flags for one of this resource's actions, optionally scoped to a
	// node. A nil node asks "is this runnable/optional at all, anywhere
	// relevant"; a non-nil node asks "...specifically here".
	ActionFlags(a *Action, node *Node) Flags

	// UpdateActions is C3's update_actions callback: variant-aware
	// propagation refinement invoked by the evaluator whenever then has
	// a resource. first/then are the two actions, node is the peer node
	// used for this evaluation, firstFlags/thenFlagsMask are the
	// effective flags already computed by the caller, kind is the
	// single component kind currently being applied, and sched is the
	// threaded scheduler context.
	UpdateActions(first, then *Action, node *Node, firstFlags, thenFlagsMask Flags, kind orderkind.Kind, sched Scheduler) ChangeBits

	// Location reports the node this resource is placed on. current
	// selects between "where it is now" (true) and "where it is
	// heading" (false); composite resources such as groups use this to
	// resolve a node for an otherwise-unbound action (spec §4.6 "Group-
	// start node fix-up").
	Location(node *Node, current bool) *Node

	// IsAncestor reports whether the receiver is an ancestor resource of
	// other in the composite tree (for example a group is an ancestor
	// of its members). Expansion never rewrites an edge whose then.Resource
	// is an ancestor of first.Resource.
	IsAncestor(other Resource) bool
}

// Variant ranks a resource's place in the composite-tree hierarchy.
// Ordering matters: Primitive < Group < Clone < Bundle (spec §3).
type Variant int

const (
	Primitive Variant = iota
	Group
	Clone
	Bundle
)

func (v Variant) String() string {
	switch v {
	case Primitive:
		return "primitive"
	case Group:
		return "group"
	case Clone:
		return "clone"
	case Bundle:
		return "bundle"
	default:
		return "variant(?)"
	}
}

// ChangeBits is the small set of outcomes an edge evaluation can report,
// aggregated across every component kind applied to one edge (spec §4.3).
type ChangeBits uint8

const (
	UpdatedFirst ChangeBits = 1 << iota
	UpdatedThen
	Disable
)

func (c ChangeBits) Has(other ChangeBits) bool { return c&other == other }
func (c ChangeBits) Any(other ChangeBits) bool { return c&other != 0 }
func (c ChangeBits) With(other ChangeBits) ChangeBits { return c | other }

// Scheduler is the global collaborator threaded through every resolver
// call (spec §9 design note: "treat it as an explicit collaborator
// parameter, never as ambient state"). Package resolver provides the
// concrete implementation; it is declared here so that package resource's
// UpdateActions implementations can accept it without importing package
// resolver (which itself must import package resource).
type Scheduler interface {
	// NotifyRunnableLost is the "notify the colocation subsystem to
	// block dependent starts" out-of-core call from spec §4.6's
	// postamble. The resolver does not implement colocation itself;
	// it only ever calls this hook.
	NotifyRunnableLost(a *Action)
}
