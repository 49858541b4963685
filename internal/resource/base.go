// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"github.com/clusterkit/ordergraph/internal/action"
	"github.com/clusterkit/ordergraph/internal/orderkind"
)

// Base holds the bookkeeping shared by every variant: identity, flags,
// the resource's own action list, and placement. It is embedded by
// Primitive, Group, Clone and Bundle, each of which adds its own
// ActionFlags/UpdateActions/IsAncestor behavior on top.
type Base struct {
	name    string
	flags   Flags
	actions map[string]*action.Action

	currentNode *action.Node
	nextNode    *action.Node

	// Parent is the immediate composite-tree ancestor, or nil at the
	// root. Group members and clone/bundle instances set this when
	// they are constructed.
	Parent action.Resource
}

// NewBase constructs a Base with an empty action list.
func NewBase(name string, flags Flags) Base {
	return Base{
		name:    name,
		flags:   flags,
		actions: make(map[string]*action.Action),
	}
}

func (b *Base) Name() string { return b.name }

func (b *Base) Actions() map[string]*action.Action { return b.actions }

// AddAction registers an action under the given (expanded or
// unexpanded) uuid key, for C4's lookup-by-uuid to find.
func (b *Base) AddAction(uuidKey string, a *action.Action) {
	b.actions[uuidKey] = a
}

func (b *Base) IsManaged() bool      { return b.flags.Has(FlagManaged) }
func (b *Base) IsBlocked() bool      { return b.flags.Has(FlagBlocked) }
func (b *Base) NotifyAllowed() bool  { return b.flags.Has(FlagNotifyAllowed) }
func (b *Base) HasPendingReload() bool { return b.flags.Has(FlagReload) }

func (b *Base) SetBlocked(v bool) {
	if v {
		b.flags |= FlagBlocked
	} else {
		b.flags &^= FlagBlocked
	}
}

func (b *Base) ClearPendingReload() { b.flags &^= FlagReload }

// SetLocation assigns where the resource is currently running and
// where it is heading. Either may be nil (not yet placed / not moving).
func (b *Base) SetLocation(current, next *action.Node) {
	b.currentNode = current
	b.nextNode = next
}

func (b *Base) Location(node *action.Node, current bool) *action.Node {
	if current {
		return b.currentNode
	}
	return b.nextNode
}

// isAncestorOf walks other's Parent chain looking for self. Every
// variant's IsAncestor ends with this walk; Group, Clone and Bundle
// first check their own members, instances or replicas.
func (b *Base) isAncestorOf(self action.Resource, other action.Resource) bool {
	for p := parentOf(other); p != nil; p = parentOf(p) {
		if p == self {
			return true
		}
	}
	return false
}

// parentOf extracts the Parent field from a resource's embedded Base,
// if it has one. Resources that don't embed Base (none in this
// package) are treated as having no parent.
func parentOf(r action.Resource) action.Resource {
	type hasParent interface{ parent() action.Resource }
	if hp, ok := r.(hasParent); ok {
		return hp.parent()
	}
	return nil
}

func (b *Base) parent() action.Resource { return b.Parent }

// setParent is called by a composite container (Group, Clone, Bundle)
// when a resource is added as one of its members/instances/replicas, so
// that IsAncestor walks can find their way back up the tree.
func (b *Base) setParent(p action.Resource) { b.Parent = p }

// defaultActionFlags is the primitive-style action_flags callback:
// the action's own Flags, unmodified by node scoping. Group, Clone and
// Bundle call this for their own non-composite member actions and
// override only where the spec calls for variant-specific behavior.
func defaultActionFlags(a *action.Action, _ *action.Node) action.Flags {
	return a.Flags
}

// defaultUpdateActions is the no-op update_actions callback: most
// kinds need no resource-level refinement beyond what the evaluator
// already computed from raw flags, so this simply reports no change.
// Variant types override this only for the specific kinds spec §4.4
// calls out (colocation notify, promoted-role scoping, and so on).
func defaultUpdateActions(_, _ *action.Action, _ *action.Node, _, _ action.Flags, _ orderkind.Kind, _ action.Scheduler) action.ChangeBits {
	return 0
}
