// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"github.com/clusterkit/ordergraph/internal/action"
	"github.com/clusterkit/ordergraph/internal/orderkind"
)

// Primitive is a resource with no children: the leaf of the composite
// tree. Its action_flags/update_actions callbacks are the baseline
// every other variant falls back to for its own non-composite actions.
type Primitive struct {
	Base
}

func NewPrimitive(name string, flags Flags) *Primitive {
	b := NewBase(name, flags)
	return &Primitive{Base: b}
}

func (p *Primitive) Variant() action.Variant { return action.Primitive }

func (p *Primitive) IsAncestor(other action.Resource) bool {
	return p.isAncestorOf(p, other)
}

func (p *Primitive) ActionFlags(a *action.Action, node *action.Node) action.Flags {
	return defaultActionFlags(a, node)
}

// UpdateActions has no primitive-specific refinement beyond what the
// evaluator already applies (the blocked-unmanaged-stop special case
// lives in internal/evaluator, where both edge endpoints are in scope).
func (p *Primitive) UpdateActions(first, then *action.Action, node *action.Node, firstFlags, thenFlagsMask action.Flags, kind orderkind.Kind, sched action.Scheduler) action.ChangeBits {
	return defaultUpdateActions(first, then, node, firstFlags, thenFlagsMask, kind, sched)
}
