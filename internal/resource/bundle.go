// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"github.com/clusterkit/ordergraph/internal/action"
	"github.com/clusterkit/ordergraph/internal/orderkind"
)

// Bundle is a containerized resource: one or more Replicas, each
// wrapping a container primitive plus, optionally, the primitive
// resource running inside it. Bundle sits above Clone in variant rank
// because a bundle's replicas carry their own container lifecycle
// (start/stop the container itself) in addition to the contained
// resource's lifecycle.
type Bundle struct {
	Base
	Replicas []action.Resource
}

func NewBundle(name string, flags Flags) *Bundle {
	b := NewBase(name, flags)
	return &Bundle{Base: b}
}

func (b *Bundle) AddReplica(r action.Resource) {
	b.Replicas = append(b.Replicas, r)
	if setter, ok := r.(interface{ setParent(action.Resource) }); ok {
		setter.setParent(b)
	}
}

func (b *Bundle) Variant() action.Variant { return action.Bundle }

func (b *Bundle) IsAncestor(other action.Resource) bool {
	for _, r := range b.Replicas {
		if r == other {
			return true
		}
		if a, ok := r.(interface{ IsAncestor(action.Resource) bool }); ok && a.IsAncestor(other) {
			return true
		}
	}
	return b.isAncestorOf(b, other)
}

// ActionFlags reuses Clone's runnable-anywhere rule: a bundle-wide
// action queried with no node is runnable if any replica's container is
// runnable for the same task. Queried with a node, the answer is scoped
// to replicas placed there, mirroring Clone.ActionFlags (in practice a
// bundle's node is never non-nil via the resolver, since
// Action.EffectiveFlags only re-queries with a node for Clone-variant
// resources, but the scoping is kept consistent for direct callers).
func (b *Bundle) ActionFlags(a *action.Action, node *action.Node) action.Flags {
	if a.Resource != action.Resource(b) || len(b.Replicas) == 0 {
		return defaultActionFlags(a, node)
	}
	replicas := b.Replicas
	if node != nil {
		replicas = nil
		for _, r := range b.Replicas {
			if r.Location(nil, true) == node {
				replicas = append(replicas, r)
			}
		}
	}

	flags := a.Flags
	anyRunnable := false
	allOptional := true
	for _, r := range replicas {
		for _, ia := range r.Actions() {
			if ia.Task != a.Task {
				continue
			}
			if ia.EffectiveFlags(nil).Has(action.FlagRunnable) {
				anyRunnable = true
			}
			if !ia.EffectiveFlags(nil).Has(action.FlagOptional) {
				allOptional = false
			}
		}
	}
	if anyRunnable {
		flags |= action.FlagRunnable
	} else {
		flags &^= action.FlagRunnable
	}
	if allOptional {
		flags |= action.FlagOptional
	} else {
		flags &^= action.FlagOptional
	}
	return flags
}

func (b *Bundle) UpdateActions(first, then *action.Action, node *action.Node, firstFlags, thenFlagsMask action.Flags, kind orderkind.Kind, sched action.Scheduler) action.ChangeBits {
	return defaultUpdateActions(first, then, node, firstFlags, thenFlagsMask, kind, sched)
}
