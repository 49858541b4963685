// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"github.com/clusterkit/ordergraph/internal/action"
	"github.com/clusterkit/ordergraph/internal/orderkind"
)

// Group is an ordered collection of member resources that start and
// stop together, in member order. A group itself owns only pseudo
// actions (group-wide start/stop); the real work belongs to its
// members.
type Group struct {
	Base
	Members []action.Resource
}

func NewGroup(name string, flags Flags) *Group {
	b := NewBase(name, flags)
	return &Group{Base: b}
}

// AddMember appends a member in start order and records the group as
// its parent for IsAncestor purposes.
func (g *Group) AddMember(m action.Resource) {
	g.Members = append(g.Members, m)
	if setter, ok := m.(interface{ setParent(action.Resource) }); ok {
		setter.setParent(g)
	}
}

func (g *Group) Variant() action.Variant { return action.Group }

func (g *Group) IsAncestor(other action.Resource) bool {
	for _, m := range g.Members {
		if m == other {
			return true
		}
	}
	return g.isAncestorOf(g, other)
}

func (g *Group) ActionFlags(a *action.Action, node *action.Node) action.Flags {
	return defaultActionFlags(a, node)
}

// UpdateActions implements the group-start node fix-up from spec §4.6:
// a group's own start/stop pseudo-action has no node of its own, so
// when an edge evaluation needs one to resolve a SameNode filter or a
// Location lookup, the group reports its first member's current
// location instead of leaving the action permanently unbound.
func (g *Group) UpdateActions(first, then *action.Action, node *action.Node, firstFlags, thenFlagsMask action.Flags, kind orderkind.Kind, sched action.Scheduler) action.ChangeBits {
	if then.Node == nil && then.Resource == action.Resource(g) && len(g.Members) > 0 {
		if loc := g.Members[0].Location(nil, true); loc != nil {
			then.Node = loc
		}
	}
	return defaultUpdateActions(first, then, node, firstFlags, thenFlagsMask, kind, sched)
}

func (g *Group) Location(node *action.Node, current bool) *action.Node {
	if loc := g.Base.Location(node, current); loc != nil {
		return loc
	}
	if len(g.Members) > 0 {
		return g.Members[0].Location(node, current)
	}
	return nil
}
