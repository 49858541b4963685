// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"github.com/clusterkit/ordergraph/internal/action"
	"github.com/clusterkit/ordergraph/internal/orderkind"
)

// Clone is a resource replicated across some number of cluster nodes,
// optionally with one instance promoted to a distinguished role
// (spec's PromotedImpliesFirst kind exists only for clones). Each
// instance is itself a Primitive or a Group.
type Clone struct {
	Base
	Instances []action.Resource

	// Promoted is the instance currently holding the promoted role, or
	// nil if none is promoted (or the clone is not promotable at all).
	Promoted action.Resource
}

func NewClone(name string, flags Flags) *Clone {
	b := NewBase(name, flags)
	return &Clone{Base: b}
}

func (c *Clone) AddInstance(inst action.Resource) {
	c.Instances = append(c.Instances, inst)
	if setter, ok := inst.(interface{ setParent(action.Resource) }); ok {
		setter.setParent(c)
	}
}

func (c *Clone) Variant() action.Variant { return action.Clone }

func (c *Clone) IsAncestor(other action.Resource) bool {
	for _, inst := range c.Instances {
		if inst == other {
			return true
		}
		if a, ok := inst.(interface{ IsAncestor(action.Resource) bool }); ok && a.IsAncestor(other) {
			return true
		}
	}
	return c.isAncestorOf(c, other)
}

// ActionFlags implements the clone-wide "runnable anywhere" rule: a
// clone-level action (one with no single instance behind it) queried
// with no node is runnable if any instance has a runnable action of the
// same task, and optional only if every instance's corresponding action
// is optional. Queried with a node, the answer is scoped to instances
// actually placed there (spec §4.3: "a clone may report 'runnable
// somewhere' without a node and 'not runnable here' with one") — it is
// EffectiveFlags' job, not this callback's, to fall back to the
// anywhere answer when the here answer comes up empty.
func (c *Clone) ActionFlags(a *action.Action, node *action.Node) action.Flags {
	if a.Resource != action.Resource(c) || len(c.Instances) == 0 {
		return defaultActionFlags(a, node)
	}
	instances := c.Instances
	if node != nil {
		instances = nil
		for _, inst := range c.Instances {
			if inst.Location(nil, true) == node {
				instances = append(instances, inst)
			}
		}
	}

	flags := a.Flags
	anyRunnable := false
	allOptional := true
	for _, inst := range instances {
		for _, ia := range inst.Actions() {
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

// UpdateActions implements PromotedImpliesFirst: the kind only applies
// when then is the clone's promoted instance, so any other instance's
// edge carrying that kind is silently ignored here rather than in the
// generic evaluator.
func (c *Clone) UpdateActions(first, then *action.Action, node *action.Node, firstFlags, thenFlagsMask action.Flags, kind orderkind.Kind, sched action.Scheduler) action.ChangeBits {
	if kind == orderkind.PromotedImpliesFirst {
		if c.Promoted == nil || then.Resource != c.Promoted {
			return 0
		}
		if !thenFlagsMask.Has(action.FlagOptional) && firstFlags.Has(action.FlagRunnable) {
			if first.ClearFlag(action.FlagRunnable) {
				return action.UpdatedFirst
			}
		}
		return 0
	}
	return defaultUpdateActions(first, then, node, firstFlags, thenFlagsMask, kind, sched)
}
