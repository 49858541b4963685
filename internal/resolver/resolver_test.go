// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"testing"

	"github.com/clusterkit/ordergraph/internal/action"
	"github.com/clusterkit/ordergraph/internal/orderkind"
	"github.com/clusterkit/ordergraph/internal/resource"
)

func TestResolveSimpleRequiredPropagation(t *testing.T) {
	webStop := resource.NewPrimitive("web", resource.FlagManaged)
	dbStop := resource.NewPrimitive("db", resource.FlagManaged)

	dbStart := action.New("start", dbStop)
	dbStart.SetFlag(action.FlagRunnable)
	webStart := action.New("start", webStop)
	webStart.SetFlag(action.FlagRunnable)
	webStart.SetFlag(action.FlagOptional)

	dbStart.AddSuccessor(webStart, orderkind.ImpliesThen)

	diags := Resolve([]*action.Action{dbStart, webStart}, []action.Resource{webStop, dbStop}, nil)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if webStart.Flags.Has(action.FlagOptional) {
		t.Error("webStart should no longer be optional once dbStart is non-optional")
	}
}

func TestResolveBlockedUnmanagedStopClearsDependentRunnable(t *testing.T) {
	// Spec §8 end-to-end scenario 2, isolating the blocked-unmanaged-stop
	// special case from the generic kind rule: stop is already optional,
	// so IMPLIES_THEN's own optional-propagation has nothing to do, and
	// the only thing that can clear start's RUNNABLE is the special case
	// (first.task == stop, first.resource unmanaged+blocked+unrunnable).
	unmanaged := resource.NewPrimitive("legacy", resource.FlagBlocked) // FlagManaged not set
	managed := resource.NewPrimitive("dependent", resource.FlagManaged)

	stop := action.New("stop", unmanaged)
	stop.SetFlag(action.FlagOptional)
	// stop stays unrunnable (zero value).

	start := action.New("start", managed)
	start.SetFlag(action.FlagRunnable)

	stop.AddSuccessor(start, orderkind.ImpliesThen)

	diags := Resolve([]*action.Action{stop, start}, []action.Resource{unmanaged, managed}, nil)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if start.Flags.Has(action.FlagRunnable) {
		t.Error("a dependent action ordered after a blocked unmanaged resource's unrunnable stop must lose RUNNABLE")
	}
}

func TestResolveOneOrMoreThreshold(t *testing.T) {
	then := action.New("start", nil)
	then.SetFlag(action.FlagRequiresAny)
	then.RequiredRunnableBefore = 2

	firstA := action.New("start", nil)
	firstA.SetFlag(action.FlagRunnable)
	firstB := action.New("start", nil)
	firstB.SetFlag(action.FlagRunnable)
	firstC := action.New("start", nil) // not runnable

	firstA.AddSuccessor(then, orderkind.OneOrMore)
	firstB.AddSuccessor(then, orderkind.OneOrMore)
	firstC.AddSuccessor(then, orderkind.OneOrMore)

	diags := Resolve([]*action.Action{firstA, firstB, firstC, then}, nil, nil)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if !then.Flags.Has(action.FlagRunnable) {
		t.Error("then should become runnable once 2 of its OneOrMore predecessors are runnable")
	}
}

func TestResolveCloneRunnableAnywhere(t *testing.T) {
	clone := resource.NewClone("cloned-web", resource.FlagManaged)
	inst1 := resource.NewPrimitive("cloned-web:0", resource.FlagManaged)
	inst2 := resource.NewPrimitive("cloned-web:1", resource.FlagManaged)
	clone.AddInstance(inst1)
	clone.AddInstance(inst2)

	inst1Start := action.New("start", inst1)
	inst1Start.SetFlag(action.FlagRunnable)
	inst1.AddAction("cloned-web:0_start_0", inst1Start)

	inst2Start := action.New("start", inst2)
	// inst2Start stays unrunnable.
	inst2.AddAction("cloned-web:1_start_0", inst2Start)

	cloneStart := action.New("start", clone)
	// cloneStart's own Flags start unrunnable; ActionFlags should report
	// runnable because at least one instance is runnable.

	diags := Resolve([]*action.Action{inst1Start, inst2Start, cloneStart}, []action.Resource{clone, inst1, inst2}, nil)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if !cloneStart.EffectiveFlags(nil).Has(action.FlagRunnable) {
		t.Error("clone-wide start should be runnable because at least one instance is runnable")
	}
}

func TestResolveGroupStartNodeFixUp(t *testing.T) {
	node := &action.Node{Name: "n1"}
	member := resource.NewPrimitive("member", resource.FlagManaged)
	member.SetLocation(node, node)
	group := resource.NewGroup("grp", resource.FlagManaged)
	group.AddMember(member)

	groupStart := action.New("start", group)
	memberStart := action.New("start", member)
	memberStart.AddSuccessor(groupStart, orderkind.Optional)

	diags := Resolve([]*action.Action{groupStart, memberStart}, []action.Resource{group, member}, nil)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if groupStart.Node != node {
		t.Errorf("groupStart.Node = %v, want %v (fixed up from first member's location)", groupStart.Node, node)
	}
}
