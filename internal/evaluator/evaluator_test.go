// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package evaluator

import (
	"testing"

	"github.com/clusterkit/ordergraph/internal/action"
	"github.com/clusterkit/ordergraph/internal/orderkind"
)

type noopScheduler struct{}

func (noopScheduler) NotifyRunnableLost(*action.Action) {}

func TestEvaluateImpliesThenClearsOptional(t *testing.T) {
	first := action.New("start", nil)
	then := action.New("start", nil)
	then.SetFlag(action.FlagOptional)

	edge := &action.Edge{Peer: first, Kind: orderkind.ImpliesThen}
	then.Predecessors = append(then.Predecessors, edge)
	first.Successors = append(first.Successors, &action.Edge{Peer: then, Kind: orderkind.ImpliesThen})

	changed := Evaluate(first, then, edge, nil, noopScheduler{})

	if !changed.Has(action.UpdatedThen) {
		t.Fatal("expected UpdatedThen")
	}
	if then.Flags.Has(action.FlagOptional) {
		t.Error("then should no longer be optional")
	}
}

func TestEvaluateImpliesFirstClearsRunnable(t *testing.T) {
	first := action.New("stop", nil)
	first.SetFlag(action.FlagRunnable)
	then := action.New("start", nil)
	// then is non-optional by default (flags zero value).

	edge := &action.Edge{Peer: first, Kind: orderkind.ImpliesFirst}

	changed := Evaluate(first, then, edge, nil, noopScheduler{})

	if !changed.Has(action.UpdatedFirst) {
		t.Fatal("expected UpdatedFirst")
	}
	if first.Flags.Has(action.FlagRunnable) {
		t.Error("first should no longer be runnable")
	}
}

func TestEvaluateSameNodeDisablesEdgeAcrossDistinctNodes(t *testing.T) {
	nodeA := &action.Node{Name: "a"}
	nodeB := &action.Node{Name: "b"}

	first := action.New("start", nil)
	first.Node = nodeA
	then := action.New("start", nil)
	then.Node = nodeB

	edge := &action.Edge{Peer: first, Kind: orderkind.SameNode}
	then.Predecessors = append(then.Predecessors, edge)
	mirror := &action.Edge{Peer: then, Kind: orderkind.SameNode}
	first.Successors = append(first.Successors, mirror)

	Evaluate(first, then, edge, nil, noopScheduler{})

	if !edge.Disabled() {
		t.Error("edge should be disabled when endpoints are on distinct nodes")
	}
	if !mirror.Disabled() {
		t.Error("mirror edge on first.Successors should also be disabled")
	}
}

func TestEvaluateSameNodeLeavesUnassignedEndpointsAlone(t *testing.T) {
	first := action.New("start", nil)
	then := action.New("start", nil)
	// Neither action has a node assigned yet.

	edge := &action.Edge{Peer: first, Kind: orderkind.SameNode}

	Evaluate(first, then, edge, nil, noopScheduler{})

	if edge.Disabled() {
		t.Error("edge should stay enabled while either endpoint is unassigned")
	}
}

func TestEvaluateOneOrMoreRevealsRunnableAtThreshold(t *testing.T) {
	then := action.New("start", nil)
	then.SetFlag(action.FlagRequiresAny)
	then.RequiredRunnableBefore = 2

	firstA := action.New("start", nil)
	firstA.SetFlag(action.FlagRunnable)
	firstB := action.New("start", nil)
	firstB.SetFlag(action.FlagRunnable)

	edgeA := &action.Edge{Peer: firstA, Kind: orderkind.OneOrMore}
	edgeB := &action.Edge{Peer: firstB, Kind: orderkind.OneOrMore}

	changed := Evaluate(firstA, then, edgeA, nil, noopScheduler{})
	if changed.Has(action.UpdatedThen) {
		t.Error("should not become runnable after only one of two required predecessors")
	}

	changed = Evaluate(firstB, then, edgeB, nil, noopScheduler{})
	if !changed.Has(action.UpdatedThen) {
		t.Error("should become runnable once the threshold is reached")
	}
	if !then.Flags.Has(action.FlagRunnable) {
		t.Error("then should now be runnable")
	}
}

func TestEvaluateProbeCancelsWhenResourceIsLive(t *testing.T) {
	liveNode := &action.Node{Name: "n1"}
	res := &liveResource{current: liveNode}

	first := action.New("monitor", res)
	// first is unrunnable (zero value).
	then := action.New("start", nil)
	then.SetFlag(action.FlagRunnable)

	edge := &action.Edge{Peer: first, Kind: orderkind.Probe}

	Evaluate(first, then, edge, nil, noopScheduler{})

	if !edge.Disabled() {
		t.Error("probe edge should self-cancel when the resource is already live")
	}
	if !then.Flags.Has(action.FlagRunnable) {
		t.Error("then should remain runnable once the probe edge cancels itself")
	}
}

func TestEvaluateRestartPropagatesBothOptionalAndRunnable(t *testing.T) {
	first := action.New("start", nil)
	// first is non-optional and unrunnable (zero value).
	then := action.New("start", nil)
	then.SetFlag(action.FlagOptional)
	then.SetFlag(action.FlagRunnable)

	edge := &action.Edge{Peer: first, Kind: orderkind.Restart}

	changed := Evaluate(first, then, edge, nil, noopScheduler{})

	if !changed.Has(action.UpdatedThen) {
		t.Fatal("expected UpdatedThen")
	}
	if then.Flags.Has(action.FlagOptional) {
		t.Error("then should lose OPTIONAL when first is non-optional")
	}
	if then.Flags.Has(action.FlagRunnable) {
		t.Error("then should lose RUNNABLE when first is unrunnable (RESTART = ImpliesThen + RunnableLeft)")
	}
}

func TestEvaluateBlockedUnmanagedStopClearsThenRunnable(t *testing.T) {
	unmanaged := &fakeBlockableResource{managed: false, blocked: true}

	first := action.New("stop", unmanaged)
	first.SetFlag(action.FlagOptional) // isolate the special case from ImpliesThen's own rule
	// first (the stop) is unrunnable (zero value).

	then := action.New("start", nil)
	then.SetFlag(action.FlagRunnable)

	edge := &action.Edge{Peer: first, Kind: orderkind.ImpliesThen}

	changed := Evaluate(first, then, edge, nil, noopScheduler{})

	if !changed.Has(action.UpdatedThen) {
		t.Fatal("expected UpdatedThen")
	}
	if then.Flags.Has(action.FlagRunnable) {
		t.Error("then should lose RUNNABLE when ordered after a blocked unmanaged resource's unrunnable stop")
	}
}

func TestEvaluateManagedStopDoesNotTriggerBlockedUnmanagedSpecialCase(t *testing.T) {
	managed := &fakeBlockableResource{managed: true, blocked: true}

	first := action.New("stop", managed)
	first.SetFlag(action.FlagOptional)

	then := action.New("start", nil)
	then.SetFlag(action.FlagRunnable)

	edge := &action.Edge{Peer: first, Kind: orderkind.ImpliesThen}

	Evaluate(first, then, edge, nil, noopScheduler{})

	if !then.Flags.Has(action.FlagRunnable) {
		t.Error("a managed resource's blocked stop must not trigger the unmanaged-stop special case")
	}
}

type liveResource struct {
	current *action.Node
}

func (r *liveResource) Name() string                       { return "live" }
func (r *liveResource) Variant() action.Variant             { return action.Primitive }
func (r *liveResource) Actions() map[string]*action.Action  { return nil }
func (r *liveResource) IsManaged() bool                     { return true }
func (r *liveResource) IsBlocked() bool                     { return false }
func (r *liveResource) NotifyAllowed() bool                 { return false }
func (r *liveResource) Location(_ *action.Node, current bool) *action.Node {
	if current {
		return r.current
	}
	return nil
}
func (r *liveResource) IsAncestor(action.Resource) bool { return false }
func (r *liveResource) ActionFlags(a *action.Action, _ *action.Node) action.Flags {
	return a.Flags
}
func (r *liveResource) UpdateActions(_, _ *action.Action, _ *action.Node, _, _ action.Flags, _ orderkind.Kind, _ action.Scheduler) action.ChangeBits {
	return 0
}

// fakeBlockableResource is a minimal action.Resource double with
// controllable IsManaged/IsBlocked, for exercising the blocked-unmanaged-
// stop special case in isolation.
type fakeBlockableResource struct {
	managed bool
	blocked bool
}

func (r *fakeBlockableResource) Name() string                      { return "fake" }
func (r *fakeBlockableResource) Variant() action.Variant            { return action.Primitive }
func (r *fakeBlockableResource) Actions() map[string]*action.Action { return nil }
func (r *fakeBlockableResource) IsManaged() bool                    { return r.managed }
func (r *fakeBlockableResource) IsBlocked() bool                    { return r.blocked }
func (r *fakeBlockableResource) NotifyAllowed() bool                { return false }
func (r *fakeBlockableResource) Location(_ *action.Node, _ bool) *action.Node {
	return nil
}
func (r *fakeBlockableResource) IsAncestor(action.Resource) bool { return false }
func (r *fakeBlockableResource) ActionFlags(a *action.Action, _ *action.Node) action.Flags {
	return a.Flags
}
func (r *fakeBlockableResource) UpdateActions(_, _ *action.Action, _ *action.Node, _, _ action.Flags, _ orderkind.Kind, _ action.Scheduler) action.ChangeBits {
	return 0
}
