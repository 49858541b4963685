// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package evaluator implements C5: the per-edge propagation rules that
// turn one typed Edge between two actions into a ChangeBits outcome.
// Evaluate is pure with respect to anything but the two actions
// involved — it mutates first and then in place and never touches the
// rest of the graph, leaving queuing of affected neighbors to
// internal/resolver.
package evaluator

import (
	"github.com/clusterkit/ordergraph/internal/action"
	"github.com/clusterkit/ordergraph/internal/logging"
	"github.com/clusterkit/ordergraph/internal/orderkind"
)

// Evaluate applies every component kind of edge, in the fixed order
// orderkind.EvalOrder defines, to the first/then pair, and returns the
// aggregate ChangeBits across all of them. peerNode is the node used to
// scope EffectiveFlags lookups for this evaluation (normally then's
// assigned node, except that ImpliesThenOnNode rewrites it to first's).
//
// edge is expected to be the entry in then.Predecessors whose Peer is
// first (the resolver's worklist always walks then's predecessor list),
// so that a SameNode/Probe disable can find and zero the mirror entry
// in first.Successors too.
func Evaluate(first, then *action.Action, edge *action.Edge, peerNode *action.Node, sched action.Scheduler) action.ChangeBits {
	if edge.Disabled() {
		return 0
	}

	kind := edge.Kind
	if kind.Has(orderkind.ImpliesThenOnNode) {
		if first.Node != nil {
			peerNode = first.Node
		}
		kind = kind.Without(orderkind.ImpliesThenOnNode).With(orderkind.ImpliesThen)
		edge.Kind = kind
		for _, mirror := range edge.Peer.Successors {
			if mirror.Peer == then {
				mirror.Kind = kind
			}
		}
	}

	var changed action.ChangeBits

	// Blocked unmanaged stop (spec §4.5 item 4): applies once per edge,
	// independent of which of these three kinds the edge carries, and
	// independent of the per-component loop below. "The cluster cannot
	// stop this resource, so nothing that depends on its stop can run."
	if kind.Any(orderkind.ImpliesThen|orderkind.ImpliesFirst|orderkind.Restart) && isBlockedUnmanagedStop(first, peerNode) {
		if then.EffectiveFlags(peerNode).Has(action.FlagRunnable) {
			if then.ClearFlag(action.FlagRunnable) {
				changed |= action.UpdatedThen
			}
		}
	}

	for _, component := range kind.Components() {
		changed |= evaluateOne(first, then, edge, component, peerNode)
		if then.Resource != nil {
			firstFlags := first.EffectiveFlags(peerNode)
			thenFlags := then.EffectiveFlags(peerNode)
			changed |= then.Resource.UpdateActions(first, then, peerNode, firstFlags, thenFlags, component, sched)
		}
		if edge.Disabled() {
			// SameNode (or Probe's self-cancellation) turned the rest
			// of this edge's kinds off mid-evaluation; nothing further
			// to apply.
			break
		}
	}

	return changed
}

func evaluateOne(first, then *action.Action, edge *action.Edge, kind orderkind.Kind, peerNode *action.Node) action.ChangeBits {
	firstFlags := first.EffectiveFlags(peerNode)

	switch kind {
	case orderkind.ImpliesThen:
		if !firstFlags.Has(action.FlagOptional) {
			if then.ClearFlag(action.FlagOptional) {
				return action.UpdatedThen
			}
		}
		return 0

	case orderkind.ImpliesFirst, orderkind.ImpliesFirstMigratable:
		thenFlags := then.EffectiveFlags(peerNode)
		if !thenFlags.Has(action.FlagOptional) && firstFlags.Has(action.FlagRunnable) {
			if first.ClearFlag(action.FlagRunnable) {
				return action.UpdatedFirst
			}
		}
		return 0

	case orderkind.PromotedImpliesFirst:
		// Scoping to the promoted instance is entirely the resource
		// callback's responsibility (see resource.Clone.UpdateActions);
		// there is no generic behavior to apply here.
		return 0

	case orderkind.Restart:
		// RESTART is ImpliesThen + RunnableLeft combined: non-optional
		// propagation and non-runnable propagation both apply (spec
		// §4.2: "non-runnable-propagation is applied as OPTIONAL|RUNNABLE").
		var result action.ChangeBits
		if !firstFlags.Has(action.FlagOptional) {
			if then.ClearFlag(action.FlagOptional) {
				result |= action.UpdatedThen
			}
		}
		if !firstFlags.Has(action.FlagRunnable) {
			if then.ClearFlag(action.FlagRunnable) {
				result |= action.UpdatedThen
			}
		}
		return result

	case orderkind.OneOrMore:
		if firstFlags.Has(action.FlagRunnable) {
			then.RunnableBefore++
			if then.RunnableBefore >= then.RequiredRunnableBefore && then.RequiredRunnableBefore > 0 {
				if then.SetFlag(action.FlagRunnable) {
					return action.UpdatedThen
				}
			}
		}
		return 0

	case orderkind.Probe:
		if !firstFlags.Has(action.FlagRunnable) && first.Resource != nil && first.Resource.Location(nil, true) != nil {
			logging.Evaluator().Debug("disabling probe edge: predecessor unrunnable but resource is live",
				"first", first.String(), "then", then.String())
			edge.Disable(then)
			return 0
		}
		if !firstFlags.Has(action.FlagRunnable) {
			if then.ClearFlag(action.FlagRunnable) {
				return action.UpdatedThen
			}
		}
		return 0

	case orderkind.RunnableLeft, orderkind.PseudoLeft, orderkind.Asymmetrical:
		if !firstFlags.Has(action.FlagRunnable) {
			if then.ClearFlag(action.FlagRunnable) {
				return action.UpdatedThen
			}
		}
		return 0

	case orderkind.Optional:
		return 0

	case orderkind.ImpliesThenPrinted:
		if firstFlags.Has(action.FlagRunnable) && !firstFlags.Has(action.FlagOptional) {
			then.SetFlag(action.FlagPrintAlways)
		}
		return 0

	case orderkind.ImpliesFirstPrinted:
		thenFlags := then.EffectiveFlags(peerNode)
		if !thenFlags.Has(action.FlagOptional) {
			first.SetFlag(action.FlagPrintAlways)
		}
		return 0

	case orderkind.ThenCancelsFirst:
		thenFlags := then.EffectiveFlags(peerNode)
		var result action.ChangeBits
		if !thenFlags.Has(action.FlagOptional) {
			if first.SetFlag(action.FlagOptional) {
				result |= action.UpdatedFirst
			}
			if first.Task == "reload" && first.Resource != nil {
				if rb, ok := first.Resource.(interface{ ClearPendingReload() }); ok {
					rb.ClearPendingReload()
				}
			}
		}
		return result

	case orderkind.SameNode:
		if action.Distinct(first.Node, then.Node) {
			edge.Disable(then)
		}
		return 0

	default:
		return 0
	}
}

// isBlockedUnmanagedStop reports whether first is an unrunnable stop
// action belonging to a resource the cluster neither manages nor is
// permitted to act on (spec §4.5 item 4). peerNode scopes the
// effective-flags lookup the same way the rest of evaluateOne does.
func isBlockedUnmanagedStop(first *action.Action, peerNode *action.Node) bool {
	if first.Task != "stop" || first.Resource == nil {
		return false
	}
	if first.Resource.IsManaged() || !first.Resource.IsBlocked() {
		return false
	}
	return !first.EffectiveFlags(peerNode).Has(action.FlagRunnable)
}
