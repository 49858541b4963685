// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package action defines the action-graph vertex and edge types the
// resolver operates on: one Action per unit of work, linked to its
// neighbors by typed Edge values, plus the Resource and Scheduler
// contracts the resolver and the evaluator need from their callers.
//
// This package sits at the bottom of the dependency graph on purpose.
// Resource is declared here rather than in package resource so that
// resource (which holds *Action values) can implement it without
// action needing to import resource back.
package action

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/clusterkit/ordergraph/internal/orderkind"
)

// Action is one unit of scheduled work: "run this operation, for this
// resource, possibly on this node". Actions are linked into a graph by
// Edge values held in Predecessors and Successors; the resolver mutates
// an Action's Flags in place as it propagates constraints to a fixed
// point.
type Action struct {
	ID   uuid.UUID
	Task string

	// Resource is nil for actions with no resource behind them (for
	// example a pseudo-action representing "all resources started").
	Resource Resource

	// Node is the node this action is scheduled to run on, or nil if
	// unbound. Bound by the caller before resolution begins; the
	// resolver itself never assigns a node, only reads it.
	Node *Node

	Flags Flags

	Predecessors []*Edge
	Successors   []*Edge

	// RunnableBefore counts, across this resolver pass, how many
	// OneOrMore predecessors have been observed runnable so far.
	// RequiredRunnableBefore is the threshold at which the action
	// itself becomes runnable (spec §4.2, OneOrMore).
	RunnableBefore         int
	RequiredRunnableBefore int

	// IntervalMS is the recurring interval, in milliseconds, this action
	// represents, or 0 for a one-shot action. It is part of the uuid
	// grammar C4's expansion decomposes (spec §6); an interval above
	// zero marks a recurring monitor-style operation that is never
	// expanded.
	IntervalMS int

	// NotifyQualifier is set only on a "notify" task action, carrying
	// the confirmation qualifier ("pre", "post", "confirmed-pre",
	// "confirmed-post") that UUIDString folds into the notify-form uuid.
	NotifyQualifier string
}

// New constructs an Action with a fresh ID and no flags set. Callers
// set Flags directly (via SetFlag) to seed the initial OPTIONAL/RUNNABLE
// state before the first resolver pass.
func New(task string, res Resource) *Action {
	return &Action{
		ID:       uuid.New(),
		Task:     task,
		Resource: res,
	}
}

// SetFlag sets the given bits and reports whether doing so changed
// a.Flags. Callers use the return value to decide whether to requeue
// neighbors for re-evaluation.
func (a *Action) SetFlag(f Flags) bool {
	before := a.Flags
	a.Flags |= f
	return a.Flags != before
}

// ClearFlag clears the given bits and reports whether doing so changed
// a.Flags.
func (a *Action) ClearFlag(f Flags) bool {
	before := a.Flags
	a.Flags &^= f
	return a.Flags != before
}

// AddPredecessor records that peer orders a with the given kind,
// mirroring the edge into peer.Successors. Idempotent: if an edge of
// the same kind between the same pair already exists, no duplicate is
// created and the call reports false.
func (a *Action) AddPredecessor(peer *Action, kind orderkind.Kind) bool {
	return addEdge(peer, a, kind)
}

// AddSuccessor records that a orders peer with the given kind,
// mirroring the edge into peer.Predecessors. Idempotent like
// AddPredecessor.
func (a *Action) AddSuccessor(peer *Action, kind orderkind.Kind) bool {
	return addEdge(a, peer, kind)
}

// addEdge attaches a first->then edge of the given kind to both
// endpoints' lists unless one already exists, in which case it merges
// the new kind's bits into the existing edge instead of creating a
// duplicate. Reports whether anything changed. This is the shared
// primitive behind AddPredecessor/AddSuccessor and C7's order_actions
// helper.
func addEdge(first, then *Action, kind orderkind.Kind) bool {
	for _, e := range first.Successors {
		if e.Peer == then {
			before := e.Kind
			e.Kind = e.Kind.With(kind)
			changed := e.Kind != before
			if changed {
				mirrorKind(then, first, e.Kind)
			}
			return changed
		}
	}
	fwd := &Edge{Peer: then, Kind: kind}
	back := &Edge{Peer: first, Kind: kind}
	first.Successors = append(first.Successors, fwd)
	then.Predecessors = append(then.Predecessors, back)
	return true
}

// mirrorKind updates the Kind of the edge pointing from then back to
// first so that a merged forward edge's bits stay in sync with its
// mirror in the predecessor list.
func mirrorKind(then, first *Action, kind orderkind.Kind) {
	for _, e := range then.Predecessors {
		if e.Peer == first {
			e.Kind = kind
			return
		}
	}
}

// EffectiveFlags computes a's flags as observed from the perspective of
// an edge evaluation scoped to peerNode (spec §4.1's two-step clone
// algorithm). When a has a resource, the resource's ActionFlags
// callback has final say — variant polymorphism (a clone, say, may
// report different effective flags per node than its raw a.Flags would
// suggest). Actions with no resource report their raw Flags unchanged.
//
// The resource is first queried with no node at all, producing f0
// ("is this runnable/optional at all, anywhere relevant"). If peerNode
// is nil or the resource is not a clone, f0 is the answer. Otherwise
// the callback is re-queried scoped to peerNode, producing f1
// ("...specifically here"); if f0 had RUNNABLE but f1 does not, RUNNABLE
// is restored into f1, since for clone orderings "runnable anywhere" is
// the relevant predicate, not "runnable on this specific node". This
// narrow, asymmetric rule applies only to ordering.
func (a *Action) EffectiveFlags(peerNode *Node) Flags {
	if a.Resource == nil {
		return a.Flags
	}
	f0 := a.Resource.ActionFlags(a, nil)
	if peerNode == nil || a.Resource.Variant() != Clone {
		return f0
	}
	f1 := a.Resource.ActionFlags(a, peerNode)
	if f0.Has(FlagRunnable) && !f1.Has(FlagRunnable) {
		f1 |= FlagRunnable
	}
	return f1
}

// UniqueKey implements collect.UniqueKeyer so that resolver worklists
// can dedup pending actions by their uuid rather than by pointer.
func (a *Action) UniqueKey() uuid.UUID {
	return a.ID
}

// UUIDString renders this action's identity in the
// "<resource-id>_<task>_<interval-ms>" grammar C4's expansion parses
// (spec §6), using the notify-form extension when Task is "notify" and
// NotifyQualifier is set. Actions with no resource have no resource-id
// to anchor the grammar to and return Task unchanged, which
// expand.Parse correctly rejects as too few segments, making such
// actions non-expandable.
func (a *Action) UUIDString() string {
	if a.Resource == nil {
		return a.Task
	}
	if a.Task == "notify" && a.NotifyQualifier != "" {
		return fmt.Sprintf("%s_%s_notify_%d", a.Resource.Name(), a.NotifyQualifier, a.IntervalMS)
	}
	return fmt.Sprintf("%s_%s_%d", a.Resource.Name(), a.Task, a.IntervalMS)
}

// String renders a short human-readable label for logging and dot
// output: the task name and, if bound, the resource and node.
func (a *Action) String() string {
	s := a.Task
	if a.Resource != nil {
		s += " " + a.Resource.Name()
	}
	if a.Node != nil {
		s += " @" + a.Node.Name
	}
	return s
}
