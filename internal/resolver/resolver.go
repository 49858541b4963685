// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/clusterkit/ordergraph/internal/action"
	"github.com/clusterkit/ordergraph/internal/aux"
	"github.com/clusterkit/ordergraph/internal/collect"
	"github.com/clusterkit/ordergraph/internal/diag"
	"github.com/clusterkit/ordergraph/internal/evaluator"
	"github.com/clusterkit/ordergraph/internal/expand"
)

// queue is a FIFO worklist of actions pending re-evaluation, deduped by
// uuid so that pushing an already-queued action is a no-op. Converting
// the spec's description of propagation-as-recursion into an explicit
// worklist avoids unbounded call-stack growth on a large cluster graph
// (design note, spec §9).
type queue struct {
	pending []*action.Action
	queued  collect.Set[uuid.UUID, *action.Action]
}

func newQueue() *queue {
	return &queue{queued: make(collect.Set[uuid.UUID, *action.Action])}
}

func (q *queue) push(a *action.Action) {
	if a == nil || q.queued.Has(a) {
		return
	}
	q.queued.Add(a)
	q.pending = append(q.pending, a)
}

func (q *queue) pushWithSuccessors(a *action.Action) {
	q.push(a)
	for _, e := range a.Successors {
		q.push(e.Peer)
	}
}

func (q *queue) pop() (*action.Action, bool) {
	if len(q.pending) == 0 {
		return nil, false
	}
	a := q.pending[0]
	q.pending = q.pending[1:]
	q.queued.Remove(a)
	return a, true
}

// Resolve runs the fixed-point pass over every action reachable from
// actions, mutating their Flags in place, until no evaluation produces
// a further change. It is the module's single public entry point: it
// recovers diag.InvariantViolation panics raised by update and turns
// them into an Error diagnostic rather than letting them escape to the
// caller.
func Resolve(actions []*action.Action, resources []action.Resource, ctx *Context) (diags diag.Diagnostics) {
	defer func() {
		if r := recover(); r != nil {
			if iv, ok := r.(diag.InvariantViolation); ok {
				diags.Errorf("%s", iv.Error())
				return
			}
			panic(r)
		}
	}()

	if ctx == nil {
		ctx = NewContext(resources)
	}
	ctx.allResources = resources

	// Blocked state must propagate to descendant resources before the
	// fixed-point pass runs, so that evaluator.Evaluate's
	// blocked-unmanaged-stop special case sees it when it walks their
	// stop actions' edges (propagating after the pass would require a
	// second pass to take effect).
	for _, r := range resources {
		if r.IsBlocked() {
			aux.PropagateBlock(r, resources)
		}
	}

	q := newQueue()
	for _, a := range actions {
		q.push(a)
	}

	for {
		a, ok := q.pop()
		if !ok {
			break
		}
		changed := update(a, ctx, q)
		if changed {
			ctx.Log.Trace("action changed, requeued neighbors", "action", a.String())
		}
	}

	return diags
}

// update re-evaluates every predecessor edge of then, applying C4's
// expansion and C5's evaluation to each, and pushes any action whose
// flags changed (plus its own successors) back onto the worklist. It
// returns whether anything about then or one of its predecessors
// changed.
func update(then *action.Action, ctx *Context, q *queue) bool {
	n := ctx.bumpIterations(then)
	if n > ctx.maxIterations() {
		panic(diag.InvariantViolation{
			Summary: fmt.Sprintf("action %q re-evaluated more than %d times; propagation did not converge", then.String(), ctx.maxIterations()),
		})
	}

	// Preamble (spec §4.6): a FlagRequiresAny action's one-or-more
	// counter and RUNNABLE flag must be reset before each pass re-walks
	// its predecessor edges. Without this reset, calling update(then)
	// more than once re-counts already-counted runnable predecessors and
	// RunnableBefore grows without bound across calls. A threshold of
	// zero defaults to one, since OneOrMore never reveals RUNNABLE while
	// the threshold is zero. lastFlags is taken before the reset so that
	// the postamble compares against the flags then had on entry.
	requiresAny := then.Flags.Has(action.FlagRequiresAny)
	lastFlags := then.Flags
	if requiresAny {
		then.RunnableBefore = 0
		if then.RequiredRunnableBefore == 0 {
			then.RequiredRunnableBefore = 1
		}
		then.ClearFlag(action.FlagRunnable)
	}

	var anyChanged bool
	for _, edge := range then.Predecessors {
		if edge.Disabled() {
			continue
		}
		first := edge.Peer

		// Expansion (spec §4.6 step 4): only when both endpoints have
		// resources and then's resource is not an ancestor of first's
		// (an ancestor already orders against its descendant's concrete
		// actions directly, so there is nothing to expand). The lookup
		// happens against first's own resource, since that resource is
		// what registers its post-completion peer action.
		if first.Resource != nil && then.Resource != nil && !then.Resource.IsAncestor(first.Resource) {
			first = expand.Resolve(first, first.Resource)
		}

		peerNode := then.Node

		changed := evaluator.Evaluate(first, then, edge, peerNode, ctx)
		if requiresAny {
			// The preamble's reset makes every re-reveal of RUNNABLE look
			// like a change; the postamble decides instead.
			changed &^= action.UpdatedThen
		}
		if changed == 0 {
			continue
		}
		anyChanged = true

		if changed.Any(action.UpdatedFirst) {
			q.pushWithSuccessors(first)
		}
		if changed.Any(action.UpdatedThen) {
			q.pushWithSuccessors(then)
			if !then.EffectiveFlags(peerNode).Has(action.FlagRunnable) {
				ctx.NotifyRunnableLost(then)
			}
		}
	}

	// Postamble (spec §4.6): a FlagRequiresAny action counts as updated
	// only if its flags differ from the ones it had on entry, so that
	// re-evaluating it at the fixed point (RUNNABLE cleared by the
	// preamble, then revealed again by the same OneOrMore predecessors)
	// does not requeue it.
	if requiresAny && then.Flags != lastFlags {
		anyChanged = true
		q.pushWithSuccessors(then)
		if !then.EffectiveFlags(then.Node).Has(action.FlagRunnable) {
			ctx.NotifyRunnableLost(then)
		}
	}

	return anyChanged
}
