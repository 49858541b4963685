// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package aux collects the small helper operations (C7) that the
// evaluator and resolver both call but that don't belong to either:
// attaching a new edge idempotently, and the two cosmetic "mark as
// always worth printing" and "propagate a block down to stop actions"
// rules that spec §4.7 treats as shared plumbing rather than as
// full-fledged ordering kinds.
package aux

import (
	"github.com/clusterkit/ordergraph/internal/action"
	"github.com/clusterkit/ordergraph/internal/orderkind"
)

// OrderActions attaches a first->then edge of the given kind,
// idempotently: calling it twice with the same pair and kind leaves the
// graph unchanged the second time. Reports whether a new edge was
// created or an existing edge's kind bitmask was extended.
func OrderActions(first, then *action.Action, kind orderkind.Kind) bool {
	return first.AddSuccessor(then, kind)
}

// MarkPrintAlways sets FlagPrintAlways on a, reporting whether it was
// previously unset. The evaluator's ImpliesThenPrinted/ImpliesFirstPrinted
// rules set the same flag directly and never report a propagation
// change even though they do mutate a flag.
func MarkPrintAlways(a *action.Action) bool {
	return a.SetFlag(action.FlagPrintAlways)
}

// PropagateBlock marks every resource the given resource is an ancestor
// of as blocked too, mirroring a composite resource's own blocked state
// down onto its descendants (spec §4.5 item 4's blocked-unmanaged-stop
// special case, extended to the composite case: a blocked group blocks
// its members' stops too). It must run before the fixed-point pass so
// that evaluator.Evaluate's special case — which clears a dependent
// then's RUNNABLE, not any action's OPTIONAL — sees the descendants as
// blocked when it walks their stop actions' edges.
func PropagateBlock(owner action.Resource, all []action.Resource) {
	for _, r := range all {
		if r == owner || !owner.IsAncestor(r) {
			continue
		}
		if b, ok := r.(interface{ SetBlocked(bool) }); ok {
			b.SetBlocked(true)
		}
	}
}
