// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package orderkind defines the closed vocabulary of ordering-constraint
// kinds that an edge between two actions can carry. The action flag bits
// those kinds manipulate, and the ChangeBits an edge evaluation reports,
// are defined in package action.
//
// The vocabulary is a bitmask rather than a single value because an edge
// may carry more than one kind at once (for example an edge can be both
// SameNode and ImpliesThen). Composition follows the order the kinds are
// listed in this file: a multi-kind edge applies each set bit's rule in
// that order, with the single exception that ImpliesThenOnNode is always
// rewritten to ImpliesThen before anything else runs.
package orderkind

import "fmt"

// Kind is a bitmask of ordering-constraint kinds carried by one edge.
type Kind uint32

//go:generate go tool golang.org/x/tools/cmd/stringer -type Kind -trimprefix Kind

const (
	// None is the zero value. An edge whose Kind is None has been
	// disabled (see SameNode and the Probe rule) and the evaluator
	// treats evaluating it as a no-op.
	None Kind = 0

	// ImpliesThen propagates non-optional from first to then: if first
	// is no longer optional, then cannot be optional either.
	ImpliesThen Kind = 1 << iota

	// ImpliesThenOnNode is evaluated like ImpliesThen but first is
	// rewritten in place to use first's assigned node as the peer node
	// before ImpliesThen's rule runs. The evaluator always converts this
	// bit to ImpliesThen during evaluation; it never survives as a
	// separately-observable kind once update() has run.
	ImpliesThenOnNode

	// ImpliesFirst propagates loss of runnable from then to first: if
	// then is non-optional and first was runnable, first loses runnable.
	// Models "if you must do X, you must first do Y".
	ImpliesFirst

	// PromotedImpliesFirst is ImpliesFirst scoped to the promoted-role
	// variant of a resource (only evaluated against the promoted peer).
	PromotedImpliesFirst

	// Restart propagates non-optional like ImpliesThen and loss of
	// runnable like RunnableLeft, both from first to then.
	Restart

	// OneOrMore counts runnable predecessors: each runnable first seen
	// across an edge of this kind increments then's runnable-before
	// counter, and once the counter reaches then's required threshold,
	// then becomes runnable.
	OneOrMore

	// Probe disables itself when first is unrunnable and first's
	// resource is currently running somewhere (the cluster is tearing
	// the probe down, so it must not block then); otherwise propagates
	// runnable like RunnableLeft.
	Probe

	// RunnableLeft propagates loss of runnable from first to then: if
	// first is unrunnable, then becomes unrunnable.
	RunnableLeft

	// ImpliesFirstMigratable mirrors ImpliesFirst at the vocabulary
	// level: the evaluator applies ImpliesFirst's rule to it, and any
	// migration-specific narrowing is left to the resource callback
	// (no variant in internal/resource narrows it).
	ImpliesFirstMigratable

	// PseudoLeft is RunnableLeft scoped to pseudo-actions.
	PseudoLeft

	// Optional carries no propagation; the edge documents order only.
	Optional

	// Asymmetrical propagates runnable in one direction only (first to
	// then), without any of RunnableLeft's additional semantics.
	Asymmetrical

	// ImpliesThenPrinted marks then PrintAlways when first is runnable
	// and non-optional. Cosmetic: never reports a change.
	ImpliesThenPrinted

	// ImpliesFirstPrinted marks first PrintAlways when then is
	// non-optional. Cosmetic: never reports a change.
	ImpliesFirstPrinted

	// ThenCancelsFirst renders first optional when then is non-optional,
	// and clears a pending reload if first's task is reload.
	ThenCancelsFirst

	// SameNode is a filter, not a propagation rule: if the edge's two
	// endpoints have distinct assigned nodes, the edge is permanently
	// disabled (kind set to None).
	SameNode
)

// Has reports whether k includes every bit set in other.
func (k Kind) Has(other Kind) bool {
	return k&other == other
}

// Any reports whether k includes at least one bit set in other.
func (k Kind) Any(other Kind) bool {
	return k&other != 0
}

// With returns k with the given bits set.
func (k Kind) With(other Kind) Kind {
	return k | other
}

// Without returns k with the given bits cleared.
func (k Kind) Without(other Kind) Kind {
	return k &^ other
}

// Disabled reports whether the edge has been turned off (§3 invariant 5
// and the Probe cancellation rule in §4.2).
func (k Kind) Disabled() bool {
	return k == None
}

// evalOrder is the fixed sequence in which a multi-kind edge's component
// kinds are applied, matching the table in spec §4.2. ImpliesThenOnNode
// is handled separately (rewritten before this list is consulted) so it
// does not appear here.
var evalOrder = []Kind{
	ImpliesThen,
	ImpliesFirst,
	PromotedImpliesFirst,
	Restart,
	OneOrMore,
	Probe,
	RunnableLeft,
	ImpliesFirstMigratable,
	PseudoLeft,
	Optional,
	Asymmetrical,
	ImpliesThenPrinted,
	ImpliesFirstPrinted,
	ThenCancelsFirst,
	SameNode,
}

// EvalOrder returns the fixed evaluation order used to walk a multi-kind
// edge's component kinds. The returned slice must not be mutated.
func EvalOrder() []Kind {
	return evalOrder
}

// Components returns the individual kind bits set in k, in evaluation
// order.
func (k Kind) Components() []Kind {
	var out []Kind
	for _, c := range evalOrder {
		if k.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (k Kind) String() string {
	if k == None {
		return "none"
	}
	names := map[Kind]string{
		ImpliesThen:            "implies-then",
		ImpliesThenOnNode:      "implies-then-on-node",
		ImpliesFirst:           "implies-first",
		PromotedImpliesFirst:   "promoted-implies-first",
		Restart:                "restart",
		OneOrMore:              "one-or-more",
		Probe:                  "probe",
		RunnableLeft:           "runnable-left",
		ImpliesFirstMigratable: "implies-first-migratable",
		PseudoLeft:             "pseudo-left",
		Optional:               "optional",
		Asymmetrical:           "asymmetrical",
		ImpliesThenPrinted:     "implies-then-printed",
		ImpliesFirstPrinted:    "implies-first-printed",
		ThenCancelsFirst:       "then-cancels-first",
		SameNode:               "same-node",
	}
	var out string
	for _, c := range evalOrder {
		if k.Has(c) {
			if out != "" {
				out += "|"
			}
			out += names[c]
		}
	}
	if out == "" {
		return fmt.Sprintf("kind(%#x)", uint32(k))
	}
	return out
}
