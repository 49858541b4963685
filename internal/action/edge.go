// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package action

import "github.com/clusterkit/ordergraph/internal/orderkind"

// Edge is a typed ordering constraint pointing at a peer action. An Edge
// lives inside the Predecessors or Successors list of the action on the
// other end of the relationship; there is no separate edge registry.
//
// first -Edge{Peer: then, Kind: k}-> is read "first orders then, with
// kind k", and is stored in first.Successors; the mirror entry
// Edge{Peer: first, Kind: k} lives in then.Predecessors.
type Edge struct {
	Peer *Action
	Kind orderkind.Kind
}

// Disabled reports whether a SameNode filter (or the Probe cancellation
// rule) has permanently turned this edge off.
func (e *Edge) Disabled() bool {
	return e.Kind.Disabled()
}

// Disable zeroes e.Kind and does the same to owner's mirror entry on
// the other side of the relationship, so that whichever direction the
// resolver later iterates from, it observes a consistently disabled
// edge rather than only one of the two mirrored Edge values.
func (e *Edge) Disable(owner *Action) {
	e.Kind = orderkind.None
	for _, mirror := range e.Peer.Successors {
		if mirror.Peer == owner {
			mirror.Kind = orderkind.None
		}
	}
	for _, mirror := range e.Peer.Predecessors {
		if mirror.Peer == owner {
			mirror.Kind = orderkind.None
		}
	}
}
