// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package resolver implements C6: the fixed-point driver that walks an
// action graph applying C5's edge evaluation until no action's flags
// change anymore, bounded by a sanity iteration limit so that a bug
// elsewhere in the propagation rules surfaces as a diagnostic instead
// of an infinite loop.
package resolver

import (
	"github.com/hashicorp/go-hclog"

	"github.com/clusterkit/ordergraph/internal/action"
	"github.com/clusterkit/ordergraph/internal/logging"
)

// Context is the scheduler collaborator threaded through every update
// call. It implements action.Scheduler so that resource callbacks can
// call back into it without a package cycle.
type Context struct {
	Log hclog.Logger

	// MaxIterationsPerAction bounds how many times a single action may
	// be re-evaluated before the resolver gives up and reports an
	// invariant violation (spec §5). Zero selects a sane default.
	MaxIterationsPerAction int

	// OnRunnableLost, if set, is invoked for an action being updated
	// when an edge evaluation (or the one-or-more postamble) reports a
	// change to it and leaves it without FlagRunnable. A predecessor
	// that loses FlagRunnable through an ImpliesFirst edge is not
	// reported. The colocation subsystem (not part of this module) uses
	// this hook to block dependent starts elsewhere in the cluster.
	OnRunnableLost func(a *action.Action)

	allResources []action.Resource
	iterations   map[*action.Action]int
}

// NewContext constructs a resolver Context ready to use. allResources
// is the full set of resources participating in this resolution pass;
// Resolve replaces it with the resources it is given and runs block
// propagation over those directly.
func NewContext(allResources []action.Resource) *Context {
	return &Context{
		Log:                    logging.Resolver(),
		MaxIterationsPerAction: defaultMaxIterations,
		allResources:           allResources,
		iterations:             make(map[*action.Action]int),
	}
}

const defaultMaxIterations = 10000

func (c *Context) NotifyRunnableLost(a *action.Action) {
	if c.OnRunnableLost != nil {
		c.OnRunnableLost(a)
	}
}

func (c *Context) bumpIterations(a *action.Action) int {
	if c.iterations == nil {
		c.iterations = make(map[*action.Action]int)
	}
	c.iterations[a]++
	return c.iterations[a]
}

func (c *Context) maxIterations() int {
	if c.MaxIterationsPerAction <= 0 {
		return defaultMaxIterations
	}
	return c.MaxIterationsPerAction
}
