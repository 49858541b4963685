// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package expand implements C4: decomposing a virtual action's uuid
// into the concrete action a composite resource's member should
// actually be ordered against, and looking that concrete action up.
//
// A virtual action's uuid follows the grammar
// "<resource-id>_<task>_<interval-ms>", or for the notify form
// "<resource-id>_<qualifier>_notify_<interval-ms>". The resolver
// rewrites an edge's first endpoint to the concrete action when Resolve
// finds one; otherwise the virtual action is used unchanged.
package expand

import (
	"strconv"
	"strings"

	"github.com/clusterkit/ordergraph/internal/action"
	"github.com/clusterkit/ordergraph/internal/logging"
)

// UUID is a decomposed action identifier.
type UUID struct {
	ResourceID string
	Task       string
	IntervalMS int

	// Notify, if non-empty, is the confirmation qualifier from a
	// notify-form uuid ("pre", "post", "confirmed-pre",
	// "confirmed-post").
	Notify string
}

// taskConversions maps a virtual task name to the concrete task name it
// expands to. monitor, shutdown and fence are deliberately absent:
// those tasks are never expanded, because there is exactly one
// meaningful instance of each regardless of composite structure.
var taskConversions = map[string]string{
	"start":   "running",
	"stop":    "stopped",
	"notify":  "notified",
	"promote": "promoted",
	"demote":  "demoted",

	// Passthrough: already-expanded tasks decompose to themselves so
	// that re-parsing an already-concrete uuid is idempotent.
	"running":  "running",
	"stopped":  "stopped",
	"notified": "notified",
	"promoted": "promoted",
	"demoted":  "demoted",
}

// notExpanded is the set of tasks whose uuid is never rewritten.
var notExpanded = map[string]bool{
	"monitor":  true,
	"shutdown": true,
	"fence":    true,
}

// Parse decomposes a uuid string into its resource id, task and
// interval. It returns ok=false if the string doesn't match the
// expected grammar, in which case the caller should treat the uuid as
// opaque and use it unexpanded.
func Parse(uuidStr string) (u UUID, ok bool) {
	parts := strings.Split(uuidStr, "_")
	if len(parts) < 3 {
		return UUID{}, false
	}

	// The interval is always the last numeric segment; the task is the
	// segment before it, unless this is a notify-form uuid with a
	// trailing confirmation qualifier, in which case the qualifier and
	// the literal "notify" tag sit between the task and the interval.
	last := parts[len(parts)-1]
	interval, err := strconv.Atoi(last)
	if err != nil {
		return UUID{}, false
	}

	taskIdx := len(parts) - 2
	if taskIdx >= 2 && parts[taskIdx] == "notify" {
		// "<resource-id>_<qualifier>_notify_<interval>": the literal
		// "notify" tag is the task, the segment before it is the
		// confirmation qualifier, and the resource id ends before that.
		qualifierIdx := taskIdx - 1
		if qualifierIdx < 1 {
			return UUID{}, false
		}
		return UUID{
			ResourceID: strings.Join(parts[:qualifierIdx], "_"),
			Task:       "notify",
			IntervalMS: interval,
			Notify:     parts[qualifierIdx],
		}, true
	}
	if taskIdx < 1 {
		return UUID{}, false
	}

	return UUID{
		ResourceID: strings.Join(parts[:taskIdx], "_"),
		Task:       parts[taskIdx],
		IntervalMS: interval,
	}, true
}

// Task2 returns the concrete task name this uuid's virtual task expands
// to, and whether expansion applies at all.
func (u UUID) Task2() (string, bool) {
	if notExpanded[u.Task] {
		return u.Task, false
	}
	concrete, ok := taskConversions[u.Task]
	if !ok {
		return u.Task, false
	}
	return concrete, true
}

// Resolve looks up the concrete action a composite resource's own
// post-completion peer should be ordered against, given the virtual
// action participating as an edge's first and that action's owning
// resource. When expansion applies and the resource has a matching
// concrete action registered under its own uuid grammar, Resolve
// returns it; otherwise it falls back to returning virtual unchanged
// and logs the miss, per the lookup-or-fallback-with-log behavior the
// resolver relies on to stay total (an unmatched virtual action must
// never simply vanish from the graph).
func Resolve(virtual *action.Action, owner action.Resource) *action.Action {
	if owner == nil {
		return virtual
	}
	u, ok := Parse(virtual.UUIDString())
	if !ok {
		return virtual
	}
	// "If the action's uuid contains notify, no expansion."
	if strings.Contains(virtual.UUIDString(), "notify") {
		return virtual
	}
	// "If the owning resource's variant is below GROUP, no expansion."
	if owner.Variant() < action.Group {
		return virtual
	}
	// "If interval > 0, no expansion."
	if u.IntervalMS > 0 {
		return virtual
	}
	concreteTask, expands := u.Task2()
	if !expands {
		return virtual
	}
	for key, candidate := range owner.Actions() {
		cu, ok := Parse(key)
		if ok && cu.Task == concreteTask && cu.ResourceID == u.ResourceID {
			return candidate
		}
		if candidate.Task == concreteTask {
			return candidate
		}
	}
	logging.Expand().Error("no concrete action found for virtual uuid, using unexpanded",
		"action_uuid", virtual.UUIDString(), "resource", owner.Name(), "task", concreteTask)
	return virtual
}
