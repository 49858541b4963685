// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"flag"
	"fmt"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"github.com/posener/complete"

	"github.com/clusterkit/ordergraph/internal/action"
	"github.com/clusterkit/ordergraph/internal/resolver"
	"github.com/clusterkit/ordergraph/internal/scenario"
)

// resolveCommand runs the fixed-point resolver over a scenario file and
// prints each action's final OPTIONAL/RUNNABLE state.
type resolveCommand struct {
	debug bool
}

func (c *resolveCommand) Help() string {
	return "Usage: ordergraph resolve [-debug] <scenario.yaml>\n\n" +
		"  Loads a scenario file, runs the ordering resolver to a fixed point,\n" +
		"  and prints the resulting flags for every action."
}

func (c *resolveCommand) Synopsis() string {
	return "Resolve a scenario's action graph to a fixed point"
}

func (c *resolveCommand) AutocompleteFlags() complete.Flags {
	return complete.Flags{"-debug": complete.PredictNothing}
}

func (c *resolveCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictFiles("*.yaml")
}

func (c *resolveCommand) Run(args []string) int {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.BoolVar(&c.debug, "debug", false, "dump the full resolved graph with go-spew before printing the summary")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Println(c.Help())
		return 1
	}

	g, err := scenario.Load(rest[0])
	if err != nil {
		fmt.Println("error:", err)
		return 1
	}

	keys := make([]string, 0, len(g.Actions))
	for key := range g.Actions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	actions := make([]*action.Action, 0, len(keys))
	for _, key := range keys {
		actions = append(actions, g.Actions[key])
	}

	resources := make([]action.Resource, 0, len(g.Resources))
	for _, r := range g.Resources {
		resources = append(resources, r)
	}

	diags := resolver.Resolve(actions, resources, nil)
	for _, d := range diags {
		fmt.Println(d.Error())
	}
	if diags.HasErrors() {
		return 1
	}

	if c.debug {
		spew.Dump(g)
	}

	for _, key := range keys {
		fmt.Printf("%-40s flags=%s\n", key, g.Actions[key].Flags)
	}

	return 0
}
