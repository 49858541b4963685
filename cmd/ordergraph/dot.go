// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/posener/complete"

	"github.com/clusterkit/ordergraph/internal/action"
	"github.com/clusterkit/ordergraph/internal/dag"
	"github.com/clusterkit/ordergraph/internal/dag/graphviz"
	"github.com/clusterkit/ordergraph/internal/resolver"
	"github.com/clusterkit/ordergraph/internal/scenario"
)

// dotCommand resolves a scenario and renders its action graph in the
// Graphviz language, using internal/dag/graphviz exactly as it expects
// to be used: every dag.Vertex is a graphviz.Node wrapping one action's
// label and attributes.
type dotCommand struct{}

func (c *dotCommand) Help() string {
	return "Usage: ordergraph dot <scenario.yaml>\n\n" +
		"  Resolves a scenario and prints its action graph as Graphviz dot."
}

func (c *dotCommand) Synopsis() string {
	return "Render a scenario's resolved action graph as Graphviz dot"
}

func (c *dotCommand) AutocompleteFlags() complete.Flags { return nil }

func (c *dotCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictFiles("*.yaml")
}

func (c *dotCommand) Run(args []string) int {
	fs := flag.NewFlagSet("dot", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 1
	}
	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Println(c.Help())
		return 1
	}

	sg, err := scenario.Load(rest[0])
	if err != nil {
		fmt.Println("error:", err)
		return 1
	}

	actions := make([]*action.Action, 0, len(sg.Actions))
	keyByAction := make(map[*action.Action]string, len(sg.Actions))
	for key, a := range sg.Actions {
		actions = append(actions, a)
		keyByAction[a] = key
	}
	resources := make([]action.Resource, 0, len(sg.Resources))
	for _, r := range sg.Resources {
		resources = append(resources, r)
	}

	diags := resolver.Resolve(actions, resources, nil)
	if diags.HasErrors() {
		for _, d := range diags {
			fmt.Println(d.Error())
		}
		return 1
	}

	g := &dag.Graph{}
	nodeFor := make(map[string]graphviz.Node, len(actions))
	for key, a := range sg.Actions {
		n := graphviz.Node{
			ID: key,
			Attrs: graphviz.Attributes{
				"label": graphviz.Val(fmt.Sprintf("%s\\nflags=%s", key, a.Flags)),
			},
		}
		nodeFor[key] = n
		g.Add(n)
	}
	for key, a := range sg.Actions {
		src := nodeFor[key]
		for _, e := range a.Successors {
			if dstKey, ok := keyByAction[e.Peer]; ok {
				g.Connect(dag.BasicEdge(src, nodeFor[dstKey]))
			}
		}
	}

	gv := &graphviz.Graph{Content: g}
	if err := graphviz.WriteDirectedGraph(gv, os.Stdout); err != nil {
		fmt.Println("error:", err)
		return 1
	}
	return 0
}
