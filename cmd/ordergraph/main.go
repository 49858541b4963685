// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Command ordergraph loads a scenario file, runs the ordering resolver
// over it, and reports the resulting action flags or a Graphviz dot
// rendering of the action graph.
package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"github.com/clusterkit/ordergraph/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	c := cli.NewCLI("ordergraph", version)
	c.Args = args
	c.Commands = map[string]cli.CommandFactory{
		"resolve": func() (cli.Command, error) { return &resolveCommand{}, nil },
		"dot":     func() (cli.Command, error) { return &dotCommand{}, nil },
	}
	c.Autocomplete = true

	exitStatus, err := c.Run()
	if err != nil {
		logging.Root().Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitStatus
}
