// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package logging provides the resolver's hclog setup: a single root
// logger controlled by the ORDERGRAPH_LOG environment variable, and
// named sub-loggers for each major component so that log output can be
// filtered per-subsystem the way the teacher's TF_LOG-derived loggers
// are.
package logging

import (
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

var (
	once sync.Once
	root hclog.Logger
)

// EnvVar is the environment variable controlling resolver log level,
// e.g. "trace", "debug", "info", "warn", "error", or "off".
const EnvVar = "ORDERGRAPH_LOG"

func initRoot() {
	level := hclog.LevelFromString(os.Getenv(EnvVar))
	if level == hclog.NoLevel {
		level = hclog.Off
	}
	root = hclog.New(&hclog.LoggerOptions{
		Name:            "ordergraph",
		Level:           level,
		IncludeLocation: level <= hclog.Debug,
	})
}

// Root returns the shared root logger, initializing it from
// ORDERGRAPH_LOG on first use.
func Root() hclog.Logger {
	once.Do(initRoot)
	return root
}

// Resolver returns the named sub-logger for internal/resolver.
func Resolver() hclog.Logger { return Root().Named("resolver") }

// Evaluator returns the named sub-logger for internal/evaluator.
func Evaluator() hclog.Logger { return Root().Named("evaluator") }

// Expand returns the named sub-logger for internal/expand.
func Expand() hclog.Logger { return Root().Named("expand") }

// Scenario returns the named sub-logger for internal/scenario.
func Scenario() hclog.Logger { return Root().Named("scenario") }
