// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package scenario decodes a YAML scenario file into the in-memory
// action/resource graph the resolver operates on. A scenario is the
// ordergraph CLI's unit of input: a cluster's resources, the actions
// each one needs, and the ordering edges between them.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/clusterkit/ordergraph/internal/action"
	"github.com/clusterkit/ordergraph/internal/logging"
	"github.com/clusterkit/ordergraph/internal/orderkind"
	"github.com/clusterkit/ordergraph/internal/resource"
)

// File is the root of a scenario YAML document.
type File struct {
	Nodes     []string           `yaml:"nodes"`
	Resources []ResourceDef      `yaml:"resources"`
	Edges     []EdgeDef          `yaml:"edges"`
}

// ResourceDef describes one resource and the actions it owns.
type ResourceDef struct {
	Name    string     `yaml:"name"`
	Variant string     `yaml:"variant"` // primitive | group | clone | bundle
	Managed *bool      `yaml:"managed"`
	Blocked bool       `yaml:"blocked"`
	Notify  bool       `yaml:"notify"`
	Node    string     `yaml:"node"`
	Members []string   `yaml:"members"` // group members / clone instances / bundle replicas, by resource name
	Actions []ActionDef `yaml:"actions"`
}

// ActionDef describes one action belonging to a resource.
type ActionDef struct {
	Task            string `yaml:"task"`
	Node            string `yaml:"node"`
	Optional        bool   `yaml:"optional"`
	Runnable        bool   `yaml:"runnable"`
	Pseudo          bool   `yaml:"pseudo"`
	RequiresAny     bool   `yaml:"requires_any"`
	IntervalMS      int    `yaml:"interval_ms"`
	NotifyQualifier string `yaml:"notify_qualifier"`
}

// EdgeDef describes one ordering edge between two actions, addressed
// as "<resource>/<task>".
type EdgeDef struct {
	First string   `yaml:"first"`
	Then  string   `yaml:"then"`
	Kinds []string `yaml:"kinds"`
}

// Graph is the decoded, linked in-memory representation of a scenario,
// ready to hand to internal/resolver.Resolve.
type Graph struct {
	Nodes     map[string]*action.Node
	Resources map[string]action.Resource
	Actions   map[string]*action.Action // keyed by "<resource>/<task>"
}

var kindNames = map[string]orderkind.Kind{
	"implies-then":              orderkind.ImpliesThen,
	"implies-then-on-node":      orderkind.ImpliesThenOnNode,
	"implies-first":             orderkind.ImpliesFirst,
	"promoted-implies-first":    orderkind.PromotedImpliesFirst,
	"restart":                   orderkind.Restart,
	"one-or-more":               orderkind.OneOrMore,
	"probe":                     orderkind.Probe,
	"runnable-left":             orderkind.RunnableLeft,
	"implies-first-migratable":  orderkind.ImpliesFirstMigratable,
	"pseudo-left":               orderkind.PseudoLeft,
	"optional":                  orderkind.Optional,
	"asymmetrical":              orderkind.Asymmetrical,
	"implies-then-printed":      orderkind.ImpliesThenPrinted,
	"implies-first-printed":     orderkind.ImpliesFirstPrinted,
	"then-cancels-first":        orderkind.ThenCancelsFirst,
	"same-node":                 orderkind.SameNode,
}

// Load reads and decodes the scenario file at path into a linked Graph.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scenario yaml: %w", err)
	}
	return build(&f)
}

func build(f *File) (*Graph, error) {
	log := logging.Scenario()
	g := &Graph{
		Nodes:     make(map[string]*action.Node),
		Resources: make(map[string]action.Resource),
		Actions:   make(map[string]*action.Action),
	}

	for _, n := range f.Nodes {
		g.Nodes[n] = &action.Node{Name: n}
	}

	// Pass 1: construct every resource (without member wiring, since
	// members may be declared later in the file).
	for _, rd := range f.Resources {
		r, err := newResource(rd)
		if err != nil {
			return nil, fmt.Errorf("resource %q: %w", rd.Name, err)
		}
		g.Resources[rd.Name] = r
	}

	// Pass 2: wire composite membership now that every resource exists.
	for _, rd := range f.Resources {
		if len(rd.Members) == 0 {
			continue
		}
		parent := g.Resources[rd.Name]
		for _, memberName := range rd.Members {
			member, ok := g.Resources[memberName]
			if !ok {
				return nil, fmt.Errorf("resource %q: unknown member %q", rd.Name, memberName)
			}
			if err := attachMember(parent, member); err != nil {
				return nil, fmt.Errorf("resource %q: %w", rd.Name, err)
			}
		}
	}

	// Pass 3: actions, now that every resource and node exists.
	for _, rd := range f.Resources {
		r := g.Resources[rd.Name]
		for _, ad := range rd.Actions {
			a := action.New(ad.Task, r)
			a.IntervalMS = ad.IntervalMS
			a.NotifyQualifier = ad.NotifyQualifier
			if ad.Node != "" {
				a.Node = g.Nodes[ad.Node]
			} else if rd.Node != "" {
				a.Node = g.Nodes[rd.Node]
			}
			if ad.Optional {
				a.SetFlag(action.FlagOptional)
			}
			if ad.Runnable {
				a.SetFlag(action.FlagRunnable)
			}
			if ad.Pseudo {
				a.SetFlag(action.FlagPseudo)
			}
			if ad.RequiresAny {
				a.SetFlag(action.FlagRequiresAny)
			}
			// g.Actions is keyed by the scenario-friendly "<resource>/<task>"
			// form for edge lookups below; the resource's own action list
			// is keyed by C4's uuid grammar, which expand.Resolve parses.
			g.Actions[rd.Name+"/"+ad.Task] = a
			if adder, ok := r.(interface {
				AddAction(string, *action.Action)
			}); ok {
				adder.AddAction(a.UUIDString(), a)
			}
		}
	}

	// Pass 4: edges.
	for _, ed := range f.Edges {
		first, ok := g.Actions[ed.First]
		if !ok {
			return nil, fmt.Errorf("edge references unknown action %q", ed.First)
		}
		then, ok := g.Actions[ed.Then]
		if !ok {
			return nil, fmt.Errorf("edge references unknown action %q", ed.Then)
		}
		var kind orderkind.Kind
		for _, name := range ed.Kinds {
			k, ok := kindNames[name]
			if !ok {
				return nil, fmt.Errorf("edge %s->%s: unknown kind %q", ed.First, ed.Then, name)
			}
			kind = kind.With(k)
		}
		first.AddSuccessor(then, kind)
		log.Trace("loaded edge", "first", ed.First, "then", ed.Then, "kind", kind.String())
	}

	return g, nil
}

func newResource(rd ResourceDef) (action.Resource, error) {
	flags := resource.Flags(0)
	if rd.Managed == nil || *rd.Managed {
		flags |= resource.FlagManaged
	}
	if rd.Blocked {
		flags |= resource.FlagBlocked
	}
	if rd.Notify {
		flags |= resource.FlagNotifyAllowed
	}

	switch rd.Variant {
	case "", "primitive":
		return resource.NewPrimitive(rd.Name, flags), nil
	case "group":
		return resource.NewGroup(rd.Name, flags), nil
	case "clone":
		return resource.NewClone(rd.Name, flags), nil
	case "bundle":
		return resource.NewBundle(rd.Name, flags), nil
	default:
		return nil, fmt.Errorf("unknown variant %q", rd.Variant)
	}
}

func attachMember(parent, member action.Resource) error {
	switch p := parent.(type) {
	case *resource.Group:
		p.AddMember(member)
	case *resource.Clone:
		p.AddInstance(member)
	case *resource.Bundle:
		p.AddReplica(member)
	default:
		return fmt.Errorf("variant %s cannot have members", parent.Variant())
	}
	return nil
}
