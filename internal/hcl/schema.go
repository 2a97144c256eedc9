package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block a configuration file may hold.
type fileRoot struct {
	Runs      []*runBlock      `hcl:"run,block"`
	Migrators []*migratorBlock `hcl:"migrator,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

// runBlock is the `run` block.
type runBlock struct {
	DeadlineSeconds *int `hcl:"deadline_seconds,optional"`
	APIBudget       *int `hcl:"api_budget,optional"`
}

// migratorBlock is a `migrator "<kind>" "<name>"` block.
type migratorBlock struct {
	Kind            string            `hcl:"kind,label"`
	Name            string            `hcl:"name,label"`
	Quota           int               `hcl:"quota"`
	DeadlineSeconds int               `hcl:"deadline_seconds,optional"`
	Ordering        string            `hcl:"ordering,optional"`
	Relevance       *relevanceBlock   `hcl:"relevance,block"`
	Arguments       *bodyBlock        `hcl:"arguments,block"`
	Piggyback       []*piggybackBlock `hcl:"piggyback,block"`
}

type relevanceBlock struct {
	Requires []string `hcl:"requires,optional"`
	Include  []string `hcl:"include,optional"`
	Exclude  []string `hcl:"exclude,optional"`
}

// bodyBlock keeps a block's attributes undecoded for a module to bind.
type bodyBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type piggybackBlock struct {
	Kind string   `hcl:"kind,label"`
	Body hcl.Body `hcl:",remain"`
}
