package config

import (
	"time"

	"github.com/hashicorp/hcl/v2"
)

// Model is the unified, format-agnostic representation of the whole
// configuration: one run block and the migrators to execute, in file order.
type Model struct {
	Run       Run
	Migrators []*Migrator
}

// Run holds invocation-wide limits.
type Run struct {
	// Deadline bounds the whole invocation. Zero means none.
	Deadline time.Duration
	// APIBudget is the number of remote calls the invocation may make.
	// Negative means unlimited.
	APIBudget int
}

// DefaultRun is used when no run block is configured.
var DefaultRun = Run{APIBudget: -1}

// Migrator is the format-agnostic representation of a `migrator` block.
type Migrator struct {
	Kind      string
	Name      string
	Quota     int
	Deadline  time.Duration
	Ordering  string
	Relevance Relevance
	// Arguments are decoded by the module registered for Kind.
	Arguments map[string]hcl.Expression
	Piggyback []*Piggyback
}

// Relevance is the format-agnostic representation of a `relevance` block.
type Relevance struct {
	Requires []string
	Include  []string
	Exclude  []string
}

// Piggyback is the format-agnostic representation of a `piggyback` block.
type Piggyback struct {
	Kind      string
	Arguments map[string]hcl.Expression
}
