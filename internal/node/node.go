// Package node defines the attribute record carried by each package in the
// dependency graph.
package node

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/vk/tickgraph/internal/migration"
)

// Recipe metadata keys read and written by the built-in migrators.
const (
	RecipeVersion     = "version"
	RecipeBuildNumber = "build_number"
)

// Node is one package ("feedstock") in the graph. Its identity is Name.
type Node struct {
	// Name is the unique package name.
	Name string `json:"name"`
	// Requirements are the categorised dependency names of the package.
	Requirements Requirements `json:"requirements"`
	// Outputs lists the names this package publishes. Empty means Name.
	Outputs []string `json:"outputs,omitempty"`
	// Recipe is the opaque metadata the migrator transform reads and writes.
	Recipe map[string]any `json:"recipe,omitempty"`
	// Migrations is the append-only attempt history.
	Migrations migration.Records `json:"migrations,omitempty"`
	// Archived nodes are permanently excluded from scheduling.
	Archived bool `json:"archived,omitempty"`
	// BadState excludes the node until cleared unless a migrator allow-lists it.
	BadState *BadState `json:"bad_state,omitempty"`
	// NewVersion is the latest upstream version, if one is known.
	NewVersion string `json:"new_version,omitempty"`
}

// BadState is the diagnostic recorded on a node after a node-local fault.
type BadState struct {
	Migrator string    `json:"migrator,omitempty"`
	RunID    string    `json:"run_id,omitempty"`
	Kind     string    `json:"kind"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

func (b *BadState) String() string {
	return fmt.Sprintf("%s: %s", b.Kind, b.Message)
}

// New returns a node with empty requirement sets.
func New(name string) *Node {
	return &Node{
		Name:         name,
		Requirements: NewRequirements(),
		Recipe:       map[string]any{},
	}
}

// OutputNames returns the names other packages may require this one by.
func (n *Node) OutputNames() []string {
	if len(n.Outputs) == 0 {
		return []string{n.Name}
	}
	return n.Outputs
}

// Version returns the recipe version, or "" when unset.
func (n *Node) Version() string {
	v, ok := n.Recipe[RecipeVersion]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// BuildNumber returns the recipe build number. Missing or unparsable values
// count as 0.
func (n *Node) BuildNumber() int {
	switch v := n.Recipe[RecipeBuildNumber].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		i, _ := v.Int64()
		return int(i)
	case string:
		i, _ := strconv.Atoi(v)
		return i
	default:
		return 0
	}
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	out := *n
	out.Requirements = n.Requirements.Clone()
	if n.Outputs != nil {
		out.Outputs = append([]string(nil), n.Outputs...)
	}
	out.Recipe = cloneMap(n.Recipe)
	out.Migrations = n.Migrations.Clone()
	if n.BadState != nil {
		bs := *n.BadState
		out.BadState = &bs
	}
	return &out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
