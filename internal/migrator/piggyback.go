package migrator

import (
	"fmt"

	"github.com/vk/tickgraph/internal/mutate"
	"github.com/vk/tickgraph/internal/node"
)

// Step is a small change applied together with a parent migration's
// successful change. Steps never contribute to the parent's UID.
type Step interface {
	Name() string
	Applies(n *node.Node) bool
	Edits(n *node.Node) []mutate.Edit
}

// SetMetadata sets one recipe metadata key when it differs.
type SetMetadata struct {
	Key   string
	Value string
}

func (s SetMetadata) Name() string {
	return "set_metadata:" + s.Key
}

func (s SetMetadata) Applies(n *node.Node) bool {
	cur, ok := n.Recipe[s.Key]
	return !ok || fmt.Sprint(cur) != s.Value
}

func (s SetMetadata) Edits(*node.Node) []mutate.Edit {
	return []mutate.Edit{{Key: s.Key, Value: s.Value}}
}
