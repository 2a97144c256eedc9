package graph

import (
	"encoding/json"
	"fmt"

	"github.com/vk/tickgraph/internal/dag"
	"github.com/vk/tickgraph/internal/node"
)

// document is the persisted form of a graph.
type document struct {
	Nodes map[string]*node.Node `json:"nodes"`
	Edges []dag.Edge            `json:"edges"`
}

// MarshalJSON writes nodes keyed by name and the sorted edge list.
func (g *Graph) MarshalJSON() ([]byte, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	doc := document{
		Nodes: g.nodes,
		Edges: g.topo.Edges(),
	}
	if doc.Edges == nil {
		doc.Edges = []dag.Edge{}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON replaces the graph's contents. A document without an "edges"
// key gets its edges derived from requirements.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding graph: %w", err)
	}
	fresh := New()
	for name, n := range doc.Nodes {
		if n == nil {
			n = node.New(name)
		}
		if n.Name == "" {
			n.Name = name
		}
		if n.Name != name {
			return fmt.Errorf("decoding graph: node %q is stored under key %q", n.Name, name)
		}
		if n.Recipe == nil {
			n.Recipe = map[string]any{}
		}
		fresh.Add(n)
	}
	for _, e := range doc.Edges {
		if err := fresh.Link(e.From, e.To); err != nil {
			return fmt.Errorf("decoding graph: %w", err)
		}
	}
	if doc.Edges == nil {
		fresh.LinkRequirements()
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.topo = fresh.topo
	g.nodes = fresh.nodes
	return nil
}
