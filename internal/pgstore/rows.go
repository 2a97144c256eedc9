package pgstore

import (
	"encoding/json"
	"fmt"

	"github.com/vk/tickgraph/internal/dag"
	"github.com/vk/tickgraph/internal/graph"
)

type nodeRow struct {
	name string
	data []byte
}

// nodeRows encodes the named nodes of g. Names not in g are skipped.
func nodeRows(g *graph.Graph, names []string) ([]nodeRow, error) {
	rows := make([]nodeRow, 0, len(names))
	for _, name := range names {
		n, ok := g.Node(name)
		if !ok {
			continue
		}
		data, err := json.Marshal(n)
		if err != nil {
			return nil, fmt.Errorf("encoding node %s: %w", name, err)
		}
		rows = append(rows, nodeRow{name: name, data: data})
	}
	return rows, nil
}

// rowDocument reassembles table rows into the graph's JSON document so that
// decoding follows the same rules as every other store. An empty edge table
// leaves Edges nil, which derives edges from requirements.
type rowDocument struct {
	Nodes map[string]json.RawMessage `json:"nodes"`
	Edges []dag.Edge                 `json:"edges,omitempty"`
}

func (d rowDocument) graph() (*graph.Graph, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	g := graph.New()
	if err := json.Unmarshal(data, g); err != nil {
		return nil, err
	}
	return g, nil
}
