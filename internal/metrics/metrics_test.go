package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := NewCollector()
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	c.Attempt("rebuild", OutcomeSuccess, 50*time.Millisecond)
	c.Attempt("rebuild", OutcomeSuccess, 10*time.Millisecond)
	c.Attempt("rebuild", OutcomeTransient, time.Second)
	c.Stopped("rebuild", "quota")
	c.Candidates("rebuild", 7)
	c.Status("rebuild", "done", 2)

	expected := `
# HELP tickgraph_node_attempts_total Transform attempts by migrator and outcome.
# TYPE tickgraph_node_attempts_total counter
tickgraph_node_attempts_total{migrator="rebuild",outcome="success"} 2
tickgraph_node_attempts_total{migrator="rebuild",outcome="transient"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "tickgraph_node_attempts_total"))

	expected = `
# HELP tickgraph_migrator_stops_total Migrator loops stopped, by reason.
# TYPE tickgraph_migrator_stops_total counter
tickgraph_migrator_stops_total{migrator="rebuild",reason="quota"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "tickgraph_migrator_stops_total"))

	assert.Equal(t, 2, testutil.CollectAndCount(c, "tickgraph_effective_graph_nodes", "tickgraph_node_status"))
}
