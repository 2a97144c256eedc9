// Package metrics exposes run-loop counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "tickgraph"

// Outcome labels for attempted nodes.
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeTransient = "transient"
	OutcomePermanent = "permanent"
	OutcomeQuota     = "quota"
)

// Collector is a prometheus.Collector for the run loop.
type Collector struct {
	attempts     *prometheus.CounterVec
	stops        *prometheus.CounterVec
	nodeDuration *prometheus.HistogramVec
	candidates   *prometheus.GaugeVec
	statuses     *prometheus.GaugeVec
}

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "node_attempts_total",
				Help:      "Transform attempts by migrator and outcome.",
			}, []string{"migrator", "outcome"},
		),
		stops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "migrator_stops_total",
				Help:      "Migrator loops stopped, by reason.",
			}, []string{"migrator", "reason"},
		),
		nodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "node_duration_seconds",
				Help:      "Time spent transforming and saving one node.",
				Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 30, 120},
			}, []string{"migrator"},
		),
		candidates: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "effective_graph_nodes",
				Help:      "Nodes in the migrator's effective graph at the start of the last run.",
			}, []string{"migrator"},
		),
		statuses: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "node_status",
				Help:      "Nodes per status after the last run.",
			}, []string{"migrator", "status"},
		),
	}
}

// Attempt records one attempted node.
func (c *Collector) Attempt(migrator, outcome string, took time.Duration) {
	c.attempts.WithLabelValues(migrator, outcome).Inc()
	c.nodeDuration.WithLabelValues(migrator).Observe(took.Seconds())
}

// Stopped records why a migrator loop ended.
func (c *Collector) Stopped(migrator, reason string) {
	c.stops.WithLabelValues(migrator, reason).Inc()
}

// Candidates records the effective graph size.
func (c *Collector) Candidates(migrator string, n int) {
	c.candidates.WithLabelValues(migrator).Set(float64(n))
}

// Status records the number of nodes in one status.
func (c *Collector) Status(migrator, status string, n int) {
	c.statuses.WithLabelValues(migrator, status).Set(float64(n))
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.attempts.Describe(ch)
	c.stops.Describe(ch)
	c.nodeDuration.Describe(ch)
	c.candidates.Describe(ch)
	c.statuses.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.attempts.Collect(ch)
	c.stops.Collect(ch)
	c.nodeDuration.Collect(ch)
	c.candidates.Collect(ch)
	c.statuses.Collect(ch)
}
