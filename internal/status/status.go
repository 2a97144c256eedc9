// Package status derives, for one migrator, the packages still actionable
// now and classifies every package it touches for reporting. Nothing in this
// package writes to the graph.
package status

import (
	"slices"
	"time"

	"github.com/vk/tickgraph/internal/dag"
	"github.com/vk/tickgraph/internal/migrator"
	"github.com/vk/tickgraph/internal/node"
)

// Status is the lifecycle state of one package against one migrator.
type Status string

const (
	Done                 Status = "done"
	InProgress           Status = "in-progress"
	AwaitingAction       Status = "awaiting-action"
	AwaitingDependencies Status = "awaiting-dependencies"
	Error                Status = "error"
)

// Statuses lists every status in report order.
var Statuses = []Status{Done, InProgress, AwaitingAction, AwaitingDependencies, Error}

// cycleReportLimit bounds the cycles listed in a report.
const cycleReportLimit = 64

// EffectiveGraph copies the derived subgraph and drops every node the
// migrator would skip. Edges are not spliced around dropped nodes.
func EffectiveGraph(m migrator.Migrator, s *migrator.Scope) *dag.Graph {
	eff := s.Sub.Copy()
	for _, id := range eff.Nodes() {
		n, ok := s.Graph.Node(id)
		if !ok {
			eff.RemoveNode(id)
			continue
		}
		if skip, _ := m.Skip(s, n); skip {
			eff.RemoveNode(id)
		}
	}
	return eff
}

// Classify returns the status of n against m. A package without a record
// that m skips is awaiting dependencies whatever the skip reason; Build lists
// the reasons that are not a dependency wait in Report.Held.
func Classify(m migrator.Migrator, s *migrator.Scope, n *node.Node) Status {
	st, _ := classify(m, s, n)
	return st
}

func classify(m migrator.Migrator, s *migrator.Scope, n *node.Node) (Status, string) {
	if rec, ok := n.Migrations.Find(m.UID(n)); ok {
		switch {
		case rec.Malformed():
			return Error, ""
		case rec.Closed():
			return Done, ""
		default:
			return InProgress, ""
		}
	}
	if v, ok := m.(migrator.Verifier); ok && v.AlreadyApplied(n) {
		return Done, ""
	}
	skip, why := m.Skip(s, n)
	if !skip {
		return AwaitingAction, ""
	}
	return AwaitingDependencies, why
}

// Report summarises one migrator.
type Report struct {
	Migrator  string              `json:"migrator"`
	Nodes     map[Status][]string `json:"nodes"`
	Archived  []string            `json:"archived,omitempty"`
	BadStates map[string]string   `json:"bad_states,omitempty"`
	// Held maps awaiting-dependencies packages held back for another reason,
	// such as a bad state or the open attempt cap, to that reason.
	Held      map[string]string   `json:"held,omitempty"`
	Cycles    [][]string          `json:"cycles,omitempty"`
	Effective int                 `json:"effective"`
}

// Build classifies every package of the scope's derived subgraph. Archived
// packages are listed apart rather than classified.
func Build(m migrator.Migrator, s *migrator.Scope) Report {
	r := Report{
		Migrator:  m.Name(),
		Nodes:     make(map[Status][]string, len(Statuses)),
		BadStates: make(map[string]string),
		Held:      make(map[string]string),
		Effective: EffectiveGraph(m, s).Len(),
	}
	for _, st := range Statuses {
		r.Nodes[st] = []string{}
	}
	for _, id := range s.Sub.Nodes() {
		n, ok := s.Graph.Node(id)
		if !ok {
			continue
		}
		if n.BadState != nil {
			r.BadStates[id] = n.BadState.String()
		}
		if n.Archived {
			r.Archived = append(r.Archived, id)
			continue
		}
		st, why := classify(m, s, n)
		r.Nodes[st] = append(r.Nodes[st], id)
		if st == AwaitingDependencies && !migrator.WaitingOnDependencies(why) {
			r.Held[id] = why
		}
	}
	if s.Cyclic() {
		for _, c := range s.Sub.SimpleCycles(cycleReportLimit) {
			r.Cycles = append(r.Cycles, slices.Clone([]string(c)))
		}
	}
	return r
}

// Counts returns the number of packages per status.
func (r Report) Counts() map[Status]int {
	out := make(map[Status]int, len(r.Nodes))
	for st, ids := range r.Nodes {
		out[st] = len(ids)
	}
	return out
}

// Snapshot is the set of reports published after an invocation.
type Snapshot struct {
	RunID     string    `json:"run_id"`
	Generated time.Time `json:"generated"`
	Reports   []Report  `json:"reports"`
}

// Find returns the report for the named migrator.
func (s *Snapshot) Find(name string) (Report, bool) {
	for _, r := range s.Reports {
		if r.Migrator == name {
			return r, true
		}
	}
	return Report{}, false
}
