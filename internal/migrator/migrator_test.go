package migrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/tickgraph/internal/fault"
	"github.com/vk/tickgraph/internal/graph"
	"github.com/vk/tickgraph/internal/migration"
	"github.com/vk/tickgraph/internal/mutate"
	"github.com/vk/tickgraph/internal/node"
)

// chainGraph builds packages linked by host requirements: each edge
// {from, to} makes to require from.
func chainGraph(t *testing.T, edges ...[2]string) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, e := range edges {
		for _, name := range e {
			if _, ok := g.Node(name); !ok {
				g.Add(node.New(name))
			}
		}
		to, _ := g.Node(e[1])
		to.Requirements.Host.Add(e[0])
		require.NoError(t, g.Link(e[0], e[1]))
	}
	return g
}

func closed(uid migration.UID) migration.Record {
	return migration.Record{UID: uid, Remote: &migration.Remote{State: migration.StateClosed}}
}

func open(uid migration.UID) migration.Record {
	return migration.Record{UID: uid, Remote: &migration.Remote{State: migration.StateOpen}}
}

func mustNode(t *testing.T, g *graph.Graph, name string) *node.Node {
	t.Helper()
	n, ok := g.Node(name)
	require.True(t, ok, "node %s", name)
	return n
}

func TestRelevance(t *testing.T) {
	n := node.New("curl")
	n.Requirements.Host.Add("openssl")
	n.Requirements.Build.Add("cmake")

	tests := []struct {
		name string
		rel  Relevance
		want bool
	}{
		{"empty matches all", Relevance{}, true},
		{"requires host dep", Relevance{Requires: []string{"openssl"}}, true},
		{"build deps do not count", Relevance{Requires: []string{"cmake"}}, false},
		{"include by name", Relevance{Requires: []string{"libxml2"}, Include: []string{"curl"}}, true},
		{"exclude wins", Relevance{Include: []string{"curl"}, Exclude: []string{"curl"}}, false},
		{"exclude alone", Relevance{Exclude: []string{"curl"}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.rel.Match(n))
		})
	}
}

func TestNewBase_Errors(t *testing.T) {
	_, err := NewRebuild(Config{Mutator: mutate.NewLocal()})
	assert.ErrorContains(t, err, "no name")

	_, err = NewRebuild(Config{Settings: Settings{Name: "x", Quota: -1}, Mutator: mutate.NewLocal()})
	assert.ErrorContains(t, err, "quota must not be negative")

	_, err = NewRebuild(Config{Settings: Settings{Name: "x"}})
	assert.ErrorContains(t, err, "no mutator")

	_, err = NewVersion(Config{Settings: Settings{Name: "x", Ordering: "alphabetical"}, Mutator: mutate.NewLocal()})
	assert.ErrorContains(t, err, "unknown ordering policy")
}

func TestVersion(t *testing.T) {
	ctx := context.Background()
	g := chainGraph(t, [2]string{"zlib", "curl"})
	zlib := mustNode(t, g, "zlib")
	zlib.Recipe[node.RecipeVersion] = "1.2"
	zlib.Recipe[node.RecipeBuildNumber] = 3
	zlib.NewVersion = "1.3"

	m, err := NewVersion(Config{
		Settings:  Settings{Name: "version", Quota: 5},
		Piggyback: []Step{SetMetadata{Key: "python_min", Value: "3.9"}},
		Mutator:   mutate.NewLocal(),
	})
	require.NoError(t, err)
	s := NewScope(m, g)

	uid := m.UID(zlib)
	assert.Equal(t, map[string]string{
		"migrator_name":    "Version",
		"migrator_version": "0",
		"version":          "1.3",
	}, uid.Fields())

	skip, why := m.Skip(s, mustNode(t, g, "curl"))
	assert.True(t, skip)
	assert.Equal(t, "no new version", why)

	skip, _ = m.Skip(s, zlib)
	require.False(t, skip)
	assert.False(t, m.AlreadyApplied(zlib))

	res, err := m.Transform(ctx, s, zlib)
	require.NoError(t, err)
	assert.Equal(t, uid, res.UID)
	assert.True(t, res.Remote.State == migration.StateClosed)
	assert.Equal(t, "1.3", zlib.Version())
	assert.Equal(t, 0, zlib.BuildNumber())
	assert.Equal(t, "3.9", zlib.Recipe["python_min"])
	assert.True(t, m.AlreadyApplied(zlib))

	t.Run("newer upstream version is a new migration", func(t *testing.T) {
		zlib.Migrations = append(zlib.Migrations, closed(uid))
		skip, why := m.Skip(s, zlib)
		assert.True(t, skip)
		assert.Equal(t, "already attempted", why)

		zlib.NewVersion = "1.4"
		assert.NotEqual(t, uid, m.UID(zlib))
		skip, _ = m.Skip(s, zlib)
		assert.False(t, skip)
	})

	t.Run("nothing to do is rejected", func(t *testing.T) {
		_, err := m.Transform(ctx, s, mustNode(t, g, "curl"))
		assert.Equal(t, fault.KindRejected, fault.KindOf(err))
	})
}

func TestCommonFilter(t *testing.T) {
	g := chainGraph(t, [2]string{"a", "b"})
	g.Add(node.New("other"))
	for _, name := range g.Names() {
		mustNode(t, g, name).NewVersion = "2"
	}
	m, err := NewVersion(Config{
		Settings:       Settings{Name: "version"},
		Relevance:      Relevance{Exclude: []string{"other"}},
		AllowBadStates: []string{"rate limit"},
		Mutator:        mutate.NewLocal(),
	})
	require.NoError(t, err)
	s := NewScope(m, g)

	a := mustNode(t, g, "a")
	a.Archived = true
	skip, why := m.Skip(s, a)
	assert.True(t, skip)
	assert.Equal(t, "archived", why)

	skip, why = m.Skip(s, mustNode(t, g, "other"))
	assert.True(t, skip)
	assert.Equal(t, "not relevant", why)

	b := mustNode(t, g, "b")
	b.BadState = &node.BadState{Kind: "transient", Message: "network unreachable"}
	skip, why = m.Skip(s, b)
	assert.True(t, skip)
	assert.Equal(t, "bad state", why)

	b.BadState.Message = "rate limit hit while forking"
	skip, _ = m.Skip(s, b)
	assert.False(t, skip, "allow-listed bad state prefix")
}

func TestRebuild_UID(t *testing.T) {
	m, err := NewRebuild(Config{
		Settings:      Settings{Name: "openssl3"},
		ObjectVersion: 2,
		UIDFields:     map[string]string{"abi": "3"},
		Mutator:       mutate.NewLocal(),
	})
	require.NoError(t, err)

	a, b := node.New("a"), node.New("b")
	assert.Equal(t, m.UID(a), m.UID(b), "rebuild UIDs do not depend on the package")
	assert.Equal(t, map[string]string{
		"abi":                     "3",
		"migrator_name":           "Rebuild",
		"migrator_version":        "0",
		"migrator_object_version": "2",
		"name":                    "openssl3",
	}, m.UID(a).Fields())
}

func newRebuild(t *testing.T, cfg Config) *Rebuild {
	t.Helper()
	if cfg.Settings.Name == "" {
		cfg.Settings.Name = "rebuild"
	}
	if cfg.Mutator == nil {
		cfg.Mutator = mutate.NewLocal()
	}
	m, err := NewRebuild(cfg)
	require.NoError(t, err)
	return m
}

func TestRebuild_PredecessorsMustBeDone(t *testing.T) {
	g := chainGraph(t, [2]string{"A", "B"}, [2]string{"B", "C"})
	m := newRebuild(t, Config{})
	s := NewScope(m, g)
	a, b, c := mustNode(t, g, "A"), mustNode(t, g, "B"), mustNode(t, g, "C")
	uid := m.UID(a)

	skip, _ := m.Skip(s, a)
	assert.False(t, skip, "top level is eligible")
	skip, why := m.Skip(s, b)
	assert.True(t, skip)
	assert.Equal(t, "waiting on A", why)

	a.Migrations = append(a.Migrations, open(uid))
	skip, _ = m.Skip(s, b)
	assert.True(t, skip, "an open predecessor still blocks")

	a.Migrations = append(a.Migrations, closed(uid))
	skip, _ = m.Skip(s, b)
	assert.False(t, skip)

	skip, why = m.Skip(s, c)
	assert.True(t, skip)
	assert.Equal(t, "waiting on B", why)

	b.Archived = true
	skip, _ = m.Skip(s, c)
	assert.False(t, skip, "archived predecessors never block")
}

func TestRebuild_UIDEqualityDrivesSkip(t *testing.T) {
	g := chainGraph(t, [2]string{"A", "B"})
	m := newRebuild(t, Config{})
	s := NewScope(m, g)

	a := mustNode(t, g, "A")
	a.Migrations = append(a.Migrations, closed(m.UID(a)))
	a.Recipe["version"] = "9.9"
	a.Requirements.Run.Add("something-new")

	skip, why := m.Skip(s, a)
	assert.True(t, skip)
	assert.Equal(t, "already attempted", why)

	// A record for a different object version is a different migration.
	bumped := newRebuild(t, Config{ObjectVersion: 1})
	skip, _ = bumped.Skip(NewScope(bumped, g), a)
	assert.False(t, skip)
}

func TestRebuild_CycleMembersBypassReadiness(t *testing.T) {
	g := chainGraph(t, [2]string{"X", "Y"}, [2]string{"Y", "X"})
	m := newRebuild(t, Config{})
	s := NewScope(m, g)

	for _, name := range []string{"X", "Y"} {
		skip, why := m.Skip(s, mustNode(t, g, name))
		assert.False(t, skip, "%s: %s", name, why)
	}
}

func TestRebuild_MaxOpen(t *testing.T) {
	g := chainGraph(t, [2]string{"a", "z"})
	g.Add(node.New("b"))
	g.Add(node.New("c"))
	m := newRebuild(t, Config{MaxOpen: 1, Mutator: mutate.NewLocal(mutate.WithOpenRemotes("https://forge.invalid"))})
	s := NewScope(m, g)

	b := mustNode(t, g, "b")
	skip, _ := m.Skip(s, b)
	require.False(t, skip)

	res, err := m.Transform(context.Background(), s, b)
	require.NoError(t, err)
	b.Migrations = append(b.Migrations, migration.Record{UID: res.UID, Remote: res.Remote})
	s.Recorded(res)
	assert.Equal(t, 1, s.Open())

	skip, why := m.Skip(s, mustNode(t, g, "c"))
	assert.True(t, skip)
	assert.Equal(t, "open attempt cap reached", why)

	assert.Equal(t, 1, NewScope(m, g).Open(), "a fresh scope counts persisted open records")
}

func TestRebuild_TransformAndOrder(t *testing.T) {
	g := chainGraph(t,
		[2]string{"openssl", "curl"},
		[2]string{"curl", "git"},
		[2]string{"openssl", "python"},
		[2]string{"zlib", "python"},
	)
	m := newRebuild(t, Config{Relevance: Relevance{Requires: []string{"openssl"}, Include: []string{"openssl"}}})
	s := NewScope(m, g)

	assert.Equal(t, []string{"curl", "openssl", "python"}, s.Sub.Nodes())
	assert.Equal(t, []string{"openssl", "curl", "python"}, m.Order(s, s.Sub))

	curl := mustNode(t, g, "curl")
	curl.Recipe[node.RecipeBuildNumber] = 4
	_, err := m.Transform(context.Background(), s, curl)
	require.NoError(t, err)
	assert.Equal(t, 5, curl.BuildNumber())

	topo := newRebuild(t, Config{Settings: Settings{Name: "rebuild", Ordering: "topological"}})
	ts := NewScope(topo, g)
	assert.Equal(t, []string{"curl", "git", "openssl", "python", "zlib"}, ts.Sub.Nodes())
	assert.Equal(t, []string{"openssl", "curl", "git", "zlib", "python"}, topo.Order(ts, ts.Sub))
}

func TestSetMetadata(t *testing.T) {
	n := node.New("a")
	step := SetMetadata{Key: "python_min", Value: "3.9"}
	assert.Equal(t, "set_metadata:python_min", step.Name())
	assert.True(t, step.Applies(n))
	n.Recipe["python_min"] = "3.9"
	assert.False(t, step.Applies(n))
	assert.Equal(t, []mutate.Edit{{Key: "python_min", Value: "3.9"}}, step.Edits(n))
}
