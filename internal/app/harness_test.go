package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/tickgraph/internal/app"
	"github.com/vk/tickgraph/internal/graph"
	"github.com/vk/tickgraph/internal/hcl"
	"github.com/vk/tickgraph/internal/inmemorystore"
	"github.com/vk/tickgraph/internal/testutil"
)

// harnessResult holds the outcome of one harness run.
type harnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	Store     *inmemorystore.Store
}

// writeConfig writes files below a fresh temporary directory and returns it.
func writeConfig(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(testutil.Unindent(content)), 0o600))
	}
	return dir
}

// newTestApp builds an App over an in-memory store seeded with seed. A nil
// seed leaves the store empty.
func newTestApp(t *testing.T, files map[string]string, seed *graph.Graph, mod func(*app.Config)) (*app.App, *inmemorystore.Store, *testutil.SafeBuffer) {
	t.Helper()
	store := inmemorystore.New()
	if seed != nil {
		require.NoError(t, store.Seed(seed))
	}

	cfg := app.Config{
		ConfigPaths: []string{writeConfig(t, files)},
		GraphPath:   filepath.Join(t.TempDir(), "graph.json"),
		LogLevel:    "debug",
		LogFormat:   "text",
	}
	if mod != nil {
		mod(&cfg)
	}
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logs := &testutil.SafeBuffer{}
	a, err := app.NewApp(logs, appConfig, hcl.NewLoader(), app.WithStore(store))
	require.NoError(t, err)
	return a, store, logs
}

// runApp runs a full invocation and collects its outcome.
func runApp(t *testing.T, files map[string]string, seed *graph.Graph, mod func(*app.Config)) *harnessResult {
	t.Helper()
	a, store, logs := newTestApp(t, files, seed, mod)
	err := a.Run(context.Background())

	if os.Getenv("TICKGRAPH_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
	}
	return &harnessResult{
		LogOutput: logs.String(),
		Err:       err,
		App:       a,
		Store:     store,
	}
}
