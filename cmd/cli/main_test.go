package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/tickgraph/internal/filestore"
	"github.com/vk/tickgraph/internal/graph"
	"github.com/vk/tickgraph/internal/node"
)

func TestRun_StartupError(t *testing.T) {
	t.Parallel()

	invalidHCL := `
		migrator "rebuild" "abi" {
			quota = 1
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600), "failed to set up test file")

	out := &bytes.Buffer{}
	runErr := run(context.Background(), out, []string{"-graph", filepath.Join(tempDir, "graph.json"), filePath})

	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "startup failed")
	require.Contains(t, runErr.Error(), "failed to parse")
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(configPath, []byte(`
migrator "version" "bumps" {
  quota = 5
}
`), 0o600))

	seedPath := filepath.Join(tempDir, "seed.json")
	g := graph.New()
	g.Add(node.New("zlib"))
	require.NoError(t, filestore.New(seedPath).Save(context.Background(), g, nil))

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{
		"-graph", filepath.Join(tempDir, "graph.json"),
		"-seed", seedPath,
		"-log-format", "text",
		configPath,
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "Run finished")
	require.FileExists(t, filepath.Join(tempDir, "graph.json"))
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
