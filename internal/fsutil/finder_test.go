package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.hcl", "nested/b.hcl", "nested/c.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o600))
	}

	files, err := FindFiles([]string{
		dir,
		filepath.Join(dir, "a.hcl"), // listed twice
		filepath.Join(dir, "missing"),
	}, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.hcl"),
		filepath.Join(dir, "nested", "b.hcl"),
	}, files)
}

func TestFindFiles_EmptyExtensionPanics(t *testing.T) {
	assert.Panics(t, func() { _, _ = FindFiles(nil, "") })
}
