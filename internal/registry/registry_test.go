package registry_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/tickgraph/internal/config"
	"github.com/vk/tickgraph/internal/hcl"
	"github.com/vk/tickgraph/internal/migrator"
	"github.com/vk/tickgraph/internal/mutate"
	"github.com/vk/tickgraph/internal/node"
	"github.com/vk/tickgraph/internal/registry"
	"github.com/vk/tickgraph/internal/testutil"
	"github.com/vk/tickgraph/modules/rebuild"
	"github.com/vk/tickgraph/modules/setmetadata"
	"github.com/vk/tickgraph/modules/versionbump"
)

func newRegistry() *registry.Registry {
	r := registry.New()
	for _, m := range []registry.Module{&rebuild.Module{}, &versionbump.Module{}, &setmetadata.Module{}} {
		m.Register(r)
	}
	return r
}

func load(t *testing.T, src string) (*config.Model, config.Converter) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(testutil.Unindent(src)), 0o600))
	model, conv, err := hcl.NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	return model, conv
}

func TestBuild(t *testing.T) {
	model, conv := load(t, `
		migrator "rebuild" "openssl3" {
		  quota    = 10
		  ordering = "topological"
		  relevance {
		    requires = ["openssl"]
		  }
		  arguments {
		    migrator_object_version = 2
		    uid_fields              = { abi = "3" }
		  }
		  piggyback "set_metadata" {
		    key   = "python_min"
		    value = "3.9"
		  }
		}

		migrator "version" "bumps" {
		  quota = 2
		}
	`)

	ms, err := newRegistry().Build(context.Background(), model, registry.Deps{Mutator: mutate.NewLocal(), Converter: conv})
	require.NoError(t, err)
	require.Len(t, ms, 2)

	assert.Equal(t, "openssl3", ms[0].Name())
	assert.Equal(t, 10, ms[0].Settings().Quota)
	assert.IsType(t, &migrator.Rebuild{}, ms[0])
	assert.IsType(t, &migrator.Version{}, ms[1])

	curl := node.New("curl")
	curl.Requirements.Host.Add("openssl")
	assert.True(t, ms[0].Relevant(curl))
	assert.False(t, ms[0].Relevant(node.New("zlib")))

	fields := ms[0].UID(curl).Fields()
	assert.Equal(t, "3", fields["abi"])
	assert.Equal(t, "2", fields["migrator_object_version"])
	assert.Equal(t, "openssl3", fields["name"])
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "unknown kind",
			src:     `migrator "teleport" "x" { quota = 1 }`,
			wantErr: "unknown kind 'teleport' (known: rebuild, version)",
		},
		{
			name: "unknown piggyback",
			src: `
				migrator "rebuild" "x" {
				  quota = 1
				  piggyback "paint" {}
				}
			`,
			wantErr: "unknown piggyback step 'paint'",
		},
		{
			name: "bad argument",
			src: `
				migrator "rebuild" "x" {
				  quota = 1
				  arguments {
				    colour = "blue"
				  }
				}
			`,
			wantErr: `migrator x: unsupported argument "colour"`,
		},
		{
			name: "empty metadata key",
			src: `
				migrator "rebuild" "x" {
				  quota = 1
				  piggyback "set_metadata" {
				    value = "3.9"
				  }
				}
			`,
			wantErr: "key must not be empty",
		},
		{
			name:    "unknown ordering",
			src: `
				migrator "rebuild" "x" {
				  quota    = 1
				  ordering = "random"
				}
			`,
			wantErr: `unknown ordering policy "random"`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			model, conv := load(t, tc.src)
			_, err := newRegistry().Build(context.Background(), model, registry.Deps{Mutator: mutate.NewLocal(), Converter: conv})
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	r := newRegistry()
	assert.Panics(t, func() { (&rebuild.Module{}).Register(r) })
	assert.Panics(t, func() { (&setmetadata.Module{}).Register(r) })
	assert.Equal(t, []string{"rebuild", "version"}, r.Kinds())
	assert.Equal(t, []string{"set_metadata"}, r.Steps())
}
