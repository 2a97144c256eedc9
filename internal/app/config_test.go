package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/tickgraph/internal/s3store"
)

func TestNewConfig(t *testing.T) {
	paths := []string{"config"}
	tests := []struct {
		name      string
		cfg       Config
		wantErr   string
		wantStore string
	}{
		{name: "file store by default", cfg: Config{ConfigPaths: paths, GraphPath: "g.json"}, wantStore: StoreFile},
		{name: "no config paths", cfg: Config{GraphPath: "g.json"}, wantErr: "at least one configuration path"},
		{name: "file store without path", cfg: Config{ConfigPaths: paths}, wantErr: "needs a graph path"},
		{name: "postgres without dsn", cfg: Config{ConfigPaths: paths, Store: StorePostgres}, wantErr: "needs a DSN"},
		{name: "postgres", cfg: Config{ConfigPaths: paths, Store: StorePostgres, DSN: "postgres://x"}, wantStore: StorePostgres},
		{name: "s3 without bucket", cfg: Config{ConfigPaths: paths, Store: StoreS3, S3: s3store.Config{Endpoint: "localhost:9000"}}, wantErr: "endpoint and a bucket"},
		{name: "s3", cfg: Config{ConfigPaths: paths, Store: StoreS3, S3: s3store.Config{Endpoint: "localhost:9000", Bucket: "b"}}, wantStore: StoreS3},
		{name: "unknown store", cfg: Config{ConfigPaths: paths, Store: "redis"}, wantErr: `unknown store "redis"`},
		{name: "serve without port", cfg: Config{ConfigPaths: paths, GraphPath: "g.json", Serve: true}, wantErr: "needs a status port"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantStore, got.Store)
		})
	}
}
