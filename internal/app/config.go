package app

import (
	"errors"
	"fmt"

	"github.com/vk/tickgraph/internal/s3store"
)

// Store backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreS3       = "s3"
)

// Config holds all the process-level settings for an App instance.
type Config struct {
	ConfigPaths []string // hcl files or directories

	Store     string
	GraphPath string // file store
	DSN       string // postgres store
	S3        s3store.Config
	// SeedPath is a graph JSON file written to the store before the run.
	SeedPath string

	LogFormat  string
	LogLevel   string
	StatusPort int
	StatusOnly bool
	// Serve keeps the status server up after the run until the context ends.
	Serve bool
}

// NewConfig validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("at least one configuration path is required")
	}
	switch cfg.Store {
	case "":
		cfg.Store = StoreFile
		fallthrough
	case StoreFile:
		if cfg.GraphPath == "" {
			return nil, errors.New("the file store needs a graph path")
		}
	case StorePostgres:
		if cfg.DSN == "" {
			return nil, errors.New("the postgres store needs a DSN")
		}
	case StoreS3:
		if cfg.S3.Endpoint == "" || cfg.S3.Bucket == "" {
			return nil, errors.New("the s3 store needs an endpoint and a bucket")
		}
	default:
		return nil, fmt.Errorf("unknown store %q: must be 'file', 'postgres' or 's3'", cfg.Store)
	}
	if cfg.Serve && cfg.StatusPort <= 0 {
		return nil, errors.New("serving status needs a status port")
	}
	return &cfg, nil
}
