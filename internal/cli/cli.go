package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/vk/tickgraph/internal/app"
	"github.com/vk/tickgraph/internal/s3store"
)

// envPrefix prefixes the environment variable behind every flag, for example
// TICKGRAPH_STORE for -store.
const envPrefix = "TICKGRAPH_"

const defaultEnvFile = ".env"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
//
// A flag left unset on the command line falls back to its TICKGRAPH_*
// variable, looked up first in the process environment and then in the env
// file.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	return parse(args, output, os.LookupEnv)
}

func parse(args []string, output io.Writer, lookupEnv func(string) (string, bool)) (*app.Config, bool, error) {
	slog.Debug("CLI parser started")
	flagSet := flag.NewFlagSet("tickgraph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
tickgraph - Runs dependency-ordered migrations over a package graph.

Usage:
  tickgraph [options] [CONFIG_PATH...]

Arguments:
  CONFIG_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Every option can also be set through an environment variable named after it,
e.g. TICKGRAPH_STORE or TICKGRAPH_S3_BUCKET.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the configuration file or directory.")
	storeFlag := flagSet.String("store", app.StoreFile, "Graph store backend. Options: 'file', 'postgres' or 's3'.")
	graphFlag := flagSet.String("graph", "graph.json", "Path to the graph file for the file store.")
	seedFlag := flagSet.String("seed", "", "Graph JSON file written to the store before the run.")
	dsnFlag := flagSet.String("dsn", "", "PostgreSQL connection string for the postgres store.")
	s3EndpointFlag := flagSet.String("s3-endpoint", "", "S3 endpoint (host:port) for the s3 store.")
	s3BucketFlag := flagSet.String("s3-bucket", "", "S3 bucket for the s3 store.")
	s3KeyFlag := flagSet.String("s3-key", s3store.DefaultKey, "Object key of the graph document.")
	s3RegionFlag := flagSet.String("s3-region", "", "S3 region.")
	s3SSLFlag := flagSet.Bool("s3-ssl", false, "Use TLS for the S3 endpoint.")
	s3AccessFlag := flagSet.String("s3-access-key", "", "S3 access key.")
	s3SecretFlag := flagSet.String("s3-secret-key", "", "S3 secret key.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	statusPortFlag := flagSet.Int("status-port", 0, "Port for the HTTP status server. 0 is disabled.")
	statusOnlyFlag := flagSet.Bool("status-only", false, "Compute and report status without changing anything.")
	serveFlag := flagSet.Bool("serve", false, "Keep the status server running after the run until interrupted.")
	envFileFlag := flagSet.String("env-file", defaultEnvFile, "File of KEY=value lines consulted for unset options.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully")

	explicit := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	dotenv, err := godotenv.Read(*envFileFlag)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit["env-file"] {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("reading env file: %v", err)}
		}
		dotenv = map[string]string{}
	}
	lookup := func(name string) (string, bool) {
		key := envPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		if v, ok := lookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	var envErr error
	flagSet.VisitAll(func(f *flag.Flag) {
		if explicit[f.Name] || f.Name == "env-file" || envErr != nil {
			return
		}
		if v, ok := lookup(f.Name); ok {
			if err := f.Value.Set(v); err != nil {
				envErr = fmt.Errorf("invalid value %q for %s%s: %w", v, envPrefix, strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")), err)
			}
		}
	})
	if envErr != nil {
		return nil, false, &ExitError{Code: 2, Message: envErr.Error()}
	}

	var paths []string
	if *configFlag != "" {
		paths = append(paths, *configFlag)
	}
	paths = append(paths, flagSet.Args()...)
	slog.Debug("Config paths determined", "paths", paths)

	if len(paths) == 0 {
		slog.Debug("No config path provided, printing usage and exiting")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if *statusPortFlag < 0 || *statusPortFlag > 65535 {
		return nil, false, &ExitError{Code: 2, Message: "invalid status-port: " + strconv.Itoa(*statusPortFlag)}
	}
	slog.Debug("CLI parameter validation complete")

	config, err := app.NewConfig(app.Config{
		ConfigPaths: paths,
		Store:       strings.ToLower(*storeFlag),
		GraphPath:   *graphFlag,
		DSN:         *dsnFlag,
		S3: s3store.Config{
			Endpoint:  *s3EndpointFlag,
			Region:    *s3RegionFlag,
			AccessKey: *s3AccessFlag,
			SecretKey: *s3SecretFlag,
			Bucket:    *s3BucketFlag,
			Key:       *s3KeyFlag,
			UseSSL:    *s3SSLFlag,
		},
		SeedPath:   *seedFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
		StatusPort: *statusPortFlag,
		StatusOnly: *statusOnlyFlag,
		Serve:      *serveFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully", "store", config.Store, "paths", config.ConfigPaths)
	return config, false, nil
}
