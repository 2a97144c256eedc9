// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the invocation lifecycle (load the graph,
// build the configured migrators, run them, publish their status),
// decoupled from any specific entrypoint like a CLI.
package app
