// Package registry provides the central "glue" for the module system.
//
// The Registry maps the kind labels used in configuration (for example the
// "rebuild" in `migrator "rebuild" "openssl3"`) to the compiled Go builders
// that turn a configured block into a running migrator or piggyback step.
//
// During application startup, modules register their builders, the loaded
// model is validated against them so that every referenced kind exists, and
// the registry then builds the migrators in configuration order.
package registry
