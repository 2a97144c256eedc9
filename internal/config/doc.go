// Package config defines the format-agnostic configuration model for the
// application, along with the interfaces (Loader, Converter) for loading it
// from a concrete format and decoding module-specific argument bodies.
//
// The `config.Model` is the single source of truth for the registry when it
// builds migrators. Concrete implementations of the interfaces, such as for
// HCL, are provided in separate packages.
package config
