// Package hcl provides the concrete HCL implementation for the configuration
// loading and argument decoding interfaces defined in the `config` package.
// It is responsible for file parsing, HCL-to-model translation, and
// cty-to-Go data binding.
package hcl
