// Package inmemorystore provides an ephemeral implementation of the
// nodestore.Store interface, for tests and dry runs.
package inmemorystore
