// Package scheduler holds the ordering policies a migrator uses to turn its
// candidate set into the sequence the run loop walks.
package scheduler
