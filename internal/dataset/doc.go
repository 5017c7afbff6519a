// Package dataset reads the conference deadline dataset: a directory tree of
// YAML documents, each describing one or more conference series with nested
// editions and deadline timelines.
//
// Iteration order is part of the contract. LoadDir visits files sorted by their
// path relative to the root and yields records in declaration order, so change
// detection and notification order are stable across runs and machines.
package dataset
