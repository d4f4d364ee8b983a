// Package data defines the document store contract the core writes through and the
// classification of its failures.
//
// Implementations live in subpackages:
//
//	data/mongodb  MongoDB backed store
//	data/memory   in-process store used by tests and local runs
//
// Every store error is classifiable with Classify. Transient codes (unavailable,
// deadline-exceeded, network) are retried by the delivery engine; the rest are terminal.
package data
