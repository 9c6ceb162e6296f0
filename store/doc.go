// Package store contains concrete ItemStore implementations. The store
// interface and CollectionKey type reside in the core package. Import
// github.com/probelab/recallbench/core and depend on core.ItemStore in your
// code; select an implementation (JSONL files for real runs, the in-memory
// store for tests) at wiring time.
//
// Rationale: keeps domain contracts centralized while allowing pluggable
// backends to be added without introducing dependency cycles.
package store
