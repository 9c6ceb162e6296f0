// Package core provides the foundational domain types and shared run-scoped
// state used by RecallBench. It defines the core abstractions for:
//
//   - Messages, conversations and speakers (the generated transcript model)
//   - Evidence cores and evidence items (the atomic units of "what must be remembered")
//   - Use cases and personas (scenario precursors and their owners)
//   - Run statistics (atomic counters shared across concurrent pipeline workers)
//   - Pluggable stores for persisted evidence collections
//
// The package intentionally keeps implementation concerns (generation,
// validation, orchestration) out of scope, exposing small interfaces to enable
// custom backends and extensions.
package core
