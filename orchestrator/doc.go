// Package orchestrator fans the evidence pipeline out over personas and
// scenario categories with bounded parallelism, persists accepted items
// incrementally so interrupted runs resume by appending, and owns the
// run-scoped statistics. It is also the only layer that acts on fatal
// errors: anything unrecoverable cancels the whole run instead of being
// absorbed locally.
package orchestrator
