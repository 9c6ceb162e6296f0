// Package pipeline drives one scenario from proposal to an accepted evidence
// item: propose use cases, derive the evidence core, embed evidence into
// conversations, validate placement with bounded regeneration, verify recall
// and hand the surviving item back for persistence. A pipeline is stateless
// per call; all shared accounting lives in the run-scoped statistics.
package pipeline
