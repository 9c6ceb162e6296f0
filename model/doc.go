// Package model defines the provider-agnostic abstractions and concrete
// helpers for driving content generation inside RecallBench.
//
// Core goals:
//   - A single synchronous prompt-in / text-out interface (Model)
//   - Minimal request/response shapes, transport independent
//   - Tolerant decoding of JSON embedded in generated text (DecodeJSON)
//   - Bounded retry with backoff and rate limiting as composable middleware (RetryModel)
//   - Lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so higher layers (pipeline, verifier) remain decoupled from vendor SDKs.
package model
