package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// TokenUsage captures token usage statistics for a generation call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates another usage sample into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// CheckStats is an (attempts, passes) counter pair for one verification check.
type CheckStats struct {
	Attempts int `json:"attempts"`
	Passes   int `json:"passes"`
}

// RunStats is the run-scoped statistics context. One instance is created at
// orchestrator start, passed to every pipeline and generator call site, and
// reported once at run end. All methods are safe for concurrent use.
type RunStats struct {
	Proposed  atomic.Int64
	Drafted   atomic.Int64
	Abandoned atomic.Int64
	Verified  atomic.Int64
	Accepted  atomic.Int64
	Rejected  atomic.Int64

	mu     sync.Mutex
	checks map[string]CheckStats
	usage  map[string]*TokenUsage
}

// NewRunStats creates an empty statistics context.
func NewRunStats() *RunStats {
	return &RunStats{
		checks: make(map[string]CheckStats),
		usage:  make(map[string]*TokenUsage),
	}
}

// RecordCheck registers one verification check attempt and its outcome.
func (s *RunStats) RecordCheck(name string, passed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := s.checks[name]
	cs.Attempts++
	if passed {
		cs.Passes++
	}
	s.checks[name] = cs
}

// Check returns the current counters for a named check.
func (s *RunStats) Check(name string) CheckStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.checks[name]
}

// RecordUsage accumulates token usage for a model name.
func (s *RunStats) RecordUsage(modelName string, usage TokenUsage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usage[modelName]
	if !ok {
		u = &TokenUsage{}
		s.usage[modelName] = u
	}
	u.Add(usage)
}

// Usage returns a copy of the accumulated usage per model name.
func (s *RunStats) Usage() map[string]TokenUsage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]TokenUsage, len(s.usage))
	for name, u := range s.usage {
		out[name] = *u
	}
	return out
}

// Report renders a multi-line summary suitable for console or log emission.
func (s *RunStats) Report() string {
	var b strings.Builder

	fmt.Fprintf(&b, "proposed=%d drafted=%d abandoned=%d verified=%d accepted=%d rejected=%d\n",
		s.Proposed.Load(), s.Drafted.Load(), s.Abandoned.Load(),
		s.Verified.Load(), s.Accepted.Load(), s.Rejected.Load())

	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cs := s.checks[name]
		fmt.Fprintf(&b, "check %s: %d/%d passed\n", name, cs.Passes, cs.Attempts)
	}

	models := make([]string, 0, len(s.usage))
	for name := range s.usage {
		models = append(models, name)
	}
	sort.Strings(models)
	for _, name := range models {
		u := s.usage[name]
		fmt.Fprintf(&b, "usage %s: prompt=%d completion=%d total=%d\n",
			name, u.PromptTokens, u.CompletionTokens, u.TotalTokens)
	}

	return strings.TrimRight(b.String(), "\n")
}
