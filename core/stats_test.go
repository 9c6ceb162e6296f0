package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunStats_RecordCheck(t *testing.T) {
	stats := NewRunStats()

	stats.RecordCheck("with_evidence", true)
	stats.RecordCheck("with_evidence", false)
	stats.RecordCheck("without_evidence", true)

	assert.Equal(t, CheckStats{Attempts: 2, Passes: 1}, stats.Check("with_evidence"))
	assert.Equal(t, CheckStats{Attempts: 1, Passes: 1}, stats.Check("without_evidence"))
	assert.Equal(t, CheckStats{}, stats.Check("unknown"))
}

func TestRunStats_RecordUsage(t *testing.T) {
	stats := NewRunStats()

	stats.RecordUsage("claude", TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15})
	stats.RecordUsage("claude", TokenUsage{PromptTokens: 2, CompletionTokens: 1, TotalTokens: 3})

	usage := stats.Usage()
	assert.Equal(t, TokenUsage{PromptTokens: 12, CompletionTokens: 6, TotalTokens: 18}, usage["claude"])
}

func TestRunStats_ConcurrentUpdates(t *testing.T) {
	stats := NewRunStats()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stats.Accepted.Add(1)
			stats.RecordCheck("with_evidence", i%2 == 0)
			stats.RecordUsage("claude", TokenUsage{TotalTokens: 1})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(50), stats.Accepted.Load())
	assert.Equal(t, 50, stats.Check("with_evidence").Attempts)
	assert.Equal(t, 25, stats.Check("with_evidence").Passes)
	assert.Equal(t, 50, stats.Usage()["claude"].TotalTokens)
}

func TestRunStats_Report(t *testing.T) {
	stats := NewRunStats()
	stats.Proposed.Store(4)
	stats.Accepted.Store(2)
	stats.RecordCheck("with_evidence", true)
	stats.RecordUsage("gpt-4o-mini", TokenUsage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120})

	report := stats.Report()
	assert.Contains(t, report, "proposed=4")
	assert.Contains(t, report, "accepted=2")
	assert.Contains(t, report, "check with_evidence: 1/1 passed")
	assert.Contains(t, report, "usage gpt-4o-mini: prompt=100 completion=20 total=120")
}

func TestCallLimiter(t *testing.T) {
	limiter := NewCallLimiter(2)

	assert.NoError(t, limiter.Increment())
	assert.NoError(t, limiter.Increment())

	err := limiter.Increment()
	assert.Error(t, err)
	assert.True(t, IsFatal(err), "blowing the call budget must abort the run")
	assert.Equal(t, 3, limiter.Count())
}

func TestCallLimiter_Unlimited(t *testing.T) {
	limiter := NewCallLimiter(0)

	for i := 0; i < 100; i++ {
		assert.NoError(t, limiter.Increment())
	}
	assert.Equal(t, -1, limiter.Remaining())
}

func TestFatalError(t *testing.T) {
	err := Fatalf("cached answer missing for id %s", "abc")
	assert.True(t, IsFatal(err))
	assert.Contains(t, err.Error(), "fatal: cached answer missing for id abc")

	wrapped := fmt.Errorf("reevaluate persona: %w", err)
	assert.True(t, IsFatal(wrapped))

	assert.False(t, IsFatal(fmt.Errorf("plain error")))
	assert.False(t, IsFatal(nil))
}
