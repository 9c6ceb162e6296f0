package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/recallbench/core"
)

func TestRetryModel_SucceedsAfterFailure(t *testing.T) {
	inner := NewMockModel("test-model", "mock")
	inner.QueueError(errors.New("transient"))
	inner.QueueResponse("ok")

	m := NewRetryModel(inner, func(o *RetryOptions) {
		o.MaxAttempts = 3
		o.InitialInterval = time.Millisecond
	})

	resp, err := m.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Len(t, inner.Calls(), 2)
}

func TestRetryModel_ExhaustsBudget(t *testing.T) {
	inner := NewMockModel("test-model", "mock")
	inner.QueueError(errors.New("down"))
	inner.QueueError(errors.New("down"))
	inner.QueueError(errors.New("down"))

	m := NewRetryModel(inner, func(o *RetryOptions) {
		o.MaxAttempts = 3
		o.InitialInterval = time.Millisecond
	})

	_, err := m.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation failed after 3 attempts")
}

func TestRetryModel_CallLimiter(t *testing.T) {
	inner := NewMockModel("test-model", "mock")
	limiter := core.NewCallLimiter(1)

	m := NewRetryModel(inner, func(o *RetryOptions) {
		o.CallLimiter = limiter
		o.InitialInterval = time.Millisecond
	})

	_, err := m.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), Request{Prompt: "p"})
	assert.Error(t, err)
}

func TestRetryModel_RecordsUsage(t *testing.T) {
	inner := NewMockModel("test-model", "mock")
	inner.QueueResponse("hi")
	stats := core.NewRunStats()

	m := NewRetryModel(inner, func(o *RetryOptions) {
		o.Stats = stats
		o.InitialInterval = time.Millisecond
	})

	_, err := m.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Usage()["test-model"].TotalTokens)
}

func TestRetryModel_ContextCancelled(t *testing.T) {
	inner := NewMockModel("test-model", "mock")
	inner.QueueError(errors.New("down"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewRetryModel(inner, func(o *RetryOptions) {
		o.MaxAttempts = 5
		o.InitialInterval = time.Millisecond
	})

	_, err := m.Generate(ctx, Request{Prompt: "p"})
	assert.Error(t, err)
}
