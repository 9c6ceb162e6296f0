package model

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/probelab/recallbench/core"
)

// RetryOptions configures the RetryModel middleware.
type RetryOptions struct {
	// MaxAttempts bounds the number of generation attempts per call.
	MaxAttempts int
	// InitialInterval seeds the exponential backoff between attempts.
	InitialInterval time.Duration
	// RequestTimeout bounds each individual provider request.
	RequestTimeout time.Duration
	// Limiter optionally rate-limits outgoing requests.
	Limiter *rate.Limiter
	// CallLimiter optionally caps total calls for the run.
	CallLimiter *core.CallLimiter
	// Stats optionally receives token usage per successful call.
	Stats *core.RunStats
}

// RetryModel wraps a Model with bounded retry, exponential backoff, optional
// rate limiting, a per-request timeout and run-scoped usage accounting. It is
// the standard boundary every pipeline call site goes through.
type RetryModel struct {
	inner Model
	opts  RetryOptions
}

// NewRetryModel wraps inner with retry middleware.
func NewRetryModel(inner Model, optFns ...func(o *RetryOptions)) *RetryModel {
	opts := RetryOptions{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		RequestTimeout:  2 * time.Minute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RetryModel{inner: inner, opts: opts}
}

// Generate implements Model. Provider failures are retried with backoff until
// the attempt budget is exhausted; the last error is returned wrapped.
func (m *RetryModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if m.opts.CallLimiter != nil {
		if err := m.opts.CallLimiter.Increment(); err != nil {
			return nil, err
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = m.opts.InitialInterval

	var resp *Response
	attempt := 0
	operation := func() error {
		attempt++
		if m.opts.Limiter != nil {
			if err := m.opts.Limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		reqCtx := ctx
		if m.opts.RequestTimeout > 0 {
			var cancel context.CancelFunc
			reqCtx, cancel = context.WithTimeout(ctx, m.opts.RequestTimeout)
			defer cancel()
		}

		r, err := m.inner.Generate(reqCtx, req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		resp = r
		return nil
	}

	err := backoff.Retry(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(m.opts.MaxAttempts-1)), ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("generation failed after %d attempts: %w", attempt, err)
	}

	if m.opts.Stats != nil && resp.Usage != nil {
		m.opts.Stats.RecordUsage(m.inner.Info().Name, *resp.Usage)
	}

	return resp, nil
}

// Info implements Model by delegating to the wrapped implementation.
func (m *RetryModel) Info() Info { return m.inner.Info() }
