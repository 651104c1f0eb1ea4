package model

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryOptions configures the WithRetry decorator.
type RetryOptions struct {
	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration
	// MaxElapsedTime bounds the total time spent retrying. Zero means the
	// backoff library default.
	MaxElapsedTime time.Duration
}

// WithRetry wraps a Model with exponential-backoff retries. The undecorated
// core treats every Generate call as at-most-one attempt; this decorator is
// the supported way for callers to layer retries on top.
func WithRetry(m Model, optFns ...func(o *RetryOptions)) Model {
	opts := RetryOptions{
		InitialInterval: 500 * time.Millisecond,
		MaxElapsedTime:  30 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &retryModel{inner: m, opts: opts}
}

type retryModel struct {
	inner Model
	opts  RetryOptions
}

func (r *retryModel) Generate(ctx context.Context, req Request) (string, error) {
	var out string
	op := func() error {
		text, err := r.inner.Generate(ctx, req)
		if err != nil {
			return err
		}
		out = text
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.opts.InitialInterval
	b.MaxElapsedTime = r.opts.MaxElapsedTime

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return "", err
	}
	return out, nil
}

func (r *retryModel) Info() Info { return r.inner.Info() }
