package model

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"time"

	"github.com/sethvargo/go-retry"
)

// WithTimeout bounds every Generate call of m by d. A non-positive d returns m
// unchanged.
func WithTimeout(m Model, d time.Duration) Model {
	if d <= 0 {
		return m
	}
	return &timeoutModel{inner: m, timeout: d}
}

type timeoutModel struct {
	inner   Model
	timeout time.Duration
}

func (t *timeoutModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	respCh, errCh := t.inner.Generate(ctx, req)

	out := make(chan Response, cap(respCh))
	outErr := make(chan error, 1)
	go func() {
		defer cancel()
		defer close(out)
		defer close(outErr)
		forward(ctx, respCh, errCh, out, outErr)
	}()
	return out, outErr
}

func (t *timeoutModel) Info() Info { return t.inner.Info() }

// forward copies responses and the terminal error until both inputs close or
// ctx ends.
func forward(ctx context.Context, respCh <-chan Response, errCh <-chan error, out chan<- Response, outErr chan<- error) {
	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			outErr <- ctx.Err()
			return
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			out <- r
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				outErr <- err
				return
			}
		}
	}
}

// StatusError is a backend failure carrying the provider's HTTP status.
// Adapters wrap their SDK errors in it so retries can tell a rate limit from
// a rejected api key.
type StatusError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s api error (status %d): %v", e.Provider, e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// Retryable reports whether the status denotes a transient condition:
// request timeout, rate limiting or a server side failure.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 408 || e.StatusCode == 429 || e.StatusCode >= 500
}

var transientPattern = regexp.MustCompile(`(?i)(timeout|timed out|temporarily|try again|unavailable|connection refused|connection reset|too many requests|rate limit)`)

// IsTransient is the default retry classifier. Cancellation is final,
// deadlines and network errors are transient, errors exposing Retryable
// decide for themselves and anything else is matched against well known
// transient messages.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var retryable interface{ Retryable() bool }
	if errors.As(err, &retryable) {
		return retryable.Retryable()
	}
	return transientPattern.MatchString(err.Error())
}

// RetryOptions configures WithRetry.
type RetryOptions struct {
	MaxRetries  uint64
	BaseBackoff time.Duration
	MaxBackoff  time.Duration

	// IsRetryable decides whether a failed attempt is tried again.
	// Defaults to IsTransient.
	IsRetryable func(error) bool
}

// WithRetry retries failed Generate calls of m with exponential backoff.
// Retried calls are buffered: only the successful attempt's responses reach
// the caller. Only errors accepted by RetryOptions.IsRetryable are retried;
// cancellation of the caller's context never is.
func WithRetry(m Model, optFns ...func(o *RetryOptions)) Model {
	opts := RetryOptions{
		MaxRetries:  2,
		BaseBackoff: 200 * time.Millisecond,
		MaxBackoff:  5 * time.Second,
		IsRetryable: IsTransient,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.IsRetryable == nil {
		opts.IsRetryable = IsTransient
	}
	if opts.MaxRetries == 0 {
		return m
	}
	return &retryModel{inner: m, opts: opts}
}

type retryModel struct {
	inner Model
	opts  RetryOptions
}

func (r *retryModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	out := make(chan Response, 16)
	outErr := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(outErr)

		backoff := retry.NewExponential(r.opts.BaseBackoff)
		if r.opts.MaxBackoff > 0 {
			backoff = retry.WithCappedDuration(r.opts.MaxBackoff, backoff)
		}
		backoff = retry.WithMaxRetries(r.opts.MaxRetries, backoff)

		var buffered []Response
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			buffered = buffered[:0]
			respCh, errCh := r.inner.Generate(ctx, req)
			collected := make(chan Response, 16)
			collectedErr := make(chan error, 1)
			go func() {
				defer close(collected)
				defer close(collectedErr)
				forward(ctx, respCh, errCh, collected, collectedErr)
			}()
			for resp := range collected {
				buffered = append(buffered, resp)
			}
			if callErr := <-collectedErr; callErr != nil {
				if ctx.Err() != nil || !r.opts.IsRetryable(callErr) {
					return callErr
				}
				return retry.RetryableError(callErr)
			}
			return nil
		})
		if err != nil {
			outErr <- err
			return
		}
		for _, resp := range buffered {
			out <- resp
		}
	}()
	return out, outErr
}

func (r *retryModel) Info() Info { return r.inner.Info() }
