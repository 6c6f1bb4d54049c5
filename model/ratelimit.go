package model

import (
	"context"

	"golang.org/x/time/rate"
)

// WithRateLimit makes every Generate call of m wait for limiter first. A nil
// limiter returns m unchanged.
func WithRateLimit(m Model, limiter *rate.Limiter) Model {
	if limiter == nil {
		return m
	}
	return &rateLimitedModel{inner: m, limiter: limiter}
}

type rateLimitedModel struct {
	inner   Model
	limiter *rate.Limiter
}

func (r *rateLimitedModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	if err := r.limiter.Wait(ctx); err != nil {
		respCh := make(chan Response)
		errCh := make(chan error, 1)
		errCh <- err
		close(respCh)
		close(errCh)
		return respCh, errCh
	}
	return r.inner.Generate(ctx, req)
}

func (r *rateLimitedModel) Info() Info { return r.inner.Info() }

// NewLimiter returns a limiter allowing requestsPerMinute with the given
// burst, or nil when requestsPerMinute is not positive.
func NewLimiter(requestsPerMinute float64, burst int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(requestsPerMinute/60.0), burst)
}
