package providers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/codesmog/codesmog-go/internal/metrics"
)

// Limits is one provider's rate-limit budget: at most MaxRequests attempts
// per rolling Window. When the window is full the executor waits RetryAfter
// before proceeding anyway; the wait is a courtesy, not a hard reject.
type Limits struct {
	MaxRequests int
	Window      time.Duration
	RetryAfter  time.Duration
}

// Executor wraps provider calls with a sliding-window rate limiter and
// exponential-backoff retries. Providers compose an Executor instead of
// inheriting shared client behavior.
type Executor struct {
	provider string
	limits   Limits
	logger   *logrus.Logger
	metrics  *metrics.Metrics

	mu         sync.Mutex
	timestamps []time.Time

	// injectable for tests
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewExecutor builds an executor for one provider.
func NewExecutor(provider string, limits Limits, logger *logrus.Logger, m *metrics.Metrics) *Executor {
	return &Executor{
		provider: provider,
		limits:   limits,
		logger:   logger,
		metrics:  m,
		sleep:    sleepCtx,
		now:      time.Now,
	}
}

// Execute runs fn with rate limiting and up to maxRetries retries. Backoff
// after a failed attempt i is 2^i seconds. Authorization failures are never
// retried. When the budget is exhausted the last error is wrapped in an
// ExhaustedRetriesError.
func (e *Executor) Execute(ctx context.Context, fn func(context.Context) error, maxRetries int) error {
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := e.waitForSlot(ctx); err != nil {
			return err
		}

		err := fn(ctx)
		e.observe(attempt, err)
		if err == nil {
			return nil
		}
		lastErr = err

		var authErr *AuthError
		if errors.As(err, &authErr) {
			e.logger.WithFields(logrus.Fields{
				"provider": e.provider,
				"status":   authErr.StatusCode,
			}).Error("Authorization failure, not retrying")
			return err
		}

		if attempt < maxRetries {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			e.logger.WithFields(logrus.Fields{
				"provider": e.provider,
				"attempt":  attempt,
				"backoff":  backoff.String(),
				"error":    err.Error(),
			}).Warn("Provider call failed, backing off before retry")
			if sleepErr := e.sleep(ctx, backoff); sleepErr != nil {
				return sleepErr
			}
		}
	}

	if e.metrics != nil {
		e.metrics.ProviderFailures.WithLabelValues(e.provider).Inc()
	}
	return &ExhaustedRetriesError{Provider: e.provider, Attempts: maxRetries + 1, Last: lastErr}
}

// waitForSlot purges timestamps older than the window, takes the courtesy
// wait when the window is full, then records the attempt.
func (e *Executor) waitForSlot(ctx context.Context) error {
	if e.windowFull() {
		if e.metrics != nil {
			e.metrics.RateLimitWaits.WithLabelValues(e.provider).Inc()
		}
		e.logger.WithFields(logrus.Fields{
			"provider": e.provider,
			"wait":     e.limits.RetryAfter.String(),
		}).Warn("Rate limit window full, waiting before request")
		if err := e.sleep(ctx, e.limits.RetryAfter); err != nil {
			return err
		}
	}

	e.mu.Lock()
	e.timestamps = append(e.timestamps, e.now())
	e.mu.Unlock()
	return nil
}

func (e *Executor) windowFull() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-e.limits.Window)
	kept := e.timestamps[:0]
	for _, ts := range e.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	e.timestamps = kept
	return e.limits.MaxRequests > 0 && len(e.timestamps) >= e.limits.MaxRequests
}

func (e *Executor) observe(attempt int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	if e.metrics != nil {
		e.metrics.ProviderAttempts.WithLabelValues(e.provider, outcome).Inc()
	}
	e.logger.WithFields(logrus.Fields{
		"provider": e.provider,
		"attempt":  attempt,
		"outcome":  outcome,
	}).Debug("Provider attempt finished")
}

// Do runs a typed request function through an executor.
func Do[T any](ctx context.Context, e *Executor, maxRetries int, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := e.Execute(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	}, maxRetries)
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
