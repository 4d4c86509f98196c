package core

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// RetryFetcher retries transient fetch failures with exponential back-off.
// Status failures below 500 (other than 429) are returned immediately.
type RetryFetcher struct {
	Next      Fetcher
	Attempts  int           // Total attempts, at least 1
	BaseDelay time.Duration // Doubled after each failed attempt
	Logger    *slog.Logger
}

// Fetch calls Next until it succeeds, fails permanently, runs out of
// attempts, or ctx ends.
func (r *RetryFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	delay := r.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		data, err := r.Next.Fetch(ctx, locator)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if attempt == attempts || !retryable(err) {
			break
		}

		logger.Warn("fetch failed, retrying",
			"locator", locator,
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", delay,
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
		delay *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	var te *TransportError
	if !errors.As(err, &te) {
		return false
	}
	if errors.Is(te.Cause, context.Canceled) || errors.Is(te.Cause, context.DeadlineExceeded) {
		return false
	}
	return te.Temporary()
}
