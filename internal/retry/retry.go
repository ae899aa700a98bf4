package retry

import (
	"context"
	"fmt"
	"time"
)

// Config controls how many times an operation is attempted and how long to
// wait between attempts. With Backoff set, the wait grows linearly with the
// attempt number.
type Config struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool
}

// WithRetry runs fn until it succeeds, the attempts are exhausted, or the
// context is cancelled.
func WithRetry(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		delay := cfg.Delay
		if cfg.Backoff {
			delay = time.Duration(attempt) * cfg.Delay
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}
