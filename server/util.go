package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jmanurodriguez/cloudinary-portal/logger"
	"go.uber.org/zap"
)

// retryWithBackoff runs fn until it succeeds, attempts are used up or ctx is
// done. The first attempt runs at once; the wait doubles after each failure
// starting at baseDelay and never exceeds maxDelay. On failure the last error
// from fn is returned wrapped.
func retryWithBackoff(ctx context.Context, attempts int, baseDelay, maxDelay time.Duration, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		logger.Warn("Attempt failed", zap.Int("attempt", attempt), zap.Int("of", attempts), zap.Error(lastErr))
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w after %d attempts: %w", ctx.Err(), attempt, lastErr)
		case <-timer.C:
		}

		if delay *= 2; delay > maxDelay {
			delay = maxDelay
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}
