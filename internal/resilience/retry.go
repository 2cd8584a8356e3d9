package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// ErrRetriesExhausted is the terminal failure raised once every attempt
// of a retried operation has failed.
var ErrRetriesExhausted = errors.New("operation failed after multiple attempts")

// PermanentError aborts a retry loop immediately; Retry unwraps it and
// returns the inner error to the caller untouched.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so Retry gives up on it without further attempts.
func Permanent(err error) error {
	return &PermanentError{Err: err}
}

// Retry runs fn up to attempts times, waiting baseDelay*attempt plus a
// random jitter in [0, jitterMax) between attempts. The wait is skipped
// after the final failure.
func Retry(ctx context.Context, attempts int, baseDelay, jitterMax time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		var pe *PermanentError
		if errors.As(err, &pe) {
			return pe.Err
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		wait := baseDelay * time.Duration(attempt)
		if jitterMax > 0 {
			wait += time.Duration(rand.Int63n(int64(jitterMax)))
		}
		slog.Warn("attempt failed, retrying", "attempt", attempt, "wait", wait, "error", lastErr)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrRetriesExhausted, ctx.Err())
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
}
