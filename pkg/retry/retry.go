// Package retry is a bounded fixed-delay retry helper. It exists for exactly
// one boundary: resolving payment events that may arrive before read replicas
// observe the write that created the booking/payment link. It is deliberately
// not a general backoff library.
package retry

import (
	"context"
	"time"
)

// Do calls fn up to attempts times, sleeping delay between failures. The last
// error is returned when every attempt fails. Context cancellation cuts the
// loop short.
func Do[T any](ctx context.Context, attempts int, delay time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	return zero, lastErr
}
