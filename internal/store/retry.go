package store

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Retry delays for failed writes. Writes are short-lived best-effort
// telemetry, so the schedule is tight: a write that cannot land within a
// couple of seconds degrades to the local tier instead of queueing.
var retryDelays = []time.Duration{
	200 * time.Millisecond,
	500 * time.Millisecond,
	1200 * time.Millisecond,
}

const (
	// DefaultWriteAttempts is the default number of write attempts.
	DefaultWriteAttempts = 3

	// JitterFactor is the ±percentage of jitter applied to delays.
	JitterFactor = 0.2 // ±20%
)

// NextRetryDelay returns the backoff before the given retry with ±20%
// jitter. attempt is 0-indexed: after the first failed attempt, attempt = 0.
func NextRetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(retryDelays) {
		attempt = len(retryDelays) - 1
	}

	base := retryDelays[attempt]

	jitterRange := float64(base) * JitterFactor
	jitter := (rand.Float64()*2 - 1) * jitterRange // -20% to +20%

	return time.Duration(float64(base) + jitter)
}

// WriteWithRetry attempts a backend write up to attempts times with
// jittered backoff between failures. A context cancellation or timeout
// stops retrying immediately; the last write error is returned when all
// attempts fail.
func WriteWithRetry(ctx context.Context, backend Backend, key string, data []byte, attempts int) error {
	if attempts <= 0 {
		attempts = DefaultWriteAttempts
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(NextRetryDelay(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return errors.Join(ctx.Err(), lastErr)
			case <-timer.C:
			}
		}

		if err := backend.Set(ctx, key, data); err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return errors.Join(ctx.Err(), lastErr)
			}
			continue
		}
		return nil
	}
	return lastErr
}
