// Package retrier retries flaky operations with exponential backoff
// and jitter. Used for outbound calls that fail transiently, such as
// Telegram delivery.
package retrier

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

// Retrier runs an operation up to Attempts times, sleeping between
// tries. The delay starts at Initial, grows by Factor after each
// failure and is capped at Max. Jitter randomizes every delay by up
// to that fraction in either direction so that concurrent callers do
// not retry in lockstep.
type Retrier struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
	Factor   float64
	Jitter   float64
}

// New returns a Retrier with sensible defaults for the fields not
// covered by the arguments: 30s delay cap, doubling backoff, 10%
// jitter. Non-positive arguments fall back to 3 attempts and 1s.
func New(attempts int, initial time.Duration) *Retrier {
	if attempts <= 0 {
		attempts = 3
	}
	if initial <= 0 {
		initial = time.Second
	}
	return &Retrier{
		Attempts: attempts,
		Initial:  initial,
		Max:      30 * time.Second,
		Factor:   2.0,
		Jitter:   0.1,
	}
}

// Do runs fn until it succeeds, the attempt budget is spent, or ctx
// is cancelled. The last error is returned wrapped with the attempt
// count; context cancellation during a backoff sleep returns ctx.Err.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	delay := r.Initial

	for attempt := 1; attempt <= r.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.jittered(delay)):
			}

			delay = time.Duration(float64(delay) * r.Factor)
			if r.Max > 0 && delay > r.Max {
				delay = r.Max
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
	}

	return errors.Wrapf(lastErr, "giving up after %d attempts", r.Attempts)
}

// DoWithData is Do for operations that return a value.
func DoWithData[T any](ctx context.Context, r *Retrier, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := r.Do(ctx, func(ctx context.Context) error {
		var innerErr error
		out, innerErr = fn(ctx)
		return innerErr
	})
	return out, err
}

func (r *Retrier) jittered(delay time.Duration) time.Duration {
	if r.Jitter <= 0 {
		return delay
	}
	shift := (rand.Float64()*2 - 1) * r.Jitter * float64(delay)
	out := time.Duration(float64(delay) + shift)
	if out < 0 {
		return 0
	}
	return out
}
