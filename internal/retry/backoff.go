// Package retry re-attempts operations that fail transiently, such as
// dialing a relay server that is still starting up.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// PermanentError marks a failure that no amount of waiting will fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so that Do returns it without another attempt.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Backoff waits Base, 2·Base, 4·Base … between attempts, never longer
// than Cap.
type Backoff struct {
	Base time.Duration // default 250ms
	Cap  time.Duration // default 10s

	// Attempts is the total number of tries including the first.
	// 0 keeps trying until the context ends.
	Attempts int

	// Jitter spreads each wait by ±25%.
	Jitter bool

	// Retryable classifies failures.  A false result ends Do with that
	// error.  Nil treats every failure as retryable.
	Retryable func(error) bool

	// OnRetry, if set, is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

const (
	defaultBase = 250 * time.Millisecond
	defaultCap  = 10 * time.Second
)

// Do calls fn until it succeeds, fails permanently, runs out of
// attempts, or ctx ends.  attempt is 1-based.
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return errors.Unwrap(err)
		}
		if b.Retryable != nil && !b.Retryable(err) {
			return err
		}
		if b.Attempts > 0 && attempt >= b.Attempts {
			return fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		wait := b.Delay(attempt)
		if b.Jitter {
			wait = addJitter(wait)
		}
		if b.OnRetry != nil {
			b.OnRetry(attempt, err, wait)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry cancelled: %w (last error: %v)", ctx.Err(), err)
		case <-t.C:
		}
	}
}

// Delay returns the un-jittered wait after the given failed attempt.
func (b *Backoff) Delay(attempt int) time.Duration {
	base, limit := b.Base, b.Cap
	if base <= 0 {
		base = defaultBase
	}
	if limit <= 0 {
		limit = defaultCap
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= limit {
			return limit
		}
	}
	if d > limit {
		return limit
	}
	return d
}

func addJitter(d time.Duration) time.Duration {
	quarter := float64(d) / 4
	out := time.Duration(float64(d) + rand.Float64()*2*quarter - quarter)
	if out < time.Millisecond {
		return time.Millisecond
	}
	return out
}
