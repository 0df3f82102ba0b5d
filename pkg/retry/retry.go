// Package retry wraps calls to flaky external dependencies (mail relays, text
// generation providers) with exponential backoff and an optional list of
// fallback candidates such as model names or API versions.
//
// Transient failures are retried against the same candidate. A failure marked
// with NotFound or Permanent moves on to the next candidate without waiting.
// When everything is exhausted the last failure is returned to the caller.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy controls how many times a single candidate is retried and how long to wait in between.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is the wait before the first retry; it doubles on every further retry.
	BaseDelay time.Duration
	// MaxDelay caps a single wait. Zero means uncapped.
	MaxDelay time.Duration
	// OnRetry, when set, is called before each wait.
	OnRetry func(candidate string, attempt int, delay time.Duration, err error)
}

// DefaultPolicy mirrors the provider defaults: two retries starting at 200ms.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 2,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   10 * time.Second,
	}
}

// Backoff returns the wait before retry number attempt (0-based).
func (p Policy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

type kind int

const (
	kindNotFound kind = iota + 1
	kindPermanent
)

type classifiedError struct {
	kind kind
	err  error
}

func (e *classifiedError) Error() string { return e.err.Error() }
func (e *classifiedError) Unwrap() error { return e.err }

// NotFound marks err as "this candidate does not exist"; the next candidate is tried.
func NotFound(err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{kind: kindNotFound, err: err}
}

// Permanent marks err as not worth retrying against the same candidate.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{kind: kindPermanent, err: err}
}

// IsNotFound reports whether err was marked with NotFound.
func IsNotFound(err error) bool { return hasKind(err, kindNotFound) }

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool { return hasKind(err, kindPermanent) }

func hasKind(err error, k kind) bool {
	var ce *classifiedError
	return errors.As(err, &ce) && ce.kind == k
}

// Do calls fn for each candidate in order until one succeeds.
// An empty candidate list calls fn once per attempt with "".
func Do[T any](ctx context.Context, p Policy, candidates []string, fn func(ctx context.Context, candidate string) (T, error)) (T, error) {
	var zero T
	if len(candidates) == 0 {
		candidates = []string{""}
	}

	var lastErr error
	for _, candidate := range candidates {
		for attempt := 0; ; attempt++ {
			if err := ctx.Err(); err != nil {
				return zero, joinLast(err, lastErr)
			}

			result, err := fn(ctx, candidate)
			if err == nil {
				return result, nil
			}
			lastErr = err

			if IsNotFound(err) || IsPermanent(err) {
				break
			}
			if attempt >= p.MaxRetries {
				return zero, lastErr
			}

			delay := p.Backoff(attempt)
			if p.OnRetry != nil {
				p.OnRetry(candidate, attempt+1, delay, err)
			}
			if err := wait(ctx, delay); err != nil {
				return zero, joinLast(err, lastErr)
			}
		}
	}

	return zero, lastErr
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func joinLast(ctxErr, lastErr error) error {
	if lastErr == nil {
		return ctxErr
	}
	return errors.Join(ctxErr, lastErr)
}
