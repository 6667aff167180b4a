// Package retry applies a bounded exponential-backoff policy around remote
// calls. The policy is a plain value so the same rules can wrap the idea
// generator, image fetches, or any other call boundary.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Defaults used by the idea generator: two attempts, 2s before the second.
const (
	DefaultMaxAttempts = 2
	DefaultBaseDelay   = 2 * time.Second
	DefaultMultiplier  = 2.0
)

// Policy describes how many times a call is attempted and how long to wait
// between attempts. The wait after failure n (0-based) is
// BaseDelay * Multiplier^n.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// Default returns the policy used for idea generation.
func Default() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Multiplier:  DefaultMultiplier,
	}
}

// Attempts returns the effective number of attempts (at least one).
func (p Policy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Delay returns the wait after the given 0-based failed attempt.
func (p Policy) Delay(failure int) time.Duration {
	mult := p.Multiplier
	if mult <= 0 {
		mult = DefaultMultiplier
	}
	d := float64(p.BaseDelay)
	for i := 0; i < failure; i++ {
		d *= mult
	}
	return time.Duration(d)
}

// ExhaustedError is returned when every attempt failed. It wraps the last error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do calls fn until it succeeds, the attempts are exhausted, or ctx is done.
// name is only used for logging.
func Do(ctx context.Context, p Policy, name string, fn func(ctx context.Context, attempt int) error) error {
	attempts := p.Attempts()
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}

		wait := p.Delay(attempt)
		log.Warn().
			Err(lastErr).
			Str("call", name).
			Int("attempt", attempt+1).
			Dur("retry_in", wait).
			Msg("Remote call failed, retrying")

		if err := sleep(ctx, wait); err != nil {
			return &ExhaustedError{Attempts: attempt + 1, Err: errors.Join(lastErr, err)}
		}
	}
	return &ExhaustedError{Attempts: attempts, Err: lastErr}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
