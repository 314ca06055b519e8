package retry

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultMaxAttempts = 3

	baseDelay         = 500 * time.Millisecond
	backoffMultiplier = 3
)

// SourceUnavailableError reports that a remote source exhausted all retry
// attempts. It carries the last underlying error.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return "source " + e.Source + " unavailable: " + e.Err.Error()
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// Executor wraps a single remote call with bounded retries and exponential
// backoff. Backoff is deterministic, no jitter: callers isolate failures per
// source, so synchronized retries across sources are harmless.
type Executor struct {
	maxAttempts int
	baseDelay   time.Duration
	multiplier  int

	sleep func(ctx context.Context, d time.Duration) error
}

func NewExecutor() *Executor {
	return &Executor{
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   baseDelay,
		multiplier:  backoffMultiplier,
		sleep:       sleepContext,
	}
}

func (e *Executor) SetMaxAttempts(maxAttempts int) {
	if maxAttempts > 0 {
		e.maxAttempts = maxAttempts
	}
}

// Do invokes op up to maxAttempts times, waiting baseDelay × multiplier^attempt
// between attempts (500ms, 1500ms, 4500ms…) but not after the final one.
// Callers capture the result in a closure; Do only reports the outcome.
func (e *Executor) Do(ctx context.Context, source string, op func(ctx context.Context) error) error {

	var lastErr error
	for attempt := 0; attempt < e.maxAttempts; attempt++ {

		lastErr = op(ctx)
		if lastErr == nil {
			if attempt > 0 {
				log.Infof("source %s succeeded on attempt %d", source, attempt+1)
			}
			return nil
		}

		log.Warnf("source %s attempt %d/%d failed: %v", source, attempt+1, e.maxAttempts, lastErr)

		if attempt == e.maxAttempts-1 {
			break
		}

		delay := e.baseDelay * time.Duration(pow(e.multiplier, attempt))
		if err := e.sleep(ctx, delay); err != nil {
			lastErr = errors.Wrap(lastErr, err.Error())
			break
		}
	}

	return &SourceUnavailableError{Source: source, Err: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func pow(base, exp int) int {
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
