package retry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Fn is a single provider call. The context carries the per-attempt
// timeout; implementations should honor it but the executor enforces the
// deadline either way.
type Fn func(ctx context.Context) (interface{}, error)

type Options struct {
	MaxAttempts int
	Delays      []time.Duration
	Timeout     time.Duration
	// OnRetry is invoked before sleeping, after a retryable failure that
	// is not the last attempt.
	OnRetry func(attempt int, err error)
}

const (
	DefaultMaxAttempts = 2
	DefaultTimeout     = 25 * time.Second
)

func DefaultDelays() []time.Duration {
	return []time.Duration{2 * time.Second, 4 * time.Second}
}

// Result is always returned, never panicked: a provider call that fails
// degrades to Data == nil plus the last error, so the caller can continue
// with the remaining providers.
type Result struct {
	Data     interface{}
	Err      error
	Attempts int
}

// HTTPError carries an upstream HTTP status for classification.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Message)
}

// TimeoutError marks an attempt that was aborted by the executor's
// deadline, distinguishable from a functional provider failure.
type TimeoutError struct {
	Provider string
	Elapsed  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %s timed out after %s", e.Provider, e.Elapsed)
}

func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// Error message fragments treated as transient.
var retryablePatterns = []string{
	"timeout",
	"timed out",
	"network",
	"connection refused",
	"econnrefused",
	"fetch failed",
	"socket hang up",
	"aborted",
}

// Retryable classifies an error. Retryable: aborts/timeouts, transient
// network messages, HTTP >=500 and HTTP 429. Non-retryable: other 4xx and
// anything unrecognized — unknown errors fail fast.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if IsTimeout(err) {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 429 || httpErr.StatusCode >= 500 {
			return true
		}
		if httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
			return false
		}
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// seam for tests
var sleep = time.Sleep

// Execute runs fn under the retry/timeout policy. Zero-valued options fall
// back to the defaults. Each attempt races fn against its own deadline;
// one provider's retry storm cannot block another's since no state is
// shared between calls.
func Execute(ctx context.Context, providerID string, fn Fn, opts Options) Result {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if len(opts.Delays) == 0 {
		opts.Delays = DefaultDelays()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	var lastErr error

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		data, err := runAttempt(ctx, providerID, fn, opts.Timeout)
		if err == nil {
			if attempt > 1 {
				log.Printf("[retry] provider %s succeeded on attempt %d/%d", providerID, attempt, opts.MaxAttempts)
			}
			return Result{Data: data, Attempts: attempt}
		}
		lastErr = err

		if !Retryable(err) {
			log.Printf("[retry] provider %s failed with non-retryable error on attempt %d: %v", providerID, attempt, err)
			return Result{Err: err, Attempts: attempt}
		}

		if attempt == opts.MaxAttempts {
			log.Printf("[retry] provider %s exhausted %d attempts: %v", providerID, attempt, err)
			return Result{Err: err, Attempts: attempt}
		}

		delay := delayFor(attempt, opts.Delays)
		log.Printf("[retry] provider %s attempt %d/%d failed (%v), retrying in %s", providerID, attempt, opts.MaxAttempts, err, delay)
		if opts.OnRetry != nil {
			opts.OnRetry(attempt, err)
		}
		sleep(delay)
	}

	return Result{Err: lastErr, Attempts: opts.MaxAttempts}
}

// delayFor picks the backoff for the attempt that just failed; the last
// configured delay is reused when attempts outnumber the list.
func delayFor(attempt int, delays []time.Duration) time.Duration {
	if attempt-1 < len(delays) {
		return delays[attempt-1]
	}
	return delays[len(delays)-1]
}

func runAttempt(ctx context.Context, providerID string, fn Fn, timeout time.Duration) (data interface{}, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	type outcome struct {
		data interface{}
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("provider %s panicked: %v", providerID, r)}
			}
		}()
		d, e := fn(attemptCtx)
		done <- outcome{data: d, err: e}
	}()

	select {
	case out := <-done:
		return out.data, out.err
	case <-attemptCtx.Done():
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Provider: providerID, Elapsed: time.Since(start)}
		}
		return nil, attemptCtx.Err()
	}
}
