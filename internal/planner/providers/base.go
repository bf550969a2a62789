// Package providers implements the planner contract on top of the OpenAI,
// Anthropic, and Google Gemini APIs.
//
// Planning is a single-shot completion: the orchestrator needs one JSON
// object per iteration, so the providers use blocking (non-streaming) calls
// and hand the raw text to the shared parser. Transient failures are retried
// with exponential backoff.
package providers

import (
	"context"
	"math"
	"strings"
	"time"
)

type retrier struct {
	maxRetries int
	retryDelay time.Duration
}

func newRetrier(maxRetries int, retryDelay time.Duration) retrier {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return retrier{maxRetries: maxRetries, retryDelay: retryDelay}
}

// do runs op, retrying retryable failures with exponential backoff.
func (r retrier) do(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isRetryableError(lastErr) || attempt == r.maxRetries {
			return lastErr
		}

		backoff := r.retryDelay * time.Duration(math.Pow(2, float64(attempt)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return lastErr
}

// isRetryableError classifies transient API failures: rate limits, 5xx
// responses, timeouts, and connection drops.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "quota") {
		return true
	}

	if strings.Contains(msg, "500") ||
		strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "504") ||
		strings.Contains(msg, "internal server error") ||
		strings.Contains(msg, "bad gateway") ||
		strings.Contains(msg, "service unavailable") ||
		strings.Contains(msg, "gateway timeout") {
		return true
	}

	if strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded") {
		return true
	}

	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") {
		return true
	}

	return false
}
