package providers

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrierStopsOnNonRetryable(t *testing.T) {
	r := newRetrier(3, time.Millisecond)

	calls := 0
	err := r.do(context.Background(), func() error {
		calls++
		return errors.New("401 unauthorized")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("non-retryable error retried %d times", calls)
	}
}

func TestRetrierRetriesTransient(t *testing.T) {
	r := newRetrier(3, time.Millisecond)

	calls := 0
	err := r.do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("503 service unavailable")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if calls != 3 {
		t.Errorf("op ran %d times, want 3", calls)
	}
}

func TestRetrierExhaustsAttempts(t *testing.T) {
	r := newRetrier(2, time.Millisecond)

	calls := 0
	err := r.do(context.Background(), func() error {
		calls++
		return errors.New("rate limit exceeded")
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("op ran %d times, want 3 (initial + 2 retries)", calls)
	}
}

func TestRetrierHonorsContextCancel(t *testing.T) {
	r := newRetrier(5, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.do(ctx, func() error {
		return errors.New("timeout")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"429 too many requests", true},
		{"rate_limit_error", true},
		{"internal server error", true},
		{"gateway timeout", true},
		{"connection refused", true},
		{"resource exhausted", true},
		{"401 unauthorized", false},
		{"invalid request", false},
	}
	for _, tc := range cases {
		if got := isRetryableError(errors.New(tc.msg)); got != tc.want {
			t.Errorf("isRetryableError(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}
}

func TestConstructorsRequireAPIKey(t *testing.T) {
	if _, err := NewOpenAIPlanner(OpenAIConfig{}); err == nil {
		t.Error("NewOpenAIPlanner should reject empty key")
	}
	if _, err := NewAnthropicPlanner(AnthropicConfig{}); err == nil {
		t.Error("NewAnthropicPlanner should reject empty key")
	}
	if _, err := NewGooglePlanner(context.Background(), GoogleConfig{}); err == nil {
		t.Error("NewGooglePlanner should reject empty key")
	}
}

func TestProviderNames(t *testing.T) {
	op, err := NewOpenAIPlanner(OpenAIConfig{APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewOpenAIPlanner: %v", err)
	}
	if op.Name() != "openai" {
		t.Errorf("Name() = %q", op.Name())
	}

	ap, err := NewAnthropicPlanner(AnthropicConfig{APIKey: "sk-ant-test"})
	if err != nil {
		t.Fatalf("NewAnthropicPlanner: %v", err)
	}
	if ap.Name() != "anthropic" {
		t.Errorf("Name() = %q", ap.Name())
	}
}
