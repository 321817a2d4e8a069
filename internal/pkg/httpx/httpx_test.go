package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type statusErr struct {
	code int
}

func (e *statusErr) Error() string {
	return fmt.Sprintf("status %d", e.code)
}

func (e *statusErr) HTTPStatusCode() int {
	return e.code
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	retryable := []int{http.StatusRequestTimeout, http.StatusTooManyRequests, 500, 502, 503, 599}
	for _, code := range retryable {
		if !IsRetryableHTTPStatus(code) {
			t.Fatalf("expected %d to be retryable", code)
		}
	}
	terminal := []int{200, 201, 400, 401, 403, 404, 422}
	for _, code := range terminal {
		if IsRetryableHTTPStatus(code) {
			t.Fatalf("expected %d to be terminal", code)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	if IsRetryableError(nil) {
		t.Fatal("nil error should not be retryable")
	}
	if !IsRetryableError(context.DeadlineExceeded) {
		t.Fatal("deadline exceeded should be retryable")
	}
	if !IsRetryableError(fmt.Errorf("wrapped: %w", &statusErr{code: 503})) {
		t.Fatal("wrapped 503 should be retryable")
	}
	if IsRetryableError(&statusErr{code: 400}) {
		t.Fatal("400 should be terminal")
	}
	if IsRetryableError(errors.New("boom")) {
		t.Fatal("plain error should be terminal")
	}
}

func TestBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	max := time.Second
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second},
		{10, time.Second},
	}
	for _, tc := range cases {
		if got := Backoff(tc.attempt, base, max); got != tc.want {
			t.Fatalf("attempt %d: got %v want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestRetryAfterDuration(t *testing.T) {
	fallback := 250 * time.Millisecond
	if got := RetryAfterDuration(nil, fallback, 0); got != fallback {
		t.Fatalf("nil response: got %v want %v", got, fallback)
	}

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "3")
	if got := RetryAfterDuration(resp, fallback, 0); got != 3*time.Second {
		t.Fatalf("Retry-After header: got %v want 3s", got)
	}
	if got := RetryAfterDuration(resp, fallback, time.Second); got != time.Second {
		t.Fatalf("capped: got %v want 1s", got)
	}

	resp.Header.Set("Retry-After", "not-a-number")
	if got := RetryAfterDuration(resp, fallback, 0); got != fallback {
		t.Fatalf("unparseable header: got %v want %v", got, fallback)
	}
}

func TestJitterSleep(t *testing.T) {
	if got := JitterSleep(0); got != 0 {
		t.Fatalf("zero base: got %v", got)
	}
	base := time.Second
	for i := 0; i < 50; i++ {
		got := JitterSleep(base)
		if got < 800*time.Millisecond || got > 1200*time.Millisecond {
			t.Fatalf("jitter out of range: %v", got)
		}
	}
}
