package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

func testPolicy() retryPolicy {
	return retryPolicy{
		maxAttempts:     4,
		initialInterval: 100 * time.Millisecond,
		maxInterval:     time.Second,
		multiplier:      2,
	}
}

func TestRetryPolicy_Attempts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		max    int
		want   int
	}{
		{method: http.MethodGet, max: 3, want: 3},
		{method: http.MethodHead, max: 3, want: 3},
		{method: http.MethodPut, max: 3, want: 3},
		{method: http.MethodDelete, max: 3, want: 3},
		{method: http.MethodOptions, max: 3, want: 3},
		{method: http.MethodPost, max: 3, want: 1},
		{method: http.MethodPatch, max: 3, want: 1},
		{method: http.MethodGet, max: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s max %d", tt.method, tt.max), func(t *testing.T) {
			t.Parallel()

			p := retryPolicy{maxAttempts: tt.max}
			if got := p.attempts(tt.method); got != tt.want {
				t.Errorf("attempts(%s) = %d, want %d", tt.method, got, tt.want)
			}
		})
	}
}

func TestRetryPolicy_DelayBackoff(t *testing.T) {
	t.Parallel()

	p := testPolicy()

	tests := []struct {
		retry int
		base  time.Duration
	}{
		{retry: 1, base: 100 * time.Millisecond},
		{retry: 2, base: 200 * time.Millisecond},
		{retry: 3, base: 400 * time.Millisecond},
		{retry: 4, base: 800 * time.Millisecond},
		{retry: 5, base: time.Second},
		{retry: 12, base: time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("retry %d", tt.retry), func(t *testing.T) {
			t.Parallel()

			lo := time.Duration(float64(tt.base) * (1 - jitterFraction))
			hi := time.Duration(float64(tt.base) * (1 + jitterFraction))
			for range 50 {
				if got := p.delay(tt.retry, nil); got < lo || got > hi {
					t.Fatalf("delay(%d) = %v, want within [%v, %v]", tt.retry, got, lo, hi)
				}
			}
		})
	}
}

func TestRetryPolicy_DelayHonorsRetryAfter(t *testing.T) {
	t.Parallel()

	p := testPolicy()

	tests := []struct {
		name       string
		status     int
		retryAfter string
		want       time.Duration
		wantJitter bool
	}{
		{name: "429 seconds", status: http.StatusTooManyRequests, retryAfter: "0", want: 0},
		{name: "503 seconds", status: http.StatusServiceUnavailable, retryAfter: "1", want: time.Second},
		{name: "capped at max interval", status: http.StatusServiceUnavailable, retryAfter: "120", want: time.Second},
		{name: "past http date", status: http.StatusTooManyRequests, retryAfter: "Mon, 02 Jan 2006 15:04:05 GMT", want: 0},
		{name: "ignored on 500", status: http.StatusInternalServerError, retryAfter: "0", wantJitter: true},
		{name: "garbage falls back", status: http.StatusTooManyRequests, retryAfter: "soon", wantJitter: true},
		{name: "negative falls back", status: http.StatusTooManyRequests, retryAfter: "-3", wantJitter: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := &http.Response{StatusCode: tt.status, Header: http.Header{}}
			resp.Header.Set("Retry-After", tt.retryAfter)

			got := p.delay(1, resp)
			if tt.wantJitter {
				if got < 75*time.Millisecond || got > 125*time.Millisecond {
					t.Errorf("delay() = %v, want computed backoff around 100ms", got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("delay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryAfter_FutureDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resp := &http.Response{StatusCode: http.StatusServiceUnavailable, Header: http.Header{}}
	resp.Header.Set("Retry-After", now.Add(30*time.Second).Format(http.TimeFormat))

	got, ok := retryAfter(resp, now)
	if !ok || got != 30*time.Second {
		t.Errorf("retryAfter() = %v, %v, want 30s, true", got, ok)
	}
}

func TestTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: false},
		{name: "wrapped deadline", err: fmt.Errorf("dial: %w", context.DeadlineExceeded), want: false},
		{name: "dial refused", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, want: true},
		{name: "unknown", err: errors.New("unexpected EOF"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := transient(tt.err); got != tt.want {
				t.Errorf("transient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryableStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want bool
	}{
		{code: http.StatusOK, want: false},
		{code: http.StatusNoContent, want: false},
		{code: http.StatusBadRequest, want: false},
		{code: http.StatusNotFound, want: false},
		{code: http.StatusConflict, want: false},
		{code: http.StatusTooManyRequests, want: true},
		{code: http.StatusInternalServerError, want: true},
		{code: http.StatusBadGateway, want: true},
		{code: http.StatusServiceUnavailable, want: true},
		{code: http.StatusGatewayTimeout, want: true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			t.Parallel()

			if got := retryableStatus(tt.code); got != tt.want {
				t.Errorf("retryableStatus(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestReplayableBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body io.Reader
	}{
		{name: "in-memory reader keeps GetBody", body: strings.NewReader(`{"title":"milk"}`)},
		{name: "opaque reader is buffered", body: io.MultiReader(strings.NewReader(`{"title":`), strings.NewReader(`"milk"}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, err := http.NewRequest(http.MethodPut, "http://todo.test/todos/1", tt.body)
			if err != nil {
				t.Fatal(err)
			}
			rewind, err := replayableBody(req)
			if err != nil {
				t.Fatalf("replayableBody() error = %v", err)
			}

			for attempt := range 3 {
				if err := rewind(); err != nil {
					t.Fatalf("rewind() error = %v", err)
				}
				got, _ := io.ReadAll(req.Body)
				if string(got) != `{"title":"milk"}` {
					t.Errorf("attempt %d body = %q, want the full payload", attempt, got)
				}
			}
			if req.ContentLength != int64(len(`{"title":"milk"}`)) {
				t.Errorf("ContentLength = %d, want %d", req.ContentLength, len(`{"title":"milk"}`))
			}
		})
	}
}

func TestReplayableBody_NoBody(t *testing.T) {
	t.Parallel()

	req, err := http.NewRequest(http.MethodGet, "http://todo.test/todos", nil)
	if err != nil {
		t.Fatal(err)
	}
	rewind, err := replayableBody(req)
	if err != nil {
		t.Fatalf("replayableBody() error = %v", err)
	}
	if err := rewind(); err != nil {
		t.Errorf("rewind() error = %v", err)
	}
}

func TestSleep_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := sleep(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("sleep() error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("sleep() waited despite a canceled context")
	}
}

func TestRandFloat64_InRange(t *testing.T) {
	t.Parallel()

	for range 1000 {
		if v := randFloat64(); v < 0 || v >= 1 {
			t.Fatalf("randFloat64() = %v, want [0, 1)", v)
		}
	}
}
