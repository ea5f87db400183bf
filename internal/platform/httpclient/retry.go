package httpclient

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/logging"
)

// jitterFraction bounds the random spread applied to each computed delay.
const jitterFraction = 0.25

// retryPolicy decides how often and how long to wait between attempts.
type retryPolicy struct {
	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration
	multiplier      float64
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	return retryPolicy{
		maxAttempts:     cfg.MaxAttempts,
		initialInterval: cfg.InitialInterval,
		maxInterval:     cfg.MaxInterval,
		multiplier:      cfg.Multiplier,
	}
}

// attempts is the budget for one call. Methods that change server state on
// every send (POST, PATCH) get exactly one.
func (p retryPolicy) attempts(method string) int {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return max(p.maxAttempts, 1)
	default:
		return 1
	}
}

// delay is the wait before retry n (1 for the first retry). A Retry-After
// header on a 429 or 503 replaces the computed backoff; both are capped at
// maxInterval.
func (p retryPolicy) delay(n int, resp *http.Response) time.Duration {
	if d, ok := retryAfter(resp, time.Now()); ok {
		return min(d, p.maxInterval)
	}

	d := float64(p.initialInterval) * math.Pow(p.multiplier, float64(n-1))
	d = min(d, float64(p.maxInterval))
	d += d * jitterFraction * (2*randFloat64() - 1)
	return time.Duration(max(d, 0))
}

// retryAfter reads the Retry-After header of a throttled or unavailable
// response, in either delta-seconds or HTTP-date form.
func retryAfter(resp *http.Response, now time.Time) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return 0, false
	}

	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(v); err == nil {
		return max(at.Sub(now), 0), true
	}
	return 0, false
}

// sendWithRetry runs req until it gets a non-retryable outcome or the budget
// is spent. When the last attempt still ends in a retryable status, that
// response is returned with its body open alongside the error.
func (c *Client) sendWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	rewind, err := replayableBody(req)
	if err != nil {
		return nil, err
	}

	budget := c.retry.attempts(req.Method)
	var (
		resp    *http.Response
		lastErr error
	)

	for attempt := 1; attempt <= budget; attempt++ {
		if attempt > 1 {
			wait := c.retry.delay(attempt-1, resp)
			if resp != nil {
				discard(resp)
				resp = nil
			}
			c.logRetry(ctx, req, attempt, budget, wait, lastErr)
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
		if err := rewind(); err != nil {
			return nil, err
		}

		resp, err = c.httpClient.Do(req)
		if err != nil {
			if !transient(err) {
				return nil, err
			}
			lastErr = err
			continue
		}
		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		lastErr = fmt.Errorf("HTTP %d from %s", resp.StatusCode, c.serviceName)
	}

	return resp, lastErr
}

func (c *Client) logRetry(ctx context.Context, req *http.Request, attempt, budget int, wait time.Duration, cause error) {
	logging.FromContext(ctx).WarnContext(ctx, "retrying HTTP request",
		slog.String("method", req.Method),
		slog.String("url", req.URL.Redacted()),
		slog.String("peer_service", c.serviceName),
		slog.Int("attempt", attempt),
		slog.Int("max_attempts", budget),
		slog.Duration("backoff", wait),
		slog.Any("error", cause),
	)
}

// replayableBody returns a func that gives req a fresh body before each
// attempt. Requests built from an in-memory reader already carry GetBody;
// anything else is read once into memory.
func replayableBody(req *http.Request) (func() error, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return func() error { return nil }, nil
	}

	if req.GetBody == nil {
		buf, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		_ = req.Body.Close()
		req.ContentLength = int64(len(buf))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(buf)), nil
		}
	}

	return func() error {
		body, err := req.GetBody()
		if err != nil {
			return fmt.Errorf("rewinding request body: %w", err)
		}
		req.Body = body
		return nil
	}, nil
}

// discard drains and closes a response that will not be handed back, so
// the connection can be reused.
func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// transient reports whether a transport error is worth another attempt.
// Cancellation and deadlines belong to the caller and end the call.
func transient(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// retryableStatus is true for 429 and every 5xx.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// randFloat64 returns a value in [0, 1) from crypto/rand.
func randFloat64() float64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0
	}
	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
}
