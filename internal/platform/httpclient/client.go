// Package httpclient is the outbound HTTP client the todo CLI uses to reach
// the todo API. Each call passes through, in order:
//
//	circuit breaker -> rate limiter -> ID headers -> client span -> retry -> transport
//
// Only idempotent methods are retried, so a POST is sent at most once.
//
//	c := httpclient.New(&cfg.Client, "todo-api", metrics, logger)
//	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+"/todos", nil)
//	resp, err := c.Do(ctx, req)
//
// X-Request-ID and X-Correlation-ID are taken from the context when inbound
// middleware stored them (see WithRequestID) and generated otherwise.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/telemetry"
)

// UserAgent is sent on outbound requests that do not set their own.
const UserAgent = "go-todo-service/httpclient"

const (
	headerRequestID     = "X-Request-ID"
	headerCorrelationID = "X-Correlation-ID"
)

type (
	requestIDKey     struct{}
	correlationIDKey struct{}
)

// WithRequestID stores the request ID that outbound calls made with ctx
// forward.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// WithCorrelationID stores the correlation ID that outbound calls made with
// ctx forward.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// Client sends requests to one downstream service.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	serviceName string
	breaker     *gobreaker.CircuitBreaker[*http.Response]
	limiter     *rate.Limiter
	retry       retryPolicy
	tracer      trace.Tracer
	metrics     *telemetry.Metrics
}

// New builds a Client for serviceName from cfg. Nil metrics disables
// recording; a nil logger discards breaker transitions.
func New(cfg *config.ClientConfig, serviceName string, metrics *telemetry.Metrics, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		serviceName: serviceName,
		retry:       newRetryPolicy(cfg.Retry),
		tracer:      otel.GetTracerProvider().Tracer("github.com/jsamuelsen11/go-todo-service/httpclient"),
		metrics:     metrics,
	}

	trips := cfg.CircuitBreaker.MaxFailures
	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        serviceName,
		MaxRequests: clampUint32(cfg.CircuitBreaker.HalfOpenLimit),
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= trips
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	if rps := cfg.RateLimit.RequestsPerSecond; rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), cfg.RateLimit.BurstSize)
	}
	return c
}

// Do sends req. The returned response, when non-nil, has an open body the
// caller must close. That includes the case where retries ran out on a 429
// or 5xx: the last response comes back together with the error. Breaker
// rejections and transport failures return a nil response.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		c.injectHeaders(ctx, req)

		spanCtx, span := c.startSpan(ctx, req)
		defer span.End()

		resp, err := c.sendWithRetry(spanCtx, req.WithContext(spanCtx))
		if resp != nil {
			span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return resp, err
	})

	c.recordMetrics(ctx, req.Method, start, resp, err)
	return resp, err
}

// BaseURL is the configured root every request path is joined to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Name is the downstream service name used in spans, metrics and the
// readiness report.
func (c *Client) Name() string {
	return c.serviceName
}

// HealthCheck reports the circuit breaker state without touching the
// network. An open or half-open breaker wraps domain.ErrUnavailable.
func (c *Client) HealthCheck(context.Context) error {
	switch state := c.breaker.State(); state {
	case gobreaker.StateClosed:
		return nil
	case gobreaker.StateHalfOpen:
		return fmt.Errorf("%w: %s degraded, circuit breaker half-open", domain.ErrUnavailable, c.serviceName)
	case gobreaker.StateOpen:
		return fmt.Errorf("%w: %s failing, circuit breaker open", domain.ErrUnavailable, c.serviceName)
	default:
		return fmt.Errorf("%w: %s circuit breaker in state %v", domain.ErrUnavailable, c.serviceName, state)
	}
}

// injectHeaders sets the ID headers and User-Agent on req unless the caller
// already did. Without IDs in ctx a fresh request ID is generated and also
// used as the correlation ID; every retry of the call reuses the pair.
func (c *Client) injectHeaders(ctx context.Context, req *http.Request) {
	reqID := req.Header.Get(headerRequestID)
	if reqID == "" {
		if reqID, _ = ctx.Value(requestIDKey{}).(string); reqID == "" {
			reqID = uuid.NewString()
		}
		req.Header.Set(headerRequestID, reqID)
	}

	if req.Header.Get(headerCorrelationID) == "" {
		corrID, _ := ctx.Value(correlationIDKey{}).(string)
		if corrID == "" {
			corrID = reqID
		}
		req.Header.Set(headerCorrelationID, corrID)
	}

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}
}

// startSpan opens a client span and writes its trace context into req's
// headers.
func (c *Client) startSpan(ctx context.Context, req *http.Request) (context.Context, trace.Span) {
	ctx, span := c.tracer.Start(ctx, req.Method+" "+c.serviceName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.Redacted()),
			attribute.String("peer.service", c.serviceName),
		),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return ctx, span
}

// recordMetrics runs outside the breaker so rejected calls are counted too.
func (c *Client) recordMetrics(ctx context.Context, method string, start time.Time, resp *http.Response, err error) {
	if c.metrics == nil {
		return
	}

	status, result := 0, "error"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		result = "circuit_open"
	case resp != nil:
		status = resp.StatusCode
		if status < http.StatusBadRequest {
			result = "success"
		}
	}

	attrs := metric.WithAttributes(
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPStatus.Int(status),
		telemetry.AttrPeerService.String(c.serviceName),
		telemetry.AttrResult.String(result),
	)
	c.metrics.ClientRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	c.metrics.ClientRequestTotal.Add(ctx, 1, attrs)
}

func clampUint32(v int) uint32 {
	switch {
	case v <= 0:
		return 0
	case v > math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(v)
	}
}
