package todoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/httpclient"
)

// TokenSource supplies the bearer credential for outbound requests. An
// empty token means the request is sent without an Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// requester centralizes the HTTP request lifecycle: request creation,
// credential attachment, JSON marshaling, execution via httpclient.Client,
// response body cleanup, status validation, error classification, and JSON
// decoding.
type requester struct {
	client *httpclient.Client
	tokens TokenSource
	logger *slog.Logger
}

// do executes a request against the client's base URL. reqBody is marshaled
// to JSON when non-nil; respBody receives the decoded response when
// non-nil. Every failure is one of *RequestSetupError, *NoResponseError, or
// *ServerError.
func (r *requester) do(ctx context.Context, method, path string, wantStatus int, reqBody, respBody any) error {
	req, err := r.newRequest(ctx, method, path, reqBody)
	if err != nil {
		return &RequestSetupError{Err: err}
	}
	return r.execute(req, wantStatus, respBody)
}

func (r *requester) newRequest(ctx context.Context, method, path string, reqBody any) (*http.Request, error) {
	var body io.Reader = http.NoBody
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s body for %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.client.BaseURL()+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request for %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if r.tokens != nil {
		token, err := r.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading credentials: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// closeBody closes an HTTP response body and logs on failure.
func (r *requester) closeBody(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		r.logger.WarnContext(ctx, "failed to close response body",
			slog.String("error", err.Error()),
		)
	}
}

// execute sends the request, checks the status code, and optionally decodes
// the response body. It ensures resp.Body is always closed.
func (r *requester) execute(req *http.Request, wantStatus int, respBody any) error {
	ctx := req.Context()

	resp, err := r.client.Do(ctx, req)
	if resp != nil {
		defer r.closeBody(ctx, resp)
	}
	if err != nil && resp == nil {
		r.logger.ErrorContext(ctx, "request failed",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.String("error", err.Error()),
		)
		return &NoResponseError{Err: fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)}
	}

	// httpclient.Do returns both resp and err when retries are exhausted on
	// a retryable status; the response still classifies the failure.
	if resp.StatusCode != wantStatus {
		serverErr := newServerError(resp)
		r.logger.ErrorContext(ctx, "unexpected status",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.Int("status", resp.StatusCode),
			slog.Int("want_status", wantStatus),
		)
		return serverErr
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			r.logger.ErrorContext(ctx, "undecodable response",
				slog.String("method", req.Method),
				slog.String("url", req.URL.String()),
				slog.String("error", err.Error()),
			)
			return &ServerError{Status: resp.StatusCode, Message: FallbackServerMessage}
		}
	}

	return nil
}
