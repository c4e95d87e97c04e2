// Package transport implements the request pipeline for the transformation
// service client: a composable middleware chain around a core HTTP handler.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ahrav/go-modernize/internal/domain"
	transformerrors "github.com/ahrav/go-modernize/internal/transform/errors"
)

// TokenProvider supplies the bearer credential attached to outgoing
// requests. Implemented by the auth package's TokenSource.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Handler processes transformation service requests through a composable
// middleware pipeline. Core abstraction enabling request preprocessing,
// response postprocessing, and cross-cutting concerns like logging.
type Handler interface {
	Handle(ctx context.Context, req *Request) (*Response, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, *Request) (*Response, error)

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Middleware transforms a Handler into an enhanced Handler.
// Applied in reverse order with last middleware closest to the core handler.
type Middleware func(Handler) Handler

// Chain builds a middleware pipeline around a core handler.
// Middleware executes in the order provided with first middleware outermost.
func Chain(h Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// NewHTTPHandler creates the core handler that calls the transformation
// service over HTTP. The token provider may be nil, in which case requests
// are sent unauthenticated (test servers).
func NewHTTPHandler(client *http.Client, endpoint string, tokens TokenProvider) Handler {
	return &httpHandler{client: client, endpoint: endpoint, tokens: tokens}
}

// httpHandler is the core handler that makes actual HTTP requests.
type httpHandler struct {
	client   *http.Client
	endpoint string
	tokens   TokenProvider
}

// statusResponseBody is the wire shape of a status query response.
type statusResponseBody struct {
	Status          string                  `json:"status"`
	Record          domain.JobRecord        `json:"job"`
	ProgressUpdates []domain.ProgressUpdate `json:"progressUpdates"`
}

// errorResponseBody is the wire shape of a service error payload.
type errorResponseBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handle implements Handler by calling the transformation service.
func (h *httpHandler) Handle(ctx context.Context, req *Request) (*Response, error) {
	reqCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := h.build(reqCtx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	start := time.Now()
	httpResp, err := h.client.Do(httpReq)
	latency := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	resp, err := h.parse(req, httpResp)
	if err != nil {
		return nil, err
	}

	resp.LatencyMs = latency.Milliseconds()
	return resp, nil
}

// build constructs the HTTP request for the given operation.
func (h *httpHandler) build(ctx context.Context, req *Request) (*http.Request, error) {
	var path string
	switch req.Operation {
	case OpGetStatus:
		path = fmt.Sprintf("/transformations/%s", url.PathEscape(req.JobID.String()))
	case OpGetPlan:
		path = fmt.Sprintf("/transformations/%s/plan", url.PathEscape(req.JobID.String()))
	default:
		return nil, fmt.Errorf("unsupported operation %q", req.Operation)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint+path, http.NoBody)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.TraceID != "" {
		httpReq.Header.Set("X-Trace-Id", req.TraceID)
	}

	if h.tokens != nil {
		token, err := h.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain token: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return httpReq, nil
}

// parse decodes the HTTP response, mapping error payloads into the client
// error taxonomy.
func (h *httpHandler) parse(req *Request, httpResp *http.Response) (*Response, error) {
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, h.parseError(req, httpResp, body)
	}

	switch req.Operation {
	case OpGetStatus:
		var parsed statusResponseBody
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse status response: %w", err)
		}
		return &Response{
			Status:          domain.TransformationStatus(parsed.Status),
			Record:          parsed.Record,
			ProgressUpdates: parsed.ProgressUpdates,
		}, nil
	case OpGetPlan:
		return &Response{Plan: json.RawMessage(body)}, nil
	default:
		return nil, fmt.Errorf("unsupported operation %q", req.Operation)
	}
}

// parseError maps a non-200 response onto typed client errors so callers
// can apply the refresh-once authorization policy.
func (h *httpHandler) parseError(req *Request, httpResp *http.Response, body []byte) error {
	var parsed errorResponseBody
	_ = json.Unmarshal(body, &parsed) // Best effort; fall back to status mapping.

	errType := transformerrors.StatusCodeErrorType(httpResp.StatusCode, parsed.Code)
	op := string(req.Operation)

	switch errType {
	case transformerrors.ErrorTypeAccessDenied:
		return &transformerrors.AccessDeniedError{Operation: op, Message: parsed.Message}
	case transformerrors.ErrorTypeInvalidGrant:
		return &transformerrors.InvalidGrantError{Message: parsed.Message}
	case transformerrors.ErrorTypeThrottling:
		retryAfter := 0
		if v := httpResp.Header.Get("Retry-After"); v != "" {
			retryAfter, _ = strconv.Atoi(v)
		}
		return &transformerrors.ThrottlingError{Operation: op, RetryAfter: retryAfter}
	default:
		if httpResp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", transformerrors.ErrJobNotFound, req.JobID)
		}
		return &transformerrors.ServiceError{
			Operation:  op,
			StatusCode: httpResp.StatusCode,
			Code:       parsed.Code,
			Message:    parsed.Message,
			Type:       errType,
		}
	}
}
