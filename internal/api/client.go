// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

// Package api is the HTTP client for the phone sign-in backend.
//
// Every call returns a Result instead of an error: a response the server
// explained (a JSON body carrying "message") is a server error, anything
// else that is not a decodable 2xx response is a transport error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/phoneauth/phoneauth/internal/observability"
)

// Endpoint paths and metric labels.
const (
	PathRequestOTP = "/api/v1/auth"
	PathVerifyOTP  = "/api/v1/verify-otp"

	EndpointRequestOTP = "request_otp"
	EndpointVerifyOTP  = "verify_otp"
)

// HeaderRequestID carries a per-call ULID.
const HeaderRequestID = "X-Request-ID"

// DefaultTimeout bounds a single call when no http.Client is supplied.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 1 << 20

// Client talks to the backend.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.Metrics
	newID   func() ulid.ULID
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracer sets the tracer used for per-call spans.
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithMetrics enables request metrics.
func WithMetrics(m *observability.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a Client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, oops.Errorf("base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, oops.Code("API_BASE_URL_INVALID").With("base_url", baseURL).Errorf("invalid base URL %q", baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.New(slog.DiscardHandler),
		tracer:  otel.Tracer("phoneauth/api"),
		newID:   ulid.Make,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		return nil, oops.Errorf("http client is required")
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c, nil
}

// BaseURL returns the normalized backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// RequestOTP asks the backend to send a one-time passcode to req.PhoneNumber.
func (c *Client) RequestOTP(ctx context.Context, req RequestOTPRequest) Result[RequestOTPResponse] {
	return call[RequestOTPResponse](ctx, c, "api.RequestOTP", EndpointRequestOTP, PathRequestOTP, nil, req)
}

// VerifyOTP submits the passcode for the pending user.
func (c *Client) VerifyOTP(ctx context.Context, userID int64, req VerifyOTPRequest) Result[VerifyOTPResponse] {
	query := url.Values{"user_id": []string{strconv.FormatInt(userID, 10)}}
	return call[VerifyOTPResponse](ctx, c, "api.VerifyOTP", EndpointVerifyOTP, PathVerifyOTP, query, req)
}

func call[T any](ctx context.Context, c *Client, spanName, endpoint, path string, query url.Values, body any) (result Result[T]) {
	requestID := c.newID().String()
	ctx, span := c.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("api.endpoint", endpoint),
			attribute.String("api.request_id", requestID),
		),
	)
	start := time.Now()
	defer func() {
		outcome := result.Kind.String()
		span.SetAttributes(attribute.String("api.outcome", outcome))
		if result.Err != nil {
			span.RecordError(result.Err)
			span.SetStatus(codes.Error, result.Err.Error())
		}
		span.End()
		if c.metrics != nil {
			c.metrics.APIRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
			c.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		}
		c.logger.DebugContext(ctx, "api call finished",
			"endpoint", endpoint,
			"request_id", requestID,
			"outcome", outcome,
			"duration", time.Since(start),
		)
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		return transport[T](oops.Code("API_REQUEST_BUILD_FAILED").With("endpoint", endpoint).Wrap(err))
	}

	target := *c.baseURL
	target.Path += path
	target.RawQuery = query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(payload))
	if err != nil {
		return transport[T](oops.Code("API_REQUEST_BUILD_FAILED").With("endpoint", endpoint).Wrap(err))
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(HeaderRequestID, requestID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return transport[T](oops.Code("API_TRANSPORT_FAILED").With("endpoint", endpoint).Wrap(err))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return transport[T](oops.Code("API_TRANSPORT_FAILED").With("endpoint", endpoint).Wrap(err))
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var out T
		if err := json.Unmarshal(raw, &out); err != nil {
			return transport[T](oops.Code("API_RESPONSE_DECODE_FAILED").
				With("endpoint", endpoint).
				With("status", resp.StatusCode).
				Wrap(err))
		}
		return Result[T]{Kind: KindOK, Payload: out}
	}

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil && eb.Message != "" {
		return Result[T]{Kind: KindServerError, Message: eb.Message}
	}
	return transport[T](oops.Code("API_UNEXPECTED_STATUS").
		With("endpoint", endpoint).
		With("status", resp.StatusCode).
		Errorf("unexpected status %d", resp.StatusCode))
}

func transport[T any](err error) Result[T] {
	return Result[T]{Kind: KindTransportError, Err: err}
}
