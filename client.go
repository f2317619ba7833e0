// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Orchestrator endpoints, relative to the base URL.
const (
	PathFetchTask    = "/tasks"
	PathSubmitResult = "/tasks/submit"
)

// Client talks to one orchestrator. Every call is raced; see Dispatcher.
// A Client is safe for concurrent use.
type Client struct {
	dispatcher *Dispatcher
	telemetry  TelemetrySource
	nodeType   NodeType
}

// Option configures a Client
type Option func(*options)

type options struct {
	codec          Codec
	transport      string // "http", "grpc"
	httpClient     *http.Client
	attempts       int
	attemptTimeout time.Duration
	logger         *zap.Logger
	telemetry      TelemetrySource
	sink           DebugSink
	metrics        *Metrics
	nodeType       NodeType
	grpcTarget     string
}

// WithCodec sets a custom codec
func WithCodec(c Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithTransport explicitly sets the transport type
func WithTransport(t string) Option {
	return func(o *options) { o.transport = t }
}

// WithHTTPClient replaces the pooled client of the HTTP transport.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithAttempts sets how many concurrent attempts each call races.
func WithAttempts(n int) Option {
	return func(o *options) { o.attempts = n }
}

// WithAttemptTimeout bounds each attempt; zero disables the bound.
func WithAttemptTimeout(d time.Duration) Option {
	return func(o *options) { o.attemptTimeout = d }
}

// WithLogger sets the logger (default: no-op)
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTelemetrySource sets where submission telemetry comes from
// (default: SystemTelemetry).
func WithTelemetrySource(s TelemetrySource) Option {
	return func(o *options) { o.telemetry = s }
}

// WithDebugSink captures every outgoing payload.
func WithDebugSink(s DebugSink) Option {
	return func(o *options) { o.sink = s }
}

// WithMetrics records race metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithNodeType overrides the node type sent in every request
// (default: NodeTypeCLIProver).
func WithNodeType(t NodeType) Option {
	return func(o *options) { o.nodeType = t }
}

// New creates a client for the orchestrator at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	o := &options{
		codec:          defaultCodec,
		transport:      DefaultTransport,
		attempts:       DefaultAttempts,
		attemptTimeout: DefaultAttemptTimeout,
		logger:         zap.NewNop(),
		telemetry:      SystemTelemetry{},
		nodeType:       NodeTypeCLIProver,
	}
	for _, opt := range opts {
		opt(o)
	}
	if baseURL == "" {
		return nil, configurationError("empty base URL")
	}
	if o.attempts <= 0 {
		return nil, configurationError("attempts must be positive, got %d", o.attempts)
	}
	o.grpcTarget = baseURL

	newTransport, ok := lookupTransport(o.transport)
	if !ok {
		return nil, configurationError("unknown transport: %s", o.transport)
	}
	t, err := newTransport(o)
	if err != nil {
		return nil, fmt.Errorf("%s transport: %w", o.transport, err)
	}

	return &Client{
		dispatcher: &Dispatcher{
			BaseURL:        baseURL,
			Transport:      t,
			Codec:          o.codec,
			Attempts:       o.attempts,
			AttemptTimeout: o.attemptTimeout,
			Logger:         o.logger.Named("orchestrator"),
			Metrics:        o.metrics,
			Sink:           o.sink,
		},
		telemetry: o.telemetry,
		nodeType:  o.nodeType,
	}, nil
}

// NewForEnvironment creates a client for a known deployment.
func NewForEnvironment(env Environment, opts ...Option) (*Client, error) {
	url := env.OrchestratorURL()
	if url == "" {
		return nil, configurationError("unknown environment %q", env)
	}
	return New(url, opts...)
}

// FetchTask asks the orchestrator for a task for nodeID.
func (c *Client) FetchTask(ctx context.Context, nodeID string) (*Task, error) {
	req := FetchTaskRequest{
		NodeID:   nodeID,
		NodeType: c.nodeType,
	}
	resp, err := c.dispatcher.Dispatch(ctx, PathFetchTask, http.MethodPost, req)
	if err != nil {
		return nil, err
	}
	task, ok := resp.(*Task)
	if !ok {
		return nil, protocolError("fetch task: unexpected response %T", resp)
	}
	return task, nil
}

// SubmitResult submits result and its hash for nodeID, together with a fresh
// telemetry snapshot. The orchestrator's acknowledgement carries no data.
func (c *Client) SubmitResult(ctx context.Context, nodeID, resultHash string, result []byte) error {
	var tel *Telemetry
	if c.telemetry != nil {
		tel = c.telemetry.Telemetry(ctx).Clone()
	}
	req := SubmitResultRequest{
		NodeID:     nodeID,
		NodeType:   c.nodeType,
		ResultHash: resultHash,
		Result:     result,
		Telemetry:  tel,
	}
	_, err := c.dispatcher.Dispatch(ctx, PathSubmitResult, http.MethodPost, req)
	return err
}

// Close releases the transport.
func (c *Client) Close() error {
	return c.dispatcher.Transport.Close()
}
