// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultAttempts is the race width used by the client.
	DefaultAttempts = 20

	// DefaultAttemptTimeout bounds a single attempt.
	DefaultAttemptTimeout = 30 * time.Second
)

// Dispatcher races one logical request as several identical attempts and
// returns the first one that succeeds.
//
// Every attempt is a real request. A dispatch with Attempts = 20 can put up
// to 20 copies of the same request on the wire even though only one answer
// is used. This trades server load for latency and availability against an
// unreliable or rate-limiting orchestrator, and relies on every request
// being idempotent.
type Dispatcher struct {
	BaseURL        string
	Transport      Transport
	Codec          Codec
	Attempts       int
	AttemptTimeout time.Duration // zero disables the per-attempt deadline
	Logger         *zap.Logger
	Metrics        *Metrics
	Sink           DebugSink
}

// Dispatch encodes req once and races d.Attempts sends of it to path.
// The encoded bytes are shared read-only by all attempts.
func (d *Dispatcher) Dispatch(ctx context.Context, path, method string, req Request) (Response, error) {
	if !supportedMethod(method) {
		return nil, configurationError("unsupported HTTP method %q", method)
	}
	if d.Attempts <= 0 {
		return nil, configurationError("race needs at least one attempt, got %d", d.Attempts)
	}
	if d.Transport == nil {
		return nil, configurationError("dispatcher has no transport")
	}
	if req == nil {
		return nil, configurationError("nil request")
	}

	codec := d.Codec
	if codec == nil {
		codec = defaultCodec
	}
	logger := d.logger().With(
		zap.String("race_id", uuid.NewString()),
		zap.Stringer("operation", req.Kind()),
		zap.String("path", path),
	)

	payload, err := codec.Encode(req)
	if err != nil {
		return nil, err
	}
	d.capture(logger, path, req, payload)

	url := strings.TrimRight(d.BaseURL, "/") + path
	kind := req.Kind()

	logger.Debug("dispatching race",
		zap.Int("attempts", d.Attempts),
		zap.Int("payload_bytes", len(payload)),
	)

	start := time.Now()
	resp, stats, err := race(ctx, d.Attempts, func(ctx context.Context, attempt int) (Response, error) {
		return d.attempt(ctx, url, method, payload, codec, kind)
	})
	elapsed := time.Since(start)
	d.Metrics.observeRace(kind, stats, err, elapsed)

	if err != nil {
		logger.Warn("race failed",
			zap.Int("failures", stats.Failures),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}
	logger.Debug("race won",
		zap.Int("attempt", stats.Winner),
		zap.Int("failures_before_win", stats.Failures),
		zap.Duration("elapsed", elapsed),
	)
	return resp, nil
}

// attempt is one racer: send, classify, decode.
func (d *Dispatcher) attempt(ctx context.Context, url, method string, payload []byte, codec Codec, kind Kind) (Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sendCtx := ctx
	if d.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.AttemptTimeout)
		defer cancel()
	}

	status, body, err := d.Transport.Send(sendCtx, url, method, payload)
	// the race may have been decided while we were on the network
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err := Classify(status, body, err); err != nil {
		return nil, err
	}

	resp, err := codec.Decode(body, kind)
	if err != nil {
		return nil, asProtocol(err)
	}
	return resp, nil
}

func (d *Dispatcher) capture(logger *zap.Logger, path string, req Request, payload []byte) {
	if d.Sink == nil {
		return
	}
	go func() {
		if err := d.Sink.Capture(path, req, payload); err != nil {
			logger.Warn("debug capture failed", zap.Error(err))
		}
	}()
}

func (d *Dispatcher) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
