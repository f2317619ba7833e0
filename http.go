// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// ContentType is set on every request.
	ContentType = "application/octet-stream"

	// maxResponseSize bounds how much of a response body is read.
	maxResponseSize = 64 << 20
)

// newHTTPClient creates the pooled client shared by every attempt. It has no
// Timeout of its own; deadlines come from the per-attempt context.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: DefaultAttempts,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}

// CleanlyCloseBody drains and closes an HTTP response body to prevent
// HTTP/2 GOAWAY errors caused by closing bodies with unread data.
// See: https://github.com/golang/go/issues/46071
func CleanlyCloseBody(body io.ReadCloser) error {
	if body == nil {
		return nil
	}
	// Drain any remaining data to allow connection reuse
	_, _ = io.Copy(io.Discard, body)
	return body.Close()
}

// HTTPTransport sends envelopes over net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps client, or a fresh pooled client when nil.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = newHTTPClient()
	}
	return &HTTPTransport{client: client}
}

func newHTTPTransportFromOptions(o *options) (Transport, error) {
	return NewHTTPTransport(o.httpClient), nil
}

func (t *HTTPTransport) Send(ctx context.Context, url, method string, body []byte) (int, []byte, error) {
	var reqBody io.Reader
	switch method {
	case http.MethodPost:
		reqBody = bytes.NewReader(body)
	case http.MethodGet:
		// GET carries no body
	default:
		return 0, nil, configurationError("unsupported HTTP method %q", method)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, nil, configurationError("failed to create request: %v", err)
	}
	request.Header.Set("Content-Type", ContentType)

	resp, err := t.client.Do(request)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to issue request: %w", err)
	}
	defer CleanlyCloseBody(resp.Body)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > maxResponseSize {
		return 0, nil, protocolError("response body exceeds %d bytes", maxResponseSize)
	}
	return resp.StatusCode, data, nil
}

// Close releases idle pooled connections.
func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
