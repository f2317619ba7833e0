// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"context"
	"net/http"
	"sort"
	"sync"
)

// Transport performs exactly one call against the orchestrator. It does not
// retry and enforces no deadline of its own; both come from the caller's ctx.
//
// Implementations must be safe for concurrent use: a race shares one
// Transport across all of its attempts.
type Transport interface {
	// Send issues method against url with body and returns the status code
	// and response bytes. A non-nil error means no usable response was
	// received. Unsupported methods fail with ErrConfiguration before any I/O.
	Send(ctx context.Context, url, method string, body []byte) (int, []byte, error)

	// Close releases pooled connections.
	Close() error
}

// Transport types
const (
	TransportHTTP = "http" // plain HTTP/1.1 or HTTP/2, default
	TransportGRPC = "grpc" // gRPC, requires build tag
)

// DefaultTransport is the default transport type (HTTP)
const DefaultTransport = TransportHTTP

// supportedMethod reports whether method is one of the two methods the
// orchestrator protocol uses.
func supportedMethod(method string) bool {
	return method == http.MethodPost || method == http.MethodGet
}

type transportFunc func(o *options) (Transport, error)

var (
	transportsMu sync.RWMutex
	transports   = map[string]transportFunc{
		TransportHTTP: newHTTPTransportFromOptions,
	}
)

// registerTransport registers a new transport (used by build tags)
func registerTransport(name string, fn transportFunc) {
	transportsMu.Lock()
	defer transportsMu.Unlock()
	transports[name] = fn
}

func lookupTransport(name string) (transportFunc, bool) {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	fn, ok := transports[name]
	return fn, ok
}

// AvailableTransports returns list of available transport types
func AvailableTransports() []string {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	result := make([]string, 0, len(transports))
	for name := range transports {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// HasTransport checks if a transport is available
func HasTransport(name string) bool {
	_, ok := lookupTransport(name)
	return ok
}
