//go:build grpc

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

func init() {
	// Register gRPC transport when build tag is enabled
	registerTransport(TransportGRPC, newGRPCTransport)
}

// grpcMethods maps HTTP paths to the orchestrator's gRPC methods.
var grpcMethods = map[string]string{
	PathFetchTask:    "/nexus.orchestrator.Orchestrator/GetProofTask",
	PathSubmitResult: "/nexus.orchestrator.Orchestrator/SubmitProof",
}

var grpcStatusToHTTP = map[codes.Code]int{
	codes.InvalidArgument:    http.StatusBadRequest,
	codes.FailedPrecondition: http.StatusBadRequest,
	codes.Unauthenticated:    http.StatusUnauthorized,
	codes.PermissionDenied:   http.StatusForbidden,
	codes.NotFound:           http.StatusNotFound,
	codes.AlreadyExists:      http.StatusConflict,
	codes.ResourceExhausted:  http.StatusTooManyRequests,
	codes.Unimplemented:      http.StatusNotImplemented,
	codes.Internal:           http.StatusInternalServerError,
	codes.Unknown:            http.StatusInternalServerError,
	codes.DataLoss:           http.StatusInternalServerError,
}

// grpcTransport sends the already-encoded envelope as the unary request
// message. One ClientConn is shared by all attempts.
type grpcTransport struct {
	conn *grpc.ClientConn
}

func newGRPCTransport(o *options) (Transport, error) {
	target, creds := grpcDialTarget(o.grpcTarget)
	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(rawCodec{})),
	)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &grpcTransport{conn: conn}, nil
}

// grpcDialTarget turns a base URL into a dial target. https URLs get TLS
// and port 443 unless one is given; anything else is dialed in plaintext.
func grpcDialTarget(baseURL string) (string, credentials.TransportCredentials) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return baseURL, insecure.NewCredentials()
	}
	if u.Scheme != "https" {
		return u.Host, insecure.NewCredentials()
	}
	target := u.Host
	if u.Port() == "" {
		target = net.JoinHostPort(u.Hostname(), "443")
	}
	return target, credentials.NewTLS(&tls.Config{
		ServerName: u.Hostname(),
		MinVersion: tls.VersionTLS12,
	})
}

func (t *grpcTransport) Send(ctx context.Context, rawURL, method string, body []byte) (int, []byte, error) {
	if !supportedMethod(method) {
		return 0, nil, configurationError("unsupported HTTP method %q", method)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, nil, configurationError("bad url %q: %v", rawURL, err)
	}
	fullMethod, ok := grpcMethods[strings.TrimRight(u.Path, "/")]
	if !ok {
		return 0, nil, configurationError("no gRPC method for path %q", u.Path)
	}

	var resp []byte
	err = t.conn.Invoke(ctx, fullMethod, body, &resp)
	if err == nil {
		return http.StatusOK, resp, nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return 0, nil, err
	}
	code, mapped := grpcStatusToHTTP[st.Code()]
	if !mapped {
		// Unavailable, DeadlineExceeded, Canceled and friends: no usable answer
		return 0, nil, err
	}
	return code, []byte(st.Message()), nil
}

func (t *grpcTransport) Close() error {
	return t.conn.Close()
}

// rawCodec passes pre-encoded protobuf bytes through unchanged.
type rawCodec struct{}

func (rawCodec) Marshal(v interface{}) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case *[]byte:
		return *b, nil
	default:
		return nil, fmt.Errorf("raw codec: cannot marshal %T", v)
	}
}

func (rawCodec) Unmarshal(data []byte, v interface{}) error {
	b, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("raw codec: cannot unmarshal into %T", v)
	}
	*b = append((*b)[:0], data...)
	return nil
}

func (rawCodec) Name() string { return "proto" }
