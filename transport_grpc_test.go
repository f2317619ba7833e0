//go:build grpc

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGRPCDialTarget(t *testing.T) {
	tests := []struct {
		baseURL  string
		target   string
		protocol string
	}{
		{"https://beta.orchestrator.nexus.xyz", "beta.orchestrator.nexus.xyz:443", "tls"},
		{"https://beta.orchestrator.nexus.xyz:8443", "beta.orchestrator.nexus.xyz:8443", "tls"},
		{"http://localhost:50505", "localhost:50505", "insecure"},
		{"localhost:50505", "localhost:50505", "insecure"},
	}
	for _, tt := range tests {
		target, creds := grpcDialTarget(tt.baseURL)
		require.Equal(t, tt.target, target, tt.baseURL)
		require.Equal(t, tt.protocol, creds.Info().SecurityProtocol, tt.baseURL)
	}
}

func TestGRPCTransportRegistered(t *testing.T) {
	require.True(t, HasTransport(TransportGRPC))

	c, err := New("https://beta.orchestrator.nexus.xyz", WithTransport(TransportGRPC))
	require.NoError(t, err)
	require.NoError(t, c.Close())
}
