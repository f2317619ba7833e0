// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestHTTPTransportPost(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != ContentType {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write(append([]byte("echo:"), body...))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(nil)
	defer tr.Close()

	status, body, err := tr.Send(ctx, srv.URL+"/tasks", http.MethodPost, []byte("payload"))
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, status)
	require.Equal(t, "echo:payload", string(body))
}

func TestHTTPTransportGetHasNoBody(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if r.Method != http.MethodGet || len(body) != 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	status, _, err := NewHTTPTransport(srv.Client()).Send(ctx, srv.URL, http.MethodGet, []byte("ignored"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
}

func TestHTTPTransportNon2xxIsNotATransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "<html>down</html>", http.StatusInternalServerError)
	}))
	defer srv.Close()

	status, body, err := NewHTTPTransport(nil).Send(context.Background(), srv.URL, http.MethodPost, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, status)

	var e *Error
	require.ErrorAs(t, Classify(status, body, err), &e)
	require.Equal(t, "500", e.Message)
}

func TestHTTPTransportUnsupportedMethod(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	for _, method := range []string{http.MethodPut, http.MethodDelete, "post", ""} {
		_, _, err := NewHTTPTransport(nil).Send(context.Background(), srv.URL, method, nil)
		require.ErrorIs(t, err, ErrConfiguration, method)
		require.ErrorIs(t, Classify(0, nil, err), ErrConfiguration)
	}
	require.Zero(t, hits.Load())
}

func TestHTTPTransportCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := NewHTTPTransport(nil).Send(ctx, srv.URL, http.MethodPost, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.ErrorIs(t, Classify(0, nil, err), ErrConnection)
}

func TestHTTPTransportOversizedBody(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// a complete task prefix ends exactly at the read limit, task_id follows
	var body []byte
	body = protowire.AppendTag(body, fieldProgramID, protowire.BytesType)
	body = protowire.AppendString(body, "fib")
	body = protowire.AppendTag(body, fieldPublicInputs, protowire.BytesType)
	inputs := maxResponseSize - len(body) - 4
	body = protowire.AppendVarint(body, uint64(inputs))
	body = append(body, make([]byte, inputs)...)
	require.Len(t, body, maxResponseSize)
	body = protowire.AppendTag(body, fieldTaskID, protowire.BytesType)
	body = protowire.AppendString(body, "task-42")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	_, _, err := NewHTTPTransport(nil).Send(ctx, srv.URL, http.MethodPost, nil)
	require.ErrorIs(t, err, ErrProtocol)
	require.ErrorIs(t, Classify(0, nil, err), ErrProtocol)

	c := newTestClient(t, srv.URL, WithAttempts(1), WithAttemptTimeout(0))
	task, err := c.FetchTask(ctx, "node-1")
	require.Nil(t, task)
	require.ErrorIs(t, err, ErrAllAttemptsFailed)
	require.ErrorIs(t, err, ErrProtocol)
}

func TestTransportRegistry(t *testing.T) {
	require.True(t, HasTransport(TransportHTTP))
	require.Contains(t, AvailableTransports(), TransportHTTP)
	require.False(t, HasTransport("carrier-pigeon"))
}
