// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package orchestrator is a client for the prover task orchestrator.
//
// It speaks exactly two operations, both as binary envelopes over HTTP:
//
//	POST /tasks         fetch a task     (FetchTaskRequest  -> *Task)
//	POST /tasks/submit  submit a result  (SubmitResultRequest -> Ack)
//
// # Racing
//
// The orchestrator is unreliable and rate limits aggressively, so every call
// is sent as several identical concurrent attempts and the first successful
// response wins:
//
//	client, err := orchestrator.NewForEnvironment(orchestrator.EnvironmentBeta,
//	    orchestrator.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	task, err := client.FetchTask(ctx, nodeID)
//
// With the default of 20 attempts a single call can put 20 requests on the
// wire. Both operations must therefore be idempotent on the server. Losing
// attempts are cancelled through their context as soon as a winner is known.
// Each attempt is bounded by WithAttemptTimeout; the caller's ctx bounds the
// whole race.
//
// # Errors
//
// Callers see either a value or a single *Error. Per-attempt failures stay
// inside the race unless all of them fail, in which case the error matches
// ErrAllAttemptsFailed and wraps one representative cause:
//
//	if errors.Is(err, orchestrator.ErrAllAttemptsFailed) {
//	    var e *orchestrator.Error
//	    errors.As(errors.Unwrap(err), &e) // e.g. CategoryServer, e.Status == 429
//	}
//
// # Architecture
//
//   - envelope.go: request/response envelopes and telemetry
//   - codec.go, codec_proto.go, codec_cbor.go: envelope codecs (protobuf wire by default)
//   - transport.go, http.go: Transport interface, registry and the HTTP adapter
//   - transport_grpc.go: gRPC transport (requires -tags grpc)
//   - classify.go, errors.go: error categories and outcome classification
//   - race.go, dispatcher.go: first-success race and the dispatcher built on it
//   - client.go: Client façade
//   - telemetry.go, environment.go, metrics.go, debug.go: collaborators
package orchestrator
