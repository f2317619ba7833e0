// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileSinkCapture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "debug")
	sink, err := NewFileSink(dir)
	require.NoError(t, err)

	req := SubmitResultRequest{
		NodeID:     "node-1",
		NodeType:   NodeTypeCLIProver,
		ResultHash: "abc",
		Result:     []byte{1, 2, 3, 4},
		Telemetry:  &Telemetry{Location: String("US")},
	}
	payload, err := Proto().Encode(req)
	require.NoError(t, err)
	require.NoError(t, sink.Capture(PathSubmitResult, req, payload))

	raw, err := os.ReadFile(filepath.Join(dir, "tasks_submit.bin"))
	require.NoError(t, err)
	require.Equal(t, payload, raw)

	text, err := os.ReadFile(filepath.Join(dir, "tasks_submit.json"))
	require.NoError(t, err)

	var record struct {
		Version string        `json:"jsonrpc"`
		Method  string        `json:"method"`
		Params  requestRecord `json:"params"`
	}
	require.NoError(t, json.Unmarshal(text, &record))
	require.Equal(t, "2.0", record.Version)
	require.Equal(t, PathSubmitResult, record.Method)
	require.Equal(t, "submit_result", record.Params.Kind)
	require.Equal(t, "CLI_PROVER", record.Params.NodeType)
	require.Equal(t, 4, record.Params.ResultSize)
	require.Equal(t, "US", *record.Params.Telemetry.Location)
	require.Nil(t, record.Params.Telemetry.FlopsPerSec)
}

func TestSinkName(t *testing.T) {
	require.Equal(t, "tasks", sinkName(PathFetchTask))
	require.Equal(t, "tasks_submit", sinkName(PathSubmitResult))
	require.Equal(t, "root", sinkName("/"))
}
