// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	json2 "github.com/gorilla/rpc/v2/json2"
)

// DebugSink receives every encoded request before it is raced. Errors are
// logged by the dispatcher and never change the outcome of a call.
type DebugSink interface {
	Capture(path string, req Request, payload []byte) error
}

// FileSink writes the latest request of each operation to Dir, once as a
// readable JSON-RPC 2.0 call record (<name>.json) and once as the raw
// payload (<name>.bin). Files are overwritten on every capture.
type FileSink struct {
	Dir string

	mu sync.Mutex
}

// NewFileSink creates dir if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("debug sink: %w", err)
	}
	return &FileSink{Dir: dir}, nil
}

func (s *FileSink) Capture(path string, req Request, payload []byte) error {
	record, err := json2.EncodeClientRequest(path, requestView(req))
	if err != nil {
		return fmt.Errorf("debug sink: encode record: %w", err)
	}

	base := filepath.Join(s.Dir, sinkName(path))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(base+".json", record, 0o644); err != nil {
		return fmt.Errorf("debug sink: %w", err)
	}
	if err := os.WriteFile(base+".bin", payload, 0o644); err != nil {
		return fmt.Errorf("debug sink: %w", err)
	}
	return nil
}

// sinkName turns "/tasks/submit" into "tasks_submit".
func sinkName(path string) string {
	name := strings.ReplaceAll(strings.Trim(path, "/"), "/", "_")
	if name == "" {
		return "root"
	}
	return name
}

type telemetryView struct {
	FlopsPerSec    *int32  `json:"flops_per_sec,omitempty"`
	MemoryUsed     *int32  `json:"memory_used,omitempty"`
	MemoryCapacity *int32  `json:"memory_capacity,omitempty"`
	Location       *string `json:"location,omitempty"`
}

type requestRecord struct {
	Kind       string         `json:"kind"`
	NodeID     string         `json:"node_id"`
	NodeType   string         `json:"node_type"`
	ResultHash string         `json:"proof_hash,omitempty"`
	ResultSize int            `json:"proof_size,omitempty"`
	Telemetry  *telemetryView `json:"node_telemetry,omitempty"`
}

func requestView(req Request) requestRecord {
	switch r := req.(type) {
	case FetchTaskRequest:
		return requestRecord{Kind: r.Kind().String(), NodeID: r.NodeID, NodeType: r.NodeType.String()}
	case *FetchTaskRequest:
		return requestView(*r)
	case SubmitResultRequest:
		v := requestRecord{
			Kind:       r.Kind().String(),
			NodeID:     r.NodeID,
			NodeType:   r.NodeType.String(),
			ResultHash: r.ResultHash,
			ResultSize: len(r.Result),
		}
		if t := r.Telemetry; t != nil {
			v.Telemetry = &telemetryView{
				FlopsPerSec:    t.FlopsPerSec,
				MemoryUsed:     t.MemoryUsed,
				MemoryCapacity: t.MemoryCapacity,
				Location:       t.Location,
			}
		}
		return v
	case *SubmitResultRequest:
		return requestView(*r)
	default:
		return requestRecord{Kind: "unknown"}
	}
}
