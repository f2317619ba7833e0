// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	cbor "github.com/fxamacker/cbor/v2"
)

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// CBOR returns a canonical CBOR codec using integer map keys that mirror
// the protobuf field numbers.
func CBOR() (Codec, error) {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, err
	}
	return cborCodec{enc: em, dec: dm}, nil
}

type cborFetchTask struct {
	NodeID   string `cbor:"1,keyasint,omitempty"`
	NodeType int32  `cbor:"2,keyasint,omitempty"`
}

type cborSubmitResult struct {
	NodeID     string         `cbor:"1,keyasint,omitempty"`
	NodeType   int32          `cbor:"2,keyasint,omitempty"`
	ResultHash string         `cbor:"3,keyasint,omitempty"`
	Result     []byte         `cbor:"4,keyasint,omitempty"`
	Telemetry  *cborTelemetry `cbor:"5,keyasint,omitempty"`
}

type cborTelemetry struct {
	FlopsPerSec    *int32  `cbor:"1,keyasint,omitempty"`
	MemoryUsed     *int32  `cbor:"2,keyasint,omitempty"`
	MemoryCapacity *int32  `cbor:"3,keyasint,omitempty"`
	Location       *string `cbor:"4,keyasint,omitempty"`
}

type cborTask struct {
	ProgramID    string `cbor:"1,keyasint,omitempty"`
	PublicInputs []byte `cbor:"2,keyasint,omitempty"`
	TaskID       string `cbor:"3,keyasint,omitempty"`
}

func (c cborCodec) Name() string { return CodecCBOR }

func (c cborCodec) Encode(req Request) ([]byte, error) {
	switch r := req.(type) {
	case FetchTaskRequest:
		return c.enc.Marshal(cborFetchTask{NodeID: r.NodeID, NodeType: int32(r.NodeType)})
	case *FetchTaskRequest:
		return c.Encode(*r)
	case SubmitResultRequest:
		m := cborSubmitResult{
			NodeID:     r.NodeID,
			NodeType:   int32(r.NodeType),
			ResultHash: r.ResultHash,
			Result:     r.Result,
		}
		if t := r.Telemetry; t != nil {
			m.Telemetry = &cborTelemetry{
				FlopsPerSec:    t.FlopsPerSec,
				MemoryUsed:     t.MemoryUsed,
				MemoryCapacity: t.MemoryCapacity,
				Location:       t.Location,
			}
		}
		return c.enc.Marshal(m)
	case *SubmitResultRequest:
		return c.Encode(*r)
	default:
		return nil, configurationError("cbor: unsupported request %T", req)
	}
}

func (c cborCodec) Decode(data []byte, kind Kind) (Response, error) {
	switch kind {
	case KindFetchTask:
		if len(data) == 0 {
			return nil, protocolError("cbor: empty task envelope")
		}
		var m cborTask
		if err := c.dec.Unmarshal(data, &m); err != nil {
			return nil, protocolError("cbor: task: %v", err)
		}
		if m.TaskID == "" && m.ProgramID == "" && len(m.PublicInputs) == 0 {
			return nil, protocolError("cbor: task envelope carries no task")
		}
		return &Task{TaskID: m.TaskID, ProgramID: m.ProgramID, PublicInputs: m.PublicInputs}, nil
	case KindSubmitResult:
		if len(data) == 0 {
			return Ack{}, nil
		}
		if err := c.dec.Wellformed(data); err != nil {
			return nil, protocolError("cbor: ack: %v", err)
		}
		return Ack{Size: len(data)}, nil
	default:
		return nil, configurationError("cbor: unknown response kind %d", kind)
	}
}
