// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the orchestrator messages.
const (
	// GetProofTaskRequest / SubmitProofRequest
	fieldNodeID        protowire.Number = 1
	fieldNodeType      protowire.Number = 2
	fieldProofHash     protowire.Number = 3
	fieldProof         protowire.Number = 4
	fieldNodeTelemetry protowire.Number = 5

	// GetProofTaskResponse
	fieldProgramID    protowire.Number = 1
	fieldPublicInputs protowire.Number = 2
	fieldTaskID       protowire.Number = 3

	// NodeTelemetry
	fieldFlopsPerSec    protowire.Number = 1
	fieldMemoryUsed     protowire.Number = 2
	fieldMemoryCapacity protowire.Number = 3
	fieldLocation       protowire.Number = 4
)

type protoCodec struct{}

// Proto returns the protobuf wire codec spoken by the orchestrator.
// Scalar fields at their proto3 default are omitted; telemetry fields have
// explicit presence and are written only when set.
func Proto() Codec {
	return protoCodec{}
}

func (protoCodec) Name() string { return CodecProto }

func (p protoCodec) Encode(req Request) ([]byte, error) {
	switch r := req.(type) {
	case FetchTaskRequest:
		return p.appendFetchTask(nil, &r), nil
	case *FetchTaskRequest:
		return p.appendFetchTask(nil, r), nil
	case SubmitResultRequest:
		return p.appendSubmitResult(nil, &r), nil
	case *SubmitResultRequest:
		return p.appendSubmitResult(nil, r), nil
	default:
		return nil, configurationError("proto: unsupported request %T", req)
	}
}

func (protoCodec) appendFetchTask(b []byte, r *FetchTaskRequest) []byte {
	b = appendString(b, fieldNodeID, r.NodeID)
	b = appendEnum(b, fieldNodeType, int32(r.NodeType))
	return b
}

func (p protoCodec) appendSubmitResult(b []byte, r *SubmitResultRequest) []byte {
	b = appendString(b, fieldNodeID, r.NodeID)
	b = appendEnum(b, fieldNodeType, int32(r.NodeType))
	b = appendString(b, fieldProofHash, r.ResultHash)
	if len(r.Result) > 0 {
		b = protowire.AppendTag(b, fieldProof, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Result)
	}
	if r.Telemetry != nil {
		b = protowire.AppendTag(b, fieldNodeTelemetry, protowire.BytesType)
		b = protowire.AppendBytes(b, p.appendTelemetry(nil, r.Telemetry))
	}
	return b
}

func (protoCodec) appendTelemetry(b []byte, t *Telemetry) []byte {
	if t.FlopsPerSec != nil {
		b = appendInt32(b, fieldFlopsPerSec, *t.FlopsPerSec)
	}
	if t.MemoryUsed != nil {
		b = appendInt32(b, fieldMemoryUsed, *t.MemoryUsed)
	}
	if t.MemoryCapacity != nil {
		b = appendInt32(b, fieldMemoryCapacity, *t.MemoryCapacity)
	}
	if t.Location != nil {
		b = protowire.AppendTag(b, fieldLocation, protowire.BytesType)
		b = protowire.AppendString(b, *t.Location)
	}
	return b
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendEnum(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	return appendInt32(b, num, v)
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func (p protoCodec) Decode(data []byte, kind Kind) (Response, error) {
	switch kind {
	case KindFetchTask:
		t, err := p.decodeTask(data)
		if err != nil {
			return nil, err
		}
		return t, nil
	case KindSubmitResult:
		a, err := p.decodeAck(data)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, configurationError("proto: unknown response kind %d", kind)
	}
}

func (protoCodec) decodeTask(b []byte) (*Task, error) {
	if len(b) == 0 {
		return nil, protocolError("proto: empty task envelope")
	}

	t := &Task{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protocolError("proto: task: %v", protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case fieldProgramID, fieldTaskID:
			if typ != protowire.BytesType {
				return nil, protocolError("proto: task: field %d has wire type %d", num, typ)
			}
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, protocolError("proto: task: field %d: %v", num, protowire.ParseError(n))
			}
			if !utf8.ValidString(v) {
				return nil, protocolError("proto: task: field %d: invalid UTF-8", num)
			}
			if num == fieldProgramID {
				t.ProgramID = v
			} else {
				t.TaskID = v
			}
			b = b[n:]
		case fieldPublicInputs:
			if typ != protowire.BytesType {
				return nil, protocolError("proto: task: field %d has wire type %d", num, typ)
			}
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, protocolError("proto: task: field %d: %v", num, protowire.ParseError(n))
			}
			// v aliases the response buffer
			t.PublicInputs = append([]byte(nil), v...)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protocolError("proto: task: field %d: %v", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if t.TaskID == "" && t.ProgramID == "" && len(t.PublicInputs) == 0 {
		return nil, protocolError("proto: task envelope carries no task")
	}
	return t, nil
}

func (protoCodec) decodeAck(b []byte) (Ack, error) {
	size := len(b)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Ack{}, protocolError("proto: ack: %v", protowire.ParseError(n))
		}
		b = b[n:]
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return Ack{}, protocolError("proto: ack: field %d: %v", num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return Ack{Size: size}, nil
}
