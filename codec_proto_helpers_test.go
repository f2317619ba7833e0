// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// decodeRequest is the orchestrator side of Encode, used by test servers.
func (protoCodec) decodeRequest(b []byte, kind Kind) (Request, error) {
	var (
		nodeID, hash string
		nodeType     NodeType
		proof        []byte
		tel          *Telemetry
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == fieldNodeID && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			nodeID, b = v, b[n:]
		case num == fieldNodeType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			nodeType, b = NodeType(int32(v)), b[n:]
		case num == fieldProofHash && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			hash, b = v, b[n:]
		case num == fieldProof && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			proof, b = append([]byte(nil), v...), b[n:]
		case num == fieldNodeTelemetry && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			t, err := decodeTelemetry(v)
			if err != nil {
				return nil, err
			}
			tel, b = t, b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}

	switch kind {
	case KindFetchTask:
		return FetchTaskRequest{NodeID: nodeID, NodeType: nodeType}, nil
	case KindSubmitResult:
		return SubmitResultRequest{
			NodeID:     nodeID,
			NodeType:   nodeType,
			ResultHash: hash,
			Result:     proof,
			Telemetry:  tel,
		}, nil
	default:
		return nil, fmt.Errorf("unknown request kind %d", kind)
	}
}

func decodeTelemetry(b []byte) (*Telemetry, error) {
	t := &Telemetry{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		if num == fieldLocation && typ == protowire.BytesType {
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			t.Location, b = String(v), b[n:]
			continue
		}
		if typ == protowire.VarintType && num >= fieldFlopsPerSec && num <= fieldMemoryCapacity {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			switch num {
			case fieldFlopsPerSec:
				t.FlopsPerSec = Int32(int32(v))
			case fieldMemoryUsed:
				t.MemoryUsed = Int32(int32(v))
			case fieldMemoryCapacity:
				t.MemoryCapacity = Int32(int32(v))
			}
			b = b[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
	}
	return t, nil
}
