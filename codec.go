// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"fmt"
	"sort"
	"sync"
)

// Codec encodes request envelopes and decodes response envelopes.
//
// Decode must never panic: malformed, truncated or hostile input yields an
// error in CategoryProtocol. A zero-length body decodes to Ack{} for
// KindSubmitResult and is an error for KindFetchTask.
type Codec interface {
	Name() string
	Encode(req Request) ([]byte, error)
	Decode(data []byte, kind Kind) (Response, error)
}

// Codec names
const (
	CodecProto = "proto" // protobuf wire format, default
	CodecCBOR  = "cbor"
)

// defaultCodec is used when no codec is specified
var defaultCodec Codec = Proto()

var (
	codecsMu sync.RWMutex
	codecs   = map[string]func() (Codec, error){
		CodecProto: func() (Codec, error) { return Proto(), nil },
		CodecCBOR:  CBOR,
	}
)

// CodecByName returns a fresh codec registered under name.
func CodecByName(name string) (Codec, error) {
	codecsMu.RLock()
	newCodec, ok := codecs[name]
	codecsMu.RUnlock()
	if !ok {
		return nil, configurationError("unknown codec: %s", name)
	}
	c, err := newCodec()
	if err != nil {
		return nil, fmt.Errorf("codec %s: %w", name, err)
	}
	return c, nil
}

// AvailableCodecs returns the registered codec names, sorted.
func AvailableCodecs() []string {
	codecsMu.RLock()
	defer codecsMu.RUnlock()
	result := make([]string, 0, len(codecs))
	for name := range codecs {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
