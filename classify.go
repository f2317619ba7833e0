// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxMessageLen bounds the server message carried by an *Error.
const maxMessageLen = 256

var htmlRoot = []byte("<html")

// Classify maps the raw outcome of one transport call to an error category.
// It returns nil for a 2xx response; decoding that body is the caller's job
// and a failure there is CategoryProtocol.
//
// Transport errors already tagged as configuration or protocol keep their
// category. Classify performs no I/O.
func Classify(status int, body []byte, transportErr error) error {
	if transportErr != nil {
		if errors.Is(transportErr, ErrConfiguration) || errors.Is(transportErr, ErrProtocol) {
			return transportErr
		}
		return connectionError(transportErr)
	}
	if status < 200 || status > 299 {
		return &Error{
			Category: CategoryServer,
			Status:   status,
			Message:  serverMessage(status, body),
		}
	}
	return nil
}

// serverMessage returns a printable message for a non-2xx body. HTML error
// pages, binary and empty bodies collapse to the bare status code.
func serverMessage(status int, body []byte) string {
	code := strconv.Itoa(status)
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !utf8.Valid(trimmed) || looksLikeHTML(trimmed) {
		return code
	}
	msg := string(trimmed)
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen]
		// don't split a rune
		for !utf8.ValidString(msg) {
			msg = msg[:len(msg)-1]
		}
	}
	return strings.TrimSpace(msg)
}

func looksLikeHTML(body []byte) bool {
	return bytes.Contains(bytes.ToLower(body), htmlRoot)
}
