// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"errors"
	"fmt"
)

// Category classifies a failed request by where it broke.
type Category string

const (
	// CategoryConnection means the transport could not reach the orchestrator.
	CategoryConnection Category = "connection"

	// CategoryServer means the orchestrator answered with a non-2xx status.
	CategoryServer Category = "server"

	// CategoryProtocol means a 2xx body could not be decoded.
	CategoryProtocol Category = "protocol"

	// CategoryConfiguration means the request could never have been sent
	// (unsupported method, zero attempts).
	CategoryConfiguration Category = "configuration"

	// CategoryAggregate means every attempt of a race failed.
	CategoryAggregate Category = "aggregate"
)

func (c Category) String() string {
	return string(c)
}

// IsRetryable reports whether another attempt may succeed.
func (c Category) IsRetryable() bool {
	switch c {
	case CategoryConnection, CategoryServer:
		return true
	default:
		return false
	}
}

// Sentinels matched by errors.Is against any *Error of the same category.
var (
	ErrConnection        = errors.New("orchestrator: connection error")
	ErrServer            = errors.New("orchestrator: server error")
	ErrProtocol          = errors.New("orchestrator: protocol error")
	ErrConfiguration     = errors.New("orchestrator: configuration error")
	ErrAllAttemptsFailed = errors.New("orchestrator: all attempts failed")
)

var sentinels = map[Category]error{
	CategoryConnection:    ErrConnection,
	CategoryServer:        ErrServer,
	CategoryProtocol:      ErrProtocol,
	CategoryConfiguration: ErrConfiguration,
	CategoryAggregate:     ErrAllAttemptsFailed,
}

// Error is the single error type surfaced to callers.
type Error struct {
	Category Category

	// Status is the HTTP status for CategoryServer, zero otherwise.
	Status int

	// Message is safe to show to a user; HTML error pages never end up here.
	Message string

	// Attempts is the race width for CategoryAggregate.
	Attempts int

	// Err is the underlying cause. For CategoryAggregate it is one
	// representative attempt failure.
	Err error
}

func (e *Error) Error() string {
	switch e.Category {
	case CategoryServer:
		return fmt.Sprintf("orchestrator: server error: status %d: %s", e.Status, e.Message)
	case CategoryAggregate:
		if e.Err != nil {
			return fmt.Sprintf("orchestrator: all %d attempts failed: %v", e.Attempts, e.Err)
		}
		return fmt.Sprintf("orchestrator: all %d attempts failed", e.Attempts)
	}

	msg := "orchestrator: " + string(e.Category) + " error"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e's category.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Category]
	return ok && target == s
}

// CategoryOf returns the category of the outermost *Error in err's chain,
// or the empty category when err carries none.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return ""
}

func connectionError(err error) error {
	return &Error{Category: CategoryConnection, Err: err}
}

func protocolError(format string, args ...interface{}) error {
	return &Error{Category: CategoryProtocol, Message: fmt.Sprintf(format, args...)}
}

func configurationError(format string, args ...interface{}) error {
	return &Error{Category: CategoryConfiguration, Message: fmt.Sprintf(format, args...)}
}

// asProtocol tags a decode failure from any Codec as CategoryProtocol.
func asProtocol(err error) error {
	if CategoryOf(err) == CategoryProtocol {
		return err
	}
	return &Error{Category: CategoryProtocol, Err: err}
}
