// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

// Kind identifies one of the two orchestrator operations.
type Kind uint8

const (
	KindFetchTask Kind = iota + 1
	KindSubmitResult
)

func (k Kind) String() string {
	switch k {
	case KindFetchTask:
		return "fetch_task"
	case KindSubmitResult:
		return "submit_result"
	default:
		return "unknown"
	}
}

// NodeType tells the orchestrator which kind of prover is calling.
type NodeType int32

const (
	NodeTypeWebProver NodeType = 0
	NodeTypeCLIProver NodeType = 1
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeWebProver:
		return "WEB_PROVER"
	case NodeTypeCLIProver:
		return "CLI_PROVER"
	default:
		return "UNKNOWN"
	}
}

// Request is a request envelope. The set of implementations is closed:
// FetchTaskRequest and SubmitResultRequest.
type Request interface {
	Kind() Kind
	isRequest()
}

// Response is a decoded response envelope: *Task or Ack.
type Response interface {
	Kind() Kind
	isResponse()
}

// FetchTaskRequest asks the orchestrator for the next task.
type FetchTaskRequest struct {
	NodeID   string
	NodeType NodeType
}

func (FetchTaskRequest) Kind() Kind { return KindFetchTask }
func (FetchTaskRequest) isRequest() {}

// SubmitResultRequest delivers a computed result (proof) for a task.
type SubmitResultRequest struct {
	NodeID     string
	NodeType   NodeType
	ResultHash string
	Result     []byte

	// Telemetry is optional. A non-nil value is sent even if all of its
	// fields are nil.
	Telemetry *Telemetry
}

func (SubmitResultRequest) Kind() Kind { return KindSubmitResult }
func (SubmitResultRequest) isRequest() {}

// Telemetry is a snapshot of local resources attached to a submission.
// Nil fields are absent on the wire.
type Telemetry struct {
	FlopsPerSec    *int32
	MemoryUsed     *int32 // MB
	MemoryCapacity *int32 // MB
	Location       *string
}

// Clone returns a deep copy so the request owns its telemetry outright.
func (t *Telemetry) Clone() *Telemetry {
	if t == nil {
		return nil
	}
	c := &Telemetry{}
	if t.FlopsPerSec != nil {
		c.FlopsPerSec = Int32(*t.FlopsPerSec)
	}
	if t.MemoryUsed != nil {
		c.MemoryUsed = Int32(*t.MemoryUsed)
	}
	if t.MemoryCapacity != nil {
		c.MemoryCapacity = Int32(*t.MemoryCapacity)
	}
	if t.Location != nil {
		c.Location = String(*t.Location)
	}
	return c
}

// Task is the orchestrator's answer to a fetch.
type Task struct {
	TaskID       string
	ProgramID    string
	PublicInputs []byte
}

func (*Task) Kind() Kind  { return KindFetchTask }
func (*Task) isResponse() {}

// Ack acknowledges a submission. Size is the length of the acknowledgement
// body; zero is the normal case.
type Ack struct {
	Size int
}

func (Ack) Kind() Kind  { return KindSubmitResult }
func (Ack) isResponse() {}

// Int32 returns a pointer to v.
func Int32(v int32) *int32 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
