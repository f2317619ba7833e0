// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"context"
	"math"
	"runtime"
	"time"

	"github.com/pbnjay/memory"
)

// TelemetrySource supplies the snapshot attached to each submission.
type TelemetrySource interface {
	Telemetry(ctx context.Context) *Telemetry
}

// TelemetryFunc adapts a function to TelemetrySource.
type TelemetryFunc func(ctx context.Context) *Telemetry

func (f TelemetryFunc) Telemetry(ctx context.Context) *Telemetry {
	return f(ctx)
}

// StaticTelemetry always reports the same snapshot.
type StaticTelemetry Telemetry

func (s StaticTelemetry) Telemetry(context.Context) *Telemetry {
	t := Telemetry(s)
	return t.Clone()
}

// DefaultLocation is reported when SystemTelemetry has no location set.
const DefaultLocation = "US"

const (
	mb = 1 << 20

	// flopsIterations sizes the benchmark kernel; each iteration is two
	// floating-point operations.
	flopsIterations = 1 << 22
)

// SystemTelemetry measures the local machine: a FLOPS estimate from a short
// floating-point kernel, memory held by this process and total physical
// memory, both in MB.
type SystemTelemetry struct {
	Location string
}

func (s SystemTelemetry) Telemetry(ctx context.Context) *Telemetry {
	loc := s.Location
	if loc == "" {
		loc = DefaultLocation
	}
	t := &Telemetry{Location: String(loc)}

	if ctx.Err() == nil {
		t.FlopsPerSec = Int32(saturateInt32(MeasureFlops()))
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	t.MemoryUsed = Int32(saturateInt32(float64(ms.Sys / mb)))

	if total := memory.TotalMemory(); total > 0 {
		t.MemoryCapacity = Int32(saturateInt32(float64(total / mb)))
	}
	return t
}

// MeasureFlops runs a fixed multiply-add kernel and returns the observed
// floating-point operations per second.
func MeasureFlops() float64 {
	x, y := 1.0000001, 0.9999999
	acc := 0.0
	start := time.Now()
	for i := 0; i < flopsIterations; i++ {
		acc = acc*x + y
	}
	elapsed := time.Since(start).Seconds()
	sink = acc
	if elapsed <= 0 {
		return math.MaxInt32
	}
	return 2 * flopsIterations / elapsed
}

// sink keeps the kernel from being optimised away.
var sink float64

func saturateInt32(v float64) int32 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	default:
		return int32(v)
	}
}
