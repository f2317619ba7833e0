// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSystemTelemetry(t *testing.T) {
	tel := SystemTelemetry{}.Telemetry(context.Background())
	require.NotNil(t, tel.Location)
	require.Equal(t, DefaultLocation, *tel.Location)
	require.NotNil(t, tel.FlopsPerSec)
	require.Positive(t, *tel.FlopsPerSec)
	require.NotNil(t, tel.MemoryUsed)
	if tel.MemoryCapacity != nil {
		require.GreaterOrEqual(t, *tel.MemoryCapacity, *tel.MemoryUsed)
	}

	tel = SystemTelemetry{Location: "EU"}.Telemetry(context.Background())
	require.Equal(t, "EU", *tel.Location)
}

func TestSystemTelemetrySkipsFlopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tel := SystemTelemetry{}.Telemetry(ctx)
	require.Nil(t, tel.FlopsPerSec)
	require.NotNil(t, tel.MemoryUsed)
}

func TestStaticTelemetryIsCopied(t *testing.T) {
	src := StaticTelemetry{MemoryUsed: Int32(1)}
	a := src.Telemetry(context.Background())
	*a.MemoryUsed = 99
	b := src.Telemetry(context.Background())
	require.Equal(t, int32(1), *b.MemoryUsed)
	require.Nil(t, b.Location)
}

func TestSaturateInt32(t *testing.T) {
	require.Equal(t, int32(math.MaxInt32), saturateInt32(1e12))
	require.Equal(t, int32(math.MinInt32), saturateInt32(-1e12))
	require.Equal(t, int32(0), saturateInt32(math.NaN()))
	require.Equal(t, int32(42), saturateInt32(42.9))
}

func TestTelemetryCloneNil(t *testing.T) {
	var tel *Telemetry
	require.Nil(t, tel.Clone())
}
