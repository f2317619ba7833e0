// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zap.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zap.WarnLevel, ParseLevel("warning"))
	require.Equal(t, zap.ErrorLevel, ParseLevel("error"))
	require.Equal(t, zap.InfoLevel, ParseLevel("bogus"))
}

func TestSetupFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "client.log")
	logger, err := Setup(Config{Level: "info", Format: "json", Outputs: []string{path}})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("race won", zap.Int("attempt", 7))
	require.NoError(t, logger.Sync())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), `"msg":"race won"`)
	require.Contains(t, string(b), `"attempt":7`)
	require.NotContains(t, string(b), "hidden")
}

func TestSetupRotatedOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotated.log")
	logger, err := Setup(Config{
		Outputs:  []string{path},
		Rotation: RotationConfig{Enable: true, MaxSizeMB: 1},
	})
	require.NoError(t, err)
	logger.Warn("rotating")
	require.NoError(t, logger.Sync())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "rotating")
}
