// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	for _, env := range Environments() {
		got, err := ParseEnvironment(" " + string(env) + " ")
		require.NoError(t, err)
		require.Equal(t, env, got)
		require.NotEmpty(t, got.OrchestratorURL())
	}

	got, err := ParseEnvironment("BETA")
	require.NoError(t, err)
	require.Equal(t, "https://beta.orchestrator.nexus.xyz", got.OrchestratorURL())

	_, err = ParseEnvironment("prod")
	require.Error(t, err)
	require.Empty(t, Environment("prod").OrchestratorURL())
}
