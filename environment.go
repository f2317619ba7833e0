// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"fmt"
	"strings"
)

// Environment selects an orchestrator deployment.
type Environment string

const (
	EnvironmentLocal   Environment = "local"
	EnvironmentDev     Environment = "dev"
	EnvironmentStaging Environment = "staging"
	EnvironmentBeta    Environment = "beta"
)

var orchestratorURLs = map[Environment]string{
	EnvironmentLocal:   "http://localhost:50505",
	EnvironmentDev:     "https://dev.orchestrator.nexus.xyz",
	EnvironmentStaging: "https://staging.orchestrator.nexus.xyz",
	EnvironmentBeta:    "https://beta.orchestrator.nexus.xyz",
}

// Environments lists every known environment.
func Environments() []Environment {
	return []Environment{EnvironmentLocal, EnvironmentDev, EnvironmentStaging, EnvironmentBeta}
}

// ParseEnvironment is case-insensitive.
func ParseEnvironment(s string) (Environment, error) {
	env := Environment(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := orchestratorURLs[env]; !ok {
		return "", fmt.Errorf("unknown environment %q", s)
	}
	return env, nil
}

// OrchestratorURL returns the base URL of the environment's orchestrator,
// or "" for an unknown environment.
func (e Environment) OrchestratorURL() string {
	return orchestratorURLs[e]
}

func (e Environment) String() string {
	return string(e)
}
