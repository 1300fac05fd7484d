package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every environment variable read by the server.
const EnvPrefix = "TASKAPI_"

// parseEnv overlays TASKAPI_* environment variables onto config. Variables
// that are not set leave the current value untouched.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}
}
