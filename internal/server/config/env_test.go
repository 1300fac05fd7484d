package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	t.Setenv("TASKAPI_DATABASE_DSN", "memory://")
	t.Setenv("TASKAPI_ACCESS_TOKEN_VALIDITY", "15m")
	t.Setenv("TASKAPI_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TASKAPI_AUTH_RATE_LIMIT_RPS", "2.5")
	t.Setenv("TASKAPI_TRUST_PROXY_HEADERS", "true")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "memory://", cfg.DatabaseDSN)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 2.5, cfg.AuthRateLimitRPS)
	assert.True(t, cfg.TrustProxyHeaders)
	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP, "unset variables keep current values")
}

func Test_parseEnv_BadValuePanics(t *testing.T) {
	t.Setenv("TASKAPI_PASSWORD_HASH_COST", "lots")

	cfg := &Config{}
	require.Panics(t, func() { parseEnv(cfg) })
}
