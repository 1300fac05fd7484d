package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taskapi/internal/flagx"
	"github.com/dmitrijs2005/taskapi/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations use
// timex.Duration so "24h" and integer nanoseconds both parse. Pointer fields
// distinguish "absent" from an explicit zero value.
type JsonConfig struct {
	EndpointAddrHTTP            string          `json:"endpoint_addr_http"`
	EndpointAddrGRPC            *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string          `json:"database_dsn"`
	SecretKey                   string          `json:"secret_key"`
	PasswordHashCost            int             `json:"password_hash_cost"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	RedisAddr                   string          `json:"redis_addr"`
	RedisPassword               string          `json:"redis_password"`
	RedisDB                     *int            `json:"redis_db"`
	CORSAllowedOrigins          []string        `json:"cors_allowed_origins"`
	AuthRateLimitRPS            *float64        `json:"auth_rate_limit_rps"`
	AuthRateLimitBurst          *int            `json:"auth_rate_limit_burst"`
	TrustProxyHeaders           *bool           `json:"trust_proxy_headers"`
	LogLevel                    string          `json:"log_level"`
}

// parseJson loads the file named by -c / -config into config. Only keys
// present in the file are applied. No flag means nothing to load; an
// unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlags().JSON
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.EndpointAddrGRPC != nil {
		config.EndpointAddrGRPC = *c.EndpointAddrGRPC
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.PasswordHashCost != 0 {
		config.PasswordHashCost = c.PasswordHashCost
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RedisAddr != "" {
		config.RedisAddr = c.RedisAddr
	}
	if c.RedisPassword != "" {
		config.RedisPassword = c.RedisPassword
	}
	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	if c.CORSAllowedOrigins != nil {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	if c.AuthRateLimitRPS != nil {
		config.AuthRateLimitRPS = *c.AuthRateLimitRPS
	}
	if c.AuthRateLimitBurst != nil {
		config.AuthRateLimitBurst = *c.AuthRateLimitBurst
	}
	if c.TrustProxyHeaders != nil {
		config.TrustProxyHeaders = *c.TrustProxyHeaders
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
