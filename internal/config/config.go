package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/layer-3/rampgate/core"
)

// Config captures runtime configuration for the onramp session service.
// Missing required values are a startup-time fatal error, never a
// per-request one.
type Config struct {
	ListenAddress      string
	Environment        core.Environment
	ProviderKeyID      string
	ProviderPrivateKey string
	TokenEndpoint      string
	FallbackSecret     string
	DefaultRedirectURL string
	RedisURL           string
}

const (
	envListen         = "RAMPGATE_LISTEN"
	envEnvironment    = "RAMPGATE_ENV"
	envKeyID          = "RAMPGATE_PROVIDER_KEY_ID"
	envPrivateKey     = "RAMPGATE_PROVIDER_PRIVATE_KEY"
	envTokenEndpoint  = "RAMPGATE_TOKEN_ENDPOINT"
	envFallbackSecret = "RAMPGATE_FALLBACK_SECRET"
	envRedirectURL    = "RAMPGATE_REDIRECT_URL"
	envRedisURL       = "RAMPGATE_REDIS_URL"
)

const defaultTokenEndpoint = "https://api.developer.coinbase.com/onramp/v1/token"

// Load resolves configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddress:      getenvDefault(envListen, ":9000"),
		Environment:        core.EnvironmentSandbox,
		ProviderKeyID:      os.Getenv(envKeyID),
		ProviderPrivateKey: os.Getenv(envPrivateKey),
		TokenEndpoint:      getenvDefault(envTokenEndpoint, defaultTokenEndpoint),
		FallbackSecret:     os.Getenv(envFallbackSecret),
		DefaultRedirectURL: os.Getenv(envRedirectURL),
		RedisURL:           os.Getenv(envRedisURL),
	}

	switch env := strings.TrimSpace(os.Getenv(envEnvironment)); env {
	case "", string(core.EnvironmentSandbox):
		cfg.Environment = core.EnvironmentSandbox
	case string(core.EnvironmentProduction):
		cfg.Environment = core.EnvironmentProduction
	default:
		return nil, fmt.Errorf("%s must be %q or %q, got %q", envEnvironment, core.EnvironmentSandbox, core.EnvironmentProduction, env)
	}

	if cfg.ProviderKeyID == "" {
		return nil, fmt.Errorf("%s is required", envKeyID)
	}
	if cfg.ProviderPrivateKey == "" {
		return nil, fmt.Errorf("%s is required", envPrivateKey)
	}
	if cfg.FallbackSecret == "" {
		return nil, fmt.Errorf("%s is required", envFallbackSecret)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}
