// Package config loads process-wide configuration from environment
// variables, once at startup. It satisfies the auth.Config interface so
// the signing secret and token parameters flow into the token service by
// reference and never mutate afterwards.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters.
type Config struct {
	Addr        string `env:"ADDR" envDefault:":3000"`
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"file:shop.db?cache=shared"`
	JWT         JWT    `envPrefix:"JWT_"`
}

// JWT contains token-related parameters.
type JWT struct {
	Secret          string   `env:"SECRET" envDefault:"dev-secret"`
	ExpirationHours int      `env:"EXPIRATION_HOURS" envDefault:"2"`
	Issuer          string   `env:"ISSUER" envDefault:"go-shop-auth"`
	Audience        []string `env:"AUDIENCE" envSeparator:","`
}

// New loads configuration from environment variables.
func New() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) GetSigningKey() string {
	return c.JWT.Secret
}

func (c *Config) GetTokenExpiration() int {
	return c.JWT.ExpirationHours
}

func (c *Config) GetIssuer() string {
	return c.JWT.Issuer
}

func (c *Config) GetAudience() []string {
	return c.JWT.Audience
}

func (c *Config) GetContextKey() string {
	return "user"
}

func (c *Config) GetTokenLookup() string {
	return "header:Authorization"
}

func (c *Config) GetAuthScheme() string {
	return "Bearer"
}
