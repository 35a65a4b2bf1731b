// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds the configuration for the chatify-api service.
type Config struct {
	HTTPAddr      string `env:"HTTP_ADDR"      envDefault:":8080"`
	MongoURI      string `env:"MONGO_URI"      envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"chatify"`

	Token TokenConfig
}

// TokenConfig holds the JWT settings used by login sessions.
type TokenConfig struct {
	Issuer                string        `env:"TOKEN_ISSUER"             envDefault:"chatify"`
	AccessTokenSecret     string        `env:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret    string        `env:"REFRESH_TOKEN_SECRET"`
	AccessTokenExpiresIn  time.Duration `env:"ACCESS_TOKEN_EXPIRES_IN"  envDefault:"15m"`
	RefreshTokenExpiresIn time.Duration `env:"REFRESH_TOKEN_EXPIRES_IN" envDefault:"720h"`
}

// Load creates a Config instance from environment variables.
func Load(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.Token.AccessTokenSecret == "" {
		return fmt.Errorf("missing ACCESS_TOKEN_SECRET environment variable")
	}
	if c.Token.RefreshTokenSecret == "" {
		return fmt.Errorf("missing REFRESH_TOKEN_SECRET environment variable")
	}

	return nil
}
