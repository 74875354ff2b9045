package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/driftchat/backend/internal/common/constants"
	commonerrors "github.com/driftchat/backend/internal/common/errors"
)

// ProfileConfig carries everything the profile service needs at startup.
// UsernamePattern is compiled once here and injected into the request
// validator; handlers never reach for ambient globals.
type ProfileConfig struct {
	HTTPPort        string        `env:"PROFILE_HTTP_PORT" envDefault:"8083"`
	DatabaseURL     string        `env:"DATABASE_URL,required,notEmpty"`
	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	RequestTimeout  time.Duration `env:"PROFILE_REQUEST_TIMEOUT" envDefault:"5s"`
	UsernamePattern string        `env:"PROFILE_USERNAME_PATTERN" envDefault:"^[A-Za-z0-9_.]+$"`
	SnapshotBackend string        `env:"SNAPSHOT_BACKEND" envDefault:"noop"`
	LogDir          string        `env:"LOG_DIR"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"INFO"`

	usernameRegexp *regexp.Regexp
}

func LoadProfileConfig() (ProfileConfig, error) {
	var cfg ProfileConfig
	if err := env.Parse(&cfg); err != nil {
		return ProfileConfig{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	if len(cfg.JWTSecret) < constants.JWTSecretMinLength {
		return ProfileConfig{}, fmt.Errorf("%w: got %d bytes", commonerrors.ErrInvalidJWTSecret, len(cfg.JWTSecret))
	}

	re, err := regexp.Compile(cfg.UsernamePattern)
	if err != nil {
		return ProfileConfig{}, fmt.Errorf("invalid username pattern %q: %w", cfg.UsernamePattern, err)
	}
	cfg.usernameRegexp = re

	if cfg.SnapshotBackend != "noop" && cfg.SnapshotBackend != "postgres" {
		return ProfileConfig{}, fmt.Errorf("unknown snapshot backend %q", cfg.SnapshotBackend)
	}

	return cfg, nil
}

func (c ProfileConfig) UsernameRegexp() *regexp.Regexp {
	return c.usernameRegexp
}
