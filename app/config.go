package app

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"github.com/godamri/helix-config/log"
	"github.com/godamri/helix-config/source"
)

// EnvLoader reads process settings from environment variables. It combines
// envconfig (for parsing) and validator/v10 (for enforcement). It is meant
// for the handful of settings needed before configuration files can be read.
type EnvLoader struct {
	validate *validator.Validate
}

func NewEnvLoader() *EnvLoader {
	return &EnvLoader{
		validate: validator.New(),
	}
}

// Load reads env vars into target and validates its struct tags.
func (l *EnvLoader) Load(target any, prefix string) error {
	// 1. Parse Env Vars
	if err := envconfig.Process(prefix, target); err != nil {
		return fmt.Errorf("app: failed to process env vars: %w", err)
	}

	// 2. Validate Constraints (oneof, required, etc.)
	if err := l.validate.Struct(target); err != nil {
		return fmt.Errorf("app: validation failed: %w", err)
	}

	return nil
}

// Bootstrap is everything read from the environment before the loader runs.
type Bootstrap struct {
	Log    log.Config
	Source source.Options
}

// LoadBootstrap reads LOG_LEVEL, LOG_FORMAT, CONFIG_DIR, CONFIG_NAME and
// CONFIG_PROFILE.
func (l *EnvLoader) LoadBootstrap() (Bootstrap, error) {
	var b Bootstrap
	if err := l.Load(&b.Log, ""); err != nil {
		return Bootstrap{}, err
	}
	if err := l.Load(&b.Source, ""); err != nil {
		return Bootstrap{}, err
	}
	return b, nil
}
