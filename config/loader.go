package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"github.com/caarlos0/env/v11"

	chaterr "yggdrasil/internal/errors"
)

// LoadFromEnv overlays YGG_* environment variables onto cfg.  Unset
// variables leave the existing value alone.  Call it before CLI flag
// parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return &chaterr.ConfigError{
			Field:   "env",
			Message: err.Error(),
			Hint:    "unset the offending " + EnvPrefix + "* variable or fix its value",
		}
	}
	return nil
}
