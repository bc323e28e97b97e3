package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog/log"
)

// LoadEnv overlays environment variables onto the config struct.
// Fields are matched through their `env` struct tags; variables that are not
// set leave the value read from the config file untouched.
func LoadEnv(config *AppConfig) error {
	log.Debug().Msg("Loading environment variables")

	if err := cleanenv.ReadEnv(config); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	log.Debug().
		Str("app_env", config.App.Environment).
		Str("db_driver", config.Database.Driver).
		Str("db_host", config.Database.Host).
		Int("server_port", config.Server.Port).
		Msg("Environment variables loaded")

	return nil
}

// Usage describes every supported environment variable.
// The console binary prints it for `--help-env`.
func Usage() (string, error) {
	return cleanenv.GetDescription(&AppConfig{}, nil)
}
