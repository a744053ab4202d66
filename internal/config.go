package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultAPIURL is where the backend listens in development
const DefaultAPIURL = "http://localhost:8000"

// Config holds console settings read from the environment
type Config struct {
	APIURL         string        `env:"KCONSOLE_API_URL" envDefault:"http://localhost:8000" validate:"required,url"`
	Home           string        `env:"KCONSOLE_HOME" validate:"required"`
	RequestTimeout time.Duration `env:"KCONSOLE_REQUEST_TIMEOUT" envDefault:"0s" validate:"gte=0"`
	Journal        bool          `env:"KCONSOLE_JOURNAL" envDefault:"false"`
	LogFile        string        `env:"KCONSOLE_LOG_FILE"`
}

var validate = validator.New()

// LoadConfig reads an optional .env file (dotenvPath, or ./.env when empty)
// and parses the environment.
func LoadConfig(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil {
			return nil, &ConfigError{Field: "env-file", Err: err}
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		LogDebug("ignoring .env: %v", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, &ConfigError{Field: "environment", Err: err}
	}
	if cfg.Home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.Home = filepath.Join(homeDir, ".knowledge-console")
	}
	return cfg, cfg.Validate()
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ConfigError{Field: verrs[0].Field(), Err: fmt.Errorf("failed %q check with value %v", verrs[0].Tag(), verrs[0].Value())}
		}
		return &ConfigError{Field: "config", Err: err}
	}
	return nil
}

// CredentialPath is where the bearer token is kept
func (c *Config) CredentialPath() string {
	return filepath.Join(c.Home, "credentials.yaml")
}

// JournalPath is where dropped persists are recorded
func (c *Config) JournalPath() string {
	return filepath.Join(c.Home, "journal.db")
}
