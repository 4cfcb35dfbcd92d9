package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values read from the config file.
const (
	EnvAPIBase            = "CINEHINT_API_BASE"
	EnvGoogleClientID     = "CINEHINT_GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret = "CINEHINT_GOOGLE_CLIENT_SECRET"
	EnvDatabasePath       = "CINEHINT_DB_PATH"
	EnvLogLevel           = "CINEHINT_LOG_LEVEL"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Google   GoogleConfig   `toml:"google"`
	Database DatabaseConfig `toml:"database"`
	Session  SessionConfig  `toml:"session"`
	Log      LogConfig      `toml:"log"`
	Gallery  GalleryConfig  `toml:"gallery"`
}

// APIConfig points the client at the recommendation backend.
type APIConfig struct {
	BaseURL        string `toml:"base_url" validate:"required,url"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"gte=0"`
}

// GoogleConfig contains the identity provider client registration and loopback settings.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	DiscoveryURL string `toml:"discovery_url" validate:"omitempty,url"`
	RedirectHost string `toml:"redirect_host"`
	RedirectPort int    `toml:"redirect_port" validate:"gte=0,lte=65535"`
	TokenCache   string `toml:"token_cache"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `toml:"max_idle_conns" validate:"gte=0"`
}

// SessionConfig selects the token store backend.
type SessionConfig struct {
	Backend string `toml:"backend" validate:"omitempty,oneof=sqlite memory"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level" validate:"omitempty,oneof=debug info warn error fatal"`
	File  string `toml:"file"`
}

// GalleryConfig bounds the per-movie watchlist status checks issued when a list is shown.
type GalleryConfig struct {
	StatusCheckLimit int     `toml:"status_check_limit" validate:"gte=0"`
	StatusCheckRate  float64 `toml:"status_check_rate" validate:"gte=0"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep their defaults from the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overrides config values with any non-empty CINEHINT_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&c.API.BaseURL, EnvAPIBase)
	set(&c.Google.ClientID, EnvGoogleClientID)
	set(&c.Google.ClientSecret, EnvGoogleClientSecret)
	set(&c.Database.Path, EnvDatabasePath)
	set(&c.Log.Level, EnvLogLevel)
}

// Validate checks the config against its struct tags.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
