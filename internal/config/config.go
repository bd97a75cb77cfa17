package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration that decodes from TOML strings like "90m".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type Config struct {
	RoomDataDir         string   `toml:"room_data_dir"`
	AuthDataDir         string   `toml:"auth_data_dir"`
	SessionTTL          Duration `toml:"session_ttl"`
	SweepInterval       Duration `toml:"sweep_interval"`
	InactivityThreshold Duration `toml:"inactivity_threshold"`
}

func DefaultConfig() *Config {
	return &Config{
		RoomDataDir:         "room_data",
		AuthDataDir:         "auth_data",
		SessionTTL:          Duration(30 * 24 * time.Hour),
		SweepInterval:       Duration(5 * time.Minute),
		InactivityThreshold: Duration(time.Hour),
	}
}

// Load reads config from the given TOML path, expanding environment
// variables. Fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables (${VAR} syntax)
	expanded := expandEnvVars(string(data))

	cfg := DefaultConfig()
	if _, err := toml.Decode(expanded, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// Validate checks that required config fields are present and valid.
func (c *Config) Validate() error {
	if c.RoomDataDir == "" {
		return fmt.Errorf("room_data_dir cannot be empty")
	}
	if c.AuthDataDir == "" {
		return fmt.Errorf("auth_data_dir cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive")
	}
	if c.InactivityThreshold <= 0 {
		return fmt.Errorf("inactivity_threshold must be positive")
	}
	return nil
}
