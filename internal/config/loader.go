package config

import (
	"fmt"
	"os"

	"firewall/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Loader loads configuration from file
type Loader struct {
	path       string
	envEnabled bool
}

// NewLoader creates a config loader. An empty path skips the file and uses
// defaults plus environment variables.
func NewLoader(path string) *Loader {
	return &Loader{
		path:       path,
		envEnabled: true,
	}
}

// WithEnvVars enables or disables environment variable loading
func (l *Loader) WithEnvVars(enabled bool) *Loader {
	l.envEnabled = enabled
	return l
}

// Load loads the configuration
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	if l.path != "" {
		data, err := os.ReadFile(l.path)
		if err != nil {
			return nil, errors.NewError(errors.ErrorTypeInternal, "failed to read config file").WithCause(err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.NewError(errors.ErrorTypeInternal, "failed to parse config").WithCause(err)
		}
	}

	// Override with environment variables if enabled
	if l.envEnabled {
		if err := LoadEnv(cfg); err != nil {
			return nil, errors.NewError(errors.ErrorTypeInternal, "failed to load env vars").WithCause(err)
		}
	}

	if err := l.validate(cfg); err != nil {
		return nil, errors.NewError(errors.ErrorTypeBadRequest, "invalid configuration").WithCause(err)
	}

	return cfg, nil
}

// validate validates the configuration
func (l *Loader) validate(cfg *Config) error {
	if cfg.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if cfg.Redis.URL == "" {
		return fmt.Errorf("redis url is required")
	}

	fw := &cfg.Firewall
	if fw.MaxRequestsPerSecond <= 0 {
		return fmt.Errorf("firewall maxRequestsPerSecond must be positive")
	}
	if fw.RateWindow <= 0 {
		return fmt.Errorf("firewall rateWindow must be positive")
	}
	if fw.BanThreshold <= 0 {
		return fmt.Errorf("firewall banThreshold must be positive")
	}
	if fw.BanDuration <= 0 {
		return fmt.Errorf("firewall banDuration must be positive")
	}
	if fw.ViolationWindow <= 0 {
		return fmt.Errorf("firewall violationWindow must be positive")
	}

	switch cfg.Auth.Mode {
	case "", "none":
	case "sqlite":
		if cfg.Auth.Path == "" {
			return fmt.Errorf("auth mode sqlite requires a path")
		}
	case "jwt":
		if cfg.Auth.JWTSecret == "" {
			return fmt.Errorf("auth mode jwt requires a secret")
		}
	default:
		return fmt.Errorf("unknown auth mode: %s", cfg.Auth.Mode)
	}

	return nil
}
