package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/retiroapp/expctl/internal/page"
)

const (
	configFileName = "config.yaml"
	envFileName    = ".env"

	// Environment overrides, also read from ~/.expctl/.env
	EnvServer   = "EXPCTL_SERVER"
	EnvUser     = "EXPCTL_USER"
	EnvPassword = "EXPCTL_PASS"

	DefaultTimeout = 30 * time.Second
)

// ErrNoServer is returned when no server URL is configured anywhere.
var ErrNoServer = errors.New("no server configured: set server in config.yaml or " + EnvServer)

// Options holds configurable options for locating the config
type Options struct {
	ConfigHome string // Override for the ~/.expctl directory
	DirName    string // Name of the config directory (default: ".expctl")
}

// DefaultOptions returns the default config options
func DefaultOptions() Options {
	home, _ := os.UserHomeDir()
	return Options{
		ConfigHome: home,
		DirName:    ".expctl",
	}
}

// Dir returns the config directory.
func (o Options) Dir() string {
	name := o.DirName
	if name == "" {
		name = ".expctl"
	}
	return filepath.Join(o.ConfigHome, name)
}

// Config holds expctl configuration
type Config struct {
	Server     string        `yaml:"server" validate:"required,url"`
	Username   string        `yaml:"username,omitempty"`
	Password   string        `yaml:"password,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty" validate:"gt=0"`
	TokenField string        `yaml:"token_field,omitempty" validate:"required"`
	// Plain disables the full-screen dialog in favour of line prompts.
	Plain bool `yaml:"plain,omitempty"`
	// Endpoints overrides the deletion URL prefix per kind ("gestores").
	Endpoints map[string]string `yaml:"endpoints,omitempty" validate:"dive,startswith=/"`
}

// DefaultConfig returns a configuration with defaults and no server
func DefaultConfig() *Config {
	return &Config{
		Timeout:    DefaultTimeout,
		TokenField: page.DefaultTokenField,
		Endpoints:  map[string]string{},
	}
}

// Load reads config.yaml from the config directory, then applies .env
// and environment overrides. A missing config file is not an error.
func Load(opts Options) (*Config, error) {
	cfg := DefaultConfig()
	dir := opts.Dir()

	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configFileName, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Values already in the environment win over the .env file.
	if err := godotenv.Load(filepath.Join(dir, envFileName)); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s: %w", envFileName, err)
	}
	cfg.applyEnv()

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.TokenField == "" {
		cfg.TokenField = page.DefaultTokenField
	}
	if cfg.Endpoints == nil {
		cfg.Endpoints = map[string]string{}
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvServer); v != "" {
		c.Server = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		c.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		c.Password = v
	}
}

// Validate checks the configuration is usable for talking to the server.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server) == "" {
		return ErrNoServer
	}
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// HasCredentials reports whether a login should be attempted.
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// Endpoint returns the configured deletion prefix for kind, or fallback.
func (c *Config) Endpoint(kind, fallback string) string {
	if e, ok := c.Endpoints[kind]; ok && e != "" {
		return e
	}
	return fallback
}
