package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Nurcan-altg/noteguard-app/internal/infra/confloader"
	"github.com/Nurcan-altg/noteguard-app/internal/storage/tokenstore"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(tokenstore.DefaultDir(), "cli.yaml")
}

// Load loads CLI configuration. Flags are dotted keys applied last; a
// missing file yields the defaults.
func Load(path string, flags map[string]any) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	loader := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithDotEnv(filepath.Join(filepath.Dir(path), ".env")),
	)
	if err := loader.LoadMap(defaults()); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if len(flags) > 0 {
		if err := loader.LoadMap(flags); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("unmarshal flags: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated values.
func (c *CLIConfig) Validate() error {
	switch strings.ToLower(c.Output) {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("invalid output format %q (want table, json or yaml)", c.Output)
	}
	switch strings.ToLower(c.TokenStore.Backend) {
	case tokenstore.BackendFile, tokenstore.BackendBadger, tokenstore.BackendMemory:
	default:
		return fmt.Errorf("invalid token store backend %q", c.TokenStore.Backend)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.HTTP.RateLimit < 0 || c.HTTP.Burst < 0 {
		return errors.New("http rate limit and burst must not be negative")
	}
	if c.History.PageSize <= 0 {
		return errors.New("history page size must be positive")
	}
	return nil
}

// Save writes cfg as YAML with owner-only permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	if path == "" {
		path = DefaultConfigPath()
	}
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
