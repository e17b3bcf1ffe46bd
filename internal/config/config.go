// Package config loads gitid settings from ~/.config/gitid/config.toml with
// GITID_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// EnvVarConfig names an alternate config file.
const EnvVarConfig = "GITID_CONFIG"

// UI modes for the commit-time prompt.
const (
	UIMenu   = "menu"
	UIPicker = "picker"
)

// ErrInvalidConfig indicates a setting has a value gitid cannot use.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all gitid settings. Paths may start with ~/.
type Config struct {
	// Store is the identity store file.
	Store string `toml:"store" env:"STORE"`

	// HooksDir is the directory core.hooksPath points at.
	HooksDir string `toml:"hooks_dir" env:"HOOKS_DIR"`

	// UI selects the commit-time prompt: "menu" or "picker".
	UI string `toml:"ui" env:"UI"`

	// ChainLocalHooks runs the repository's own .git/hooks/<name> after
	// the identity prompt, since core.hooksPath hides it from git.
	ChainLocalHooks bool `toml:"chain_local_hooks" env:"CHAIN_LOCAL_HOOKS"`

	Log Log `toml:"log" envPrefix:"LOG_"`
}

// Log configures the diagnostic log file.
type Log struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	File    string `toml:"file" env:"FILE"`
	Level   string `toml:"level" env:"LEVEL"`
}

// Default returns the settings used when no file or environment overrides exist.
func Default() *Config {
	return &Config{
		Store:           "~/.git-identities",
		HooksDir:        "~/.config/gitid/hooks",
		UI:              UIMenu,
		ChainLocalHooks: true,
		Log: Log{
			Enabled: false,
			File:    "~/.local/state/gitid/gitid.log",
			Level:   "info",
		},
	}
}

// DefaultPath returns ~/.config/gitid/config.toml, honoring GITID_CONFIG.
func DefaultPath() string {
	if p := os.Getenv(EnvVarConfig); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gitid", "config.toml")
}

// Load reads the config file at path on top of Default, then applies GITID_*
// environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "GITID_"}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks setting values.
func (c *Config) Validate() error {
	switch c.UI {
	case UIMenu, UIPicker:
	default:
		return fmt.Errorf("%w: ui must be %q or %q, got %q", ErrInvalidConfig, UIMenu, UIPicker, c.UI)
	}
	if c.Store == "" {
		return fmt.Errorf("%w: store path is empty", ErrInvalidConfig)
	}
	if c.HooksDir == "" {
		return fmt.Errorf("%w: hooks_dir is empty", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) expand() error {
	var err error
	for _, p := range []*string{&c.Store, &c.HooksDir, &c.Log.File} {
		if *p, err = ExpandHome(*p); err != nil {
			return err
		}
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
