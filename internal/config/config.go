// Package config loads uxrender settings from TOML files and UXRENDER_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "uxrender.toml"
	OverlayConfigPattern = "uxrender.%s.toml"

	EnvUXRenderEnv = "UXRENDER_ENV"
)

// Config is the root configuration for the CLI and server.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Resolver ResolverConfig `toml:"resolver"`
	Template TemplateConfig `toml:"template"`
	Log      LogConfig      `toml:"log"`
	Loader   LoaderConfig   `toml:"loader"`
}

// Env returns the UXRENDER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvUXRenderEnv); env != "" {
		return env
	}
	return "local"
}

// Load reads configuration relative to the working directory.
func Load() (*Config, error) {
	return LoadDir(".")
}

// LoadDir reads dir/uxrender.toml (if present), applies the
// uxrender.<env>.toml overlay, then defaults and environment overrides.
// Without any file, defaults and environment variables provide everything.
func LoadDir(dir string) (*Config, error) {
	cfg := &Config{}

	base := filepath.Join(dir, BaseConfigFile)
	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(dir); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// Default returns a finalized configuration built only from defaults and the
// environment.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sections.
func (c *Config) Merge(overlay *Config) {
	c.Server.Merge(&overlay.Server)
	c.Resolver.Merge(&overlay.Resolver)
	c.Template.Merge(&overlay.Template)
	c.Log.Merge(&overlay.Log)
	c.Loader.Merge(&overlay.Loader)
}

// Finalize applies defaults, environment overrides and validation to every
// section.
func (c *Config) Finalize() error {
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Resolver.Finalize(); err != nil {
		return fmt.Errorf("resolver: %w", err)
	}
	if err := c.Template.Finalize(); err != nil {
		return fmt.Errorf("template: %w", err)
	}
	if err := c.Log.Finalize(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Loader.Finalize(); err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvUXRenderEnv); env != "" {
		path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
