package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvLogLevel  = "UXRENDER_LOG_LEVEL"
	EnvLogFormat = "UXRENDER_LOG_FORMAT"

	EnvLoaderAllowHTTP = "UXRENDER_LOADER_ALLOW_HTTP"
	EnvLoaderTimeout   = "UXRENDER_LOADER_TIMEOUT"
)

// LogConfig selects the slog handler and level.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LogConfig) Finalize() error {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Format = v
	}
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if _, err := c.level(); err != nil {
		return err
	}
	switch c.Format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unsupported format %q", c.Format)
	}
}

// Merge overwrites non-zero fields from overlay.
func (c *LogConfig) Merge(overlay *LogConfig) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
}

// Logger builds a slog.Logger writing to w.
func (c *LogConfig) Logger(w io.Writer) *slog.Logger {
	level, _ := c.level()
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c *LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid level %q", c.Level)
	}
	return level, nil
}

// LoaderConfig controls remote document fetching.
type LoaderConfig struct {
	AllowHTTP bool   `toml:"allow_http"`
	Timeout   string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *LoaderConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LoaderConfig) Finalize() error {
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if v := os.Getenv(EnvLoaderAllowHTTP); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AllowHTTP = b
		}
	}
	if v := os.Getenv(EnvLoaderTimeout); v != "" {
		c.Timeout = v
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay. AllowHTTP can only be
// switched on by an overlay.
func (c *LoaderConfig) Merge(overlay *LoaderConfig) {
	if overlay.AllowHTTP {
		c.AllowHTTP = true
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}
