package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	EnvResolverMaxDepth   = "UXRENDER_RESOLVER_MAX_DEPTH"
	EnvResolverRowWorkers = "UXRENDER_RESOLVER_ROW_WORKERS"
	EnvResolverNamespace  = "UXRENDER_RESOLVER_NAMESPACE"

	EnvTemplateDialect      = "UXRENDER_TEMPLATE_DIALECT"
	EnvTemplateSanitizeHTML = "UXRENDER_TEMPLATE_SANITIZE_HTML"
)

// ResolverConfig tunes schema resolution.
type ResolverConfig struct {
	MaxDepth   int    `toml:"max_depth"`
	RowWorkers int    `toml:"row_workers"`
	Namespace  string `toml:"namespace"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ResolverConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ResolverConfig) Merge(overlay *ResolverConfig) {
	if overlay.MaxDepth != 0 {
		c.MaxDepth = overlay.MaxDepth
	}
	if overlay.RowWorkers != 0 {
		c.RowWorkers = overlay.RowWorkers
	}
	if overlay.Namespace != "" {
		c.Namespace = overlay.Namespace
	}
}

func (c *ResolverConfig) loadDefaults() {
	if c.MaxDepth == 0 {
		c.MaxDepth = 64
	}
	if c.RowWorkers == 0 {
		c.RowWorkers = 1
	}
	if c.Namespace == "" {
		c.Namespace = "_ux"
	}
}

func (c *ResolverConfig) loadEnv() {
	if v := os.Getenv(EnvResolverMaxDepth); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxDepth = n
		}
	}
	if v := os.Getenv(EnvResolverRowWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RowWorkers = n
		}
	}
	if v := os.Getenv(EnvResolverNamespace); v != "" {
		c.Namespace = v
	}
}

func (c *ResolverConfig) validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("invalid max_depth: %d", c.MaxDepth)
	}
	if c.RowWorkers < 1 {
		return fmt.Errorf("invalid row_workers: %d", c.RowWorkers)
	}
	if strings.TrimSpace(c.Namespace) == "" {
		return fmt.Errorf("namespace is required")
	}
	return nil
}

// TemplateConfig selects the display_format engine.
type TemplateConfig struct {
	Dialect      string `toml:"dialect"`
	SanitizeHTML *bool  `toml:"sanitize_html"`
}

// Sanitize reports whether rendered templates pass through the HTML sanitizer.
func (c *TemplateConfig) Sanitize() bool {
	return c.SanitizeHTML != nil && *c.SanitizeHTML
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *TemplateConfig) Finalize() error {
	if c.Dialect == "" {
		c.Dialect = "jinja"
	}
	if c.SanitizeHTML == nil {
		off := false
		c.SanitizeHTML = &off
	}
	if v := os.Getenv(EnvTemplateDialect); v != "" {
		c.Dialect = v
	}
	if v := os.Getenv(EnvTemplateSanitizeHTML); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SanitizeHTML = &b
		}
	}
	c.Dialect = strings.ToLower(strings.TrimSpace(c.Dialect))
	switch c.Dialect {
	case "jinja", "django":
		return nil
	default:
		return fmt.Errorf("unsupported dialect %q", c.Dialect)
	}
}

// Merge overwrites non-zero fields from overlay.
func (c *TemplateConfig) Merge(overlay *TemplateConfig) {
	if overlay.Dialect != "" {
		c.Dialect = overlay.Dialect
	}
	if overlay.SanitizeHTML != nil {
		v := *overlay.SanitizeHTML
		c.SanitizeHTML = &v
	}
}
