package manifest

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/JaimeStill/provenance/pkg/formatting"
)

// Config holds manifest validation parameters.
type Config struct {
	MaxFileSize       string   `toml:"max_file_size"`
	AllowedExtensions []string `toml:"allowed_extensions"`
	QuantityWarning   int      `toml:"quantity_warning"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	MaxFileSize       string
	AllowedExtensions string
	QuantityWarning   string
}

// MaxFileSizeBytes returns MaxFileSize as a byte count.
func (c *Config) MaxFileSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxFileSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.MaxFileSize != "" {
		c.MaxFileSize = overlay.MaxFileSize
	}
	if overlay.AllowedExtensions != nil {
		c.AllowedExtensions = overlay.AllowedExtensions
	}
	if overlay.QuantityWarning != 0 {
		c.QuantityWarning = overlay.QuantityWarning
	}
}

func (c *Config) loadDefaults() {
	if c.MaxFileSize == "" {
		c.MaxFileSize = "10MB"
	}
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = []string{".csv", ".txt"}
	}
	if c.QuantityWarning == 0 {
		c.QuantityWarning = 100000
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.MaxFileSize != "" {
		if v := os.Getenv(env.MaxFileSize); v != "" {
			c.MaxFileSize = v
		}
	}
	if env.AllowedExtensions != "" {
		if v := os.Getenv(env.AllowedExtensions); v != "" {
			exts := strings.Split(v, ",")
			c.AllowedExtensions = make([]string, 0, len(exts))
			for _, ext := range exts {
				if trimmed := strings.TrimSpace(ext); trimmed != "" {
					c.AllowedExtensions = append(c.AllowedExtensions, trimmed)
				}
			}
		}
	}
	if env.QuantityWarning != "" {
		if v := os.Getenv(env.QuantityWarning); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.QuantityWarning = n
			}
		}
	}
}

func (c *Config) validate() error {
	if _, err := formatting.ParseBytes(c.MaxFileSize); err != nil {
		return fmt.Errorf("invalid max_file_size: %w", err)
	}
	if c.QuantityWarning < 1 {
		return fmt.Errorf("quantity_warning must be positive")
	}
	return nil
}
