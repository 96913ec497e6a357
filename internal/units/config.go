package units

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

// Config holds issuance worker pool parameters.
type Config struct {
	Workers int `toml:"workers"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Workers string
}

// WorkerCount bounds the configured worker count by the quantity being
// issued, never returning less than one.
func (c *Config) WorkerCount(quantity int) int {
	return max(min(c.Workers, quantity), 1)
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
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
}

func (c *Config) loadDefaults() {
	if c.Workers == 0 {
		c.Workers = min(runtime.NumCPU(), 8)
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Workers != "" {
		if v := os.Getenv(env.Workers); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Workers = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}
