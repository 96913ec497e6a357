package verification

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds verification policy parameters.
type Config struct {
	ScanThreshold int    `toml:"scan_threshold"`
	ScanWindow    string `toml:"scan_window"`
	RecentLimit   int    `toml:"recent_limit"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ScanThreshold string
	ScanWindow    string
	RecentLimit   string
}

// Policy returns the configured suspicious-scan policy.
func (c *Config) Policy() Policy {
	window, _ := time.ParseDuration(c.ScanWindow)
	return Policy{
		ScanThreshold: c.ScanThreshold,
		ScanWindow:    window,
	}
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
	if overlay.ScanThreshold != 0 {
		c.ScanThreshold = overlay.ScanThreshold
	}
	if overlay.ScanWindow != "" {
		c.ScanWindow = overlay.ScanWindow
	}
	if overlay.RecentLimit != 0 {
		c.RecentLimit = overlay.RecentLimit
	}
}

func (c *Config) loadDefaults() {
	if c.ScanThreshold == 0 {
		c.ScanThreshold = 3
	}
	if c.ScanWindow == "" {
		c.ScanWindow = "24h"
	}
	if c.RecentLimit == 0 {
		c.RecentLimit = 20
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.ScanThreshold != "" {
		if v := os.Getenv(env.ScanThreshold); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.ScanThreshold = n
			}
		}
	}
	if env.ScanWindow != "" {
		if v := os.Getenv(env.ScanWindow); v != "" {
			c.ScanWindow = v
		}
	}
	if env.RecentLimit != "" {
		if v := os.Getenv(env.RecentLimit); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.RecentLimit = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.ScanThreshold < 1 {
		return fmt.Errorf("scan_threshold must be positive")
	}
	if _, err := time.ParseDuration(c.ScanWindow); err != nil {
		return fmt.Errorf("invalid scan_window: %w", err)
	}
	if c.RecentLimit < 1 {
		return fmt.Errorf("recent_limit must be positive")
	}
	return nil
}
