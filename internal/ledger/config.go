package ledger

import (
	"fmt"
	"os"
	"time"
)

// Config holds ledger RPC connection parameters.
type Config struct {
	RPCAddress  string `toml:"rpc_address"`
	CallTimeout string `toml:"call_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	RPCAddress  string
	CallTimeout string
}

// CallTimeoutDuration returns CallTimeout as a time.Duration.
func (c *Config) CallTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.CallTimeout)
	return d
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
	if overlay.RPCAddress != "" {
		c.RPCAddress = overlay.RPCAddress
	}
	if overlay.CallTimeout != "" {
		c.CallTimeout = overlay.CallTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.RPCAddress == "" {
		c.RPCAddress = "http://localhost:26657"
	}
	if c.CallTimeout == "" {
		c.CallTimeout = "10s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.RPCAddress != "" {
		if v := os.Getenv(env.RPCAddress); v != "" {
			c.RPCAddress = v
		}
	}
	if env.CallTimeout != "" {
		if v := os.Getenv(env.CallTimeout); v != "" {
			c.CallTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.RPCAddress == "" {
		return fmt.Errorf("rpc_address required")
	}
	if _, err := time.ParseDuration(c.CallTimeout); err != nil {
		return fmt.Errorf("invalid call_timeout: %w", err)
	}
	return nil
}
