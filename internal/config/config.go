package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/provenance/internal/ledger"
	"github.com/JaimeStill/provenance/internal/manifest"
	"github.com/JaimeStill/provenance/internal/units"
	"github.com/JaimeStill/provenance/internal/verification"
	"github.com/JaimeStill/provenance/pkg/database"
	"github.com/JaimeStill/provenance/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvProvenanceEnv             = "PROVENANCE_ENV"
	EnvProvenanceShutdownTimeout = "PROVENANCE_SHUTDOWN_TIMEOUT"
	EnvProvenanceVersion         = "PROVENANCE_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "PROVENANCE_DB_HOST",
	Port:            "PROVENANCE_DB_PORT",
	Name:            "PROVENANCE_DB_NAME",
	User:            "PROVENANCE_DB_USER",
	Password:        "PROVENANCE_DB_PASSWORD",
	SSLMode:         "PROVENANCE_DB_SSL_MODE",
	MaxOpenConns:    "PROVENANCE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "PROVENANCE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "PROVENANCE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "PROVENANCE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "PROVENANCE_STORAGE_CONTAINER_NAME",
	ConnectionString: "PROVENANCE_STORAGE_CONNECTION_STRING",
}

var ledgerEnv = &ledger.Env{
	RPCAddress:  "PROVENANCE_LEDGER_RPC_ADDRESS",
	CallTimeout: "PROVENANCE_LEDGER_CALL_TIMEOUT",
}

var manifestEnv = &manifest.Env{
	MaxFileSize:       "PROVENANCE_MANIFEST_MAX_FILE_SIZE",
	AllowedExtensions: "PROVENANCE_MANIFEST_ALLOWED_EXTENSIONS",
	QuantityWarning:   "PROVENANCE_MANIFEST_QUANTITY_WARNING",
}

var issuanceEnv = &units.Env{
	Workers: "PROVENANCE_ISSUANCE_WORKERS",
}

var verificationEnv = &verification.Env{
	ScanThreshold: "PROVENANCE_VERIFICATION_SCAN_THRESHOLD",
	ScanWindow:    "PROVENANCE_VERIFICATION_SCAN_WINDOW",
	RecentLimit:   "PROVENANCE_VERIFICATION_RECENT_LIMIT",
}

// Config is the root configuration for the provenance service.
type Config struct {
	Server          ServerConfig        `toml:"server"`
	Database        database.Config     `toml:"database"`
	Storage         storage.Config      `toml:"storage"`
	Ledger          ledger.Config       `toml:"ledger"`
	Manifest        manifest.Config     `toml:"manifest"`
	Issuance        units.Config        `toml:"issuance"`
	Verification    verification.Config `toml:"verification"`
	API             APIConfig           `toml:"api"`
	ShutdownTimeout string              `toml:"shutdown_timeout"`
	Version         string              `toml:"version"`
}

// Env returns the PROVENANCE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvProvenanceEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Ledger.Merge(&overlay.Ledger)
	c.Manifest.Merge(&overlay.Manifest)
	c.Issuance.Merge(&overlay.Issuance)
	c.Verification.Merge(&overlay.Verification)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Ledger.Finalize(ledgerEnv); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	if err := c.Manifest.Finalize(manifestEnv); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	if err := c.Issuance.Finalize(issuanceEnv); err != nil {
		return fmt.Errorf("issuance: %w", err)
	}
	if err := c.Verification.Finalize(verificationEnv); err != nil {
		return fmt.Errorf("verification: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvProvenanceShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvProvenanceVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
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

func overlayPath() string {
	if env := os.Getenv(EnvProvenanceEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
