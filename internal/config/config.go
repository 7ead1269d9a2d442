// Package config provides configuration management.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"cleanquote/internal/logging"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "CLEANQUOTE_"

// Storage backends
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config is the main application configuration
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Storage selects where the pricing state is persisted
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Seed contains bootstrap pricing configuration
	Seed SeedConfig `json:"seed" yaml:"seed"`

	// Webhook announces published pricing changes
	Webhook WebhookConfig `json:"webhook" yaml:"webhook"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeoutSeconds bounds reading a request
	ReadTimeoutSeconds int `json:"read_timeout_seconds" yaml:"read_timeout_seconds"`

	// WriteTimeoutSeconds bounds writing a response
	WriteTimeoutSeconds int `json:"write_timeout_seconds" yaml:"write_timeout_seconds"`
}

// StorageConfig contains persistence settings
type StorageConfig struct {
	// Backend is memory, file or postgres
	Backend string `json:"backend" yaml:"backend"`

	// Path is the state file of the file backend
	Path string `json:"path" yaml:"path"`

	// DatabaseURL is the connection string of the postgres backend
	DatabaseURL string `json:"database_url" yaml:"database_url"`
}

// SeedConfig points at the HCL pricing seed used when no state was persisted
type SeedConfig struct {
	Path string `json:"path" yaml:"path"`
}

// WebhookConfig points at an endpoint notified on every pricing publish.
// An empty URL disables notifications.
type WebhookConfig struct {
	URL        string `json:"url" yaml:"url"`
	Provider   string `json:"provider" yaml:"provider"`
	Secret     string `json:"secret" yaml:"secret"`
	RetryCount int    `json:"retry_count" yaml:"retry_count"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	statePath := filepath.Join(homeDir, ".cleanquote", "pricing-state.json")

	return &Config{
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 30,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    statePath,
		},
		Seed: SeedConfig{
			Path: "pricing.hcl",
		},
		Webhook: WebhookConfig{
			Provider:   "custom",
			RetryCount: 3,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a JSON or YAML file, chosen by extension,
// then applies environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, config); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func decode(path string, data []byte, config *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	default:
		return json.Unmarshal(data, config)
	}
}

// LoadDotEnv loads variables from .env files into the process environment.
// Variables already set win. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from CLEANQUOTE_* variables. DATABASE_URL is
// honoured as well, as most hosting platforms set it.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv("DATABASE_URL"); ok {
		c.Storage.DatabaseURL = v
	}
	overrides := map[string]*string{
		"ADDR":             &c.Server.Addr,
		"STORAGE_BACKEND":  &c.Storage.Backend,
		"STORAGE_PATH":     &c.Storage.Path,
		"DATABASE_URL":     &c.Storage.DatabaseURL,
		"SEED_PATH":        &c.Seed.Path,
		"WEBHOOK_URL":      &c.Webhook.URL,
		"WEBHOOK_PROVIDER": &c.Webhook.Provider,
		"WEBHOOK_SECRET":   &c.Webhook.Secret,
		"LOG_LEVEL":        &c.Logging.Level,
		"LOG_FORMAT":       &c.Logging.Format,
		"LOG_OUTPUT":       &c.Logging.Output,
	}
	for key, dst := range overrides {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}
}

// Validate checks the storage and webhook selections
func (c *Config) Validate() error {
	switch c.Webhook.Provider {
	case "", "custom", "slack", "teams":
	default:
		return fmt.Errorf("unknown webhook provider %q (want custom, slack or teams)", c.Webhook.Provider)
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the file backend")
		}
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("storage.database_url is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q (want memory, file or postgres)", c.Storage.Backend)
	}
	return nil
}

// Save saves configuration to a file, as YAML or JSON by extension
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
