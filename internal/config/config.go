package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the persistent application configuration
type Config struct {
	// Retrieval backend
	Backend BackendConfig `json:"backend"`

	// Local state
	Storage StorageConfig `json:"storage"`

	// UI Preferences
	UI UIConfig `json:"ui"`
}

// BackendConfig locates the retrieval backend
type BackendConfig struct {
	URL            string `json:"url" validate:"required,url"`
	TimeoutSeconds int    `json:"timeout_seconds" validate:"gte=0,lte=3600"` // 0 = client default
}

// StorageConfig locates the local database and event log
type StorageConfig struct {
	DataDir string `json:"data_dir,omitempty"` // empty = Dir()
}

// UIConfig holds UI preferences
type UIConfig struct {
	Theme           string `json:"theme" validate:"oneof=dark light"`
	RecentDocuments int    `json:"recent_documents" validate:"gte=1,lte=50"` // rows on the PDF page
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL: "http://localhost:8000",
		},
		UI: UIConfig{
			Theme:           "dark",
			RecentDocuments: 5,
		},
	}
}

// Dir returns the ragaweb state directory: $RAGAWEB_DATA_DIR or ~/.ragaweb.
func Dir() string {
	if dir := os.Getenv("RAGAWEB_DATA_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ragaweb")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads config from disk, or returns defaults.
// A .env file in the working directory or the state directory is loaded
// first; environment variables then override file values.
func Load() (*Config, error) {
	for _, p := range []string{".env", filepath.Join(Dir(), ".env")} {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config file at path, applies environment overrides
// and validates the result. A missing file yields defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.AutoPopulateFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// AutoPopulateFromEnv overrides file values from environment variables.
// NEXT_PUBLIC_API_URL is honored so an existing web deployment's .env works
// unchanged.
func (c *Config) AutoPopulateFromEnv() {
	if u := os.Getenv("NEXT_PUBLIC_API_URL"); u != "" {
		c.Backend.URL = u
	}
	if u := os.Getenv("RAGAWEB_API_URL"); u != "" {
		c.Backend.URL = u
	}
	if s := os.Getenv("RAGAWEB_TIMEOUT_SECONDS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			c.Backend.TimeoutSeconds = n
		}
	}
	if dir := os.Getenv("RAGAWEB_DATA_DIR"); dir != "" {
		c.Storage.DataDir = dir
	}
}

// LoadEnvFile applies KEY=value lines (optionally prefixed with "export")
// from a shell-style file, without touching the process environment.
func (c *Config) LoadEnvFile(path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("config: read env file: %w", err)
	}
	for key, value := range vars {
		switch key {
		case "RAGAWEB_API_URL", "NEXT_PUBLIC_API_URL":
			c.Backend.URL = value
		case "RAGAWEB_TIMEOUT_SECONDS":
			if n, err := strconv.Atoi(value); err == nil {
				c.Backend.TimeoutSeconds = n
			}
		case "RAGAWEB_DATA_DIR":
			c.Storage.DataDir = value
		}
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DataDir returns the directory holding the database and event log.
func (c *Config) DataDir() string {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir
	}
	return Dir()
}

// DBPath returns the SQLite database path.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir(), "ragaweb.db")
}

// EventLogPath returns the JSONL event log path.
func (c *Config) EventLogPath() string {
	return filepath.Join(c.DataDir(), "ragaweb.events.jsonl")
}

// Timeout returns the backend timeout, or 0 for the client default.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}
