package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the statement-extractor settings. It is built once in main
// and passed down explicitly.
type Config struct {
	Listen         string `yaml:"listen"`
	StaticDir      string `yaml:"static_dir"`
	LogLevel       string `yaml:"log_level"`
	MaxUploadMB    int    `yaml:"max_upload_mb"`
	UploadDir      string `yaml:"upload_dir"`
	CategoriesPath string `yaml:"categories_path"`
	ProfilePath    string `yaml:"profile_path"`
	DatabasePath   string `yaml:"database_path"`
	// DisablePdftotext skips the poppler-utils fallback for PDF text.
	DisablePdftotext bool `yaml:"disable_pdftotext"`
}

// Default returns sane defaults.
func Default() *Config {
	return &Config{
		Listen:         ":8080",
		LogLevel:       "info",
		MaxUploadMB:    32,
		CategoriesPath: "data/categories.yaml",
		ProfilePath:    "data/user_profile.json",
		DatabasePath:   "data/transactions.db",
	}
}

// Load reads a YAML config file over Default, then applies environment
// overrides. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	if v := os.Getenv("STATEMENT_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("STATEMENT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be > 0")
	}
	if c.ProfilePath == "" {
		return fmt.Errorf("profile_path is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error", "disabled", "":
	default:
		return fmt.Errorf("unsupported log_level %q", c.LogLevel)
	}
	return nil
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int {
	return c.MaxUploadMB << 20
}
