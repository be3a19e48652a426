// Package config handles loading and managing psyscore configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for psyscore.
type Config struct {
	Scoring ScoringConfig `yaml:"scoring"`
	Logging LoggingConfig `yaml:"logging"`
	Export  ExportConfig  `yaml:"export"`
	Source  SourceConfig  `yaml:"source"`
	Server  ServerConfig  `yaml:"server"`
}

// ScoringConfig controls scoring behavior.
type ScoringConfig struct {
	LengthPolicy string `yaml:"length_policy"` // tolerant or strict
	CatalogPath  string `yaml:"catalog_path"`  // empty uses the built-in catalog
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // console or json
	File       string `yaml:"file"`   // optional rotating log file
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// ExportConfig selects where finished reports are published.
type ExportConfig struct {
	Backend   string `yaml:"backend"` // local, s3, gcs
	Dir       string `yaml:"dir"`     // local backend root
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // S3-compatible endpoint override
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// SourceConfig points rescore at stored submissions.
type SourceConfig struct {
	DatabaseURL string `yaml:"database_url"`
	Table       string `yaml:"table"`
}

// ServerConfig controls the psyscored HTTP service.
type ServerConfig struct {
	Port          string `yaml:"port"`
	ExportReports bool   `yaml:"export_reports"` // publish every scored assessment
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			LengthPolicy: "tolerant",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Export: ExportConfig{
			Backend: "local",
			Dir:     ReportDir(),
			Prefix:  "psyscore",
		},
		Source: SourceConfig{
			Table: "pre_assessments",
		},
		Server: ServerConfig{
			Port: "8080",
		},
	}
}

// Load reads a config file from the given path and applies PSYSCORE_*
// environment overrides. If path is empty or the file does not exist,
// defaults are used.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Scoring.LengthPolicy = envOrDefault("PSYSCORE_LENGTH_POLICY", c.Scoring.LengthPolicy)
	c.Scoring.CatalogPath = envOrDefault("PSYSCORE_CATALOG", c.Scoring.CatalogPath)
	c.Logging.Level = envOrDefault("PSYSCORE_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = envOrDefault("PSYSCORE_LOG_FORMAT", c.Logging.Format)
	c.Logging.File = envOrDefault("PSYSCORE_LOG_FILE", c.Logging.File)
	c.Export.Backend = envOrDefault("PSYSCORE_EXPORT_BACKEND", c.Export.Backend)
	c.Export.Dir = envOrDefault("PSYSCORE_EXPORT_DIR", c.Export.Dir)
	c.Export.Bucket = envOrDefault("PSYSCORE_EXPORT_BUCKET", c.Export.Bucket)
	c.Export.Region = envOrDefault("PSYSCORE_EXPORT_REGION", c.Export.Region)
	c.Export.Endpoint = envOrDefault("PSYSCORE_EXPORT_ENDPOINT", c.Export.Endpoint)
	c.Export.AccessKey = envOrDefault("PSYSCORE_EXPORT_ACCESS_KEY", c.Export.AccessKey)
	c.Export.SecretKey = envOrDefault("PSYSCORE_EXPORT_SECRET_KEY", c.Export.SecretKey)
	c.Source.DatabaseURL = envOrDefault("PSYSCORE_DATABASE_URL", c.Source.DatabaseURL)
	c.Server.Port = envOrDefault("PORT", c.Server.Port)

	if v := os.Getenv("PSYSCORE_LOG_COMPRESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PSYSCORE_LOG_COMPRESS: %w", err)
		}
		c.Logging.Compress = b
	}
	return nil
}

// Validate checks enumerated fields and backend requirements.
func (c *Config) Validate() error {
	var problems []string

	switch strings.ToLower(c.Scoring.LengthPolicy) {
	case "", "tolerant", "strict":
	default:
		problems = append(problems, fmt.Sprintf("scoring.length_policy: unknown %q", c.Scoring.LengthPolicy))
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format: unknown %q", c.Logging.Format))
	}
	switch c.Export.Backend {
	case "", "local":
	case "s3", "gcs":
		if c.Export.Bucket == "" {
			problems = append(problems, fmt.Sprintf("export.bucket: required for %s backend", c.Export.Backend))
		}
	default:
		problems = append(problems, fmt.Sprintf("export.backend: unknown %q", c.Export.Backend))
	}

	if _, err := strconv.Atoi(c.Server.Port); c.Server.Port != "" && err != nil {
		problems = append(problems, fmt.Sprintf("server.port: invalid %q", c.Server.Port))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// FindConfigFile looks for .psyscore/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".psyscore", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// CacheDir returns the psyscore cache directory, ~/.cache/psyscore.
func CacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "psyscore")
}

// ReportDir returns the default local export directory.
func ReportDir() string {
	return filepath.Join(CacheDir(), "reports")
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
