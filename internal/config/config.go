// Package config provides configuration loading for the slide worker.
// Server tuning comes from an optional YAML file; credentials and
// endpoints come from the environment and are never defaulted silently.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the worker.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`

	// Secrets and endpoints, environment-only.
	OpenAIAPIKey       string `yaml:"-"`
	LLMModel           string `yaml:"-"`
	AWSAccessKeyID     string `yaml:"-"`
	AWSSecretAccessKey string `yaml:"-"`
	AWSRegion          string `yaml:"-"`
	S3Bucket           string `yaml:"-"`
	CallbackURL        string `yaml:"-"`
	CallbackSecret     string `yaml:"-"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// requiredVars are the environment variables the pipeline cannot run
// without. Their absence is a health-check failure, not a silent default.
var requiredVars = []string{
	"OPENAI_API_KEY",
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"S3_BUCKET",
	"WORKER_CALLBACK_URL",
	"WORKER_CALLBACK_SECRET",
}

// Load reads configuration from an optional YAML file and applies
// environment overrides. A missing required secret does not fail Load;
// it is reported by Missing so the health endpoint can surface it.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8000,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		AWSRegion: "us-east-2",
	}
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}

// Missing returns the names of required environment-backed settings
// that are not set.
func (c *Config) Missing() []string {
	values := map[string]string{
		"OPENAI_API_KEY":         c.OpenAIAPIKey,
		"AWS_ACCESS_KEY_ID":      c.AWSAccessKeyID,
		"AWS_SECRET_ACCESS_KEY":  c.AWSSecretAccessKey,
		"S3_BUCKET":              c.S3Bucket,
		"WORKER_CALLBACK_URL":    c.CallbackURL,
		"WORKER_CALLBACK_SECRET": c.CallbackSecret,
	}

	var missing []string
	for _, name := range requiredVars {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}

	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLMModel = v
	}

	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		cfg.AWSAccessKeyID = v
	}

	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		cfg.AWSSecretAccessKey = v
	}

	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.AWSRegion = v
	}

	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.S3Bucket = v
	}

	if v := os.Getenv("WORKER_CALLBACK_URL"); v != "" {
		cfg.CallbackURL = v
	}

	if v := os.Getenv("WORKER_CALLBACK_SECRET"); v != "" {
		cfg.CallbackSecret = v
	}
}
