// Package config provides configuration loading and validation for the
// server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Adapter names accepted for LLM_ADAPTER.
const (
	AdapterStub   = "stub"
	AdapterGemini = "gemini"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Config holds everything the server and CLI need. All fields are optional
// in the JSON file; missing values use defaults or environment variables.
type Config struct {
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	GeminiKey   string `json:"gemini_api_key,omitempty"`
	Adapter     string `json:"llm_adapter,omitempty"` // "stub" or "gemini"
	Model       string `json:"llm_model,omitempty"`
	Port        int    `json:"port,omitempty"` // HTTP listen port
	Verbose     bool   `json:"verbose,omitempty"`
}

// LoadFile loads configuration from a JSON file.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables, loading .env first if
// one exists in the working directory.
func FromEnv() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		GeminiKey:   os.Getenv("GEMINI_API_KEY"),
		Adapter:     os.Getenv("LLM_ADAPTER"),
		Model:       os.Getenv("LLM_MODEL"),
	}
	if raw := os.Getenv("PORT"); raw != "" {
		if port, err := strconv.Atoi(raw); err == nil {
			cfg.Port = port
		}
	}
	return cfg
}

// Validate checks that the configuration has valid values. Required fields
// are not checked here; the commands decide what they need after merging.
func (c *Config) Validate() error {
	switch c.Adapter {
	case "", AdapterStub, AdapterGemini:
	default:
		return fmt.Errorf("config error: 'llm_adapter' must be %q or %q, got %q", AdapterStub, AdapterGemini, c.Adapter)
	}

	if c.Adapter == AdapterGemini && c.GeminiKey == "" {
		return fmt.Errorf("config error: 'gemini_api_key' is required when llm_adapter is %q", AdapterGemini)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be in 0..65535, got %d", c.Port)
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. File values win over environment values when both are set.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.GeminiKey == "" {
		result.GeminiKey = defaults.GeminiKey
	}
	if result.Adapter == "" {
		result.Adapter = defaults.Adapter
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge.

	if result.Adapter == "" {
		result.Adapter = AdapterStub
	}
	if result.Model == "" {
		if result.Adapter == AdapterGemini {
			result.Model = DefaultModel
		} else {
			result.Model = AdapterStub
		}
	}
	if result.Port == 0 {
		result.Port = 8080
	}

	return result
}
