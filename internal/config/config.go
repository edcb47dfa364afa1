// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Default threshold values. The evaluator's own pass threshold, the
// refinement acceptance threshold and the auto-send gate are deliberately
// separate knobs and must not be collapsed into one.
const (
	DefaultMinRelevanceScore      = 0.7
	DefaultQualityPassThreshold   = 0.7
	DefaultQualityAcceptThreshold = 0.8
	DefaultMaxGenerationAttempts  = 2
	DefaultMaxConcurrent          = 5
)

// Config represents the application configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults or must be
// provided via CLI flags or environment variables.
type Config struct {
	// Services
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	NewsAPIKey  string `json:"newsapi_key,omitempty"`  // NewsAPI key for company news (optional)
	SendWebhook string `json:"send_webhook,omitempty"` // Dispatch webhook URL (optional, log-only if empty)

	// Sender identity
	FromEmail string `json:"from_email,omitempty"`
	FromName  string `json:"from_name,omitempty"`

	// Pipeline thresholds
	MinRelevanceScore      float64 `json:"min_relevance_score,omitempty"`      // Leads below this analysis score are skipped
	QualityPassThreshold   float64 `json:"quality_pass_threshold,omitempty"`   // Evaluator's own passes_qa bit
	QualityAcceptThreshold float64 `json:"quality_accept_threshold,omitempty"` // Refinement loop acceptance and auto-send gate
	MaxGenerationAttempts  int     `json:"max_generation_attempts,omitempty"`  // Bounded refinement retries
	MaxConcurrent          int     `json:"max_concurrent,omitempty"`           // Batch concurrency ceiling

	// Behavior
	UseBrowser bool `json:"use_browser,omitempty"` // Use headless browser for SPA profile pages
	Verbose    bool `json:"verbose,omitempty"`     // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
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

// FromEnv builds a Config from environment variables. Used as the defaults
// layer below any config file.
func FromEnv() Config {
	return Config{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		NewsAPIKey:  os.Getenv("NEWSAPI_KEY"),
		SendWebhook: os.Getenv("SEND_WEBHOOK_URL"),
		FromEmail:   os.Getenv("FROM_EMAIL"),
		FromName:    os.Getenv("FROM_NAME"),
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.MinRelevanceScore < 0 || c.MinRelevanceScore > 1 {
		return fmt.Errorf("config error: 'min_relevance_score' must be in [0,1]")
	}
	if c.QualityPassThreshold < 0 {
		return fmt.Errorf("config error: 'quality_pass_threshold' must be non-negative")
	}
	if c.QualityAcceptThreshold < 0 {
		return fmt.Errorf("config error: 'quality_accept_threshold' must be non-negative")
	}
	if c.MaxGenerationAttempts < 0 {
		return fmt.Errorf("config error: 'max_generation_attempts' must be non-negative")
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("config error: 'max_concurrent' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values on top of env-derived defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.NewsAPIKey == "" {
		result.NewsAPIKey = defaults.NewsAPIKey
	}
	if result.SendWebhook == "" {
		result.SendWebhook = defaults.SendWebhook
	}
	if result.FromEmail == "" {
		result.FromEmail = defaults.FromEmail
	}
	if result.FromName == "" {
		result.FromName = defaults.FromName
	}

	// Numeric fields: zero means unset, fall back to default then constant
	if result.MinRelevanceScore == 0 {
		result.MinRelevanceScore = defaults.MinRelevanceScore
		if result.MinRelevanceScore == 0 {
			result.MinRelevanceScore = DefaultMinRelevanceScore
		}
	}
	if result.QualityPassThreshold == 0 {
		result.QualityPassThreshold = defaults.QualityPassThreshold
		if result.QualityPassThreshold == 0 {
			result.QualityPassThreshold = DefaultQualityPassThreshold
		}
	}
	if result.QualityAcceptThreshold == 0 {
		result.QualityAcceptThreshold = defaults.QualityAcceptThreshold
		if result.QualityAcceptThreshold == 0 {
			result.QualityAcceptThreshold = DefaultQualityAcceptThreshold
		}
	}
	if result.MaxGenerationAttempts == 0 {
		result.MaxGenerationAttempts = defaults.MaxGenerationAttempts
		if result.MaxGenerationAttempts == 0 {
			result.MaxGenerationAttempts = DefaultMaxGenerationAttempts
		}
	}
	if result.MaxConcurrent == 0 {
		result.MaxConcurrent = defaults.MaxConcurrent
		if result.MaxConcurrent == 0 {
			result.MaxConcurrent = DefaultMaxConcurrent
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
