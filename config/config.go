// ABOUTME: This file implements configuration management with environment variable support
// ABOUTME: Provides validation and defaults for the status-report pipeline
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Tracker    TrackerConfig    `json:"tracker"`
	Summarizer SummarizerConfig `json:"summarizer"`
	Report     ReportConfig     `json:"report"`
	Retry      RetryConfig      `json:"retry"`
	Pipeline   PipelineConfig   `json:"pipeline"`
}

type TrackerConfig struct {
	BaseURL    string        `json:"base_url" env:"JIRA_URL"`
	Token      string        `json:"-" env:"JIRA_TOKEN"`
	JQL        string        `json:"jql" env:"JIRA_JQL"`
	MaxResults int           `json:"max_results" env:"JIRA_MAX_RESULTS" default:"50"`
	Timeout    time.Duration `json:"timeout" env:"JIRA_TIMEOUT" default:"30s"`
}

type SummarizerConfig struct {
	Host           string        `json:"host" env:"OLLAMA_HOST" default:"http://localhost:11434"`
	APIPath        string        `json:"api_path" env:"OLLAMA_API_PATH" default:"/api/generate"`
	Model          string        `json:"model" env:"OLLAMA_MODEL" default:"llama3"`
	Timeout        time.Duration `json:"timeout" env:"OLLAMA_TIMEOUT" default:"240s"` // Extended for LLM processing
	MaxPromptRunes int           `json:"max_prompt_runes" env:"SUMMARY_MAX_PROMPT_RUNES" default:"6000"`
}

type ReportConfig struct {
	Title      string `json:"title" env:"REPORT_TITLE" default:"Status Report"`
	OutputPath string `json:"output_path" env:"REPORT_OUTPUT_PATH" default:"status_report.docx"`
}

type RetryConfig struct {
	MaxAttempts   int           `json:"max_attempts" env:"SUMMARY_RETRY_MAX_ATTEMPTS" default:"1"`
	BaseDelay     time.Duration `json:"base_delay" env:"SUMMARY_RETRY_BASE_DELAY" default:"1s"`
	MaxDelay      time.Duration `json:"max_delay" env:"SUMMARY_RETRY_MAX_DELAY" default:"30s"`
	BackoffFactor float64       `json:"backoff_factor" env:"SUMMARY_RETRY_BACKOFF_FACTOR" default:"2.0"`
	JitterFactor  float64       `json:"jitter_factor" env:"SUMMARY_RETRY_JITTER_FACTOR" default:"0.1"`
}

type PipelineConfig struct {
	SummaryConcurrency int `json:"summary_concurrency" env:"SUMMARY_CONCURRENCY" default:"1"`
}

// LoadConfig reads configuration from the environment, honoring a local .env
// file when present. Defaults are applied before validation.
func LoadConfig() (*Config, error) {
	// A missing .env file is not an error; real environment wins either way.
	_ = godotenv.Load()

	config := &Config{}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func loadFromEnv(config *Config) error {
	var err error

	// Tracker config
	config.Tracker.BaseURL = os.Getenv("JIRA_URL")
	config.Tracker.Token = os.Getenv("JIRA_TOKEN")
	config.Tracker.JQL = os.Getenv("JIRA_JQL")

	if config.Tracker.MaxResults, err = intFromEnv("JIRA_MAX_RESULTS", 50); err != nil {
		return err
	}
	if config.Tracker.Timeout, err = durationFromEnv("JIRA_TIMEOUT", 30*time.Second); err != nil {
		return err
	}

	// Summarizer config
	config.Summarizer.Host = stringFromEnv("OLLAMA_HOST", "http://localhost:11434")
	config.Summarizer.APIPath = stringFromEnv("OLLAMA_API_PATH", "/api/generate")
	config.Summarizer.Model = stringFromEnv("OLLAMA_MODEL", "llama3")

	if config.Summarizer.Timeout, err = durationFromEnv("OLLAMA_TIMEOUT", 240*time.Second); err != nil {
		return err
	}
	if config.Summarizer.MaxPromptRunes, err = intFromEnv("SUMMARY_MAX_PROMPT_RUNES", 6000); err != nil {
		return err
	}

	// Report config
	config.Report.Title = stringFromEnv("REPORT_TITLE", "Status Report")
	config.Report.OutputPath = stringFromEnv("REPORT_OUTPUT_PATH", "status_report.docx")

	// Retry config
	if config.Retry.MaxAttempts, err = intFromEnv("SUMMARY_RETRY_MAX_ATTEMPTS", 1); err != nil {
		return err
	}
	if config.Retry.BaseDelay, err = durationFromEnv("SUMMARY_RETRY_BASE_DELAY", time.Second); err != nil {
		return err
	}
	if config.Retry.MaxDelay, err = durationFromEnv("SUMMARY_RETRY_MAX_DELAY", 30*time.Second); err != nil {
		return err
	}
	if config.Retry.BackoffFactor, err = floatFromEnv("SUMMARY_RETRY_BACKOFF_FACTOR", 2.0); err != nil {
		return err
	}
	if config.Retry.JitterFactor, err = floatFromEnv("SUMMARY_RETRY_JITTER_FACTOR", 0.1); err != nil {
		return err
	}

	// Pipeline config
	if config.Pipeline.SummaryConcurrency, err = intFromEnv("SUMMARY_CONCURRENCY", 1); err != nil {
		return err
	}

	return nil
}

func validateConfig(config *Config) error {
	if config.Tracker.BaseURL == "" {
		return fmt.Errorf("JIRA_URL must be set")
	}
	if config.Tracker.Token == "" {
		return fmt.Errorf("JIRA_TOKEN must be set")
	}
	if config.Tracker.JQL == "" {
		return fmt.Errorf("JIRA_JQL must be set")
	}
	if config.Tracker.MaxResults <= 0 {
		return fmt.Errorf("JIRA_MAX_RESULTS must be positive, got %d", config.Tracker.MaxResults)
	}
	if config.Summarizer.MaxPromptRunes <= 0 {
		return fmt.Errorf("SUMMARY_MAX_PROMPT_RUNES must be positive, got %d", config.Summarizer.MaxPromptRunes)
	}
	if config.Retry.MaxAttempts < 1 {
		return fmt.Errorf("SUMMARY_RETRY_MAX_ATTEMPTS must be at least 1, got %d", config.Retry.MaxAttempts)
	}
	if config.Pipeline.SummaryConcurrency < 1 {
		return fmt.Errorf("SUMMARY_CONCURRENCY must be at least 1, got %d", config.Pipeline.SummaryConcurrency)
	}

	return nil
}

func stringFromEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intFromEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}

	return parsed, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}

	return parsed, nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}

	return parsed, nil
}
