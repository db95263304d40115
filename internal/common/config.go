package common

import (
	"os"
	"strconv"
	"time"

	"github.com/olamide-oso/docfields/constants"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	LLM        LLMConfig
	Preprocess PreprocessConfig
	Pipeline   PipelineConfig
}

// DatabaseConfig holds the optional run-history store configuration
type DatabaseConfig struct {
	Driver      string // "sqlite" or "postgres"
	DSN         string
	DialTimeout time.Duration
}

// LLMConfig holds provider configuration shared by both agents
type LLMConfig struct {
	Provider    string // "openai" | "anthropic" | "gemini"
	Model       string
	APIKey      string
	Temperature float64
	Timeout     time.Duration
}

// PreprocessConfig holds PDF/image preprocessing configuration
type PreprocessConfig struct {
	Pdftotext string
	Pdftoppm  string
	DPI       int
	MaxPages  int
}

// PipelineConfig holds per-run orchestration defaults
type PipelineConfig struct {
	Workers      int
	PercentScale constants.PercentScale
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:      getEnv("DB_DRIVER", "sqlite"),
			DSN:         getEnv("DB_URL", ""),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "openai"),
			Model:       getEnv("LLM_MODEL", "gpt-4o"),
			APIKey:      getEnv("LLM_API_KEY", os.Getenv("OPENAI_API_KEY")),
			Temperature: getEnvAsFloat64("LLM_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
		},
		Preprocess: PreprocessConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			DPI:       getEnvAsInt("PREPROCESS_DPI", 150),
			MaxPages:  getEnvAsInt("PREPROCESS_MAX_PAGES", 0),
		},
		Pipeline: PipelineConfig{
			Workers:      getEnvAsInt("PIPELINE_WORKERS", 4),
			PercentScale: constants.PercentScale(getEnv("PERCENT_SCALE", string(constants.ScaleUnit))),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError(CodeConfig, "LLM_API_KEY is required", ErrInvalidInput)
	}
	if !constants.ValidScale(c.Pipeline.PercentScale) {
		return NewAppError(CodeConfig, "PERCENT_SCALE must be '0-1' or '0-100'", ErrInvalidInput)
	}
	if c.Pipeline.Workers <= 0 {
		return NewAppError(CodeConfig, "PIPELINE_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}
