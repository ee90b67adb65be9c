// Package config loads the score board configuration from environment
// variables with an optional YAML overlay.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full process configuration.
type Config struct {
	Port      string `yaml:"port" validate:"required"`
	StaticDir string `yaml:"static_dir"`

	Log    LogConfig    `yaml:"log"`
	Sheets SheetsConfig `yaml:"sheets"`
	Relay  RelayConfig  `yaml:"relay"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Pretty bool   `yaml:"pretty"`
}

// SheetsConfig points at the spreadsheet the scores are pulled from.
type SheetsConfig struct {
	BaseURL       string        `yaml:"base_url"`
	SpreadsheetID string        `yaml:"spreadsheet_id"`
	APIKey        string        `yaml:"api_key"`
	Timeout       time.Duration `yaml:"timeout"`
}

// RelayConfig enables the NATS snapshot relay when a URL is set.
type RelayConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Load builds the configuration from environment variables, overlays the
// YAML file at path when one is given, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		StaticDir: getEnv("STATIC_DIR", ""),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvAsBool("LOG_PRETTY", false),
		},
		Sheets: SheetsConfig{
			BaseURL:       getEnv("SHEETS_BASE_URL", ""),
			SpreadsheetID: getEnv("SPREADSHEET_ID", ""),
			APIKey:        getEnv("SHEETS_API_KEY", ""),
			Timeout:       time.Duration(getEnvAsInt("SHEETS_TIMEOUT_SEC", 30)) * time.Second,
		},
		Relay: RelayConfig{
			URL:     getEnv("NATS_URL", ""),
			Subject: getEnv("NATS_SUBJECT", "scoreboard.state"),
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
