package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// WindowBucket defines one explicit time-of-day window in site config.
// Times are "HH:MM" strings, converted to minute-of-day at load.
type WindowBucket struct {
	Label string `yaml:"label" validate:"required"`
	Start string `yaml:"start" validate:"required"`
	End   string `yaml:"end" validate:"required"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	// TeeSheetSpreadsheetID is the Google Sheet the final tee sheet is
	// published to; optional, publishing is skipped without it.
	TeeSheetSpreadsheetID string `yaml:"teeSheetSpreadsheetID,omitempty"`

	// Operating hours, "HH:MM"
	OpenTime  string `yaml:"openTime" validate:"required"`
	CloseTime string `yaml:"closeTime" validate:"required"`

	// WindowCount splits the day evenly into 1-4 named windows.
	// Explicit windows override it when present.
	WindowCount int            `yaml:"windowCount,omitempty" validate:"omitempty,min=1,max=4"`
	Windows     []WindowBucket `yaml:"windows,omitempty" validate:"dive"`

	MaxPartySize int `yaml:"maxPartySize" validate:"required,min=2,max=8"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads and validates the configuration with an environment
// suffix, e.g. env="prod" reads "fairway_config.prod.yaml". The file is
// searched for in the current directory, then the user's home directory.
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, the time strings, and the
// window definitions. A config that fails here must abort the run: every
// downstream preference match depends on the windows.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	open, err := ParseMinuteOfDay(cfg.OpenTime)
	if err != nil {
		return fmt.Errorf("invalid openTime: %w", err)
	}
	close, err := ParseMinuteOfDay(cfg.CloseTime)
	if err != nil {
		return fmt.Errorf("invalid closeTime: %w", err)
	}
	if close <= open {
		return fmt.Errorf("closeTime %s is not after openTime %s", cfg.CloseTime, cfg.OpenTime)
	}

	if len(cfg.Windows) == 0 && cfg.WindowCount == 0 {
		return fmt.Errorf("either windowCount or explicit windows must be configured")
	}
	for i, w := range cfg.Windows {
		if _, err := ParseMinuteOfDay(w.Start); err != nil {
			return fmt.Errorf("invalid start in windows[%d]: %w", i, err)
		}
		if _, err := ParseMinuteOfDay(w.End); err != nil {
			return fmt.Errorf("invalid end in windows[%d]: %w", i, err)
		}
	}

	return nil
}

// ParseMinuteOfDay converts an "HH:MM" string to minute-of-day
func ParseMinuteOfDay(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("time %q is not in HH:MM format", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("time %q has a bad hour: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("time %q has a bad minute: %w", s, err)
	}
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("time %q is outside the day", s)
	}
	return hour*60 + minute, nil
}

// findConfigFile searches for fairway_config.<env>.yaml in the current
// directory and the home directory.
func findConfigFile(env string) (string, error) {
	configFileName := "fairway_config.yaml"
	if env != "" {
		configFileName = "fairway_config." + env + ".yaml"
	}

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file %s not found in current directory or home directory", configFileName)
}
