package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rewired-gh/optionpricer/internal/pricing"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Pricing   PricingConfig    `mapstructure:"pricing"`
	Scenarios []ScenarioConfig `mapstructure:"scenarios"`
	Storage   StorageConfig    `mapstructure:"storage"`
	Report    ReportConfig     `mapstructure:"report"`
	Telegram  TelegramConfig   `mapstructure:"telegram"`
	Logging   LoggingConfig    `mapstructure:"logging"`
}

// PricingConfig holds engine and runner settings
type PricingConfig struct {
	Steps                  int     `mapstructure:"steps"`
	Workers                int     `mapstructure:"workers"`
	Exercise               string  `mapstructure:"exercise"`
	EarlyExerciseTolerance float64 `mapstructure:"early_exercise_tolerance"`
}

// ScenarioConfig describes one market scenario of the battery.
// An empty scenario list means the built-in battery is used.
type ScenarioConfig struct {
	Name       string  `mapstructure:"name"`
	Kind       string  `mapstructure:"kind"`
	Spot       float64 `mapstructure:"spot"`
	Strike     float64 `mapstructure:"strike"`
	Rate       float64 `mapstructure:"rate"`
	Volatility float64 `mapstructure:"volatility"`
	Maturity   float64 `mapstructure:"maturity"`
}

// StorageConfig holds the result store configuration
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
	MaxRuns int    `mapstructure:"max_runs"`
}

// ReportConfig holds CSV and console report configuration
type ReportConfig struct {
	CSVPath string `mapstructure:"csv_path"`
	TopK    int    `mapstructure:"top_k"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
// An empty path skips the file and uses defaults plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Enable environment variable override, e.g. OPTION_PRICER_PRICING_STEPS
	v.SetEnvPrefix("OPTION_PRICER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Pricing defaults
	v.SetDefault("pricing.steps", 1000)
	v.SetDefault("pricing.workers", 4)
	v.SetDefault("pricing.exercise", "american")
	v.SetDefault("pricing.early_exercise_tolerance", 1e-6)

	// Storage defaults
	v.SetDefault("storage.enabled", true)
	v.SetDefault("storage.db_path", "./data/option-pricer.db")
	v.SetDefault("storage.max_runs", 100)

	// Report defaults
	v.SetDefault("report.csv_path", "./docs/pricing_comparison.csv")
	v.SetDefault("report.top_k", 5)

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Pricing config
	if c.Pricing.Steps < 1 {
		return fmt.Errorf("pricing.steps must be at least 1")
	}
	if c.Pricing.Steps > pricing.MaxSteps {
		return fmt.Errorf("pricing.steps must not exceed %d", pricing.MaxSteps)
	}
	if c.Pricing.Workers < 1 {
		return fmt.Errorf("pricing.workers must be at least 1")
	}
	validExercise := map[string]bool{"american": true, "european": true}
	if !validExercise[strings.ToLower(c.Pricing.Exercise)] {
		return fmt.Errorf("pricing.exercise must be one of: american, european")
	}
	if c.Pricing.EarlyExerciseTolerance < 0 {
		return fmt.Errorf("pricing.early_exercise_tolerance must not be negative")
	}

	// Validate Scenarios
	seen := make(map[string]bool)
	for i, s := range c.Scenarios {
		if s.Name == "" {
			return fmt.Errorf("scenarios[%d].name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("scenarios[%d].name %q is duplicated", i, s.Name)
		}
		seen[s.Name] = true
		if _, err := pricing.ParseOptionKind(s.Kind); err != nil {
			return fmt.Errorf("scenarios[%d].kind must be one of: call, put", i)
		}
		if s.Spot <= 0 {
			return fmt.Errorf("scenarios[%d].spot must be positive", i)
		}
		if s.Strike <= 0 {
			return fmt.Errorf("scenarios[%d].strike must be positive", i)
		}
		if s.Volatility < 0 {
			return fmt.Errorf("scenarios[%d].volatility must not be negative", i)
		}
		if s.Maturity < 0 {
			return fmt.Errorf("scenarios[%d].maturity must not be negative", i)
		}
	}

	// Validate Storage config
	if c.Storage.Enabled {
		if c.Storage.DBPath == "" {
			return fmt.Errorf("storage.db_path is required when storage is enabled")
		}
		if c.Storage.MaxRuns < 1 {
			return fmt.Errorf("storage.max_runs must be at least 1")
		}
	}

	// Validate Report config
	if c.Report.TopK < 1 {
		return fmt.Errorf("report.top_k must be at least 1")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
