package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"inkflow/internal/validation"
)

// EnvPrefix is the prefix of environment variables read by Load
const EnvPrefix = "INKFLOW"

// Config holds application configuration
type Config struct {
	DatabaseType string `mapstructure:"database_type"`
	DatabasePath string `mapstructure:"database_path"`
	DatabaseURL  string `mapstructure:"database_url"`

	// UserID owns the cards and settings the CLI works on
	UserID string `mapstructure:"user_id"`

	LogLevel      string `mapstructure:"log_level"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
	LogMaxAgeDays int    `mapstructure:"log_max_age_days"`
	LogCompress   bool   `mapstructure:"log_compress"`

	ReminderInterval  time.Duration `mapstructure:"reminder_interval"`
	ReminderStartHour int           `mapstructure:"reminder_start_hour"`
	ReminderEndHour   int           `mapstructure:"reminder_end_hour"`
	ReminderEmail     string        `mapstructure:"reminder_email"`

	SESRegion    string `mapstructure:"ses_region"`
	SESFromEmail string `mapstructure:"ses_from_email"`
	SESFromName  string `mapstructure:"ses_from_name"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		DatabaseType:      "sqlite",
		DatabasePath:      "./inkflow.db",
		UserID:            "default",
		LogLevel:          "info",
		LogMaxSizeMB:      10,
		LogMaxBackups:     3,
		LogMaxAgeDays:     28,
		ReminderInterval:  time.Hour,
		ReminderStartHour: 8,
		ReminderEndHour:   20,
		SESFromName:       "InkFlow",
	}
}

// Load reads configuration. Precedence (later overrides earlier):
//  1. Default() values
//  2. the file named by the "config" key (YAML)
//  3. a .env file in the working directory, or the one named by "env_file"
//  4. environment variables (INKFLOW_*)
//  5. CLI flags already bound to v
func Load(v *viper.Viper) (*Config, error) {
	envFile := v.GetString("env_file")
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables already set in the environment
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	def := Default()
	v.SetDefault("database_type", def.DatabaseType)
	v.SetDefault("database_path", def.DatabasePath)
	v.SetDefault("database_url", def.DatabaseURL)
	v.SetDefault("user_id", def.UserID)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("log_max_size_mb", def.LogMaxSizeMB)
	v.SetDefault("log_max_backups", def.LogMaxBackups)
	v.SetDefault("log_max_age_days", def.LogMaxAgeDays)
	v.SetDefault("log_compress", def.LogCompress)
	v.SetDefault("reminder_interval", def.ReminderInterval)
	v.SetDefault("reminder_start_hour", def.ReminderStartHour)
	v.SetDefault("reminder_end_hour", def.ReminderEndHour)
	v.SetDefault("reminder_email", def.ReminderEmail)
	v.SetDefault("ses_region", def.SESRegion)
	v.SetDefault("ses_from_email", def.SESFromEmail)
	v.SetDefault("ses_from_name", def.SESFromName)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be caught by decoding
func (c *Config) Validate() error {
	switch strings.ToLower(c.DatabaseType) {
	case "sqlite", "sqlite3", "":
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required for %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
	if c.UserID == "" {
		return errors.New("user_id must not be empty")
	}
	if c.ReminderStartHour < 0 || c.ReminderStartHour > 23 || c.ReminderEndHour < 0 || c.ReminderEndHour > 23 {
		return fmt.Errorf("reminder hours must be between 0 and 23, got %d-%d", c.ReminderStartHour, c.ReminderEndHour)
	}
	if c.ReminderInterval <= 0 {
		return fmt.Errorf("reminder_interval must be positive, got %s", c.ReminderInterval)
	}
	if c.ReminderEmail != "" {
		if err := validation.ValidateEmail("reminder_email", c.ReminderEmail); err != nil {
			return err
		}
	}
	if c.SESFromEmail != "" {
		if err := validation.ValidateEmail("ses_from_email", c.SESFromEmail); err != nil {
			return err
		}
	}
	return nil
}
