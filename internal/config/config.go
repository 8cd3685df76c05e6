package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string   `mapstructure:"PORT"`
	Env           string   `mapstructure:"ENV"`
	CORSOrigins   []string `mapstructure:"CORS_ORIGINS"`
	UploadLimit   string   `mapstructure:"UPLOAD_LIMIT"`
	RiskThreshold float64  `mapstructure:"RISK_THRESHOLD"`

	MeetingTimezone string `mapstructure:"MEETING_TIMEZONE"`
	CalendarID      string `mapstructure:"CALENDAR_ID"`
	CalendarBaseURL string `mapstructure:"CALENDAR_BASE_URL"`

	// CalendarAuthMode selects how the calendar client authenticates:
	// "authorized-user" (token file + silent refresh), "service-account"
	// (signed JWT assertion), or "static" (fixed bearer token).
	CalendarAuthMode        string `mapstructure:"CALENDAR_AUTH_MODE"`
	CalendarTokenFile       string `mapstructure:"CALENDAR_TOKEN_FILE"`
	CalendarCredentialsFile string `mapstructure:"CALENDAR_CREDENTIALS_FILE"`
	CalendarStaticToken     string `mapstructure:"CALENDAR_STATIC_TOKEN"`

	// DatabaseURL is optional: when set, scheduling attempts are logged to
	// Postgres instead of the in-memory store.
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32  `mapstructure:"DB_MIN_CONNS"`
	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("UPLOAD_LIMIT", "10M")
	v.SetDefault("RISK_THRESHOLD", 0.7)
	v.SetDefault("MEETING_TIMEZONE", "IST")
	v.SetDefault("CALENDAR_ID", "primary")
	v.SetDefault("CALENDAR_BASE_URL", "https://www.googleapis.com/calendar/v3")
	v.SetDefault("CALENDAR_AUTH_MODE", "authorized-user")
	v.SetDefault("CALENDAR_TOKEN_FILE", "token.json")
	v.SetDefault("CALENDAR_CREDENTIALS_FILE", "client_secret.json")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("MIGRATIONS_DIR", "migrations")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("UPLOAD_LIMIT")
	v.BindEnv("RISK_THRESHOLD")
	v.BindEnv("MEETING_TIMEZONE")
	v.BindEnv("CALENDAR_ID")
	v.BindEnv("CALENDAR_BASE_URL")
	v.BindEnv("CALENDAR_AUTH_MODE")
	v.BindEnv("CALENDAR_TOKEN_FILE")
	v.BindEnv("CALENDAR_CREDENTIALS_FILE")
	v.BindEnv("CALENDAR_STATIC_TOKEN")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("MIGRATIONS_DIR")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run with.
func (c *Config) Validate() error {
	if c.RiskThreshold < 0 || c.RiskThreshold > 1 {
		return fmt.Errorf("RISK_THRESHOLD must be within [0, 1], got %v", c.RiskThreshold)
	}

	switch c.CalendarAuthMode {
	case "authorized-user":
		if c.CalendarTokenFile == "" {
			return fmt.Errorf("CALENDAR_TOKEN_FILE is required when CALENDAR_AUTH_MODE is \"authorized-user\"")
		}
	case "service-account":
		if c.CalendarCredentialsFile == "" {
			return fmt.Errorf("CALENDAR_CREDENTIALS_FILE is required when CALENDAR_AUTH_MODE is \"service-account\"")
		}
	case "static":
		if c.CalendarStaticToken == "" {
			return fmt.Errorf("CALENDAR_STATIC_TOKEN is required when CALENDAR_AUTH_MODE is \"static\"")
		}
	default:
		return fmt.Errorf("CALENDAR_AUTH_MODE must be \"authorized-user\", \"service-account\", or \"static\", got %q", c.CalendarAuthMode)
	}

	if c.MeetingTimezone == "" {
		return fmt.Errorf("MEETING_TIMEZONE must not be empty")
	}

	return nil
}
