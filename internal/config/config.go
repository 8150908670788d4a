package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the service settings read from the environment and an
// optional config.yaml
type Config struct {
	// Server
	Environment string `mapstructure:"ENVIRONMENT"`
	Port        string `mapstructure:"PORT"`
	GRPCPort    string `mapstructure:"GRPC_PORT"`

	// Storage
	DBDriver    string `mapstructure:"DB_DRIVER"`
	SQLiteFile  string `mapstructure:"SQLITE_FILE"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	// Events
	NATSURL     string `mapstructure:"NATS_URL"`
	NATSSubject string `mapstructure:"NATS_SUBJECT"`
	EventStream string `mapstructure:"EVENT_STREAM"`

	// Projections
	ClickHouseAddr     string `mapstructure:"CLICKHOUSE_ADDR"`
	ClickHouseDB       string `mapstructure:"CLICKHOUSE_DB"`
	ClickHouseUser     string `mapstructure:"CLICKHOUSE_USER"`
	ClickHousePassword string `mapstructure:"CLICKHOUSE_PASSWORD"`
	ProjectionSyncCron string `mapstructure:"PROJECTION_SYNC_CRON"`

	// Auth
	AuthentikBaseURL      string `mapstructure:"AUTHENTIK_BASE_URL"`
	AuthentikClientID     string `mapstructure:"AUTHENTIK_CLIENT_ID"`
	AuthentikClientSecret string `mapstructure:"AUTHENTIK_CLIENT_SECRET"`
	AuthentikRedirectURL  string `mapstructure:"AUTHENTIK_REDIRECT_URL"`

	// Rationale summarizer
	LLMAPIKey         string        `mapstructure:"LLM_API_KEY"`
	LLMBaseURL        string        `mapstructure:"LLM_BASE_URL"`
	LLMModel          string        `mapstructure:"LLM_MODEL"`
	LLMRatePerSec     float64       `mapstructure:"LLM_RATE_PER_SEC"`
	SummarizerTimeout time.Duration `mapstructure:"SUMMARIZER_TIMEOUT"`

	// Data files
	ValuationFile string `mapstructure:"VALUATION_FILE"`
	CatalogFile   string `mapstructure:"CATALOG_FILE"`
}

var keys = map[string]any{
	"ENVIRONMENT":             "development",
	"PORT":                    "3000",
	"GRPC_PORT":               "50051",
	"DB_DRIVER":               "memory",
	"SQLITE_FILE":             "dev.sqlite",
	"DATABASE_URL":            "",
	"REDIS_URL":               "",
	"NATS_URL":                "nats://localhost:4222",
	"NATS_SUBJECT":            "draft.events",
	"EVENT_STREAM":            "",
	"CLICKHOUSE_ADDR":         "",
	"CLICKHOUSE_DB":           "default",
	"CLICKHOUSE_USER":         "default",
	"CLICKHOUSE_PASSWORD":     "",
	"PROJECTION_SYNC_CRON":    "0 */5 * * * *",
	"AUTHENTIK_BASE_URL":      "",
	"AUTHENTIK_CLIENT_ID":     "",
	"AUTHENTIK_CLIENT_SECRET": "",
	"AUTHENTIK_REDIRECT_URL":  "http://localhost:3000/auth/callback",
	"LLM_API_KEY":             "",
	"LLM_BASE_URL":            "https://api.anthropic.com",
	"LLM_MODEL":               "claude-3-5-haiku-latest",
	"LLM_RATE_PER_SEC":        1.0,
	"SUMMARIZER_TIMEOUT":      "3s",
	"VALUATION_FILE":          "",
	"CATALOG_FILE":            "",
}

// Load reads config.yaml from the working directory if present, then lets
// environment variables override it
func Load() (*Config, error) {
	return load(viper.New(), ".")
}

func load(v *viper.Viper, dirs ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	for key, value := range keys {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment reports whether local stand-ins replace external services
func (c *Config) IsDevelopment() bool {
	return c.Environment == "" || c.Environment == "development"
}

// IsProduction reports whether the production requirements apply
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate checks the settings needed by the selected drivers
func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case "memory", "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case "redis":
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q (valid: memory, sqlite, postgres, redis)", c.DBDriver))
	}

	if c.IsProduction() {
		if c.AuthentikBaseURL == "" || c.AuthentikClientID == "" || c.AuthentikClientSecret == "" {
			errs = append(errs, errors.New("AUTHENTIK_BASE_URL, AUTHENTIK_CLIENT_ID and AUTHENTIK_CLIENT_SECRET are required in production"))
		}
		if c.NATSURL == "" {
			errs = append(errs, errors.New("NATS_URL is required in production"))
		}
	}
	if c.LLMRatePerSec < 0 {
		errs = append(errs, errors.New("LLM_RATE_PER_SEC must not be negative"))
	}
	if c.SummarizerTimeout <= 0 {
		errs = append(errs, errors.New("SUMMARIZER_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}
