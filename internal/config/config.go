package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

type Config struct {
	HttpPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	DbHost     string `env:"DB_HOST" envDefault:"postgres"`
	DbPort     string `env:"DB_PORT" envDefault:"5432"`
	DbUser     string `env:"DB_USER" envDefault:"user"`
	DbPassword string `env:"DB_PASSWORD" envDefault:"password"`
	DbName     string `env:"DB_NAME" envDefault:"operations"`
	DbMaxConns int    `env:"DB_MAX_CONNS" envDefault:"10"`

	RedisHost string        `env:"REDIS_HOST" envDefault:"redis"`
	RedisPort string        `env:"REDIS_PORT" envDefault:"6379"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	ChHost     string `env:"CLICKHOUSE_HOST" envDefault:"clickhouse"`
	ChPort     string `env:"CLICKHOUSE_PORT" envDefault:"9000"`
	ChDatabase string `env:"CLICKHOUSE_DB" envDefault:"default"`

	NatsURL       string `env:"NATS_URL" envDefault:"nats://nats:4222"`
	NatsSubject   string `env:"NATS_SUBJECT_PREFIX" envDefault:"dashboard"`
	EventsEnabled bool   `env:"EVENTS_ENABLED" envDefault:"true"`

	JiraBaseURL     string `env:"JIRA_BASE_URL" envDefault:"https://projectcolibri.atlassian.net"`
	JiraEmail       string `env:"JIRA_EMAIL"`
	JiraAPIToken    string `env:"JIRA_API_TOKEN"`
	JiraAPIExpiry   string `env:"JIRA_API_EXPIRY" envDefault:"2027-01-20"`
	JiraWarningDays int    `env:"JIRA_WARNING_DAYS" envDefault:"30"`

	IgnitionBaseURL       string `env:"IGNITION_API_BASE_URL"`
	IgnitionUsername      string `env:"IGNITION_API_USERNAME"`
	IgnitionPassword      string `env:"IGNITION_API_PASSWORD"`
	IgnitionSkipTLSVerify bool   `env:"IGNITION_SKIP_TLS_VERIFY" envDefault:"false"`

	PowerAutomateURL string `env:"POWER_AUTOMATE_URL"`

	AuthEnabled      bool          `env:"AUTH_ENABLED" envDefault:"false"`
	AuthUsername     string        `env:"AUTH_USERNAME" envDefault:"admin"`
	AuthPasswordHash string        `env:"AUTH_PASSWORD_HASH"`
	JWTSecret        string        `env:"JWT_SECRET"`
	TokenTTL         time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	S3Endpoint  string `env:"REPORT_S3_ENDPOINT"`
	S3Bucket    string `env:"REPORT_S3_BUCKET"`
	S3Region    string `env:"REPORT_S3_REGION" envDefault:"us-east-1"`
	S3AccessKey string `env:"REPORT_S3_ACCESS_KEY"`
	S3SecretKey string `env:"REPORT_S3_SECRET_KEY"`
	S3UseSSL    bool   `env:"REPORT_S3_USE_SSL" envDefault:"true"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.HttpPort == "" {
		errs = append(errs, errors.New("HTTP_PORT must not be empty"))
	}
	if c.DbMaxConns < 1 {
		errs = append(errs, errors.New("DB_MAX_CONNS must be at least 1"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}
	if c.AuthEnabled && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when AUTH_ENABLED is set"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if _, err := time.Parse("2006-01-02", c.JiraAPIExpiry); err != nil {
		errs = append(errs, fmt.Errorf("JIRA_API_EXPIRY must be YYYY-MM-DD: %w", err))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		c.DbUser, c.DbPassword, net.JoinHostPort(c.DbHost, c.DbPort), c.DbName)
}

func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, c.RedisPort)
}

func (c *Config) ClickhouseAddr() string {
	return net.JoinHostPort(c.ChHost, c.ChPort)
}

func (c *Config) ArchiveEnabled() bool {
	return c.S3Bucket != "" && c.S3Endpoint != ""
}
