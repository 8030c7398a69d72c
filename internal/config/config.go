// Package config loads the platform configuration from config.yaml with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the travel platform server.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Agent    AgentConfig    `yaml:"agent"`
	Payment  PaymentConfig  `yaml:"payment"`
	Notifier NotifierConfig `yaml:"notifier"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Weather  WeatherConfig  `yaml:"weather"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string `yaml:"host" env:"SERVER_HOST"`
	Port            int    `yaml:"port" env:"SERVER_PORT"`
	ReadTimeoutSec  int    `yaml:"read_timeout_seconds" env:"SERVER_READ_TIMEOUT"`
	WriteTimeoutSec int    `yaml:"write_timeout_seconds" env:"SERVER_WRITE_TIMEOUT"`
}

// DatabaseConfig controls the SQL connection pool. An empty DSN selects the
// in-memory store.
type DatabaseConfig struct {
	Driver             string `yaml:"driver" env:"DATABASE_DRIVER"`
	DSN                string `yaml:"dsn" env:"DATABASE_DSN"`
	MaxOpenConns       int    `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns       int    `yaml:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_seconds" env:"DATABASE_CONN_MAX_LIFETIME"`
	MigrationsPath     string `yaml:"migrations_path" env:"DATABASE_MIGRATIONS_PATH"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
	Output string `yaml:"output" env:"LOG_OUTPUT"`
}

// RedisConfig configures the optional weather report cache.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// AuthConfig holds the JWT signing secret for the gateway.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

// AgentConfig points the agent gateway at a hosted chat-completion API.
type AgentConfig struct {
	BaseURL string `yaml:"base_url" env:"AGENT_BASE_URL"`
	APIKey  string `yaml:"api_key" env:"AGENT_API_KEY"`
	Model   string `yaml:"model" env:"AGENT_MODEL"`
}

// PaymentConfig points charges at a hosted card processor. With no secret key
// the server settles charges through the simulated gateway.
type PaymentConfig struct {
	BaseURL   string `yaml:"base_url" env:"PAYMENT_BASE_URL"`
	SecretKey string `yaml:"secret_key" env:"PAYMENT_SECRET_KEY"`
}

// NotifierConfig enables outbound alert channels. Channels with empty
// endpoints are skipped by the broadcast.
type NotifierConfig struct {
	SMTPHost          string   `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort          int      `yaml:"smtp_port" env:"SMTP_PORT"`
	SMTPUsername      string   `yaml:"smtp_username" env:"SMTP_USERNAME"`
	SMTPPassword      string   `yaml:"smtp_password" env:"SMTP_PASSWORD"`
	FromAddress       string   `yaml:"from_address" env:"ALERT_FROM_EMAIL"`
	EmailRecipients   []string `yaml:"email_recipients"`
	SlackWebhookURL   string   `yaml:"slack_webhook_url" env:"SLACK_WEBHOOK_URL"`
	DiscordWebhookURL string   `yaml:"discord_webhook_url" env:"DISCORD_WEBHOOK_URL"`
	LINEToken         string   `yaml:"line_token" env:"LINE_NOTIFY_TOKEN"`
}

// MonitorConfig controls the system monitor loop.
type MonitorConfig struct {
	IntervalSec          int     `yaml:"interval_seconds" env:"MONITOR_INTERVAL"`
	CPUPercent           float64 `yaml:"cpu_percent" env:"MONITOR_CPU_THRESHOLD"`
	MemoryPercent        float64 `yaml:"memory_percent" env:"MONITOR_MEMORY_THRESHOLD"`
	DiskPercent          float64 `yaml:"disk_percent" env:"MONITOR_DISK_THRESHOLD"`
	NetworkErrorRate     float64 `yaml:"network_error_rate" env:"MONITOR_NET_ERROR_RATE"`
	DiskPath             string  `yaml:"disk_path" env:"MONITOR_DISK_PATH"`
	DisableSystemMonitor bool    `yaml:"disabled" env:"MONITOR_DISABLED"`
}

// WeatherConfig controls the space weather refresher.
type WeatherConfig struct {
	RefreshSpec string `yaml:"refresh_spec" env:"WEATHER_REFRESH_SPEC"`
	CacheTTLSec int    `yaml:"cache_ttl_seconds" env:"WEATHER_CACHE_TTL"`
}

// Default returns the configuration used when no file or overrides are given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeoutSec:  15,
			WriteTimeoutSec: 30,
		},
		Database: DatabaseConfig{
			Driver:             "postgres",
			MaxOpenConns:       25,
			MaxIdleConns:       5,
			ConnMaxLifetimeSec: 300,
			MigrationsPath:     "migrations",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Agent: AgentConfig{
			BaseURL: "https://api.openai.com",
			Model:   "gpt-4",
		},
		Notifier: NotifierConfig{
			SMTPPort: 587,
		},
		Monitor: MonitorConfig{
			IntervalSec:      60,
			CPUPercent:       80.0,
			MemoryPercent:    85.0,
			DiskPercent:      90.0,
			NetworkErrorRate: 0.01,
			DiskPath:         "/",
		},
		Weather: WeatherConfig{
			RefreshSpec: "@every 10m",
			CacheTTLSec: int((24 * time.Hour).Seconds()),
		},
	}
}

// Load reads config.yaml if present and applies environment overrides.
func Load() (*Config, error) {
	return LoadFromPath("config.yaml")
}

// LoadFromPath loads configuration from a specific file path. A missing file
// is not an error; defaults plus environment apply.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the rest of the application relies on.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Database.DSN != "" && c.Database.Driver == "" {
		return fmt.Errorf("database driver is required when dsn is set")
	}
	if c.Monitor.IntervalSec <= 0 {
		return fmt.Errorf("monitor interval must be positive")
	}
	return nil
}

// ConnMaxLifetime returns the pool lifetime as a duration.
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeSec) * time.Second
}

// Interval returns the monitor polling interval as a duration.
func (c MonitorConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSec) * time.Second
}

// CacheTTL returns the weather cache TTL as a duration.
func (c WeatherConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}
