package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Lending   LendingConfig   `yaml:"lending"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host                   string   `yaml:"host"`
	Port                   int      `yaml:"port"`
	ReadTimeoutSeconds     int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int      `yaml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds"`
	AllowedOrigins         []string `yaml:"allowed_origins"`
}

// DatabaseConfig contains PostgreSQL connection and pool settings
type DatabaseConfig struct {
	URL      string `yaml:"url"` // full DSN; when set it wins over the discrete fields
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	Schema   string `yaml:"schema"`

	MaxOpenConns          int `yaml:"max_open_conns"`
	MaxIdleConns          int `yaml:"max_idle_conns"`
	ConnMaxIdleMinutes    int `yaml:"conn_max_idle_minutes"`
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds"`
	QueryTimeoutSeconds   int `yaml:"query_timeout_seconds"`
}

// LendingConfig contains the borrow gate settings
type LendingConfig struct {
	ChargePerDay      int64  `yaml:"charge_per_day"`
	ChargeLimit       int64  `yaml:"charge_limit"`
	Timezone          string `yaml:"timezone"`
	LockStockOnBorrow bool   `yaml:"lock_stock_on_borrow"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ReportOutstandingDues string `yaml:"report_outstanding_dues"`
}

var schemaNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.Database.URL = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}
	if val := os.Getenv("DB_SCHEMA"); val != "" {
		c.Database.Schema = val
	}
	if val := os.Getenv("CONNECTION_TIMEOUT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.ConnectTimeoutSeconds)
	}
	if val := os.Getenv("QUERY_TIMEOUT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.QueryTimeoutSeconds)
	}

	// Lending
	if val := os.Getenv("CHARGE_PER_DAY"); val != "" {
		fmt.Sscanf(val, "%d", &c.Lending.ChargePerDay)
	}
	if val := os.Getenv("CHARGE_LIMIT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Lending.ChargeLimit)
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 15
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 10
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}

	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.Schema == "" {
		c.Database.Schema = "public"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 40
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxIdleMinutes == 0 {
		c.Database.ConnMaxIdleMinutes = 8
	}
	if c.Database.ConnectTimeoutSeconds == 0 {
		c.Database.ConnectTimeoutSeconds = 10
	}
	if c.Database.QueryTimeoutSeconds == 0 {
		c.Database.QueryTimeoutSeconds = 60
	}

	if c.Lending.Timezone == "" {
		c.Lending.Timezone = "UTC"
	}

	if c.Scheduler.ReportOutstandingDues == "" {
		c.Scheduler.ReportOutstandingDues = "0 0 6 * * *" // 6 AM UTC
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.URL == "" {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}
	if !schemaNamePattern.MatchString(c.Database.Schema) {
		return fmt.Errorf("invalid database schema name: %q", c.Database.Schema)
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("max_idle_conns (%d) exceeds max_open_conns (%d)", c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Lending.ChargePerDay <= 0 {
		return fmt.Errorf("charge per day must be a positive integer")
	}
	if c.Lending.ChargeLimit <= 0 {
		return fmt.Errorf("charge limit must be a positive integer")
	}
	if _, err := time.LoadLocation(c.Lending.Timezone); err != nil {
		return fmt.Errorf("invalid lending timezone %q: %w", c.Lending.Timezone, err)
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string.
// Timeouts ride along as DSN parameters: connect_timeout is honoured by
// lib/pq itself and statement_timeout is forwarded to the server.
func (c *Config) GetDatabaseConnectionString() string {
	base := c.Database.URL
	if base == "" {
		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.Database.User, c.Database.Password),
			Host:   fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
			Path:   "/" + c.Database.Database,
		}
		q := u.Query()
		q.Set("sslmode", c.Database.SSLMode)
		u.RawQuery = q.Encode()
		base = u.String()
	}

	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	if q.Get("connect_timeout") == "" {
		q.Set("connect_timeout", fmt.Sprintf("%d", c.Database.ConnectTimeoutSeconds))
	}
	if q.Get("statement_timeout") == "" {
		q.Set("statement_timeout", fmt.Sprintf("%d", c.Database.QueryTimeoutSeconds*1000))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Location returns the timezone used to count calendar days on loans.
// Validate guarantees it loads.
func (l LendingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
