package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
server:
  port: 8000
database:
  host: "localhost"
  port: 5432
  user: "postgres"
  password: "secret"
  database: "libnext"
  schema: "library"
lending:
  charge_per_day: 10
  charge_limit: 100
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults applied", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, minimalYAML))
		require.NoError(t, err)

		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format)
		assert.Equal(t, 40, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 10, cfg.Database.ConnectTimeoutSeconds)
		assert.Equal(t, 60, cfg.Database.QueryTimeoutSeconds)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, "UTC", cfg.Lending.Timezone)
		assert.False(t, cfg.Lending.LockStockOnBorrow)
		assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
		assert.Equal(t, "0 0 6 * * *", cfg.Scheduler.ReportOutstandingDues)
	})

	t.Run("Env overrides", func(t *testing.T) {
		t.Setenv("CHARGE_PER_DAY", "25")
		t.Setenv("CHARGE_LIMIT", "500")
		t.Setenv("DB_SCHEMA", "lending")
		t.Setenv("QUERY_TIMEOUT", "5")

		cfg, err := Load(writeConfig(t, minimalYAML))
		require.NoError(t, err)

		assert.Equal(t, int64(25), cfg.Lending.ChargePerDay)
		assert.Equal(t, int64(500), cfg.Lending.ChargeLimit)
		assert.Equal(t, "lending", cfg.Database.Schema)
		assert.Equal(t, 5, cfg.Database.QueryTimeoutSeconds)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [unclosed"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{
			Server:   ServerConfig{Port: 8000},
			Database: DatabaseConfig{Host: "localhost", User: "postgres", Database: "libnext", Schema: "library"},
			Lending:  LendingConfig{ChargePerDay: 10, ChargeLimit: 100},
		}
		cfg.applyDefaults()
		return cfg
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("Schema with quote rejected", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Schema = `library"; DROP TABLE x; --`
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid database schema name")
	})

	t.Run("Non-positive charge per day", func(t *testing.T) {
		cfg := valid()
		cfg.Lending.ChargePerDay = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("Non-positive charge limit", func(t *testing.T) {
		cfg := valid()
		cfg.Lending.ChargeLimit = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("Unknown timezone", func(t *testing.T) {
		cfg := valid()
		cfg.Lending.Timezone = "Mars/Olympus"
		assert.Error(t, cfg.Validate())
	})

	t.Run("URL replaces discrete fields", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Host = ""
		cfg.Database.URL = "postgres://u:p@db:5432/x"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Invalid port", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 70000
		assert.Error(t, cfg.Validate())
	})
}

func TestGetDatabaseConnectionString(t *testing.T) {
	t.Run("Discrete fields", func(t *testing.T) {
		cfg := &Config{Database: DatabaseConfig{
			Host: "localhost", Port: 5432, User: "postgres", Password: "p@ss", Database: "libnext", SSLMode: "disable",
			ConnectTimeoutSeconds: 10, QueryTimeoutSeconds: 60,
		}}

		u, err := url.Parse(cfg.GetDatabaseConnectionString())
		require.NoError(t, err)
		assert.Equal(t, "localhost:5432", u.Host)
		assert.Equal(t, "/libnext", u.Path)
		pw, _ := u.User.Password()
		assert.Equal(t, "p@ss", pw)
		assert.Equal(t, "disable", u.Query().Get("sslmode"))
		assert.Equal(t, "10", u.Query().Get("connect_timeout"))
		assert.Equal(t, "60000", u.Query().Get("statement_timeout"))
	})

	t.Run("URL keeps explicit timeout", func(t *testing.T) {
		cfg := &Config{Database: DatabaseConfig{
			URL:                   "postgres://u:p@db:5432/x?sslmode=require&connect_timeout=3",
			ConnectTimeoutSeconds: 10, QueryTimeoutSeconds: 60,
		}}

		u, err := url.Parse(cfg.GetDatabaseConnectionString())
		require.NoError(t, err)
		assert.Equal(t, "3", u.Query().Get("connect_timeout"))
		assert.Equal(t, "require", u.Query().Get("sslmode"))
		assert.Equal(t, "60000", u.Query().Get("statement_timeout"))
	})
}
