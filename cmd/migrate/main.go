package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strings"

	"libnext-backend/internal/config"
	"libnext-backend/internal/logger"
	"libnext-backend/internal/repository/postgres"
)

var localHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
	"postgres":  true,
}

const testDatabase = "testdb"

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	force := flag.Bool("force", false, "Skip the confirmation prompt for non-local databases")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	host, database := target(cfg.Database)
	if warning := guardWarning(host, database); warning != "" && !*force {
		if !confirm(os.Stdin, os.Stdout, warning) {
			logger.Info("Aborted by user", "host", host, "database", database)
			return
		}
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	logger.Info("Dropping tables", "schema", cfg.Database.Schema)
	if err := postgres.DropTables(ctx, db, cfg.Database.Schema); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	logger.Info("Recreating tables", "schema", cfg.Database.Schema)
	if err := postgres.CreateSchema(ctx, db, cfg.Database.Schema); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}
	logger.Info("Schema rebuilt", "host", host, "database", database, "schema", cfg.Database.Schema)
}

// target returns the host and database name the tool would connect to.
func target(cfg config.DatabaseConfig) (string, string) {
	if cfg.URL == "" {
		return cfg.Host, cfg.Database
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return cfg.URL, ""
	}
	return u.Hostname(), strings.TrimPrefix(u.Path, "/")
}

// guardWarning explains why rebuilding host/database needs confirmation,
// or returns "" for a local test database.
func guardWarning(host, database string) string {
	if !localHosts[host] {
		return fmt.Sprintf("Environment using host %q seems to be non local.", host)
	}
	if database != testDatabase {
		return fmt.Sprintf("Database %q seems to be other than %s.", database, testDatabase)
	}
	return ""
}

func confirm(in io.Reader, out io.Writer, warning string) bool {
	fmt.Fprintf(out, "%s All tables will be dropped. Type yes to continue: ", warning)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "yes")
}
