package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"libnext-backend/internal/config"
	"libnext-backend/internal/logger"
	"libnext-backend/internal/repository"

	"github.com/lib/pq"
)

// Store bundles the repositories that share one connection pool.
type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.BookRepository
	repository.TransactionRepository
}

func NewStore(db *sql.DB, schema string) *Store {
	t := newTables(schema)
	return &Store{
		db:                    db,
		UserRepository:        newUserRepository(db, t),
		BookRepository:        newBookRepository(db, t),
		TransactionRepository: newTransactionRepository(db, t),
	}
}

// Ping checks that the pool can still reach the database.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return translateError("ping", err)
	}
	return nil
}

// Open creates the connection pool described by cfg and verifies it with a
// ping. The caller owns the returned pool and must Close it.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxIdleTime(time.Duration(cfg.Database.ConnMaxIdleMinutes) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Database.ConnectTimeoutSeconds)*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection pool ready",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
		"schema", cfg.Database.Schema)
	return db, nil
}

// tables holds the fully qualified, quoted table names for one schema.
// The schema name is validated at config load; quoting keeps reserved
// words such as "user" usable as table names.
type tables struct {
	schema      string
	user        string
	book        string
	transaction string
}

func newTables(schema string) tables {
	s := pq.QuoteIdentifier(schema)
	return tables{
		schema:      schema,
		user:        s + "." + pq.QuoteIdentifier("user"),
		book:        s + "." + pq.QuoteIdentifier("book"),
		transaction: s + "." + pq.QuoteIdentifier("transaction"),
	}
}

// inTx runs fn inside a database transaction, committing on success.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
