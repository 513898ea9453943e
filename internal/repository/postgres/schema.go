package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"libnext-backend/internal/logger"

	"github.com/lib/pq"
)

// schemaStatements returns the DDL for the three lending tables. Foreign
// keys are RESTRICT: a user or book with loan history cannot be deleted.
func schemaStatements(t tables) []string {
	return []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, pq.QuoteIdentifier(t.schema)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id          SERIAL PRIMARY KEY,
			name        VARCHAR(64) NULL,
			email       VARCHAR(64) UNIQUE NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, t.user),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id                SERIAL PRIMARY KEY,
			title             VARCHAR(255) NOT NULL,
			authors           VARCHAR(255)[] NOT NULL,
			isbn              VARCHAR(13) UNIQUE NULL,
			isbn13            VARCHAR(13) UNIQUE NULL,
			language_code     VARCHAR(10) NULL,
			num_pages         INT NULL CHECK (num_pages > 0),
			stock_quantity    INT NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
			publication_date  DATE NULL,
			publisher         VARCHAR(255) NULL,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT book_title_authors_key UNIQUE (title, authors)
		)`, t.book),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id          SERIAL PRIMARY KEY,
			user_id     INT NOT NULL,
			book_id     INT NOT NULL,
			status      VARCHAR(16) NOT NULL CHECK (status IN ('PENDING', 'COMPLETED')),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT transaction_user_id_fk FOREIGN KEY (user_id) REFERENCES %s (id) ON DELETE RESTRICT,
			CONSTRAINT transaction_book_id_fk FOREIGN KEY (book_id) REFERENCES %s (id) ON DELETE RESTRICT
		)`, t.transaction, t.user, t.book),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS transaction_book_status_idx ON %s (book_id, status)`, t.transaction),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS transaction_user_status_idx ON %s (user_id, status)`, t.transaction),
	}
}

// CreateSchema creates the schema and its tables when they are missing.
func CreateSchema(ctx context.Context, db *sql.DB, schema string) error {
	t := newTables(schema)
	return inTx(ctx, db, func(tx *sql.Tx) error {
		for _, stmt := range schemaStatements(t) {
			logger.DatabaseCall(ctx, "create_schema", stmt)
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return translateError("create schema", err)
			}
		}
		return nil
	})
}

// DropTables removes the lending tables, dependants first.
func DropTables(ctx context.Context, db *sql.DB, schema string) error {
	t := newTables(schema)
	stmt := fmt.Sprintf(`DROP TABLE IF EXISTS %s, %s, %s CASCADE`, t.transaction, t.book, t.user)
	logger.DatabaseCall(ctx, "drop_tables", stmt)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return translateError("drop tables", err)
	}
	return nil
}
