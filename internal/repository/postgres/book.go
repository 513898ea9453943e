package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"libnext-backend/internal/domain"
	"libnext-backend/internal/logger"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
)

const bookColumns = `id, title, authors, isbn, isbn13, language_code, num_pages, stock_quantity,
	publication_date, publisher, created_at, updated_at`

var bookReturning = []any{
	"id", "title", "authors", "isbn", "isbn13", "language_code", "num_pages", "stock_quantity",
	"publication_date", "publisher", "created_at", "updated_at",
}

type bookRepository struct {
	db      *sql.DB
	t       tables
	dialect goqu.DialectWrapper

	insertQuery      string
	insertBatchQuery string
	selectByIDQuery  string
	listQuery        string
	deleteQuery      string
	availableQuery   string
}

func newBookRepository(db *sql.DB, t tables) *bookRepository {
	insert := fmt.Sprintf(`INSERT INTO %s (title, authors, isbn, isbn13, language_code, num_pages,
			stock_quantity, publication_date, publisher)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, t.book)
	return &bookRepository{
		db:               db,
		t:                t,
		dialect:          goqu.Dialect("postgres"),
		insertQuery:      insert + ` RETURNING ` + bookColumns,
		insertBatchQuery: insert + ` ON CONFLICT DO NOTHING RETURNING ` + bookColumns,
		selectByIDQuery:  fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, bookColumns, t.book),
		listQuery:        fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC, id DESC`, bookColumns, t.book),
		deleteQuery:      fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING %s`, t.book, bookColumns),
		availableQuery: fmt.Sprintf(`SELECT b.stock_quantity - (
				SELECT COUNT(*) FROM %s t WHERE t.book_id = b.id AND t.status = $2
			) FROM %s b WHERE b.id = $1`, t.transaction, t.book),
	}
}

func scanBook(row rowScanner, b *domain.Book) error {
	return row.Scan(
		&b.ID, &b.Title, pq.Array(&b.Authors), &b.ISBN, &b.ISBN13, &b.LanguageCode, &b.NumPages,
		&b.StockQuantity, &b.PublicationDate, &b.Publisher, &b.CreatedAt, &b.UpdatedAt,
	)
}

func bookInsertArgs(b *domain.Book) []any {
	return []any{
		b.Title, pq.Array(b.Authors), b.ISBN, b.ISBN13, b.LanguageCode, b.NumPages,
		b.StockQuantity, b.PublicationDate, b.Publisher,
	}
}

func (r *bookRepository) Create(ctx context.Context, b *domain.Book) error {
	logger.EnterMethod(ctx, "bookRepository.Create", "title", b.Title)

	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		return scanBook(tx.QueryRowContext(ctx, r.insertQuery, bookInsertArgs(b)...), b)
	})
	if err != nil {
		err = translateError("create book", err)
		logger.ExitMethodWithError(ctx, "bookRepository.Create", err, "title", b.Title)
		return err
	}

	logger.ExitMethod(ctx, "bookRepository.Create", "bookID", b.ID)
	return nil
}

func (r *bookRepository) CreateBatch(ctx context.Context, books []domain.Book) ([]domain.Book, error) {
	logger.EnterMethod(ctx, "bookRepository.CreateBatch", "count", len(books))

	inserted := []domain.Book{}
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		for i := range books {
			var b domain.Book
			err := scanBook(tx.QueryRowContext(ctx, r.insertBatchQuery, bookInsertArgs(&books[i])...), &b)
			if err == sql.ErrNoRows {
				// conflicting row skipped by ON CONFLICT DO NOTHING
				continue
			}
			if err != nil {
				return err
			}
			inserted = append(inserted, b)
		}
		return nil
	})
	if err != nil {
		err = translateError("create book batch", err)
		logger.ExitMethodWithError(ctx, "bookRepository.CreateBatch", err, "count", len(books))
		return nil, err
	}

	logger.ExitMethod(ctx, "bookRepository.CreateBatch", "requested", len(books), "inserted", len(inserted))
	return inserted, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int32) (*domain.Book, error) {
	b := &domain.Book{}
	if err := scanBook(r.db.QueryRowContext(ctx, r.selectByIDQuery, id), b); err != nil {
		return nil, translateError(fmt.Sprintf("get book %d", id), err)
	}
	return b, nil
}

func (r *bookRepository) List(ctx context.Context) ([]domain.Book, error) {
	rows, err := r.db.QueryContext(ctx, r.listQuery)
	if err != nil {
		return nil, translateError("list books", err)
	}
	defer rows.Close()

	books := []domain.Book{}
	for rows.Next() {
		var b domain.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, translateError("list books", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("list books", err)
	}
	return books, nil
}

// updateBookRecord turns the non-nil fields of upd into a goqu record.
// Cleared columns are written as NULL.
func updateBookRecord(upd domain.BookUpdate) goqu.Record {
	rec := goqu.Record{"updated_at": goqu.L("NOW()")}
	for _, field := range upd.Clear {
		if domain.IsNullableBookField(field) {
			rec[field] = nil
		}
	}
	if upd.Title != nil {
		rec["title"] = *upd.Title
	}
	if upd.Authors != nil {
		rec["authors"] = pq.Array(upd.Authors)
	}
	if upd.ISBN != nil {
		rec["isbn"] = *upd.ISBN
	}
	if upd.ISBN13 != nil {
		rec["isbn13"] = *upd.ISBN13
	}
	if upd.LanguageCode != nil {
		rec["language_code"] = *upd.LanguageCode
	}
	if upd.NumPages != nil {
		rec["num_pages"] = *upd.NumPages
	}
	if upd.StockQuantity != nil {
		rec["stock_quantity"] = *upd.StockQuantity
	}
	if upd.PublicationDate != nil {
		rec["publication_date"] = *upd.PublicationDate
	}
	if upd.Publisher != nil {
		rec["publisher"] = *upd.Publisher
	}
	return rec
}

func (r *bookRepository) Update(ctx context.Context, id int32, upd domain.BookUpdate) (*domain.Book, error) {
	logger.EnterMethod(ctx, "bookRepository.Update", "bookID", id)

	query, args, err := r.dialect.
		Update(goqu.S(r.t.schema).Table("book")).
		Set(updateBookRecord(upd)).
		Where(goqu.C("id").Eq(id)).
		Returning(bookReturning...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build book update: %w", err)
	}

	b := &domain.Book{}
	err = inTx(ctx, r.db, func(tx *sql.Tx) error {
		logger.DatabaseCall(ctx, "update_book", query, "bookID", id)
		return scanBook(tx.QueryRowContext(ctx, query, args...), b)
	})
	if err != nil {
		err = translateError(fmt.Sprintf("update book %d", id), err)
		logger.ExitMethodWithError(ctx, "bookRepository.Update", err, "bookID", id)
		return nil, err
	}

	logger.ExitMethod(ctx, "bookRepository.Update", "bookID", id)
	return b, nil
}

func (r *bookRepository) Delete(ctx context.Context, id int32) (*domain.Book, error) {
	logger.EnterMethod(ctx, "bookRepository.Delete", "bookID", id)

	b := &domain.Book{}
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		return scanBook(tx.QueryRowContext(ctx, r.deleteQuery, id), b)
	})
	if err != nil {
		err = translateError(fmt.Sprintf("delete book %d", id), err)
		logger.ExitMethodWithError(ctx, "bookRepository.Delete", err, "bookID", id)
		return nil, err
	}

	logger.ExitMethod(ctx, "bookRepository.Delete", "bookID", id)
	return b, nil
}

func (r *bookRepository) AvailableStock(ctx context.Context, bookID int32) (int64, error) {
	logger.DatabaseCall(ctx, "available_stock", r.availableQuery, "bookID", bookID)
	var available int64
	if err := r.db.QueryRowContext(ctx, r.availableQuery, bookID, domain.TransactionStatusPending).Scan(&available); err != nil {
		return 0, translateError(fmt.Sprintf("available stock for book %d", bookID), err)
	}
	return available, nil
}
