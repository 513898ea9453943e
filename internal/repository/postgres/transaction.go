package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"libnext-backend/internal/domain"
	"libnext-backend/internal/logger"
)

const transactionColumns = `id, user_id, book_id, status, created_at, updated_at`

type transactionRepository struct {
	db *sql.DB
	t  tables

	insertQuery       string
	selectByIDQuery   string
	listQuery         string
	listByUserQuery   string
	listByBookQuery   string
	listPendingQuery  string
	pendingStartQuery string
	updateStatusQuery string
	lockBookQuery     string
	pendingCountQuery string
}

func newTransactionRepository(db *sql.DB, t tables) *transactionRepository {
	return &transactionRepository{
		db: db,
		t:  t,
		insertQuery: fmt.Sprintf(`INSERT INTO %s (user_id, book_id, status) VALUES ($1, $2, $3)
			RETURNING %s`, t.transaction, transactionColumns),
		selectByIDQuery:   fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, transactionColumns, t.transaction),
		listQuery:         fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, transactionColumns, t.transaction),
		listByUserQuery:   fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 ORDER BY id`, transactionColumns, t.transaction),
		listByBookQuery:   fmt.Sprintf(`SELECT %s FROM %s WHERE book_id = $1 ORDER BY id`, transactionColumns, t.transaction),
		listPendingQuery:  fmt.Sprintf(`SELECT %s FROM %s WHERE status = $1 ORDER BY user_id, id`, transactionColumns, t.transaction),
		pendingStartQuery: fmt.Sprintf(`SELECT created_at FROM %s WHERE user_id = $1 AND status = $2 ORDER BY id`, t.transaction),
		updateStatusQuery: fmt.Sprintf(`UPDATE %s SET status = $1, updated_at = NOW() WHERE id = $2
			RETURNING %s`, t.transaction, transactionColumns),
		lockBookQuery:     fmt.Sprintf(`SELECT stock_quantity FROM %s WHERE id = $1 FOR UPDATE`, t.book),
		pendingCountQuery: fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE book_id = $1 AND status = $2`, t.transaction),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner, tr *domain.Transaction) error {
	return row.Scan(&tr.ID, &tr.UserID, &tr.BookID, &tr.Status, &tr.CreatedAt, &tr.UpdatedAt)
}

func (r *transactionRepository) Create(ctx context.Context, tr *domain.Transaction) error {
	logger.EnterMethod(ctx, "transactionRepository.Create", "userID", tr.UserID, "bookID", tr.BookID)

	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		return r.insert(ctx, tx, tr)
	})
	if err != nil {
		err = translateError("create transaction", err)
		logger.ExitMethodWithError(ctx, "transactionRepository.Create", err, "userID", tr.UserID, "bookID", tr.BookID)
		return err
	}

	logger.ExitMethod(ctx, "transactionRepository.Create", "transactionID", tr.ID)
	return nil
}

func (r *transactionRepository) CreateIfAvailable(ctx context.Context, tr *domain.Transaction) error {
	logger.EnterMethod(ctx, "transactionRepository.CreateIfAvailable", "userID", tr.UserID, "bookID", tr.BookID)

	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		var stock int64
		if err := tx.QueryRowContext(ctx, r.lockBookQuery, tr.BookID).Scan(&stock); err != nil {
			if err == sql.ErrNoRows {
				return domain.ErrOutOfStock
			}
			return err
		}

		var pending int64
		if err := tx.QueryRowContext(ctx, r.pendingCountQuery, tr.BookID, domain.TransactionStatusPending).Scan(&pending); err != nil {
			return err
		}
		if stock-pending <= 0 {
			return domain.ErrOutOfStock
		}

		return r.insert(ctx, tx, tr)
	})
	if err == domain.ErrOutOfStock {
		logger.ExitMethod(ctx, "transactionRepository.CreateIfAvailable", "bookID", tr.BookID, "outOfStock", true)
		return err
	}
	if err != nil {
		err = translateError("create transaction", err)
		logger.ExitMethodWithError(ctx, "transactionRepository.CreateIfAvailable", err, "bookID", tr.BookID)
		return err
	}

	logger.ExitMethod(ctx, "transactionRepository.CreateIfAvailable", "transactionID", tr.ID)
	return nil
}

func (r *transactionRepository) insert(ctx context.Context, tx *sql.Tx, tr *domain.Transaction) error {
	tr.Status = domain.TransactionStatusPending
	logger.DatabaseCall(ctx, "insert_transaction", r.insertQuery, "userID", tr.UserID, "bookID", tr.BookID)
	err := scanTransaction(tx.QueryRowContext(ctx, r.insertQuery, tr.UserID, tr.BookID, tr.Status), tr)
	logger.DatabaseResult(ctx, "insert_transaction", 1, err)
	return err
}

func (r *transactionRepository) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	tr := &domain.Transaction{}
	if err := scanTransaction(r.db.QueryRowContext(ctx, r.selectByIDQuery, id), tr); err != nil {
		return nil, translateError(fmt.Sprintf("get transaction %d", id), err)
	}
	return tr, nil
}

func (r *transactionRepository) List(ctx context.Context) ([]domain.Transaction, error) {
	return r.query(ctx, "list transactions", r.listQuery)
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID int32) ([]domain.Transaction, error) {
	return r.query(ctx, fmt.Sprintf("list transactions for user %d", userID), r.listByUserQuery, userID)
}

func (r *transactionRepository) ListByBook(ctx context.Context, bookID int32) ([]domain.Transaction, error) {
	return r.query(ctx, fmt.Sprintf("list transactions for book %d", bookID), r.listByBookQuery, bookID)
}

func (r *transactionRepository) ListPending(ctx context.Context) ([]domain.Transaction, error) {
	return r.query(ctx, "list pending transactions", r.listPendingQuery, domain.TransactionStatusPending)
}

func (r *transactionRepository) query(ctx context.Context, op, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(op, err)
	}
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		var tr domain.Transaction
		if err := scanTransaction(rows, &tr); err != nil {
			return nil, translateError(op, err)
		}
		txs = append(txs, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(op, err)
	}
	return txs, nil
}

func (r *transactionRepository) PendingLoanStarts(ctx context.Context, userID int32) ([]time.Time, error) {
	op := fmt.Sprintf("pending loans for user %d", userID)
	rows, err := r.db.QueryContext(ctx, r.pendingStartQuery, userID, domain.TransactionStatusPending)
	if err != nil {
		return nil, translateError(op, err)
	}
	defer rows.Close()

	var starts []time.Time
	for rows.Next() {
		var createdAt time.Time
		if err := rows.Scan(&createdAt); err != nil {
			return nil, translateError(op, err)
		}
		starts = append(starts, createdAt)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(op, err)
	}
	return starts, nil
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, id int32, status domain.TransactionStatus) (*domain.Transaction, error) {
	logger.EnterMethod(ctx, "transactionRepository.UpdateStatus", "transactionID", id, "status", status)

	tr := &domain.Transaction{}
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		return scanTransaction(tx.QueryRowContext(ctx, r.updateStatusQuery, status, id), tr)
	})
	if err != nil {
		err = translateError(fmt.Sprintf("update transaction %d", id), err)
		logger.ExitMethodWithError(ctx, "transactionRepository.UpdateStatus", err, "transactionID", id)
		return nil, err
	}

	logger.ExitMethod(ctx, "transactionRepository.UpdateStatus", "transactionID", id, "status", tr.Status)
	return tr, nil
}
