package repository

import (
	"context"
	"time"

	"libnext-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id int32, upd domain.UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id int32) (*domain.User, error)
}

type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	// CreateBatch inserts books, silently skipping rows that collide with a
	// uniqueness constraint, and returns the rows actually inserted.
	CreateBatch(ctx context.Context, books []domain.Book) ([]domain.Book, error)
	GetByID(ctx context.Context, id int32) (*domain.Book, error)
	List(ctx context.Context) ([]domain.Book, error)
	Update(ctx context.Context, id int32, upd domain.BookUpdate) (*domain.Book, error)
	Delete(ctx context.Context, id int32) (*domain.Book, error)

	// AvailableStock returns stock_quantity minus the book's pending loans,
	// or domain.ErrNotFound when the book does not exist.
	AvailableStock(ctx context.Context, bookID int32) (int64, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	// CreateIfAvailable locks the book row, re-checks stock and inserts in
	// one database transaction. Returns domain.ErrOutOfStock when the
	// re-check fails.
	CreateIfAvailable(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id int32) (*domain.Transaction, error)
	List(ctx context.Context) ([]domain.Transaction, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.Transaction, error)
	ListByBook(ctx context.Context, bookID int32) ([]domain.Transaction, error)
	ListPending(ctx context.Context) ([]domain.Transaction, error)
	// PendingLoanStarts returns created_at of every pending loan of a user.
	PendingLoanStarts(ctx context.Context, userID int32) ([]time.Time, error)
	UpdateStatus(ctx context.Context, id int32, status domain.TransactionStatus) (*domain.Transaction, error)
}
