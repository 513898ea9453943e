package service

import (
	"context"

	"libnext-backend/internal/domain"
)

type UserService interface {
	CreateUser(ctx context.Context, email, name string) (*domain.User, error)
	GetUser(ctx context.Context, id int32) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, id int32, upd domain.UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, id int32) (*domain.User, error)
}

type BookService interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	CreateBooks(ctx context.Context, books []domain.Book) ([]domain.Book, error)
	GetBook(ctx context.Context, id int32) (*domain.Book, error)
	ListBooks(ctx context.Context) ([]domain.Book, error)
	UpdateBook(ctx context.Context, id int32, upd domain.BookUpdate) (*domain.Book, error)
	DeleteBook(ctx context.Context, id int32) (*domain.Book, error)
}

// StockValidator answers whether a book has a copy left to lend.
type StockValidator interface {
	HasAvailableStock(ctx context.Context, bookID int32) (bool, error)
}

// CreditValidator answers whether a user's accrued charge admits another loan.
type CreditValidator interface {
	CanBorrow(ctx context.Context, userID int32) (bool, error)
	AccruedCharge(ctx context.Context, userID int32) (int64, error)
}

type LedgerService interface {
	Create(ctx context.Context, userID, bookID int32) (*domain.Transaction, error)
	Get(ctx context.Context, id int32) (*domain.Transaction, error)
	ListAll(ctx context.Context) ([]domain.Transaction, error)
	UpdateStatus(ctx context.Context, id int32, status domain.TransactionStatus) (*domain.Transaction, error)
	ListForUser(ctx context.Context, userID int32) ([]domain.Transaction, error)
	ListForBook(ctx context.Context, bookID int32) ([]domain.Transaction, error)
	UserDues(ctx context.Context, userID int32) (*domain.UserDues, error)
}

type LendingService interface {
	// Borrow runs the stock gate, then the credit gate, and records a
	// pending loan when both pass. Gate rejections are outcomes, not errors.
	Borrow(ctx context.Context, userID, bookID int32) (*domain.BorrowResult, error)
	Return(ctx context.Context, transactionID int32) (*domain.Transaction, error)
}
