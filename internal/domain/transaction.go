package domain

import "time"

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
)

func (s TransactionStatus) IsValid() bool {
	return s == TransactionStatusPending || s == TransactionStatusCompleted
}

// CanTransitionTo reports whether a loan in status s may be moved to next.
// Loans only move forward; completing twice is tolerated.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	switch s {
	case TransactionStatusPending:
		return next.IsValid()
	case TransactionStatusCompleted:
		return next == TransactionStatusCompleted
	default:
		return false
	}
}

// Transaction is a single loan of one book to one user.
type Transaction struct {
	ID        int32             `json:"id"`
	UserID    int32             `json:"user_id"`
	BookID    int32             `json:"book_id"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// UserDues is a user's loan history with the charge accrued on open loans.
type UserDues struct {
	UserID       int32         `json:"user_id"`
	TotalDue     int64         `json:"total_due"`
	Transactions []Transaction `json:"transactions"`
}

// BorrowOutcome is the result of a borrow request that did not fail.
type BorrowOutcome string

const (
	BorrowCreated        BorrowOutcome = "created"
	BorrowBookNotInStock BorrowOutcome = "book_not_in_stock"
	BorrowCreditExceeded BorrowOutcome = "credit_exceeded"
)

// Message is the user-facing text for a rejected borrow.
func (o BorrowOutcome) Message() string {
	switch o {
	case BorrowBookNotInStock:
		return "Book is not in stock"
	case BorrowCreditExceeded:
		return "User has to settle their credit first"
	default:
		return ""
	}
}

type BorrowResult struct {
	Outcome     BorrowOutcome
	Transaction *Transaction
}
