package service

import (
	"context"
	"errors"
	"fmt"

	"libnext-backend/internal/domain"
	"libnext-backend/internal/logger"
	"libnext-backend/internal/repository"
)

type lendingService struct {
	stock     StockValidator
	credit    CreditValidator
	ledger    LedgerService
	txRepo    repository.TransactionRepository
	lockStock bool
}

// NewLendingService wires the borrow gates. With lockStock set the insert
// re-checks stock under a row lock on the book.
func NewLendingService(stock StockValidator, credit CreditValidator, ledger LedgerService, txRepo repository.TransactionRepository, lockStock bool) LendingService {
	return &lendingService{
		stock:     stock,
		credit:    credit,
		ledger:    ledger,
		txRepo:    txRepo,
		lockStock: lockStock,
	}
}

func (s *lendingService) Borrow(ctx context.Context, userID, bookID int32) (*domain.BorrowResult, error) {
	log := logger.FromContext(ctx)

	inStock, err := s.stock.HasAvailableStock(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("check stock for book %d: %w", bookID, err)
	}
	if !inStock {
		log.Info("Borrow rejected", "userID", userID, "bookID", bookID, "outcome", domain.BorrowBookNotInStock)
		return &domain.BorrowResult{Outcome: domain.BorrowBookNotInStock}, nil
	}

	canBorrow, err := s.credit.CanBorrow(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check credit for user %d: %w", userID, err)
	}
	if !canBorrow {
		log.Info("Borrow rejected", "userID", userID, "bookID", bookID, "outcome", domain.BorrowCreditExceeded)
		return &domain.BorrowResult{Outcome: domain.BorrowCreditExceeded}, nil
	}

	var tx *domain.Transaction
	if s.lockStock {
		tx = &domain.Transaction{UserID: userID, BookID: bookID}
		err = s.txRepo.CreateIfAvailable(ctx, tx)
		if errors.Is(err, domain.ErrOutOfStock) {
			log.Info("Borrow rejected after lock", "userID", userID, "bookID", bookID)
			return &domain.BorrowResult{Outcome: domain.BorrowBookNotInStock}, nil
		}
	} else {
		tx, err = s.ledger.Create(ctx, userID, bookID)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Book borrowed", "userID", userID, "bookID", bookID, "transactionID", tx.ID)
	return &domain.BorrowResult{Outcome: domain.BorrowCreated, Transaction: tx}, nil
}

func (s *lendingService) Return(ctx context.Context, transactionID int32) (*domain.Transaction, error) {
	return s.ledger.UpdateStatus(ctx, transactionID, domain.TransactionStatusCompleted)
}
