package service

import (
	"context"
	"fmt"
	"time"

	"libnext-backend/internal/domain"
	"libnext-backend/internal/repository"
)

type ledgerService struct {
	txRepo repository.TransactionRepository
	policy ChargePolicy
}

func NewLedgerService(txRepo repository.TransactionRepository, policy ChargePolicy) LedgerService {
	return &ledgerService{txRepo: txRepo, policy: policy}
}

func (s *ledgerService) Create(ctx context.Context, userID, bookID int32) (*domain.Transaction, error) {
	tx := &domain.Transaction{UserID: userID, BookID: bookID}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *ledgerService) Get(ctx context.Context, id int32) (*domain.Transaction, error) {
	return s.txRepo.GetByID(ctx, id)
}

func (s *ledgerService) ListAll(ctx context.Context) ([]domain.Transaction, error) {
	return s.txRepo.List(ctx)
}

// UpdateStatus moves a loan along PENDING -> COMPLETED. Re-completing is
// accepted and only refreshes updated_at.
func (s *ledgerService) UpdateStatus(ctx context.Context, id int32, status domain.TransactionStatus) (*domain.Transaction, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}

	current, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("transaction %d: %w: %s -> %s", id, domain.ErrInvalidTransition, current.Status, status)
	}
	return s.txRepo.UpdateStatus(ctx, id, status)
}

func (s *ledgerService) ListForUser(ctx context.Context, userID int32) ([]domain.Transaction, error) {
	return s.txRepo.ListByUser(ctx, userID)
}

func (s *ledgerService) ListForBook(ctx context.Context, bookID int32) ([]domain.Transaction, error) {
	return s.txRepo.ListByBook(ctx, bookID)
}

// UserDues prices the user's pending loans from the same rows it returns.
func (s *ledgerService) UserDues(ctx context.Context, userID int32) (*domain.UserDues, error) {
	txs, err := s.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	starts := make([]time.Time, 0, len(txs))
	for _, tx := range txs {
		if tx.Status == domain.TransactionStatusPending {
			starts = append(starts, tx.CreatedAt)
		}
	}
	return &domain.UserDues{
		UserID:       userID,
		TotalDue:     s.policy.Accrued(starts),
		Transactions: txs,
	}, nil
}
