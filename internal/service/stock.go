package service

import (
	"context"
	"errors"

	"libnext-backend/internal/domain"
	"libnext-backend/internal/logger"
	"libnext-backend/internal/repository"
)

type stockValidator struct {
	bookRepo repository.BookRepository
}

func NewStockValidator(bookRepo repository.BookRepository) StockValidator {
	return &stockValidator{bookRepo: bookRepo}
}

// HasAvailableStock reports whether the book has more copies than pending
// loans. An unknown book has no stock.
func (v *stockValidator) HasAvailableStock(ctx context.Context, bookID int32) (bool, error) {
	available, err := v.bookRepo.AvailableStock(ctx, bookID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	logger.FromContext(ctx).Debug("Stock checked", "bookID", bookID, "available", available)
	return available > 0, nil
}
