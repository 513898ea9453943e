package service

import (
	"context"
	"fmt"
	"strings"

	"libnext-backend/internal/domain"
	"libnext-backend/internal/repository"
)

type bookService struct {
	bookRepo repository.BookRepository
}

func NewBookService(bookRepo repository.BookRepository) BookService {
	return &bookService{bookRepo: bookRepo}
}

func validateBook(b *domain.Book) error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if len(b.Authors) == 0 {
		return fmt.Errorf("%w: at least one author is required", domain.ErrValidation)
	}
	if b.StockQuantity < 0 {
		return fmt.Errorf("%w: stock_quantity must not be negative", domain.ErrValidation)
	}
	if b.NumPages != nil && *b.NumPages <= 0 {
		return fmt.Errorf("%w: num_pages must be positive", domain.ErrValidation)
	}
	return nil
}

func (s *bookService) CreateBook(ctx context.Context, book *domain.Book) error {
	if err := validateBook(book); err != nil {
		return err
	}
	return s.bookRepo.Create(ctx, book)
}

// CreateBooks validates the whole batch before inserting any of it.
func (s *bookService) CreateBooks(ctx context.Context, books []domain.Book) ([]domain.Book, error) {
	if len(books) == 0 {
		return nil, fmt.Errorf("%w: empty batch", domain.ErrValidation)
	}
	for i := range books {
		if err := validateBook(&books[i]); err != nil {
			return nil, fmt.Errorf("book %d: %w", i, err)
		}
	}
	return s.bookRepo.CreateBatch(ctx, books)
}

func (s *bookService) GetBook(ctx context.Context, id int32) (*domain.Book, error) {
	return s.bookRepo.GetByID(ctx, id)
}

func (s *bookService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return s.bookRepo.List(ctx)
}

func (s *bookService) UpdateBook(ctx context.Context, id int32, upd domain.BookUpdate) (*domain.Book, error) {
	if upd.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", domain.ErrValidation)
	}
	if upd.Authors != nil && len(upd.Authors) == 0 {
		return nil, fmt.Errorf("%w: at least one author is required", domain.ErrValidation)
	}
	if upd.StockQuantity != nil && *upd.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock_quantity must not be negative", domain.ErrValidation)
	}
	if upd.NumPages != nil && *upd.NumPages <= 0 {
		return nil, fmt.Errorf("%w: num_pages must be positive", domain.ErrValidation)
	}
	for _, field := range upd.Clear {
		if !domain.IsNullableBookField(field) {
			return nil, fmt.Errorf("%w: %s cannot be cleared", domain.ErrValidation, field)
		}
	}
	return s.bookRepo.Update(ctx, id, upd)
}

func (s *bookService) DeleteBook(ctx context.Context, id int32) (*domain.Book, error) {
	return s.bookRepo.Delete(ctx, id)
}
