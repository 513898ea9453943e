package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrTransient         = errors.New("store temporarily unavailable")

	// ErrOutOfStock is returned by the locked borrow insert when the last
	// copy was taken between validation and insert.
	ErrOutOfStock = errors.New("book not in stock")
)
