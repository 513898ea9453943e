package domain

import "time"

// Book is a catalog entry. StockQuantity counts every copy the library
// owns, lent out or not.
type Book struct {
	ID              int32      `json:"id"`
	Title           string     `json:"title"`
	Authors         []string   `json:"authors"`
	ISBN            *string    `json:"isbn"`
	ISBN13          *string    `json:"isbn13"`
	LanguageCode    *string    `json:"language_code"`
	NumPages        *int32     `json:"num_pages"`
	StockQuantity   int32      `json:"stock_quantity"`
	PublicationDate *time.Time `json:"publication_date"`
	Publisher       *string    `json:"publisher"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NullableBookFields are the book columns a partial update may reset to
// NULL, in column order.
var NullableBookFields = []string{"isbn", "isbn13", "language_code", "num_pages", "publication_date", "publisher"}

func IsNullableBookField(field string) bool {
	for _, f := range NullableBookFields {
		if f == field {
			return true
		}
	}
	return false
}

// BookUpdate carries a partial book change; nil fields are left alone and
// the columns named in Clear are set to NULL.
type BookUpdate struct {
	Title           *string    `json:"title,omitempty"`
	Authors         []string   `json:"authors,omitempty"`
	ISBN            *string    `json:"isbn,omitempty"`
	ISBN13          *string    `json:"isbn13,omitempty"`
	LanguageCode    *string    `json:"language_code,omitempty"`
	NumPages        *int32     `json:"num_pages,omitempty"`
	StockQuantity   *int32     `json:"stock_quantity,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	Publisher       *string    `json:"publisher,omitempty"`
	Clear           []string   `json:"-"`
}

func (u BookUpdate) IsEmpty() bool {
	return u.Title == nil && u.Authors == nil && u.ISBN == nil && u.ISBN13 == nil &&
		u.LanguageCode == nil && u.NumPages == nil && u.StockQuantity == nil &&
		u.PublicationDate == nil && u.Publisher == nil && len(u.Clear) == 0
}
