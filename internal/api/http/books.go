package http

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"libnext-backend/internal/domain"
	"libnext-backend/internal/utils"
)

// bookRequest is the wire form of a book: publication_date is a plain date.
type bookRequest struct {
	Title           *string  `json:"title"`
	Authors         []string `json:"authors"`
	ISBN            *string  `json:"isbn"`
	ISBN13          *string  `json:"isbn13"`
	LanguageCode    *string  `json:"language_code"`
	NumPages        *int32   `json:"num_pages"`
	StockQuantity   *int32   `json:"stock_quantity"`
	PublicationDate *string  `json:"publication_date"`
	Publisher       *string  `json:"publisher"`
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	d, err := utils.ParseDate(*s)
	if err != nil {
		return nil, fmt.Errorf("%w: publication_date: %v", domain.ErrValidation, err)
	}
	t := d.Time()
	return &t, nil
}

func (req bookRequest) toBook() (*domain.Book, error) {
	published, err := parseDate(req.PublicationDate)
	if err != nil {
		return nil, err
	}
	b := &domain.Book{
		Authors:         req.Authors,
		ISBN:            req.ISBN,
		ISBN13:          req.ISBN13,
		LanguageCode:    req.LanguageCode,
		NumPages:        req.NumPages,
		PublicationDate: published,
		Publisher:       req.Publisher,
	}
	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.StockQuantity != nil {
		b.StockQuantity = *req.StockQuantity
	}
	return b, nil
}

func (req bookRequest) toUpdate() (domain.BookUpdate, error) {
	published, err := parseDate(req.PublicationDate)
	if err != nil {
		return domain.BookUpdate{}, err
	}
	return domain.BookUpdate{
		Title:           req.Title,
		Authors:         req.Authors,
		ISBN:            req.ISBN,
		ISBN13:          req.ISBN13,
		LanguageCode:    req.LanguageCode,
		NumPages:        req.NumPages,
		StockQuantity:   req.StockQuantity,
		PublicationDate: published,
		Publisher:       req.Publisher,
	}, nil
}

func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	book, err := req.toBook()
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.books.CreateBook(r.Context(), book); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

func (h *Handler) CreateBooks(w http.ResponseWriter, r *http.Request) {
	var reqs []bookRequest
	if err := decodeJSON(r, &reqs); err != nil {
		writeError(w, r, err)
		return
	}
	books := make([]domain.Book, 0, len(reqs))
	for i, req := range reqs {
		b, err := req.toBook()
		if err != nil {
			writeError(w, r, fmt.Errorf("book %d: %w", i, err))
			return
		}
		books = append(books, *b)
	}

	inserted, err := h.books.CreateBooks(r.Context(), books)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inserted)
}

func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.ListBooks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	book, err := h.books.GetBook(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: read request body: %v", domain.ErrValidation, err))
		return
	}
	var req bookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: malformed request body: %v", domain.ErrValidation, err))
		return
	}
	upd, err := req.toUpdate()
	if err != nil {
		writeError(w, r, err)
		return
	}
	// A null in the body resets the column rather than leaving it alone.
	if upd.Clear, err = explicitNulls(body, domain.NullableBookFields); err != nil {
		writeError(w, r, err)
		return
	}

	book, err := h.books.UpdateBook(r.Context(), id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	book, err := h.books.DeleteBook(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}
