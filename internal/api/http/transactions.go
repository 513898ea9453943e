package http

import (
	"fmt"
	"net/http"

	"libnext-backend/internal/domain"
)

type borrowRequest struct {
	UserID int32 `json:"user_id"`
	BookID int32 `json:"book_id"`
}

type borrowRejection struct {
	Outcome domain.BorrowOutcome `json:"outcome"`
	Message string               `json:"message"`
}

type statusRequest struct {
	Status domain.TransactionStatus `json:"status"`
}

func (h *Handler) Borrow(w http.ResponseWriter, r *http.Request) {
	var req borrowRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.UserID <= 0 || req.BookID <= 0 {
		writeError(w, r, fmt.Errorf("%w: user_id and book_id are required", domain.ErrValidation))
		return
	}

	res, err := h.lending.Borrow(r.Context(), req.UserID, req.BookID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if res.Outcome != domain.BorrowCreated {
		writeJSON(w, http.StatusUnprocessableEntity, borrowRejection{Outcome: res.Outcome, Message: res.Outcome.Message()})
		return
	}
	writeJSON(w, http.StatusCreated, res.Transaction)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ledger.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// UpdateTransactionStatus takes the status from ?status= or, failing that,
// from a JSON body. COMPLETED is a return of the book.
func (h *Handler) UpdateTransactionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := domain.TransactionStatus(r.URL.Query().Get("status"))
	if status == "" {
		var req statusRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		status = req.Status
	}

	var tx *domain.Transaction
	if status == domain.TransactionStatusCompleted {
		tx, err = h.lending.Return(r.Context(), id)
	} else {
		tx, err = h.ledger.UpdateStatus(r.Context(), id, status)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) UserDues(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	dues, err := h.ledger.UserDues(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dues)
}

func (h *Handler) ListBookTransactions(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "book_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	txs, err := h.ledger.ListForBook(r.Context(), bookID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}
