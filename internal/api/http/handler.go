package http

import (
	"context"
	"net/http"

	"libnext-backend/internal/logger"
	"libnext-backend/internal/service"

	"github.com/gorilla/mux"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the lending REST API.
type Handler struct {
	users   service.UserService
	books   service.BookService
	ledger  service.LedgerService
	lending service.LendingService
	store   Pinger
}

func NewHandler(users service.UserService, books service.BookService, ledger service.LedgerService, lending service.LendingService, store Pinger) *Handler {
	return &Handler{
		users:   users,
		books:   books,
		ledger:  ledger,
		lending: lending,
		store:   store,
	}
}

// RegisterRoutes mounts the API under /api/v1 on router. The welcome
// message is also served at the root.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Welcome).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/", h.Welcome).Methods("GET")
	api.HandleFunc("/health", h.Health).Methods("GET")

	api.HandleFunc("/users", h.CreateUser).Methods("POST")
	api.HandleFunc("/users", h.ListUsers).Methods("GET")
	api.HandleFunc("/users/{id}", h.GetUser).Methods("GET")
	api.HandleFunc("/users/{id}", h.UpdateUser).Methods("PATCH")
	api.HandleFunc("/users/{id}", h.DeleteUser).Methods("DELETE")

	api.HandleFunc("/books", h.CreateBook).Methods("POST")
	api.HandleFunc("/books", h.ListBooks).Methods("GET")
	api.HandleFunc("/books/batch", h.CreateBooks).Methods("POST")
	api.HandleFunc("/books/{id}", h.GetBook).Methods("GET")
	api.HandleFunc("/books/{id}", h.UpdateBook).Methods("PATCH")
	api.HandleFunc("/books/{id}", h.DeleteBook).Methods("DELETE")

	api.HandleFunc("/transactions", h.Borrow).Methods("POST")
	api.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	api.HandleFunc("/transactions/users/{user_id}", h.UserDues).Methods("GET")
	api.HandleFunc("/transactions/books/{book_id}", h.ListBookTransactions).Methods("GET")
	api.HandleFunc("/transactions/{id}", h.GetTransaction).Methods("GET")
	api.HandleFunc("/transactions/{id}", h.UpdateTransactionStatus).Methods("PATCH")
}

// NewRouter builds the full HTTP handler: routes, request logging and CORS.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.Use(RequestID, AccessLog)
	h.RegisterRoutes(router)
	return CORS(allowedOrigins)(router)
}

func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to Lib-Next"})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		logger.ErrorContext(r.Context(), "Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
