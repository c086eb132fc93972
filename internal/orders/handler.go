package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

// Reader is the read side of an order store.
type Reader interface {
	GetByKey(ctx context.Context, key domain.OrderKey) (*domain.Order, error)
	ListByDate(ctx context.Context, date string) ([]domain.Order, error)
}

type Handler struct {
	repo   Reader
	logger *slog.Logger
}

func NewHandler(repo Reader, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if !validDate(date) {
		h.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	orders, err := h.repo.ListByDate(r.Context(), date)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err, "date", date)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("orders listed", "date", date, "count", len(orders))
	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	key := domain.OrderKey{UserID: r.PathValue("userId"), Date: r.PathValue("date")}
	if key.UserID == "" {
		h.writeError(w, http.StatusBadRequest, "missing user id")
		return
	}
	if !validDate(key.Date) {
		h.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	order, err := h.repo.GetByKey(r.Context(), key)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "user_id", key.UserID, "date", key.Date)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

func validDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
