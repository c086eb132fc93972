package generator

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// DefaultDaysAhead is how far ahead the HTTP trigger generates when the
// request does not say.
const DefaultDaysAhead = 17

type Runner interface {
	Run(ctx context.Context, date time.Time) (Summary, error)
}

type Handler struct {
	engine    Runner
	daysAhead int
	now       func() time.Time
	logger    *slog.Logger
}

func NewHandler(engine Runner, daysAhead int, logger *slog.Logger) *Handler {
	return &Handler{
		engine:    engine,
		daysAhead: daysAhead,
		now:       time.Now,
		logger:    logger,
	}
}

type generateResponse struct {
	Status        string `json:"status"`
	DaysAhead     int    `json:"days_ahead"`
	TargetDate    string `json:"target_date"`
	Created       int    `json:"created"`
	Skipped       int    `json:"skipped"`
	OrdersCreated int    `json:"orders_created"`
	OrdersUpdated int    `json:"orders_updated"`
}

func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	daysAhead := h.daysAhead
	if raw := r.URL.Query().Get("days_ahead"); raw != "" {
		// Unparsable values keep the default, matching the scheduler's existing calls.
		if n, err := strconv.Atoi(raw); err == nil {
			daysAhead = n
		}
	}
	if daysAhead < 0 {
		h.writeError(w, http.StatusBadRequest, "days_ahead must not be negative")
		return
	}

	target := TargetDate(h.now(), daysAhead)
	summary, err := h.engine.Run(r.Context(), target)
	if err != nil {
		h.logger.Error("failed to generate orders", "error", err, "target_date", target.Format(time.DateOnly))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, generateResponse{
		Status:        "ok",
		DaysAhead:     daysAhead,
		TargetDate:    summary.TargetDate,
		Created:       summary.Created,
		Skipped:       summary.Skipped,
		OrdersCreated: summary.OrdersCreated,
		OrdersUpdated: summary.OrdersUpdated,
	})
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
