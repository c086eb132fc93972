package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
	"github.com/joao-fontenele/orderflow-cyclic/internal/memstore"
)

type failingReader struct{}

func (failingReader) GetByKey(context.Context, domain.OrderKey) (*domain.Order, error) {
	return nil, errors.New("connection refused")
}

func (failingReader) ListByDate(context.Context, string) ([]domain.Order, error) {
	return nil, errors.New("connection refused")
}

func seeded(t *testing.T) *memstore.Store {
	t.Helper()
	store := memstore.New()
	now := time.Date(2025, 5, 24, 6, 0, 0, 0, time.UTC)
	for _, user := range []string{"u2", "u1"} {
		_, err := store.UpsertByKey(context.Background(),
			domain.OrderKey{UserID: user, Date: "2025-06-10"},
			domain.OrderPatch{
				Items:  []domain.OrderItem{{ProductID: "P1", Quantity: 1, TemplateID: "t-" + user}},
				Status: domain.OrderStatusPending,
				Now:    now,
			})
		if err != nil {
			t.Fatalf("failed to seed order: %v", err)
		}
	}
	return store
}

func newMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /orders", h.HandleList)
	mux.HandleFunc("GET /orders/{userId}/{date}", h.HandleGet)
	return mux
}

func TestHandler_HandleList(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("lists orders for a date", func(t *testing.T) {
		mux := newMux(NewHandler(seeded(t), logger))

		req := httptest.NewRequest(http.MethodGet, "/orders?date=2025-06-10", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var orders []domain.Order
		if err := json.NewDecoder(rec.Body).Decode(&orders); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("expected 2 orders, got %d", len(orders))
		}
		if orders[0].UserID != "u1" || orders[1].UserID != "u2" {
			t.Errorf("expected orders sorted by user, got %s, %s", orders[0].UserID, orders[1].UserID)
		}
	})

	t.Run("returns an empty list", func(t *testing.T) {
		mux := newMux(NewHandler(seeded(t), logger))

		req := httptest.NewRequest(http.MethodGet, "/orders?date=2025-06-11", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if rec.Body.String() != "[]\n" {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("rejects a bad date", func(t *testing.T) {
		mux := newMux(NewHandler(seeded(t), logger))

		req := httptest.NewRequest(http.MethodGet, "/orders?date=10/06/2025", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("returns 500 on store failure", func(t *testing.T) {
		mux := newMux(NewHandler(failingReader{}, logger))

		req := httptest.NewRequest(http.MethodGet, "/orders?date=2025-06-10", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleGet(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := newMux(NewHandler(seeded(t), logger))

	t.Run("returns the order", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/orders/u1/2025-06-10", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var order domain.Order
		if err := json.NewDecoder(rec.Body).Decode(&order); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if order.UserID != "u1" || order.Date != "2025-06-10" {
			t.Errorf("unexpected order %s/%s", order.UserID, order.Date)
		}
		if order.Status != domain.OrderStatusPending {
			t.Errorf("expected status pending, got %s", order.Status)
		}
	})

	t.Run("returns 404 for a missing order", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/orders/u9/2025-06-10", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("rejects a bad date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/orders/u1/tomorrow", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}
