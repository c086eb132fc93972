package generator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
)

type stubRunner struct {
	date    time.Time
	summary Summary
	err     error
}

func (s *stubRunner) Run(_ context.Context, date time.Time) (Summary, error) {
	s.date = date
	s.summary.TargetDate = date.Format(time.DateOnly)
	return s.summary, s.err
}

func newTestHandler(runner Runner) *Handler {
	h := NewHandler(runner, DefaultDaysAhead, discardLogger())
	h.now = fixedClock(time.Date(2025, 5, 24, 6, 0, 0, 0, time.UTC))
	return h
}

func TestHandler_HandleGenerate(t *testing.T) {
	t.Run("uses the default horizon", func(t *testing.T) {
		runner := &stubRunner{summary: Summary{Created: 4, Skipped: 3, OrdersCreated: 2, OrdersUpdated: 1}}
		req := httptest.NewRequest(http.MethodPost, "/generate", nil)
		rec := httptest.NewRecorder()

		newTestHandler(runner).HandleGenerate(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if rec.Header().Get("Content-Type") != "application/json" {
			t.Errorf("expected application/json, got %s", rec.Header().Get("Content-Type"))
		}
		if got := runner.date.Format(time.DateOnly); got != "2025-06-10" {
			t.Errorf("expected target date 2025-06-10, got %s", got)
		}

		g := goldie.New(t,
			goldie.WithFixtureDir("testdata/golden"),
			goldie.WithNameSuffix(".golden"),
		)
		g.Assert(t, "generate_default", rec.Body.Bytes())
	})

	t.Run("accepts days_ahead", func(t *testing.T) {
		runner := &stubRunner{}
		req := httptest.NewRequest(http.MethodPost, "/generate?days_ahead=3", nil)
		rec := httptest.NewRecorder()

		newTestHandler(runner).HandleGenerate(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if got := runner.date.Format(time.DateOnly); got != "2025-05-27" {
			t.Errorf("expected target date 2025-05-27, got %s", got)
		}
	})

	t.Run("ignores unparsable days_ahead", func(t *testing.T) {
		runner := &stubRunner{}
		req := httptest.NewRequest(http.MethodPost, "/generate?days_ahead=soon", nil)
		rec := httptest.NewRecorder()

		newTestHandler(runner).HandleGenerate(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if got := runner.date.Format(time.DateOnly); got != "2025-06-10" {
			t.Errorf("expected target date 2025-06-10, got %s", got)
		}
	})

	t.Run("rejects negative days_ahead", func(t *testing.T) {
		runner := &stubRunner{}
		req := httptest.NewRequest(http.MethodPost, "/generate?days_ahead=-1", nil)
		rec := httptest.NewRecorder()

		newTestHandler(runner).HandleGenerate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
		if !runner.date.IsZero() {
			t.Errorf("expected no run, got one for %s", runner.date)
		}
	})

	t.Run("returns 500 when the run fails", func(t *testing.T) {
		runner := &stubRunner{err: errors.New("store unavailable")}
		req := httptest.NewRequest(http.MethodPost, "/generate", nil)
		rec := httptest.NewRecorder()

		newTestHandler(runner).HandleGenerate(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
		if rec.Body.String() != "{\"error\":\"internal server error\"}\n" {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})
}
