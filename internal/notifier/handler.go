// Package notifier turns order.generated events into webhook calls so users
// learn that an order was placed for them and until when they may edit it.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
	"github.com/joao-fontenele/orderflow-cyclic/internal/messaging"
)

type NotificationHandler struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	maxTries   uint
	retryDelay time.Duration
}

func NewNotificationHandler(webhookURL string, client *http.Client, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		webhookURL: webhookURL,
		httpClient: client,
		logger:     logger,
		maxTries:   4,
		retryDelay: 500 * time.Millisecond,
	}
}

type notification struct {
	UserID    string     `json:"user_id"`
	Date      string     `json:"date"`
	ItemCount int        `json:"item_count"`
	EditUntil *time.Time `json:"edit_until,omitempty"`
	Subject   string     `json:"subject"`
}

// Handle decodes one event and posts it to the webhook. Undecodable events
// and requests the webhook rejects are reported as messaging.ErrPoison.
func (h *NotificationHandler) Handle(ctx context.Context, key string, payload []byte) error {
	var event domain.OrderGeneratedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order generated event %s: %w: %w", key, messaging.ErrPoison, err)
	}

	h.logger.Info("processing order generated event", "event_id", event.EventID, "user_id", event.UserID, "date", event.Date)

	n := notification{
		UserID:    event.UserID,
		Date:      event.Date,
		ItemCount: len(event.Items),
		EditUntil: event.EditUntil,
		Subject:   subject(event),
	}
	if err := h.send(ctx, n); err != nil {
		h.logger.Error("failed to send notification", "error", err, "event_id", event.EventID)
		return fmt.Errorf("send notification: %w", err)
	}

	h.logger.Info("notification sent", "event_id", event.EventID, "user_id", event.UserID)
	return nil
}

func subject(event domain.OrderGeneratedEvent) string {
	if event.Created {
		return "Your order for " + event.Date + " has been placed"
	}
	return "Your order for " + event.Date + " has been updated"
}

func (h *NotificationHandler) send(ctx context.Context, n notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = h.retryDelay

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.webhookURL, bytes.NewReader(data))
		if err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("create webhook request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.httpClient.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("call webhook: %w", err)
		}
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return struct{}{}, fmt.Errorf("webhook returned status %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			return struct{}{}, backoff.Permanent(fmt.Errorf("webhook rejected notification with status %d: %w", resp.StatusCode, messaging.ErrPoison))
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(h.maxTries))
	return err
}
