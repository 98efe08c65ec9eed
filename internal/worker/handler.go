package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/platemate/platemate/internal/domain"
)

// NotificationHandler turns order events into customer emails. Notification
// delivery is intentionally shallow: the email service only logs.
type NotificationHandler struct {
	emailServiceURL string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewNotificationHandler(emailServiceURL string, client *http.Client, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		emailServiceURL: emailServiceURL,
		httpClient:      client,
		logger:          logger,
	}
}

func (h *NotificationHandler) HandleCreated(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	h.logger.Info("processing order created event",
		"order_id", event.OrderID, "order_number", event.OrderNumber, "customer_id", event.CustomerID)

	body := map[string]string{
		"to":      event.CustomerID.String() + "@customers.platemate.example",
		"subject": "Order confirmation: " + event.OrderNumber,
		"body":    fmt.Sprintf("Your order %s with %d items has been placed. Total: %d.", event.OrderNumber, len(event.Items), event.Total),
	}

	if err := h.sendEmail(ctx, body); err != nil {
		h.logger.Error("failed to send confirmation email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send confirmation email: %w", err)
	}

	return nil
}

func (h *NotificationHandler) HandleCancelled(ctx context.Context, payload []byte) error {
	var event domain.OrderCancelledEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order cancelled event: %w", err)
	}

	h.logger.Info("processing order cancelled event",
		"order_id", event.OrderID, "order_number", event.OrderNumber, "customer_id", event.CustomerID)

	body := map[string]string{
		"to":      event.CustomerID.String() + "@customers.platemate.example",
		"subject": "Order cancelled: " + event.OrderNumber,
		"body":    fmt.Sprintf("Your order %s has been cancelled.", event.OrderNumber),
	}

	if err := h.sendEmail(ctx, body); err != nil {
		h.logger.Error("failed to send cancellation email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send cancellation email: %w", err)
	}

	return nil
}

func (h *NotificationHandler) sendEmail(ctx context.Context, body map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}
