package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/platemate/platemate/internal/domain"
)

type fakeEvents struct {
	created   []domain.OrderCreatedEvent
	cancelled []domain.OrderCancelledEvent
	err       error
}

func (f *fakeEvents) PublishCreated(_ context.Context, event domain.OrderCreatedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, event)
	return nil
}

func (f *fakeEvents) PublishCancelled(_ context.Context, event domain.OrderCancelledEvent) error {
	if f.err != nil {
		return f.err
	}
	f.cancelled = append(f.cancelled, event)
	return nil
}

func newTestHandler(f *serviceFixture, events OrderEvents) *Handler {
	return NewHandler(f.service, events, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func createBody(f *serviceFixture, quantity int) string {
	body, _ := json.Marshal(map[string]any{
		"restaurant_id":    f.restaurant.ID,
		"items":            []map[string]any{{"item_id": f.item.ID, "quantity": quantity}},
		"delivery_address": "123 Main St",
	})
	return string(body)
}

func TestHandler_HandleCreate(t *testing.T) {
	t.Run("creates order and publishes event", func(t *testing.T) {
		f := newServiceFixture(t)
		events := &fakeEvents{}
		handler := newTestHandler(f, events)

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(createBody(f, 2)))
		req.Header.Set("X-Customer-ID", uuid.NewString())
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var order domain.Order
		if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if order.Status != domain.OrderStatusPlaced {
			t.Errorf("expected status placed, got %s", order.Status)
		}
		if order.Pricing.Subtotal != f.item.Price*2 {
			t.Errorf("unexpected subtotal %d", order.Pricing.Subtotal)
		}
		if !strings.HasPrefix(order.OrderNumber, "ORD-") {
			t.Errorf("unexpected order number %s", order.OrderNumber)
		}

		if len(events.created) != 1 {
			t.Fatalf("expected 1 created event, got %d", len(events.created))
		}
		if events.created[0].OrderID != order.ID {
			t.Errorf("event order id mismatch")
		}
		if events.created[0].Total != order.Pricing.Total {
			t.Errorf("event total mismatch")
		}
	})

	t.Run("requires customer identity", func(t *testing.T) {
		f := newServiceFixture(t)
		handler := newTestHandler(f, nil)

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(createBody(f, 1)))
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		f := newServiceFixture(t)
		handler := newTestHandler(f, nil)

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{not json"))
		req.Header.Set("X-Customer-ID", uuid.NewString())
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("rejects unknown payment method", func(t *testing.T) {
		f := newServiceFixture(t)
		handler := newTestHandler(f, nil)

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"payment_method":"crypto"}`))
		req.Header.Set("X-Customer-ID", uuid.NewString())
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("empty cart is a client error", func(t *testing.T) {
		f := newServiceFixture(t)
		handler := newTestHandler(f, nil)

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items":[]}`))
		req.Header.Set("X-Customer-ID", uuid.NewString())
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("closed restaurant is not found", func(t *testing.T) {
		f := newServiceFixture(t)
		f.restaurant.IsActive = false
		handler := newTestHandler(f, nil)

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(createBody(f, 1)))
		req.Header.Set("X-Customer-ID", uuid.NewString())
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("store failure is masked outside debug mode", func(t *testing.T) {
		f := newServiceFixture(t)
		f.store.createErr = errors.New("pq: connection reset")
		handler := newTestHandler(f, nil)

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(createBody(f, 1)))
		req.Header.Set("X-Customer-ID", uuid.NewString())
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["error"] != "internal server error" {
			t.Errorf("expected masked error, got %q", resp["error"])
		}
	})
}

func TestHandler_HandleList(t *testing.T) {
	t.Run("returns data with pagination", func(t *testing.T) {
		f := newServiceFixture(t)
		handler := newTestHandler(f, nil)
		customerID := uuid.New()
		seedOrders(f, customerID, 25)

		req := httptest.NewRequest(http.MethodGet, "/orders?page=2&limit=10", nil)
		req.Header.Set("X-Customer-ID", customerID.String())
		rec := httptest.NewRecorder()

		handler.HandleList(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var resp struct {
			Data       []OrderView `json:"data"`
			Pagination Pagination  `json:"pagination"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Data) != 10 {
			t.Errorf("expected 10 orders, got %d", len(resp.Data))
		}
		if resp.Pagination.Total != 25 || resp.Pagination.Pages != 3 || resp.Pagination.Page != 2 {
			t.Errorf("unexpected pagination: %+v", resp.Pagination)
		}
	})

	t.Run("rejects unknown status filter", func(t *testing.T) {
		f := newServiceFixture(t)
		handler := newTestHandler(f, nil)

		req := httptest.NewRequest(http.MethodGet, "/orders?status=shipped", nil)
		req.Header.Set("X-Customer-ID", uuid.NewString())
		rec := httptest.NewRecorder()

		handler.HandleList(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("requires customer identity", func(t *testing.T) {
		f := newServiceFixture(t)
		handler := newTestHandler(f, nil)

		rec := httptest.NewRecorder()
		handler.HandleList(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleGet(t *testing.T) {
	t.Run("returns owned order", func(t *testing.T) {
		f := newServiceFixture(t)
		handler := newTestHandler(f, nil)
		customerID := uuid.New()
		orderID := f.store.put(domain.Order{
			CustomerID:   customerID,
			RestaurantID: f.restaurant.ID,
			Status:       domain.OrderStatusPlaced,
		})

		req := httptest.NewRequest(http.MethodGet, "/orders/"+orderID.String(), nil)
		req.Header.Set("X-Customer-ID", customerID.String())
		req.SetPathValue("id", orderID.String())
		rec := httptest.NewRecorder()

		handler.HandleGet(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("non-owner gets 404", func(t *testing.T) {
		f := newServiceFixture(t)
		handler := newTestHandler(f, nil)
		orderID := f.store.put(domain.Order{
			CustomerID:   uuid.New(),
			RestaurantID: f.restaurant.ID,
			Status:       domain.OrderStatusPlaced,
		})

		req := httptest.NewRequest(http.MethodGet, "/orders/"+orderID.String(), nil)
		req.Header.Set("X-Customer-ID", uuid.NewString())
		req.SetPathValue("id", orderID.String())
		rec := httptest.NewRecorder()

		handler.HandleGet(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("invalid id is a client error", func(t *testing.T) {
		f := newServiceFixture(t)
		handler := newTestHandler(f, nil)

		req := httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil)
		req.Header.Set("X-Customer-ID", uuid.NewString())
		req.SetPathValue("id", "not-a-uuid")
		rec := httptest.NewRecorder()

		handler.HandleGet(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleCancel(t *testing.T) {
	t.Run("cancels and publishes event", func(t *testing.T) {
		f := newServiceFixture(t)
		events := &fakeEvents{}
		handler := newTestHandler(f, events)
		customerID := uuid.New()
		orderID := f.store.put(domain.Order{
			OrderNumber:  "ORD-20260901120000-AAAAAAAA",
			CustomerID:   customerID,
			RestaurantID: f.restaurant.ID,
			Status:       domain.OrderStatusPlaced,
		})

		req := httptest.NewRequest(http.MethodPut, "/orders/"+orderID.String()+"/cancel", nil)
		req.Header.Set("X-Customer-ID", customerID.String())
		req.SetPathValue("id", orderID.String())
		rec := httptest.NewRecorder()

		handler.HandleCancel(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Data OrderView `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Data.Status != domain.OrderStatusCancelled {
			t.Errorf("expected cancelled, got %s", resp.Data.Status)
		}
		if resp.Data.CancelledAt == nil {
			t.Error("expected cancelled_at to be set")
		}

		if len(events.cancelled) != 1 {
			t.Fatalf("expected 1 cancelled event, got %d", len(events.cancelled))
		}
		if events.cancelled[0].OrderNumber != "ORD-20260901120000-AAAAAAAA" {
			t.Errorf("event order number mismatch: %s", events.cancelled[0].OrderNumber)
		}
	})

	t.Run("second cancel is a client error", func(t *testing.T) {
		f := newServiceFixture(t)
		handler := newTestHandler(f, nil)
		customerID := uuid.New()
		orderID := f.store.put(domain.Order{
			CustomerID:   customerID,
			RestaurantID: f.restaurant.ID,
			Status:       domain.OrderStatusCancelled,
		})

		req := httptest.NewRequest(http.MethodPut, "/orders/"+orderID.String()+"/cancel", nil)
		req.Header.Set("X-Customer-ID", customerID.String())
		req.SetPathValue("id", orderID.String())
		rec := httptest.NewRecorder()

		handler.HandleCancel(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("non-owner gets 404", func(t *testing.T) {
		f := newServiceFixture(t)
		handler := newTestHandler(f, nil)
		orderID := f.store.put(domain.Order{
			CustomerID:   uuid.New(),
			RestaurantID: f.restaurant.ID,
			Status:       domain.OrderStatusPlaced,
		})

		req := httptest.NewRequest(http.MethodPut, "/orders/"+orderID.String()+"/cancel", nil)
		req.Header.Set("X-Customer-ID", uuid.NewString())
		req.SetPathValue("id", orderID.String())
		rec := httptest.NewRecorder()

		handler.HandleCancel(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleAdvanceStatus(t *testing.T) {
	t.Run("advances to the next status", func(t *testing.T) {
		f := newServiceFixture(t)
		handler := newTestHandler(f, nil)
		orderID := f.store.put(domain.Order{
			CustomerID:   uuid.New(),
			RestaurantID: f.restaurant.ID,
			Status:       domain.OrderStatusPlaced,
		})

		req := httptest.NewRequest(http.MethodPatch, "/orders/"+orderID.String()+"/status", strings.NewReader(`{"status":"preparing"}`))
		req.SetPathValue("id", orderID.String())
		rec := httptest.NewRecorder()

		handler.HandleAdvanceStatus(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var order domain.Order
		if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if order.Status != domain.OrderStatusPreparing {
			t.Errorf("expected preparing, got %s", order.Status)
		}
	})

	t.Run("rejects a skipped transition", func(t *testing.T) {
		f := newServiceFixture(t)
		handler := newTestHandler(f, nil)
		orderID := f.store.put(domain.Order{
			CustomerID:   uuid.New(),
			RestaurantID: f.restaurant.ID,
			Status:       domain.OrderStatusPlaced,
		})

		req := httptest.NewRequest(http.MethodPatch, "/orders/"+orderID.String()+"/status", strings.NewReader(`{"status":"delivered"}`))
		req.SetPathValue("id", orderID.String())
		rec := httptest.NewRecorder()

		handler.HandleAdvanceStatus(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("rejects cancelled as a target", func(t *testing.T) {
		f := newServiceFixture(t)
		handler := newTestHandler(f, nil)
		orderID := f.store.put(domain.Order{
			CustomerID:   uuid.New(),
			RestaurantID: f.restaurant.ID,
			Status:       domain.OrderStatusPlaced,
		})

		req := httptest.NewRequest(http.MethodPatch, "/orders/"+orderID.String()+"/status", strings.NewReader(`{"status":"cancelled"}`))
		req.SetPathValue("id", orderID.String())
		rec := httptest.NewRecorder()

		handler.HandleAdvanceStatus(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		f := newServiceFixture(t)
		handler := newTestHandler(f, nil)
		orderID := uuid.New()

		req := httptest.NewRequest(http.MethodPatch, "/orders/"+orderID.String()+"/status", strings.NewReader(`{"status":"shipped"}`))
		req.SetPathValue("id", orderID.String())
		rec := httptest.NewRecorder()

		handler.HandleAdvanceStatus(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}
