package orders

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/platemate/platemate/internal/domain"
	"github.com/platemate/platemate/internal/telemetry"
)

type Handler struct {
	service   *Service
	events    OrderEvents
	metrics   *telemetry.OrderMetrics
	logger    *slog.Logger
	debugMode bool
}

// NewHandler wires the order API. events may be nil when no broker is
// configured. debugMode exposes internal error detail in responses and must
// stay off outside development.
func NewHandler(service *Service, events OrderEvents, metrics *telemetry.OrderMetrics, logger *slog.Logger, debugMode bool) *Handler {
	return &Handler{
		service:   service,
		events:    events,
		metrics:   metrics,
		logger:    logger,
		debugMode: debugMode,
	}
}

type createOrderRequest struct {
	RestaurantID        uuid.UUID           `json:"restaurant_id"`
	Items               []CartItem          `json:"items"`
	DeliveryAddress     domain.AddressInput `json:"delivery_address"`
	SpecialInstructions string              `json:"special_instructions"`
	PaymentMethod       string              `json:"payment_method"`
	DeliveryFee         *int64              `json:"delivery_fee"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	method := domain.PaymentMethodCash
	if req.PaymentMethod != "" {
		var valid bool
		method, valid = domain.ToPaymentMethod(req.PaymentMethod)
		if !valid {
			h.writeError(w, http.StatusBadRequest, "unknown payment method")
			return
		}
	}

	start := time.Now()
	order, err := h.service.CreateOrder(r.Context(), customerID, CreateOrderInput{
		RestaurantID:        req.RestaurantID,
		Items:               req.Items,
		DeliveryAddress:     req.DeliveryAddress,
		SpecialInstructions: req.SpecialInstructions,
		PaymentMethod:       method,
		DeliveryFeeOverride: req.DeliveryFee,
	})
	if h.metrics != nil {
		h.metrics.ObserveIntake(r.Context(), time.Since(start), err == nil)
	}
	if err != nil {
		h.handleError(w, err, "failed to create order", "customer_id", customerID)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordPlaced(r.Context())
	}

	if h.events != nil {
		event := domain.OrderCreatedEvent{
			OrderID:      order.ID,
			OrderNumber:  order.OrderNumber,
			CustomerID:   order.CustomerID,
			RestaurantID: order.RestaurantID,
			Items:        eventItems(order.Items),
			Total:        order.Pricing.Total,
			Timestamp:    order.CreatedAt,
		}
		if err := h.events.PublishCreated(r.Context(), event); err != nil {
			h.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
	}

	h.logger.Info("order created",
		"order_id", order.ID, "order_number", order.OrderNumber,
		"customer_id", order.CustomerID, "total", order.Pricing.Total)
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()

	var status *domain.OrderStatus
	if raw := query.Get("status"); raw != "" {
		parsed, err := domain.ToOrderStatus(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		status = &parsed
	}

	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	views, pagination, err := h.service.ListOrders(r.Context(), customerID, ListOrdersInput{
		Status:    status,
		SortBy:    query.Get("sortBy"),
		SortOrder: query.Get("sortOrder"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		h.handleError(w, err, "failed to list orders", "customer_id", customerID)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"data":       views,
		"pagination": pagination,
	})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	view, err := h.service.GetOrder(r.Context(), customerID, orderID)
	if err != nil {
		h.handleError(w, err, "failed to get order", "order_id", orderID)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"data": view})
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	view, err := h.service.CancelOrder(r.Context(), customerID, orderID)
	if err != nil {
		h.handleError(w, err, "failed to cancel order", "order_id", orderID)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordCancelled(r.Context())
	}

	if h.events != nil {
		event := domain.OrderCancelledEvent{
			OrderID:     view.ID,
			OrderNumber: view.OrderNumber,
			CustomerID:  view.CustomerID,
			Timestamp:   time.Now().UTC(),
		}
		if err := h.events.PublishCancelled(r.Context(), event); err != nil {
			h.logger.Error("failed to publish order cancelled event", "error", err, "order_id", orderID)
		}
	}

	h.logger.Info("order cancelled", "order_id", orderID, "customer_id", customerID)
	h.writeJSON(w, http.StatusOK, map[string]any{"data": view})
}

type advanceStatusRequest struct {
	Status string `json:"status"`
}

// HandleAdvanceStatus serves restaurant and delivery actors moving an order
// forward. It shares the lifecycle guards with cancellation.
func (h *Handler) HandleAdvanceStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req advanceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := domain.ToOrderStatus(req.Status)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	order, err := h.service.AdvanceOrder(r.Context(), orderID, status)
	if err != nil {
		h.handleError(w, err, "failed to advance order", "order_id", orderID)
		return
	}

	h.logger.Info("order status advanced", "order_id", orderID, "status", order.Status)
	h.writeJSON(w, http.StatusOK, order)
}

// customerID reads the authenticated customer identity injected upstream.
func (h *Handler) customerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.Header.Get("X-Customer-ID"))
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "missing customer identity")
		return uuid.Nil, false
	}
	return id, true
}

// handleError maps the error taxonomy onto HTTP statuses. Client errors keep
// their message; internal errors are masked unless debug mode is on.
func (h *Handler) handleError(w http.ResponseWriter, err error, msg string, args ...any) {
	switch {
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrMissingRestaurant),
		errors.Is(err, ErrMissingAddress),
		errors.Is(err, ErrInvalidQuantity):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrRestaurantUnavailable),
		errors.Is(err, ErrItemUnavailable),
		errors.Is(err, ErrOrderNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrOrderFinalized),
		errors.Is(err, domain.ErrInvalidTransition):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(msg, append([]any{"error", err}, args...)...)
		if h.debugMode {
			h.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func eventItems(lines []domain.OrderLineItem) []domain.OrderEventItem {
	items := make([]domain.OrderEventItem, len(lines))
	for i, line := range lines {
		items[i] = domain.OrderEventItem{
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}
	return items
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
