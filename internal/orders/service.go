package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/platemate/platemate/internal/catalog"
	"github.com/platemate/platemate/internal/domain"
)

var (
	ErrEmptyCart             = errors.New("cart must contain at least one item")
	ErrMissingRestaurant     = errors.New("restaurant id is required")
	ErrMissingAddress        = errors.New("delivery address is required")
	ErrRestaurantUnavailable = errors.New("restaurant is not accepting orders")
	ErrOrderNotFound         = errors.New("order not found")
)

const defaultDeliveryEstimate = 45 * time.Minute

// RestaurantLookup is the slice of the catalog the intake pipeline reads.
type RestaurantLookup interface {
	GetRestaurant(ctx context.Context, id uuid.UUID) (*catalog.Restaurant, error)
}

// OrderStore is the persistence surface the service needs; implemented by
// OrderRepository and by in-memory fakes in tests.
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	GetForCustomer(ctx context.Context, customerID, orderID uuid.UUID) (*domain.Order, error)
	GetByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, int, error)
	Cancel(ctx context.Context, customerID, orderID uuid.UUID) (bool, error)
	AdvanceStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) (bool, error)
}

type Service struct {
	store       OrderStore
	restaurants RestaurantLookup
	resolver    *MenuSnapshotResolver
	pricing     *PricingEngine
	numbers     *OrderNumberGenerator
	now         func() time.Time
}

func NewService(store OrderStore, restaurants RestaurantLookup, resolver *MenuSnapshotResolver, pricing *PricingEngine, numbers *OrderNumberGenerator) *Service {
	return &Service{
		store:       store,
		restaurants: restaurants,
		resolver:    resolver,
		pricing:     pricing,
		numbers:     numbers,
		now:         time.Now,
	}
}

type CreateOrderInput struct {
	RestaurantID        uuid.UUID
	Items               []CartItem
	DeliveryAddress     domain.AddressInput
	SpecialInstructions string
	PaymentMethod       domain.PaymentMethod
	DeliveryFeeOverride *int64
}

// CreateOrder runs the intake pipeline: validate, resolve the cart against
// the live menu, price it, assign an order number and persist the snapshot.
// The first failure wins and nothing is written on any failure.
func (s *Service) CreateOrder(ctx context.Context, customerID uuid.UUID, in CreateOrderInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if in.RestaurantID == uuid.Nil {
		return nil, ErrMissingRestaurant
	}
	if in.DeliveryAddress.Empty() {
		return nil, ErrMissingAddress
	}

	restaurant, err := s.restaurants.GetRestaurant(ctx, in.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("lookup restaurant %s: %w", in.RestaurantID, err)
	}
	if restaurant == nil || !restaurant.AcceptingOrders() {
		return nil, ErrRestaurantUnavailable
	}

	lines, err := s.resolver.Resolve(ctx, in.RestaurantID, in.Items)
	if err != nil {
		return nil, err
	}

	fee := s.pricing.DeliveryFee(in.DeliveryFeeOverride, restaurant.DeliveryFee)
	breakdown, err := s.pricing.Price(lines, fee)
	if err != nil {
		return nil, err
	}

	orderNumber, err := s.numbers.Next()
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}

	method := in.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodCash
	}

	estimate := defaultDeliveryEstimate
	if restaurant.DeliveryTimeMaxMin > 0 {
		estimate = time.Duration(restaurant.DeliveryTimeMaxMin) * time.Minute
	}

	now := s.now().UTC()
	order := &domain.Order{
		OrderNumber:           orderNumber,
		CustomerID:            customerID,
		RestaurantID:          in.RestaurantID,
		Items:                 lines,
		Pricing:               breakdown,
		Status:                domain.OrderStatusPlaced,
		DeliveryAddress:       in.DeliveryAddress.Normalize(),
		PaymentMethod:         method,
		PaymentStatus:         domain.PaymentStatusPending,
		SpecialInstructions:   in.SpecialInstructions,
		EstimatedDeliveryTime: now.Add(estimate),
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.store.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	return order, nil
}

type ListOrdersInput struct {
	Status    *domain.OrderStatus
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// ListOrders returns one page of the customer's orders, most recent first by
// default, with the total counted before paging.
func (s *Service) ListOrders(ctx context.Context, customerID uuid.UUID, in ListOrdersInput) ([]OrderView, Pagination, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	filter := ListFilter{
		CustomerID: customerID,
		Status:     in.Status,
		SortBy:     in.SortBy,
		SortDesc:   in.SortOrder != "asc",
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}

	orders, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list orders: %w", err)
	}

	views := lo.Map(orders, func(o domain.Order, _ int) OrderView {
		return s.project(ctx, o)
	})

	pagination := Pagination{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}

	return views, pagination, nil
}

// GetOrder verifies ownership as part of the lookup: a non-owner gets
// ErrOrderNotFound, never a forbidden error that would leak existence.
func (s *Service) GetOrder(ctx context.Context, customerID, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.store.GetForCustomer(ctx, customerID, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	view := s.project(ctx, *order)
	return &view, nil
}

// CancelOrder checks ownership, then the lifecycle guard, then performs the
// guarded update. When the update loses a race the order is re-read and the
// guard re-derived so the caller sees the true conflict.
func (s *Service) CancelOrder(ctx context.Context, customerID, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.store.GetForCustomer(ctx, customerID, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if err := domain.CanCancel(order.Status); err != nil {
		return nil, err
	}

	ok, err := s.store.Cancel(ctx, customerID, orderID)
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	if !ok {
		// Lost a race with another transition since the read above.
		order, err = s.store.GetForCustomer(ctx, customerID, orderID)
		if err != nil {
			return nil, fmt.Errorf("get order: %w", err)
		}
		if order == nil {
			return nil, ErrOrderNotFound
		}
		if err := domain.CanCancel(order.Status); err != nil {
			return nil, err
		}
		return nil, domain.ErrInvalidTransition
	}

	order, err = s.store.GetForCustomer(ctx, customerID, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	view := s.project(ctx, *order)
	return &view, nil
}

// AdvanceOrder moves an order along the placed → preparing → on_the_way →
// delivered/completed path on behalf of restaurant and delivery actors. It
// shares the lifecycle table and terminal-state guard with cancellation.
func (s *Service) AdvanceOrder(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus) (*domain.Order, error) {
	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	// Cancellation is not an advance: it goes through CancelOrder, which
	// stamps cancelled_at. Accepting it here would leave that field empty.
	if to == domain.OrderStatusCancelled {
		return nil, domain.ErrInvalidTransition
	}

	if err := domain.CanTransition(order.Status, to); err != nil {
		return nil, err
	}

	ok, err := s.store.AdvanceStatus(ctx, orderID, order.Status, to)
	if err != nil {
		return nil, fmt.Errorf("advance order: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}

	return s.store.GetByID(ctx, orderID)
}
