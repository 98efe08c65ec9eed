package orders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/platemate/platemate/internal/domain"
)

// RestaurantSummary is the stable owner-facing subset of restaurant fields
// flattened onto an order view.
type RestaurantSummary struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Phone              string    `json:"phone"`
	Rating             float64   `json:"rating"`
	DeliveryFee        int64     `json:"delivery_fee"`
	DeliveryTimeMaxMin int       `json:"delivery_time_max_minutes"`
}

// OrderView is the client-facing projection of a persisted order. Restaurant
// is always present in the payload, null when the reference cannot be
// resolved, so clients never need to probe for the field.
type OrderView struct {
	ID                    uuid.UUID              `json:"id"`
	OrderNumber           string                 `json:"order_number"`
	CustomerID            uuid.UUID              `json:"customer_id"`
	Restaurant            *RestaurantSummary     `json:"restaurant"`
	Items                 []domain.OrderLineItem `json:"items"`
	Pricing               domain.PriceBreakdown  `json:"pricing"`
	Status                domain.OrderStatus     `json:"status"`
	DeliveryAddress       domain.Address         `json:"delivery_address"`
	PaymentMethod         domain.PaymentMethod   `json:"payment_method"`
	PaymentStatus         domain.PaymentStatus   `json:"payment_status"`
	SpecialInstructions   string                 `json:"special_instructions,omitempty"`
	EstimatedDeliveryTime time.Time              `json:"estimated_delivery_time"`
	CancelledAt           *time.Time             `json:"cancelled_at"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

// project reshapes a persisted order for the owning customer. A failed or
// empty restaurant lookup projects to null rather than failing the read:
// the receipt itself is already complete.
func (s *Service) project(ctx context.Context, order domain.Order) OrderView {
	var summary *RestaurantSummary
	if restaurant, err := s.restaurants.GetRestaurant(ctx, order.RestaurantID); err == nil && restaurant != nil {
		summary = &RestaurantSummary{
			ID:                 restaurant.ID,
			Name:               restaurant.Name,
			Phone:              restaurant.Phone,
			Rating:             restaurant.Rating,
			DeliveryFee:        restaurant.DeliveryFee,
			DeliveryTimeMaxMin: restaurant.DeliveryTimeMaxMin,
		}
	}

	return OrderView{
		ID:                    order.ID,
		OrderNumber:           order.OrderNumber,
		CustomerID:            order.CustomerID,
		Restaurant:            summary,
		Items:                 order.Items,
		Pricing:               order.Pricing,
		Status:                order.Status,
		DeliveryAddress:       order.DeliveryAddress,
		PaymentMethod:         order.PaymentMethod,
		PaymentStatus:         order.PaymentStatus,
		SpecialInstructions:   order.SpecialInstructions,
		EstimatedDeliveryTime: order.EstimatedDeliveryTime,
		CancelledAt:           order.CancelledAt,
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}
}
