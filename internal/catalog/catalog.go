package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Restaurant carries the subset of restaurant state the order pipeline and
// the public catalog API need. Full restaurant management lives elsewhere.
type Restaurant struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Phone              string    `json:"phone"`
	Rating             float64   `json:"rating"`
	IsActive           bool      `json:"is_active"`
	IsVerified         bool      `json:"is_verified"`
	DeliveryFee        int64     `json:"delivery_fee"`
	DeliveryTimeMaxMin int       `json:"delivery_time_max_minutes"`
	CreatedAt          time.Time `json:"created_at"`
}

// AcceptingOrders reports whether a restaurant may receive new orders.
func (r Restaurant) AcceptingOrders() bool {
	return r.IsActive && r.IsVerified
}

type MenuItem struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Images       []string  `json:"images"`
	Price        int64     `json:"price"`
	IsActive     bool      `json:"is_active"`
	IsAvailable  bool      `json:"is_available"`
}

// Orderable reports whether the item may appear on a new order.
func (m MenuItem) Orderable() bool {
	return m.IsActive && m.IsAvailable
}
