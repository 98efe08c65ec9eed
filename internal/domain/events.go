package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderEventItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

type OrderCreatedEvent struct {
	OrderID      uuid.UUID        `json:"order_id"`
	OrderNumber  string           `json:"order_number"`
	CustomerID   uuid.UUID        `json:"customer_id"`
	RestaurantID uuid.UUID        `json:"restaurant_id"`
	Items        []OrderEventItem `json:"items"`
	Total        int64            `json:"total"`
	Timestamp    time.Time        `json:"timestamp"`
}

type OrderCancelledEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
	Timestamp   time.Time `json:"timestamp"`
}
