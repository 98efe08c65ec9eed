package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodWallet PaymentMethod = "wallet"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// OrderLineItem is a frozen copy of a menu item at order time. It never
// references the live menu item, so the receipt stays stable even when the
// restaurant later renames or reprices the item.
type OrderLineItem struct {
	MenuItemID     uuid.UUID `json:"menu_item_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Images         []string  `json:"images"`
	UnitPrice      int64     `json:"unit_price"`
	Quantity       int       `json:"quantity"`
	Customizations []string  `json:"customizations"`
	Subtotal       int64     `json:"subtotal"`
}

// PriceBreakdown holds amounts in minor currency units. It is computed once
// at intake and persisted verbatim.
type PriceBreakdown struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"delivery_fee"`
	Tax         int64 `json:"tax"`
	Discount    int64 `json:"discount"`
	Total       int64 `json:"total"`
}

type Order struct {
	ID                    uuid.UUID      `json:"id"`
	OrderNumber           string         `json:"order_number"`
	CustomerID            uuid.UUID      `json:"customer_id"`
	RestaurantID          uuid.UUID      `json:"restaurant_id"`
	Items                 []OrderLineItem `json:"items"`
	Pricing               PriceBreakdown `json:"pricing"`
	Status                OrderStatus    `json:"status"`
	DeliveryAddress       Address        `json:"delivery_address"`
	PaymentMethod         PaymentMethod  `json:"payment_method"`
	PaymentStatus         PaymentStatus  `json:"payment_status"`
	SpecialInstructions   string         `json:"special_instructions,omitempty"`
	EstimatedDeliveryTime time.Time      `json:"estimated_delivery_time"`
	CancelledAt           *time.Time     `json:"cancelled_at,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

func ToPaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PaymentMethodCard, PaymentMethodCash, PaymentMethodWallet:
		return PaymentMethod(s), true
	}
	return "", false
}
