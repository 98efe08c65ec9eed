package domain

import "errors"

type OrderStatus string

// remember to add new statuses to the transitions table
const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusOnTheWay  OrderStatus = "on_the_way"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var (
	ErrAlreadyCancelled  = errors.New("order is already cancelled")
	ErrOrderFinalized    = errors.New("order is already delivered or completed")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// transitions lists the statuses reachable from each status. Terminal
// statuses map to nil: nothing leaves cancelled, delivered or completed.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:    {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusOnTheWay, OrderStatusCancelled},
	OrderStatusOnTheWay:  {OrderStatusDelivered, OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusDelivered: nil,
	OrderStatusCompleted: nil,
	OrderStatusCancelled: nil,
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := transitions[status]; ok {
		return status, nil
	}
	return "", errors.New("invalid order status")
}

func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// CancellableStatuses are the statuses a customer may cancel from, in
// SQL-predicate order.
func CancellableStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPlaced, OrderStatusPreparing, OrderStatusOnTheWay}
}

// CanCancel reports whether an order in status s may be cancelled,
// distinguishing a repeat cancel from an attempt on a finished order.
func CanCancel(s OrderStatus) error {
	switch s {
	case OrderStatusCancelled:
		return ErrAlreadyCancelled
	case OrderStatusDelivered, OrderStatusCompleted:
		return ErrOrderFinalized
	}
	return nil
}

// CanTransition validates a status advance against the transition table.
func CanTransition(from, to OrderStatus) error {
	if from == OrderStatusCancelled {
		return ErrAlreadyCancelled
	}
	if from.Terminal() {
		return ErrOrderFinalized
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}
