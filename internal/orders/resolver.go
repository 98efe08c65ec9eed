package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/platemate/platemate/internal/catalog"
	"github.com/platemate/platemate/internal/domain"
)

var (
	ErrItemUnavailable = errors.New("menu item is unavailable")
	ErrInvalidQuantity = errors.New("item quantity must be a positive integer")
)

// MenuLookup is the slice of the catalog the resolver reads. Lookups are
// scoped by restaurant: an item id belonging to another restaurant's menu
// resolves to nil.
type MenuLookup interface {
	GetMenuItem(ctx context.Context, restaurantID, itemID uuid.UUID) (*catalog.MenuItem, error)
}

type CartItem struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

// MenuSnapshotResolver turns (item id, quantity) pairs into frozen line
// items carrying the menu item's current name, price and description. It is
// a pure read; any invalid or unavailable item fails the whole cart.
type MenuSnapshotResolver struct {
	menu MenuLookup
}

func NewMenuSnapshotResolver(menu MenuLookup) *MenuSnapshotResolver {
	return &MenuSnapshotResolver{menu: menu}
}

// Resolve preserves the caller's item order so repeated carts produce
// identical receipts.
func (r *MenuSnapshotResolver) Resolve(ctx context.Context, restaurantID uuid.UUID, items []CartItem) ([]domain.OrderLineItem, error) {
	lines := make([]domain.OrderLineItem, 0, len(items))

	for _, req := range items {
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %s has quantity %d", ErrInvalidQuantity, req.ItemID, req.Quantity)
		}

		item, err := r.menu.GetMenuItem(ctx, restaurantID, req.ItemID)
		if err != nil {
			return nil, fmt.Errorf("lookup menu item %s: %w", req.ItemID, err)
		}
		if item == nil || !item.Orderable() {
			return nil, fmt.Errorf("%w: item %s", ErrItemUnavailable, req.ItemID)
		}

		lines = append(lines, domain.OrderLineItem{
			MenuItemID:     item.ID,
			Name:           item.Name,
			Description:    item.Description,
			Category:       item.Category,
			Images:         item.Images,
			UnitPrice:      item.Price,
			Quantity:       req.Quantity,
			Customizations: []string{},
			Subtotal:       item.Price * int64(req.Quantity),
		})
	}

	return lines, nil
}
