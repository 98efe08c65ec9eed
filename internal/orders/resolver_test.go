package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platemate/platemate/internal/catalog"
)

type fakeMenu struct {
	items map[uuid.UUID]*catalog.MenuItem
	err   error
}

func (f *fakeMenu) GetMenuItem(_ context.Context, restaurantID, itemID uuid.UUID) (*catalog.MenuItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[itemID]
	if !ok || item.RestaurantID != restaurantID {
		return nil, nil
	}
	return item, nil
}

func randomMenuItem(restaurantID uuid.UUID) *catalog.MenuItem {
	return &catalog.MenuItem{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Name:         gofakeit.Dinner(),
		Description:  gofakeit.Sentence(5),
		Category:     gofakeit.Word(),
		Images:       []string{gofakeit.URL()},
		Price:        int64(gofakeit.Number(100, 5000)),
		IsActive:     true,
		IsAvailable:  true,
	}
}

func TestMenuSnapshotResolver_Resolve(t *testing.T) {
	restaurantID := uuid.New()
	itemA := randomMenuItem(restaurantID)
	itemB := randomMenuItem(restaurantID)

	menu := &fakeMenu{items: map[uuid.UUID]*catalog.MenuItem{
		itemA.ID: itemA,
		itemB.ID: itemB,
	}}
	resolver := NewMenuSnapshotResolver(menu)

	t.Run("freezes current menu state per line", func(t *testing.T) {
		lines, err := resolver.Resolve(context.Background(), restaurantID, []CartItem{
			{ItemID: itemA.ID, Quantity: 2},
			{ItemID: itemB.ID, Quantity: 1},
		})
		require.NoError(t, err)
		require.Len(t, lines, 2)

		assert.Equal(t, itemA.ID, lines[0].MenuItemID)
		assert.Equal(t, itemA.Name, lines[0].Name)
		assert.Equal(t, itemA.Description, lines[0].Description)
		assert.Equal(t, itemA.Category, lines[0].Category)
		assert.Equal(t, itemA.Images, lines[0].Images)
		assert.Equal(t, itemA.Price, lines[0].UnitPrice)
		assert.Equal(t, 2, lines[0].Quantity)
		assert.Equal(t, itemA.Price*2, lines[0].Subtotal)
		assert.Equal(t, []string{}, lines[0].Customizations)

		assert.Equal(t, itemB.ID, lines[1].MenuItemID)
		assert.Equal(t, 1, lines[1].Quantity)
	})

	t.Run("preserves cart order", func(t *testing.T) {
		lines, err := resolver.Resolve(context.Background(), restaurantID, []CartItem{
			{ItemID: itemB.ID, Quantity: 1},
			{ItemID: itemA.ID, Quantity: 1},
		})
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, itemB.ID, lines[0].MenuItemID)
		assert.Equal(t, itemA.ID, lines[1].MenuItemID)
	})

	t.Run("unknown item fails the whole cart", func(t *testing.T) {
		_, err := resolver.Resolve(context.Background(), restaurantID, []CartItem{
			{ItemID: itemA.ID, Quantity: 1},
			{ItemID: uuid.New(), Quantity: 1},
		})
		require.ErrorIs(t, err, ErrItemUnavailable)
	})

	t.Run("item from another restaurant is not found", func(t *testing.T) {
		_, err := resolver.Resolve(context.Background(), uuid.New(), []CartItem{
			{ItemID: itemA.ID, Quantity: 1},
		})
		require.ErrorIs(t, err, ErrItemUnavailable)
	})

	t.Run("inactive and unavailable items are rejected", func(t *testing.T) {
		inactive := randomMenuItem(restaurantID)
		inactive.IsActive = false
		unavailable := randomMenuItem(restaurantID)
		unavailable.IsAvailable = false

		menu := &fakeMenu{items: map[uuid.UUID]*catalog.MenuItem{
			inactive.ID:    inactive,
			unavailable.ID: unavailable,
		}}
		resolver := NewMenuSnapshotResolver(menu)

		for _, id := range []uuid.UUID{inactive.ID, unavailable.ID} {
			_, err := resolver.Resolve(context.Background(), restaurantID, []CartItem{{ItemID: id, Quantity: 1}})
			require.ErrorIs(t, err, ErrItemUnavailable)
		}
	})

	t.Run("non-positive quantity is rejected before lookup", func(t *testing.T) {
		for _, qty := range []int{0, -1} {
			_, err := resolver.Resolve(context.Background(), restaurantID, []CartItem{
				{ItemID: itemA.ID, Quantity: qty},
			})
			require.ErrorIs(t, err, ErrInvalidQuantity)
		}
	})

	t.Run("lookup failure propagates", func(t *testing.T) {
		resolver := NewMenuSnapshotResolver(&fakeMenu{err: errors.New("catalog down")})
		_, err := resolver.Resolve(context.Background(), restaurantID, []CartItem{
			{ItemID: itemA.ID, Quantity: 1},
		})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrItemUnavailable)
	})
}
