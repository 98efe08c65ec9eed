package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platemate/platemate/internal/domain"
)

func line(price int64, qty int) domain.OrderLineItem {
	return domain.OrderLineItem{
		Name:      "item",
		UnitPrice: price,
		Quantity:  qty,
		Subtotal:  price * int64(qty),
	}
}

func TestPricingEngine_Price(t *testing.T) {
	engine := NewPricingEngine(DefaultPricingConfig())

	tests := []struct {
		name        string
		lines       []domain.OrderLineItem
		deliveryFee int64
		want        domain.PriceBreakdown
		wantErr     error
	}{
		{
			name:        "two items plus fee",
			lines:       []domain.OrderLineItem{line(100, 2)},
			deliveryFee: 50,
			want: domain.PriceBreakdown{
				Subtotal:    200,
				DeliveryFee: 50,
				Tax:         33, // round(250 * 0.13) = round(32.5)
				Discount:    0,
				Total:       283,
			},
		},
		{
			name:        "tax rounds half up",
			lines:       []domain.OrderLineItem{line(50, 1)}, // 50 * 0.13 = 6.5
			deliveryFee: 0,
			want: domain.PriceBreakdown{
				Subtotal: 50,
				Tax:      7,
				Total:    57,
			},
		},
		{
			name:        "tax rounds down below half",
			lines:       []domain.OrderLineItem{line(110, 1)}, // 110 * 0.13 = 14.3
			deliveryFee: 0,
			want: domain.PriceBreakdown{
				Subtotal: 110,
				Tax:      14,
				Total:    124,
			},
		},
		{
			name:        "fee is taxed too",
			lines:       []domain.OrderLineItem{line(1000, 1)},
			deliveryFee: 299,
			want: domain.PriceBreakdown{
				Subtotal:    1000,
				DeliveryFee: 299,
				Tax:         169, // round(1299 * 0.13) = round(168.87)
				Total:       1468,
			},
		},
		{
			name:        "free order",
			lines:       []domain.OrderLineItem{line(0, 1)},
			deliveryFee: 0,
			want:        domain.PriceBreakdown{},
		},
		{
			name:        "negative delivery fee",
			lines:       []domain.OrderLineItem{line(100, 1)},
			deliveryFee: -1,
			wantErr:     ErrPricingInvariant,
		},
		{
			name:        "negative unit price",
			lines:       []domain.OrderLineItem{line(-100, 1)},
			deliveryFee: 0,
			wantErr:     ErrPricingInvariant,
		},
		{
			name:        "zero quantity",
			lines:       []domain.OrderLineItem{line(100, 0)},
			deliveryFee: 0,
			wantErr:     ErrPricingInvariant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Price(tt.lines, tt.deliveryFee)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPricingEngine_PriceIsDeterministic(t *testing.T) {
	engine := NewPricingEngine(DefaultPricingConfig())
	lines := []domain.OrderLineItem{line(1250, 2), line(650, 1)}

	first, err := engine.Price(lines, 299)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := engine.Price(lines, 299)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPricingEngine_DeliveryFee(t *testing.T) {
	engine := NewPricingEngine(PricingConfig{
		TaxRate:            decimal.NewFromFloat(0.13),
		DefaultDeliveryFee: 150,
	})

	override := int64(500)
	zeroOverride := int64(0)

	tests := []struct {
		name          string
		override      *int64
		restaurantFee int64
		want          int64
	}{
		{"override wins", &override, 299, 500},
		{"zero override wins too", &zeroOverride, 299, 0},
		{"restaurant fee next", nil, 299, 299},
		{"default as last resort", nil, 0, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.DeliveryFee(tt.override, tt.restaurantFee))
		})
	}
}
