package orders

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/platemate/platemate/internal/domain"
)

// ErrPricingInvariant marks a defect in the data fed to the pricing engine
// (negative amounts, zero quantities). It maps to a server error, not a
// client error: resolved lines are validated before they get here.
var ErrPricingInvariant = errors.New("pricing invariant violated")

// PricingConfig makes the tax policy and fee fallback explicit instead of
// burying them as constants in the computation.
type PricingConfig struct {
	// TaxRate is applied to subtotal + delivery fee.
	TaxRate decimal.Decimal
	// DefaultDeliveryFee applies when neither the request nor the
	// restaurant supplies a fee.
	DefaultDeliveryFee int64
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		TaxRate:            decimal.NewFromFloat(0.13),
		DefaultDeliveryFee: 0,
	}
}

type PricingEngine struct {
	cfg PricingConfig
}

func NewPricingEngine(cfg PricingConfig) *PricingEngine {
	return &PricingEngine{cfg: cfg}
}

// Price computes the persisted breakdown for a set of resolved lines.
// Amounts are minor currency units; tax is rounded half-up to a whole unit.
// The same lines and fee always produce the same breakdown: the result is
// stored once and never recomputed.
func (e *PricingEngine) Price(lines []domain.OrderLineItem, deliveryFee int64) (domain.PriceBreakdown, error) {
	if deliveryFee < 0 {
		return domain.PriceBreakdown{}, fmt.Errorf("%w: negative delivery fee %d", ErrPricingInvariant, deliveryFee)
	}

	var subtotal int64
	for _, line := range lines {
		if line.UnitPrice < 0 || line.Quantity <= 0 {
			return domain.PriceBreakdown{}, fmt.Errorf("%w: line %q price=%d quantity=%d",
				ErrPricingInvariant, line.Name, line.UnitPrice, line.Quantity)
		}
		subtotal += line.UnitPrice * int64(line.Quantity)
	}

	// decimal.Round rounds half away from zero, which is half-up for the
	// non-negative amounts allowed here.
	taxable := decimal.NewFromInt(subtotal + deliveryFee)
	tax := taxable.Mul(e.cfg.TaxRate).Round(0).IntPart()

	// No discount engine exists; the field is carried at zero so the stored
	// breakdown shape does not change when one is added.
	var discount int64

	return domain.PriceBreakdown{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		Tax:         tax,
		Discount:    discount,
		Total:       subtotal + deliveryFee + tax - discount,
	}, nil
}

// DeliveryFee picks the fee for an intake: explicit override first, then the
// restaurant's configured fee, then the configured default.
func (e *PricingEngine) DeliveryFee(override *int64, restaurantFee int64) int64 {
	if override != nil {
		return *override
	}
	if restaurantFee > 0 {
		return restaurantFee
	}
	return e.cfg.DefaultDeliveryFee
}
