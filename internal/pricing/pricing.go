// Package pricing derives order totals from cart line items. Pure and
// deterministic; callers recompute immediately before placing an order
// instead of trusting any cached figure.
package pricing

import (
	"math"

	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/errs"
)

const (
	// FreeShippingThreshold is the items subtotal at which shipping is free.
	FreeShippingThreshold = 10000.0
	// FlatShippingFee applies below the free-shipping threshold.
	FlatShippingFee = 5000.0
	// TaxRate applies to the items subtotal, rounded to 2 decimals.
	TaxRate = 0.18
)

type Line struct {
	Price float64
	Qty   int
}

type Quote struct {
	ItemsPrice    float64 `json:"items_price"`
	ShippingPrice float64 `json:"shipping_price"`
	TaxPrice      float64 `json:"tax_price"`
	TotalPrice    float64 `json:"total_price"`
}

// Compute derives the four price fields for a set of lines. Negative price
// or non-positive quantity is rejected, not clamped.
func Compute(lines []Line) (Quote, error) {
	var q Quote
	for _, l := range lines {
		if l.Price < 0 {
			return Quote{}, errs.Validation("negative price %v", l.Price)
		}
		if l.Qty <= 0 {
			return Quote{}, errs.Validation("non-positive quantity %d", l.Qty)
		}
		q.ItemsPrice += l.Price * float64(l.Qty)
	}
	if q.ItemsPrice < FreeShippingThreshold {
		q.ShippingPrice = FlatShippingFee
	}
	q.TaxPrice = round2(TaxRate * q.ItemsPrice)
	q.TotalPrice = q.ItemsPrice + q.ShippingPrice + q.TaxPrice
	return q, nil
}

// FromCart quotes the current contents of a cart.
func FromCart(cart *domain.Cart) (Quote, error) {
	lines := make([]Line, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, Line{Price: l.Price, Qty: l.Qty})
	}
	return Compute(lines)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
