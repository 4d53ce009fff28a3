// Package pricing computes cart totals. ComputeTotals is a pure function so
// the display layer can call it repeatedly for live previews while the user
// edits quantities or the discount field.
package pricing

import (
	"errors"
	"math"

	"github.com/fjod/go_pos/internal/domain"
)

var ErrInvalidDiscount = errors.New("discount percent must be a number between 0 and 100")

// LineTotal returns quantity times unit price, rounded to two decimals
func LineTotal(line domain.CartLine) float64 {
	return domain.Round2(float64(line.Quantity) * line.UnitPrice)
}

// ComputeTotals prices the given lines with a percentage discount.
// Out-of-range or non-numeric discounts are rejected, not silently clamped.
func ComputeTotals(lines []domain.CartLine, discountPercent float64) (domain.Totals, error) {
	if math.IsNaN(discountPercent) || discountPercent < 0 || discountPercent > 100 {
		return domain.Totals{}, ErrInvalidDiscount
	}

	var subtotal float64
	for _, line := range lines {
		subtotal += LineTotal(line)
	}
	subtotal = domain.Round2(subtotal)

	discountAmount := domain.Round2(subtotal * discountPercent / 100)

	return domain.Totals{
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		GrandTotal:      domain.Round2(subtotal - discountAmount),
	}, nil
}
