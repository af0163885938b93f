// Package pricing turns line items into quote totals. Every consumer (the
// editor, public intake and the PDF renderer) calls ComputeTotals so that
// the shown, persisted and printed numbers agree.
package pricing

import (
	"math"

	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate applies when the caller supplies no usable rate.
const DefaultTaxRate = entity.DefaultTaxRate

var half = decimal.NewFromFloat(0.5)

// Totals is the priced summary of a set of line items.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TaxRate       float64         `json:"tax_rate"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
}

// ComputeTotals prices items. Text rows are skipped. The discount is a flat
// amount and may exceed the subtotal, giving a negative taxable amount.
// Tax is rounded half up to a whole unit.
func ComputeTotals(items []entity.LineItem, discount, taxRate float64) Totals {
	rate := NormalizeTaxRate(taxRate)
	subtotal := Subtotal(items)
	disc := decimal.NewFromFloat(finite(discount))
	taxable := subtotal.Sub(disc)
	tax := RoundHalfUp(taxable.Mul(decimal.NewFromFloat(rate)))

	return Totals{
		Subtotal:      subtotal,
		Discount:      disc,
		TaxableAmount: taxable,
		TaxRate:       rate,
		Tax:           tax,
		Total:         taxable.Add(tax),
	}
}

// Subtotal sums LineAmount over priced rows.
func Subtotal(items []entity.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(LineAmount(item))
	}
	return sum
}

// LineAmount is quantity x unit price, unrounded. Text rows are zero.
func LineAmount(item entity.LineItem) decimal.Decimal {
	if item.IsText() {
		return decimal.Zero
	}
	qty := decimal.NewFromFloat(item.Quantity.Float())
	price := decimal.NewFromFloat(item.UnitPrice.Float())
	return qty.Mul(price)
}

// RoundHalfUp rounds to the nearest integer with ties toward +Inf, so
// -2.5 becomes -2 and 2.5 becomes 3.
func RoundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}

// NormalizeTaxRate maps negative and non-finite rates to the default.
// Zero is a valid rate.
func NormalizeTaxRate(rate float64) float64 {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return DefaultTaxRate
	}
	return rate
}

// TaxRateOrDefault resolves an optional rate from a request body.
func TaxRateOrDefault(rate *float64) float64 {
	if rate == nil {
		return DefaultTaxRate
	}
	return NormalizeTaxRate(*rate)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
