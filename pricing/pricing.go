package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Line is one cart line tagged with the restaurant it belongs to. Prices are
// unit prices with any customization modifiers already folded in.
type Line struct {
	RestaurantID  string
	MenuItemID    string
	ItemName      string
	UnitPrice     decimal.Decimal
	Quantity      int
	Customization string
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Discount is a resolved promo code: validation and lookup happen upstream.
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

// TaxInput prefers an exact externally-quoted amount; Rate is the fallback
// used when the tax service was unavailable. Checkout never blocks on the tax
// service.
type TaxInput struct {
	Amount decimal.NullDecimal
	Rate   decimal.Decimal
}

// TipInput: a positive Custom overrides the percentage, which is applied to
// the post-discount subtotal.
type TipInput struct {
	Percent decimal.Decimal
	Custom  decimal.NullDecimal
}

// Quote is the checkout-level price breakdown. All values carry two decimal
// places only at the edges; intermediate math is exact.
type Quote struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount_amount"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Tax         decimal.Decimal `json:"tax"`
	Tip         decimal.Decimal `json:"tip"`
	Total       decimal.Decimal `json:"total"`
}

// ValidationError rejects a malformed cart before anything is persisted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid cart: " + e.Reason
}

var hundred = decimal.NewFromInt(100)

// Validate checks the cart shape shared by preview, checkout and split.
func Validate(lines []Line) error {
	if len(lines) == 0 {
		return &ValidationError{Reason: "cart is empty"}
	}
	for i, l := range lines {
		if l.RestaurantID == "" {
			return &ValidationError{Reason: fmt.Sprintf("line %d has no restaurant", i)}
		}
		if l.Quantity <= 0 {
			return &ValidationError{Reason: fmt.Sprintf("line %d has non-positive quantity", i)}
		}
		if l.UnitPrice.IsNegative() {
			return &ValidationError{Reason: fmt.Sprintf("line %d has negative price", i)}
		}
	}
	return nil
}

// Subtotal sums price×quantity across the lines, unrounded.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// Price produces the combined-cart breakdown. The discount is clamped to
// [0, subtotal]; tax prefers the external amount and falls back to
// rate × discounted subtotal; the tip is computed on the discounted subtotal
// unless a positive custom tip overrides it.
func Price(lines []Line, promo *Discount, deliveryFee decimal.Decimal, tax TaxInput, tip TipInput) (Quote, error) {
	if err := Validate(lines); err != nil {
		return Quote{}, err
	}

	subtotal := Subtotal(lines)

	discount := decimal.Zero
	if promo != nil {
		switch promo.Type {
		case DiscountPercentage:
			discount = subtotal.Mul(promo.Value).Div(hundred)
		case DiscountFixed:
			discount = promo.Value
		default:
			return Quote{}, &ValidationError{Reason: "unknown discount type " + string(promo.Type)}
		}
		if discount.IsNegative() {
			discount = decimal.Zero
		}
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}
	}

	discounted := subtotal.Sub(discount)

	taxAmount := decimal.Zero
	if tax.Amount.Valid {
		taxAmount = tax.Amount.Decimal
	} else {
		taxAmount = discounted.Mul(tax.Rate)
	}

	tipAmount := decimal.Zero
	if tip.Custom.Valid && tip.Custom.Decimal.IsPositive() {
		tipAmount = tip.Custom.Decimal
	} else if tip.Percent.IsPositive() {
		tipAmount = discounted.Mul(tip.Percent).Div(hundred)
	}

	q := Quote{
		Subtotal:    subtotal.Round(2),
		Discount:    discount.Round(2),
		DeliveryFee: deliveryFee.Round(2),
		Tax:         taxAmount.Round(2),
		Tip:         tipAmount.Round(2),
	}
	q.Total = q.Subtotal.Sub(q.Discount).Add(q.DeliveryFee).Add(q.Tax).Add(q.Tip)
	return q, nil
}

// MinorUnits converts a rounded currency amount to integer minor units, the
// representation the payment processor expects.
func MinorUnits(d decimal.Decimal) int64 {
	return d.Round(2).Mul(hundred).IntPart()
}
