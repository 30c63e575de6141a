package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func ndec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(s), Valid: true}
}

func lines(specs ...Line) []Line { return specs }

func TestPriceRejectsEmptyCart(t *testing.T) {
	_, err := Price(nil, nil, decimal.Zero, TaxInput{}, TipInput{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestPriceRejectsLineWithoutRestaurant(t *testing.T) {
	_, err := Price(lines(Line{UnitPrice: dec("5"), Quantity: 1}), nil, decimal.Zero, TaxInput{}, TipInput{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestPricePercentageDiscount(t *testing.T) {
	q, err := Price(
		lines(Line{RestaurantID: "r1", UnitPrice: dec("40"), Quantity: 1}),
		&Discount{Type: DiscountPercentage, Value: dec("25")},
		dec("5"),
		TaxInput{Rate: dec("0.10")},
		TipInput{},
	)
	require.NoError(t, err)
	assert.True(t, q.Discount.Equal(dec("10")), "discount %s", q.Discount)
	assert.True(t, q.Tax.Equal(dec("3")), "tax %s", q.Tax) // 10% of discounted 30
	assert.True(t, q.Total.Equal(dec("38")), "total %s", q.Total)
}

func TestPriceFixedDiscountClampedToSubtotal(t *testing.T) {
	q, err := Price(
		lines(Line{RestaurantID: "r1", UnitPrice: dec("12"), Quantity: 1}),
		&Discount{Type: DiscountFixed, Value: dec("50")},
		decimal.Zero,
		TaxInput{Rate: dec("0.08")},
		TipInput{},
	)
	require.NoError(t, err)
	assert.True(t, q.Discount.Equal(dec("12")), "clamped discount %s", q.Discount)
	assert.True(t, q.Tax.IsZero())
	assert.True(t, q.Total.IsZero())
}

func TestPriceNegativeDiscountNeverApplied(t *testing.T) {
	q, err := Price(
		lines(Line{RestaurantID: "r1", UnitPrice: dec("10"), Quantity: 1}),
		&Discount{Type: DiscountFixed, Value: dec("-5")},
		decimal.Zero,
		TaxInput{},
		TipInput{},
	)
	require.NoError(t, err)
	assert.True(t, q.Discount.IsZero())
	assert.True(t, q.Total.Equal(dec("10")))
}

func TestPricePrefersExternalTaxAmount(t *testing.T) {
	q, err := Price(
		lines(Line{RestaurantID: "r1", UnitPrice: dec("100"), Quantity: 1}),
		nil,
		decimal.Zero,
		TaxInput{Amount: ndec("7.77"), Rate: dec("0.0825")},
		TipInput{},
	)
	require.NoError(t, err)
	assert.True(t, q.Tax.Equal(dec("7.77")))
}

func TestPriceTipPercentOnDiscountedSubtotal(t *testing.T) {
	q, err := Price(
		lines(Line{RestaurantID: "r1", UnitPrice: dec("50"), Quantity: 2}),
		&Discount{Type: DiscountFixed, Value: dec("20")},
		decimal.Zero,
		TaxInput{},
		TipInput{Percent: dec("18")},
	)
	require.NoError(t, err)
	// 18% of (100 - 20)
	assert.True(t, q.Tip.Equal(dec("14.40")), "tip %s", q.Tip)
}

func TestPriceCustomTipOverridesPercent(t *testing.T) {
	q, err := Price(
		lines(Line{RestaurantID: "r1", UnitPrice: dec("30"), Quantity: 1}),
		nil,
		decimal.Zero,
		TaxInput{},
		TipInput{Percent: dec("18"), Custom: ndec("10")},
	)
	require.NoError(t, err)
	assert.True(t, q.Tip.Equal(dec("10")))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1924), MinorUnits(dec("19.24")))
	assert.Equal(t, int64(1924), MinorUnits(dec("19.235")))
	assert.Equal(t, int64(0), MinorUnits(decimal.Zero))
}
