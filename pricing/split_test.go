package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTwoRestaurantScenario(t *testing.T) {
	// Cart: 2 items from A ($10, $5), 1 item from B ($20).
	// Delivery fee $6, tax rate 8.25%, no promo. Tip stays checkout-level.
	cart := lines(
		Line{RestaurantID: "A", UnitPrice: dec("10"), Quantity: 1},
		Line{RestaurantID: "A", UnitPrice: dec("5"), Quantity: 1},
		Line{RestaurantID: "B", UnitPrice: dec("20"), Quantity: 1},
	)

	tax := dec("35").Mul(dec("0.0825")) // 2.8875 → rounded to 2.89 inside Split
	groups, err := Split(cart, decimal.Zero, dec("6"), tax)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	a, b := groups[0], groups[1]
	assert.Equal(t, "A", a.RestaurantID)
	assert.True(t, a.Subtotal.Equal(dec("15")))
	assert.True(t, a.DeliveryFeeShare.Equal(dec("3")))
	assert.True(t, a.TaxShare.Equal(dec("1.24")), "A tax %s", a.TaxShare)
	assert.True(t, a.Total.Equal(dec("19.24")), "A total %s", a.Total)

	assert.Equal(t, "B", b.RestaurantID)
	assert.True(t, b.Subtotal.Equal(dec("20")))
	assert.True(t, b.DeliveryFeeShare.Equal(dec("3")))
	assert.True(t, b.TaxShare.Equal(dec("1.65")), "B tax %s", b.TaxShare)
	assert.True(t, b.Total.Equal(dec("24.65")), "B total %s", b.Total)

	assert.True(t, CombinedTotal(groups).Equal(dec("43.89")))
}

func TestSplitSharesReconcileExactly(t *testing.T) {
	// Awkward weights that force remainder distribution.
	cart := lines(
		Line{RestaurantID: "A", UnitPrice: dec("3.33"), Quantity: 1},
		Line{RestaurantID: "B", UnitPrice: dec("3.33"), Quantity: 1},
		Line{RestaurantID: "C", UnitPrice: dec("3.34"), Quantity: 1},
	)
	discount := dec("1.00")
	fee := dec("10.00")
	tax := dec("0.50")

	groups, err := Split(cart, discount, fee, tax)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	sumFee, sumDiscount, sumTax, sumTotal := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, g := range groups {
		sumFee = sumFee.Add(g.DeliveryFeeShare)
		sumDiscount = sumDiscount.Add(g.DiscountShare)
		sumTax = sumTax.Add(g.TaxShare)
		sumTotal = sumTotal.Add(g.Total)

		want := g.Subtotal.Sub(g.DiscountShare).Add(g.DeliveryFeeShare).Add(g.TaxShare)
		assert.True(t, g.Total.Equal(want), "group %s invariant: %s != %s", g.RestaurantID, g.Total, want)
	}
	assert.True(t, sumFee.Equal(fee), "fee sum %s", sumFee)
	assert.True(t, sumDiscount.Equal(discount), "discount sum %s", sumDiscount)
	assert.True(t, sumTax.Equal(tax), "tax sum %s", sumTax)
	assert.True(t, sumTotal.Equal(CombinedTotal(groups)))
}

func TestSplitSingleRestaurantMatchesMultiPath(t *testing.T) {
	cart := lines(
		Line{RestaurantID: "A", UnitPrice: dec("10"), Quantity: 2},
		Line{RestaurantID: "A", UnitPrice: dec("4.50"), Quantity: 1},
	)
	discount := dec("2.00")
	fee := dec("5.00")
	tax := dec("1.85")

	single, err := Split(cart, discount, fee, tax)
	require.NoError(t, err)
	require.Len(t, single, 1)

	// The degenerate case must agree with what the allocation math would
	// produce for one group: the full shares.
	g := single[0]
	assert.True(t, g.Subtotal.Equal(dec("24.50")))
	assert.True(t, g.DiscountShare.Equal(discount))
	assert.True(t, g.DeliveryFeeShare.Equal(fee))
	assert.True(t, g.TaxShare.Equal(tax))
	assert.True(t, g.Total.Equal(dec("29.35")))
}

func TestSplitPreservesFirstAppearanceOrder(t *testing.T) {
	cart := lines(
		Line{RestaurantID: "Z", UnitPrice: dec("1"), Quantity: 1},
		Line{RestaurantID: "A", UnitPrice: dec("1"), Quantity: 1},
		Line{RestaurantID: "Z", UnitPrice: dec("1"), Quantity: 1},
	)
	groups, err := Split(cart, decimal.Zero, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Z", groups[0].RestaurantID)
	assert.Equal(t, "A", groups[1].RestaurantID)
	assert.Len(t, groups[0].Lines, 2)
}

func TestSplitEqualFeeWithRemainderCent(t *testing.T) {
	cart := lines(
		Line{RestaurantID: "A", UnitPrice: dec("10"), Quantity: 1},
		Line{RestaurantID: "B", UnitPrice: dec("10"), Quantity: 1},
		Line{RestaurantID: "C", UnitPrice: dec("10"), Quantity: 1},
	)
	groups, err := Split(cart, decimal.Zero, dec("10.00"), decimal.Zero)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, g := range groups {
		sum = sum.Add(g.DeliveryFeeShare)
	}
	assert.True(t, sum.Equal(dec("10.00")), "fee shares must sum exactly, got %s", sum)
}

func TestAllocateZeroAmount(t *testing.T) {
	shares := allocate(decimal.Zero, []decimal.Decimal{dec("1"), dec("2")})
	for _, s := range shares {
		assert.True(t, s.IsZero())
	}
}
