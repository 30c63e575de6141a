package pricing

import "github.com/shopspring/decimal"

// Group is one restaurant's allocated slice of the cart. Groups preserve the
// order restaurants first appear in the cart so allocation remainders land
// deterministically.
type Group struct {
	RestaurantID     string
	Lines            []Line
	Subtotal         decimal.Decimal
	DiscountShare    decimal.Decimal
	DeliveryFeeShare decimal.Decimal
	TaxShare         decimal.Decimal
	Total            decimal.Decimal
}

// Split partitions validated cart lines into per-restaurant groups and
// allocates the shared checkout charges across them:
//
//   - delivery fee: equal split (dispatch cost does not vary with bill size)
//   - discount and tax: proportional to group subtotal, largest-remainder
//     rounding so the shares reconcile to the cart-level amount exactly
//
// The tip is intentionally absent: it stays at the checkout level. A cart
// from a single restaurant skips allocation entirely and carries the full
// charges.
func Split(lines []Line, discount, deliveryFee, tax decimal.Decimal) ([]Group, error) {
	if err := Validate(lines); err != nil {
		return nil, err
	}

	var order []string
	byRestaurant := make(map[string]*Group)
	for _, l := range lines {
		g, ok := byRestaurant[l.RestaurantID]
		if !ok {
			g = &Group{RestaurantID: l.RestaurantID}
			byRestaurant[l.RestaurantID] = g
			order = append(order, l.RestaurantID)
		}
		g.Lines = append(g.Lines, l)
		g.Subtotal = g.Subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	groups := make([]Group, 0, len(order))
	for _, id := range order {
		g := byRestaurant[id]
		g.Subtotal = g.Subtotal.Round(2)
		groups = append(groups, *g)
	}

	if len(groups) == 1 {
		g := &groups[0]
		g.DiscountShare = discount.Round(2)
		g.DeliveryFeeShare = deliveryFee.Round(2)
		g.TaxShare = tax.Round(2)
		g.Total = g.Subtotal.Sub(g.DiscountShare).Add(g.DeliveryFeeShare).Add(g.TaxShare)
		return groups, nil
	}

	weights := make([]decimal.Decimal, len(groups))
	equal := make([]decimal.Decimal, len(groups))
	one := decimal.NewFromInt(1)
	for i, g := range groups {
		weights[i] = g.Subtotal
		equal[i] = one
	}

	feeShares := allocate(deliveryFee.Round(2), equal)
	discountShares := allocate(discount.Round(2), weights)
	taxShares := allocate(tax.Round(2), weights)

	for i := range groups {
		g := &groups[i]
		g.DeliveryFeeShare = feeShares[i]
		g.DiscountShare = discountShares[i]
		g.TaxShare = taxShares[i]
		g.Total = g.Subtotal.Sub(g.DiscountShare).Add(g.DeliveryFeeShare).Add(g.TaxShare)
	}
	return groups, nil
}

// CombinedTotal sums the group totals; the caller adds the checkout-level tip
// on top before charging.
func CombinedTotal(groups []Group) decimal.Decimal {
	sum := decimal.Zero
	for _, g := range groups {
		sum = sum.Add(g.Total)
	}
	return sum
}

// allocate divides amount across weights proportionally, rounding each share
// down to cents and distributing the leftover cents to the shares with the
// largest truncated remainders. The shares always sum to amount exactly.
func allocate(amount decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	n := len(weights)
	shares := make([]decimal.Decimal, n)
	if n == 0 || amount.IsZero() {
		return shares
	}

	totalWeight := decimal.Zero
	for _, w := range weights {
		totalWeight = totalWeight.Add(w)
	}
	if totalWeight.IsZero() {
		// Degenerate cart of zero-priced lines: fall back to an equal split.
		for i := range weights {
			weights[i] = decimal.NewFromInt(1)
		}
		totalWeight = decimal.NewFromInt(int64(n))
	}

	type rem struct {
		idx  int
		frac decimal.Decimal
	}
	remainders := make([]rem, n)
	allocated := decimal.Zero
	for i, w := range weights {
		exact := amount.Mul(w).Div(totalWeight)
		floored := exact.RoundDown(2)
		shares[i] = floored
		allocated = allocated.Add(floored)
		remainders[i] = rem{idx: i, frac: exact.Sub(floored)}
	}

	cent := decimal.New(1, -2)
	leftoverCents := amount.Sub(allocated).Div(cent).Round(0).IntPart()

	// Stable selection: bigger remainder first, earlier group on ties.
	for assigned := int64(0); assigned < leftoverCents; assigned++ {
		best := -1
		for i, r := range remainders {
			if best == -1 || r.frac.GreaterThan(remainders[best].frac) {
				best = i
			}
		}
		shares[remainders[best].idx] = shares[remainders[best].idx].Add(cent)
		remainders[best].frac = decimal.NewFromInt(-1)
	}
	return shares
}
