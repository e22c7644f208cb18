package services

import "github.com/shopspring/decimal"

// AllocateProRata splits total across lines proportionally to their weights,
// rounding each share to the cent and letting the last line absorb the
// rounding remainder, so the shares always sum to total exactly. Zero
// weights all around degrade to an equal split.
func AllocateProRata(total decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	n := len(weights)
	if n == 0 {
		return nil
	}

	shares := make([]decimal.Decimal, n)
	if total.IsZero() {
		for i := range shares {
			shares[i] = decimal.Zero
		}
		return shares
	}

	weightSum := decimal.Zero
	for _, w := range weights {
		weightSum = weightSum.Add(w)
	}

	allocated := decimal.Zero
	for i := 0; i < n-1; i++ {
		var share decimal.Decimal
		if weightSum.IsZero() {
			share = total.Div(decimal.NewFromInt(int64(n))).Round(2)
		} else {
			share = total.Mul(weights[i]).Div(weightSum).Round(2)
		}
		shares[i] = share
		allocated = allocated.Add(share)
	}
	shares[n-1] = total.Sub(allocated)
	return shares
}

// AllocateOldestFirst fills each remaining balance in order until the total
// runs out. The allocations sum to min(total, sum of remainings).
func AllocateOldestFirst(total decimal.Decimal, remainings []decimal.Decimal) []decimal.Decimal {
	allocations := make([]decimal.Decimal, len(remainings))
	left := total
	for i, remaining := range remainings {
		if left.LessThanOrEqual(decimal.Zero) {
			allocations[i] = decimal.Zero
			continue
		}
		if left.GreaterThanOrEqual(remaining) {
			allocations[i] = remaining
			left = left.Sub(remaining)
		} else {
			allocations[i] = left
			left = decimal.Zero
		}
	}
	return allocations
}
