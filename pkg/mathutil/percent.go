package mathutil

import (
	"sort"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Percentages computes the integer percentage share of each amount over the
// total, distributing the rounding error with the largest-remainder method so
// that the shares always sum to exactly 100. Amounts must be non-negative;
// when the total is zero every share is zero.
func Percentages(amounts []decimal.Decimal) []int {
	shares := make([]int, len(amounts))
	if len(amounts) == 0 {
		return shares
	}

	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	if !total.IsPositive() {
		return shares
	}

	type remainder struct {
		index int
		frac  decimal.Decimal
	}

	remainders := make([]remainder, len(amounts))
	allocated := 0
	for i, amount := range amounts {
		exact := amount.Div(total).Mul(oneHundred)
		floor := exact.Floor()
		shares[i] = int(floor.IntPart())
		allocated += shares[i]
		remainders[i] = remainder{index: i, frac: exact.Sub(floor)}
	}

	// hand the leftover points to the items with the largest fractional
	// remainders, earliest index first on ties
	sort.SliceStable(remainders, func(i, j int) bool {
		return remainders[i].frac.GreaterThan(remainders[j].frac)
	})
	for i := 0; i < 100-allocated && i < len(remainders); i++ {
		shares[remainders[i].index]++
	}

	return shares
}
