package mathutil_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/etherdeck-network/etherdeck-daemon/pkg/mathutil"
)

func TestPercentages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amounts  []float64
		expected []int
	}{
		{"two addresses", []float64{0.3, 0.7}, []int{30, 70}},
		{"even three-way split", []float64{1, 1, 1}, []int{34, 33, 33}},
		{"single address", []float64{42}, []int{100}},
		{"zero balances", []float64{0, 0}, []int{0, 0}},
		{"skewed", []float64{0.999, 0.001}, []int{100, 0}},
		{"empty", nil, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares := mathutil.Percentages(fromFloats(tt.amounts))
			require.Equal(t, tt.expected, shares)
		})
	}
}

func TestPercentagesSumToOneHundred(t *testing.T) {
	t.Parallel()

	amountLists := [][]float64{
		{0.1, 0.2, 0.3, 0.4},
		{1, 2, 4},
		{0.0001, 0.0001, 0.0001, 0.0001, 0.0001, 0.0001, 0.0001},
		{3.14159, 2.71828, 1.41421},
		{1, 1, 1, 1, 1, 1},
	}

	for _, amounts := range amountLists {
		shares := mathutil.Percentages(fromFloats(amounts))
		sum := 0
		for _, share := range shares {
			require.GreaterOrEqual(t, share, 0)
			sum += share
		}
		require.Equal(t, 100, sum)
	}
}

func fromFloats(amounts []float64) []decimal.Decimal {
	decimals := make([]decimal.Decimal, 0, len(amounts))
	for _, amount := range amounts {
		decimals = append(decimals, decimal.NewFromFloat(amount))
	}
	return decimals
}
