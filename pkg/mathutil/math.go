package mathutil

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	// WeiPerEth represents a single ether expressed in wei
	WeiPerEth = uint64(math.Pow10(18))
	// WeiPerEthDecimal represents a single ether expressed in wei as decimal.Decimal
	WeiPerEthDecimal = decimal.NewFromInt(int64(WeiPerEth))
	// WeiPerGwei represents a single gwei expressed in wei
	WeiPerGwei = uint64(math.Pow10(9))
)

func init() {
	decimal.DivisionPrecision = 18
}

// WeiToEth converts an amount of wei into its decimal ether representation
func WeiToEth(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, 0).Div(WeiPerEthDecimal)
}

// EthToWei converts a decimal ether amount into wei, truncating anything
// below 1 wei
func EthToWei(eth decimal.Decimal) *big.Int {
	return eth.Mul(WeiPerEthDecimal).BigInt()
}

// Fiat converts a decimal ether amount into its fiat countervalue at the
// provided spot price
func Fiat(eth, price decimal.Decimal) decimal.Decimal {
	return eth.Mul(price).Round(2)
}

// FiatToEth converts a fiat amount back into ether at the provided spot
// price. It returns zero when the price is not positive.
func FiatToEth(fiat, price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	return fiat.Div(price)
}
