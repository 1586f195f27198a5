package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceService is the abstraction for any kind of fiat price-index provider.
type PriceService interface {
	// GetEthPrice returns the current USD price of one ether.
	GetEthPrice(ctx context.Context) (decimal.Decimal, error)
	// GetEthPriceAt returns the USD price of one ether at the given date.
	GetEthPriceAt(ctx context.Context, date time.Time) (decimal.Decimal, error)
}

// GasInfo is the set of gas price estimates of the gas provider, in wei.
type GasInfo struct {
	LowGasPrice    decimal.Decimal
	MediumGasPrice decimal.Decimal
	HighGasPrice   decimal.Decimal
}

// GasService is the abstraction for any kind of gas-estimation provider.
type GasService interface {
	GetGasInfo(ctx context.Context) (GasInfo, error)
}
