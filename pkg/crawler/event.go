package crawler

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	QuitSignal EventType = iota
	AddressBalanceUpdate
	PriceUpdate
)

type EventType int

func (et EventType) String() string {
	switch et {
	case QuitSignal:
		return "QuitSignal"
	case AddressBalanceUpdate:
		return "AddressBalanceUpdate"
	case PriceUpdate:
		return "PriceUpdate"
	default:
		return "Unknown"
	}
}

type QuitEvent struct{}

func (q QuitEvent) Type() EventType {
	return QuitSignal
}

type AddressEvent struct {
	Address string
	Balance *big.Int
}

func (a AddressEvent) Type() EventType {
	return AddressBalanceUpdate
}

type PriceEvent struct {
	Price decimal.Decimal
}

func (p PriceEvent) Type() EventType {
	return PriceUpdate
}
