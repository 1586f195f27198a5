package application

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddressInfo is a derived address with its display fields.
type AddressInfo struct {
	Address    string
	Alias      string
	EthAmount  decimal.Decimal
	FiatAmount decimal.Decimal
	Percentage int
	Loading    bool
}

// SendStatus is the state of the transaction-in-progress state machine.
type SendStatus int

const (
	SendIdle SendStatus = iota
	SendAwaitingPassword
	SendSigning
	SendSubmitting
	SendConfirmed
	SendRejected
)

func (s SendStatus) String() string {
	switch s {
	case SendIdle:
		return "idle"
	case SendAwaitingPassword:
		return "awaiting password"
	case SendSigning:
		return "signing"
	case SendSubmitting:
		return "submitting"
	case SendConfirmed:
		return "confirmed"
	case SendRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// TransactionState is the in-progress transaction of the session: recipient,
// amounts, gas bounds and selection, submission status and resulting hash.
type TransactionState struct {
	FromAddress  string
	ToAddress    string
	EthAmount    decimal.Decimal
	FiatAmount   decimal.Decimal
	LowGasPrice  decimal.Decimal
	HighGasPrice decimal.Decimal
	GasPrice     decimal.Decimal
	Status       SendStatus
	TxHash       string
}

// PortfolioPoint is the portfolio countervalue at a given date.
type PortfolioPoint struct {
	Date       time.Time
	EthAmount  decimal.Decimal
	FiatAmount decimal.Decimal
}
