package pricefeeder

import (
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

var (
	WebSocketCloseErrors = []int{
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseProtocolError,
		websocket.CloseUnsupportedData,
		websocket.CloseNoStatusReceived,
		websocket.CloseAbnormalClosure,
		websocket.CloseInvalidFramePayloadData,
		websocket.ClosePolicyViolation,
		websocket.CloseMessageTooBig,
		websocket.CloseMandatoryExtension,
		websocket.CloseInternalServerErr,
		websocket.CloseServiceRestart,
		websocket.CloseTryAgainLater,
		websocket.CloseTLSHandshake,
	}
)

// PriceFeeder streams spot price updates for the subscribed tickers.
type PriceFeeder interface {
	SubscribeTickers(tickers []string) error
	UnsubscribeTickers(tickers []string) error

	Start() chan PriceFeed
	Stop()

	FeedChan() chan PriceFeed
}

// PriceFeed is a single spot price update.
type PriceFeed struct {
	Ticker string
	Price  decimal.Decimal
}
