package crawler

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/etherdeck-network/etherdeck-daemon/pkg/explorer"
)

// Event are emitted through a channel during observation.
type Event interface {
	Type() EventType
}

// PriceSource is the provider observed by a PriceObservable.
type PriceSource interface {
	GetEthPrice(ctx context.Context) (decimal.Decimal, error)
}

// Observable represents an object that can be observed through the providers.
type Observable interface {
	observe(
		explorerSvc explorer.Service,
		priceSource PriceSource,
		errChan chan error,
		eventChan chan Event,
		observableStatus *observableStatus,
		rateLimiter *rate.Limiter,
	)
	key() string
}

// Service is the interface for Crawler
type Service interface {
	Start()
	Stop()
	AddObservable(observable Observable)
	RemoveObservable(observable Observable)
	GetEventChannel() chan Event
}
