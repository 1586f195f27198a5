package crawler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	log "github.com/sirupsen/logrus"

	"github.com/etherdeck-network/etherdeck-daemon/pkg/explorer"
)

const (
	New       Status = "NEW"
	Waiting   Status = "WAITING"
	Processed Status = "PROCESSED"
)

type Status string

type observableStatus struct {
	sync.RWMutex
	status Status
}

func NewObservableStatus() *observableStatus {
	return &observableStatus{
		status: New,
	}
}

func (o *observableStatus) Get() Status {
	o.RLock()
	defer o.RUnlock()
	return o.status
}

func (o *observableStatus) Set(status Status) {
	o.Lock()
	defer o.Unlock()
	o.status = status
}

// AddressObservable polls the balance of an address.
type AddressObservable struct {
	Address string
}

func (a *AddressObservable) observe(
	explorerSvc explorer.Service,
	_ PriceSource,
	errChan chan error,
	eventChan chan Event,
	observableStatus *observableStatus,
	rateLimiter *rate.Limiter,
) {
	if a == nil {
		return
	}

	observableStatus.Set(Waiting)
	if err := rateLimiter.Wait(context.Background()); err != nil {
		errChan <- err
		return
	}

	balance, err := explorerSvc.GetBalance(a.Address, "latest")
	if err != nil {
		errChan <- err
		return
	}

	observableStatus.Set(Processed)

	eventChan <- AddressEvent{
		Address: a.Address,
		Balance: balance,
	}
}

func (a *AddressObservable) key() string {
	return a.Address
}

// PriceObservable polls the fiat spot price.
type PriceObservable struct{}

func (p *PriceObservable) observe(
	_ explorer.Service,
	priceSource PriceSource,
	errChan chan error,
	eventChan chan Event,
	observableStatus *observableStatus,
	rateLimiter *rate.Limiter,
) {
	if p == nil {
		return
	}

	observableStatus.Set(Waiting)
	if err := rateLimiter.Wait(context.Background()); err != nil {
		errChan <- err
		return
	}

	price, err := priceSource.GetEthPrice(context.Background())
	if err != nil {
		errChan <- err
		return
	}

	observableStatus.Set(Processed)

	eventChan <- PriceEvent{Price: price}
}

func (p *PriceObservable) key() string {
	return "price"
}

type observableHandler struct {
	observable       Observable
	explorerSvc      explorer.Service
	priceSource      PriceSource
	wg               *sync.WaitGroup
	ticker           *time.Ticker
	eventChan        chan Event
	errChan          chan error
	stopChan         chan int
	observableStatus *observableStatus
	rateLimiter      *rate.Limiter
}

func newObservableHandler(
	observable Observable,
	explorerSvc explorer.Service,
	priceSource PriceSource,
	wg *sync.WaitGroup,
	interval int,
	eventChan chan Event,
	errChan chan error,
	rateLimiter *rate.Limiter,
) *observableHandler {
	ticker := time.NewTicker(time.Duration(interval) * time.Millisecond)
	stopChan := make(chan int, 1)

	return &observableHandler{
		observable,
		explorerSvc,
		priceSource,
		wg,
		ticker,
		eventChan,
		errChan,
		stopChan,
		NewObservableStatus(),
		rateLimiter,
	}
}

func (oh *observableHandler) start() {
	oh.logAction("start")
	oh.wg.Add(1)
	for {
		select {
		case <-oh.ticker.C:
			if oh.observableStatus.Get() != Waiting {
				oh.observable.observe(
					oh.explorerSvc,
					oh.priceSource,
					oh.errChan,
					oh.eventChan,
					oh.observableStatus,
					oh.rateLimiter,
				)
			}
		case <-oh.stopChan:
			oh.ticker.Stop()
			close(oh.stopChan)
			return
		}
	}
}

func (oh *observableHandler) stop() {
	oh.logAction("stop")
	oh.stopChan <- 1
	oh.wg.Done()
}

func (oh *observableHandler) logAction(action string) {
	obs := oh.observable
	switch obs.(type) {
	case *AddressObservable:
		log.Debugf("%s observing address: %v", action, obs.key())
	case *PriceObservable:
		log.Debugf("%s observing spot price", action)
	}
}
