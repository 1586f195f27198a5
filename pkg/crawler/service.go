package crawler

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/etherdeck-network/etherdeck-daemon/pkg/explorer"
)

const (
	eventQueueMaxSize = 100
	errorQueueMaxSize = 10

	defaultRequestsPerSecond = 5
)

type walletCrawler struct {
	interval     int
	explorerSvc  explorer.Service
	priceSource  PriceSource
	errChan      chan error
	eventChan    chan Event
	observables  map[string]*observableHandler
	errorHandler func(err error)
	mutex        *sync.RWMutex
	wg           *sync.WaitGroup
	rateLimiter  *rate.Limiter
}

// Opts defines the parameters needed for creating a crawler service with NewService method
type Opts struct {
	ExplorerSvc            explorer.Service
	PriceSource            PriceSource
	IntervalInMilliseconds int
	ErrorHandler           func(err error)
	RequestsPerSecond      float64
}

// NewService returns a walletCrawler ready to watch for balance and price
// changes. Use Start and Stop methods to manage it.
func NewService(opts Opts) Service {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	return &walletCrawler{
		interval:     opts.IntervalInMilliseconds,
		explorerSvc:  opts.ExplorerSvc,
		priceSource:  opts.PriceSource,
		errChan:      make(chan error, errorQueueMaxSize),
		eventChan:    make(chan Event, eventQueueMaxSize),
		observables:  map[string]*observableHandler{},
		errorHandler: opts.ErrorHandler,
		mutex:        &sync.RWMutex{},
		wg:           &sync.WaitGroup{},
		rateLimiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Start starts the crawler which periodically polls the providers for the
// registered observables
func (wc *walletCrawler) Start() {
	for {
		select {
		case err, more := <-wc.errChan:
			if !more {
				return
			}
			go wc.errorHandler(err)
		}
	}
}

// Stop stops the crawler
func (wc *walletCrawler) Stop() {
	wc.mutex.Lock()
	defer wc.mutex.Unlock()
	for _, obsHandler := range wc.observables {
		go obsHandler.stop()
	}
	wc.wg.Wait()
	wc.eventChan <- QuitEvent{}
	close(wc.errChan)
}

// GetEventChannel returns the Event channel which can be used to listen to
// observation events
func (wc *walletCrawler) GetEventChannel() chan Event {
	wc.mutex.RLock()
	defer wc.mutex.RUnlock()
	return wc.eventChan
}

// AddObservable adds a new Observable to the list of watched ones only if
// the same Observable is not already in the list
func (wc *walletCrawler) AddObservable(observable Observable) {
	wc.mutex.Lock()
	defer wc.mutex.Unlock()

	if _, ok := wc.observables[observable.key()]; !ok {
		obsHandler := newObservableHandler(
			observable,
			wc.explorerSvc,
			wc.priceSource,
			wc.wg,
			wc.interval,
			wc.eventChan,
			wc.errChan,
			wc.rateLimiter,
		)

		wc.observables[observable.key()] = obsHandler
		go obsHandler.start()
	}
}

// RemoveObservable stops watching the given Observable
func (wc *walletCrawler) RemoveObservable(observable Observable) {
	wc.mutex.Lock()
	defer wc.mutex.Unlock()

	if obsHandler, ok := wc.observables[observable.key()]; ok {
		obsHandler.stop()
		delete(wc.observables, observable.key())
	}
}
