package coinbasefeeder

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/etherdeck-network/etherdeck-daemon/pkg/pricefeeder"
)

const (
	baseURL                 = "ws-feed.exchange.coinbase.com"
	maxReconnectionAttempts = 3
)

type service struct {
	conn *websocket.Conn

	tickerLock *sync.RWMutex
	tickers    map[string]struct{}

	feedLock         *sync.RWMutex
	lastFeedByTicker map[string]pricefeeder.PriceFeed

	feedCh chan pricefeeder.PriceFeed
}

func NewService() (pricefeeder.PriceFeeder, error) {
	conn, err := connect()
	if err != nil {
		return nil, err
	}

	return &service{
		conn:             conn,
		tickerLock:       &sync.RWMutex{},
		tickers:          map[string]struct{}{},
		feedLock:         &sync.RWMutex{},
		lastFeedByTicker: map[string]pricefeeder.PriceFeed{},
		feedCh:           make(chan pricefeeder.PriceFeed, 20),
	}, nil
}

func (s *service) Start() chan pricefeeder.PriceFeed {
	go s.start()
	return s.feedCh
}

func (s *service) Stop() {
	s.conn.Close()
	close(s.feedCh)
}

func (s *service) FeedChan() chan pricefeeder.PriceFeed {
	return s.feedCh
}

func (s *service) SubscribeTickers(tickers []string) error {
	toAdd := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		if !s.hasTicker(ticker) {
			toAdd = append(toAdd, ticker)
		}
	}

	if err := s.subscribe(toAdd); err != nil {
		return err
	}

	s.addTickers(toAdd)
	return nil
}

func (s *service) UnsubscribeTickers(tickers []string) error {
	toRemove := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		if s.hasTicker(ticker) {
			toRemove = append(toRemove, ticker)
		}
	}

	if err := s.unsubscribe(toRemove); err != nil {
		return err
	}

	s.removeFeeds(toRemove)
	s.removeTickers(toRemove)
	return nil
}

func (s *service) start() {
	defer func(s *service) {
		if rec := recover(); rec != nil {
			log.Debug(
				"connection with coinbase server dropped, attempting to reconnect...",
			)
			s.reconnect()
		}
	}(s)

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, pricefeeder.WebSocketCloseErrors...) {
				panic(err)
			}
			return
		}

		priceFeed := s.parseFeed(message)
		if priceFeed == nil {
			continue
		}

		lastFeed, ok := s.getPriceFeed(priceFeed.Ticker)
		// Prevent updating a feed if it hasn't changed.
		if ok && priceFeed.Price.Equal(lastFeed.Price) {
			continue
		}

		s.updatePriceFeed(priceFeed.Ticker, *priceFeed)
		s.feedCh <- *priceFeed
	}
}

func (s *service) reconnect() {
	var conn *websocket.Conn
	var err error
	for attempt := 0; attempt < maxReconnectionAttempts; attempt++ {
		conn, err = connect()
		if err == nil {
			break
		}
		log.WithError(err).Debugf("reconnection attempt %d failed", attempt)
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		log.Fatal("failed to reconnect to coinbase server")
	}

	s.conn = conn

	go s.start()

	if err := s.resubscribe(); err != nil {
		log.WithError(err).Fatal(
			"failed to restore subscriptions after reconnection",
		)
	}

	log.Debug("coinbase: connection with server restored")
}

func (s *service) resubscribe() error {
	tickers := s.getTickers()
	if len(tickers) <= 0 {
		return nil
	}

	return s.subscribe(tickers)
}

func (s *service) subscribe(tickers []string) error {
	if len(tickers) <= 0 {
		return nil
	}

	msg := map[string]interface{}{
		"type":        "subscribe",
		"product_ids": tickers,
		"channels": []string{
			"heartbeat", "ticker",
		},
	}

	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("cannot subscribe to given tickers: %s", err)
	}

	return nil
}

func (s *service) unsubscribe(tickers []string) error {
	if len(tickers) <= 0 {
		return nil
	}

	msg := map[string]interface{}{
		"type":        "unsubscribe",
		"product_ids": tickers,
		"channels": []string{
			"heartbeat", "ticker",
		},
	}

	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("cannot unsubscribe to given tickers: %s", err)
	}

	return nil
}

func (s *service) parseFeed(buf []byte) *pricefeeder.PriceFeed {
	msg := make(map[string]interface{})
	if err := json.Unmarshal(buf, &msg); err != nil {
		return nil
	}
	if e, ok := msg["type"].(string); !ok || e != "ticker" {
		return nil
	}
	ticker, ok := msg["product_id"].(string)
	if !ok {
		return nil
	}
	priceStr, ok := msg["price"].(string)
	if !ok {
		return nil
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil
	}
	if !s.hasTicker(ticker) {
		return nil
	}

	return &pricefeeder.PriceFeed{
		Ticker: ticker,
		Price:  price,
	}
}

func (s *service) hasTicker(ticker string) bool {
	s.tickerLock.RLock()
	defer s.tickerLock.RUnlock()
	_, ok := s.tickers[ticker]
	return ok
}

func (s *service) getTickers() []string {
	s.tickerLock.RLock()
	defer s.tickerLock.RUnlock()

	tickers := make([]string, 0, len(s.tickers))
	for ticker := range s.tickers {
		tickers = append(tickers, ticker)
	}
	return tickers
}

func (s *service) addTickers(tickers []string) {
	s.tickerLock.Lock()
	defer s.tickerLock.Unlock()
	for _, ticker := range tickers {
		s.tickers[ticker] = struct{}{}
	}
}

func (s *service) removeTickers(tickers []string) {
	s.tickerLock.Lock()
	defer s.tickerLock.Unlock()
	for _, ticker := range tickers {
		delete(s.tickers, ticker)
	}
}

func (s *service) getPriceFeed(ticker string) (pricefeeder.PriceFeed, bool) {
	s.feedLock.RLock()
	defer s.feedLock.RUnlock()
	feed, ok := s.lastFeedByTicker[ticker]
	return feed, ok
}

func (s *service) updatePriceFeed(ticker string, feed pricefeeder.PriceFeed) {
	s.feedLock.Lock()
	defer s.feedLock.Unlock()
	s.lastFeedByTicker[ticker] = feed
}

func (s *service) removeFeeds(tickers []string) {
	s.feedLock.Lock()
	defer s.feedLock.Unlock()
	for _, ticker := range tickers {
		delete(s.lastFeedByTicker, ticker)
	}
}

func connect() (*websocket.Conn, error) {
	url := fmt.Sprintf("wss://%s", baseURL)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
