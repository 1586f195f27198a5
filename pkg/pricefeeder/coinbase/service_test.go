package coinbasefeeder

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/etherdeck-network/etherdeck-daemon/pkg/pricefeeder"
)

func newOfflineService() *service {
	return &service{
		tickerLock:       &sync.RWMutex{},
		tickers:          map[string]struct{}{},
		feedLock:         &sync.RWMutex{},
		lastFeedByTicker: map[string]pricefeeder.PriceFeed{},
		feedCh:           make(chan pricefeeder.PriceFeed, 20),
	}
}

func TestParseFeed(t *testing.T) {
	svc := newOfflineService()
	svc.addTickers([]string{"ETH-USD"})

	feed := svc.parseFeed([]byte(
		`{"type":"ticker","product_id":"ETH-USD","price":"1845.03"}`,
	))
	require.NotNil(t, feed)
	require.Equal(t, "ETH-USD", feed.Ticker)
	require.Equal(t, "1845.03", feed.Price.String())
}

func TestParseFeedSkipsIrrelevantMessages(t *testing.T) {
	svc := newOfflineService()
	svc.addTickers([]string{"ETH-USD"})

	messages := [][]byte{
		[]byte(`not json`),
		[]byte(`{"type":"heartbeat","product_id":"ETH-USD"}`),
		[]byte(`{"type":"ticker","product_id":"BTC-USD","price":"30000"}`),
		[]byte(`{"type":"ticker","product_id":"ETH-USD","price":"abc"}`),
		[]byte(`{"type":"ticker","product_id":"ETH-USD"}`),
	}
	for _, msg := range messages {
		require.Nil(t, svc.parseFeed(msg))
	}
}

func TestTickerBookkeeping(t *testing.T) {
	svc := newOfflineService()

	svc.addTickers([]string{"ETH-USD", "BTC-USD"})
	require.True(t, svc.hasTicker("ETH-USD"))
	require.ElementsMatch(t, []string{"ETH-USD", "BTC-USD"}, svc.getTickers())

	svc.updatePriceFeed("ETH-USD", pricefeeder.PriceFeed{Ticker: "ETH-USD"})
	_, ok := svc.getPriceFeed("ETH-USD")
	require.True(t, ok)

	svc.removeFeeds([]string{"ETH-USD"})
	svc.removeTickers([]string{"ETH-USD"})
	require.False(t, svc.hasTicker("ETH-USD"))
	_, ok = svc.getPriceFeed("ETH-USD")
	require.False(t, ok)
}
