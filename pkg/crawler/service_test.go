package crawler

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/etherdeck-network/etherdeck-daemon/pkg/explorer"
)

type stubExplorer struct{}

func (s stubExplorer) GetBalance(address, blockTag string) (*big.Int, error) {
	return big.NewInt(1000), nil
}

func (s stubExplorer) GetBlockNumberByTime(timestamp int64) (uint64, error) {
	return 100, nil
}

func (s stubExplorer) GetTransactions(
	address string, opts explorer.TxQueryOpts,
) ([]explorer.Transaction, error) {
	return nil, nil
}

func (s stubExplorer) GetTransactionCount(address string) (uint64, error) {
	return 0, nil
}

func (s stubExplorer) BroadcastTransaction(rawTxHex string) (string, error) {
	return "", nil
}

type stubPriceSource struct{}

func (s stubPriceSource) GetEthPrice(ctx context.Context) (decimal.Decimal, error) {
	return decimal.NewFromInt(2000), nil
}

func TestCrawlerEmitsEvents(t *testing.T) {
	svc := NewService(Opts{
		ExplorerSvc:            stubExplorer{},
		PriceSource:            stubPriceSource{},
		IntervalInMilliseconds: 10,
		ErrorHandler:           func(err error) { t.Log(err) },
		RequestsPerSecond:      1000,
	})
	go svc.Start()

	svc.AddObservable(&AddressObservable{Address: "0xaa"})
	svc.AddObservable(&PriceObservable{})

	var gotBalance, gotPrice bool
	timeout := time.After(2 * time.Second)
	for !gotBalance || !gotPrice {
		select {
		case event := <-svc.GetEventChannel():
			switch e := event.(type) {
			case AddressEvent:
				require.Equal(t, "0xaa", e.Address)
				require.Equal(t, big.NewInt(1000), e.Balance)
				gotBalance = true
			case PriceEvent:
				require.True(t, e.Price.Equal(decimal.NewFromInt(2000)))
				gotPrice = true
			}
		case <-timeout:
			t.Fatal("no events emitted before timeout")
		}
	}

	svc.Stop()

	for event := range svc.GetEventChannel() {
		if event.Type() == QuitSignal {
			return
		}
	}
}

func TestCrawlerDeduplicatesObservables(t *testing.T) {
	svc := NewService(Opts{
		ExplorerSvc:            stubExplorer{},
		PriceSource:            stubPriceSource{},
		IntervalInMilliseconds: 10,
		ErrorHandler:           func(err error) {},
	}).(*walletCrawler)

	svc.AddObservable(&AddressObservable{Address: "0xaa"})
	svc.AddObservable(&AddressObservable{Address: "0xaa"})
	require.Len(t, svc.observables, 1)

	time.Sleep(50 * time.Millisecond)
	svc.RemoveObservable(&AddressObservable{Address: "0xaa"})
	require.Len(t, svc.observables, 0)
}
