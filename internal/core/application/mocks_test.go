package application_test

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/etherdeck-network/etherdeck-daemon/internal/core/application"
	"github.com/etherdeck-network/etherdeck-daemon/internal/core/ports"
	"github.com/etherdeck-network/etherdeck-daemon/internal/infrastructure/storage/db/inmemory"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/crawler"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/explorer"
)

const (
	testMnemonic = "abandon abandon abandon abandon abandon abandon abandon " +
		"abandon abandon abandon abandon about"
	testPassword = "password123"
)

// mockExplorer implements explorer.Service.
type mockExplorer struct {
	mock.Mock

	mtx       sync.Mutex
	lastRawTx string
}

func (m *mockExplorer) GetBalance(address, blockTag string) (*big.Int, error) {
	args := m.Called(address, blockTag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *mockExplorer) GetBlockNumberByTime(timestamp int64) (uint64, error) {
	args := m.Called(timestamp)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockExplorer) GetTransactions(
	address string, opts explorer.TxQueryOpts,
) ([]explorer.Transaction, error) {
	args := m.Called(address, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]explorer.Transaction), args.Error(1)
}

func (m *mockExplorer) GetTransactionCount(address string) (uint64, error) {
	args := m.Called(address)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockExplorer) BroadcastTransaction(rawTxHex string) (string, error) {
	m.mtx.Lock()
	m.lastRawTx = rawTxHex
	m.mtx.Unlock()

	args := m.Called(rawTxHex)
	return args.String(0), args.Error(1)
}

func (m *mockExplorer) broadcastedRawTx() string {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.lastRawTx
}

// mockPriceService implements ports.PriceService.
type mockPriceService struct {
	mock.Mock
}

func (m *mockPriceService) GetEthPrice(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockPriceService) GetEthPriceAt(
	ctx context.Context, date time.Time,
) (decimal.Decimal, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// mockGasService implements ports.GasService.
type mockGasService struct {
	mock.Mock
}

func (m *mockGasService) GetGasInfo(ctx context.Context) (ports.GasInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(ports.GasInfo), args.Error(1)
}

type testEnv struct {
	services    *application.Services
	repoManager ports.RepoManager
	explorer    *mockExplorer
	price       *mockPriceService
	gas         *mockGasService
}

func newTestEnv() *testEnv {
	repoManager := inmemory.NewRepoManager()
	explorerSvc := &mockExplorer{}
	priceSvc := &mockPriceService{}
	gasSvc := &mockGasService{}
	// the interval is long enough that no observation fires within a test run
	crawlerSvc := crawler.NewService(crawler.Opts{
		ExplorerSvc:            explorerSvc,
		PriceSource:            priceSvc,
		IntervalInMilliseconds: 3600000,
		ErrorHandler:           func(error) {},
	})

	services := application.NewServices(
		repoManager, explorerSvc, priceSvc, gasSvc, crawlerSvc,
		big.NewInt(1), 20*time.Millisecond,
	)
	return &testEnv{
		services:    services,
		repoManager: repoManager,
		explorer:    explorerSvc,
		price:       priceSvc,
		gas:         gasSvc,
	}
}
