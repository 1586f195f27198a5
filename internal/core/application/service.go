package application

import (
	"math/big"
	"time"

	"github.com/etherdeck-network/etherdeck-daemon/internal/core/ports"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/crawler"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/debounce"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/explorer"
)

// Services bundles the application services built around a single shared
// wallet session.
type Services struct {
	Keystore    KeystoreService
	Account     AccountService
	Transaction TransactionService
	Portfolio   PortfolioService
}

// NewServices wires all application services on top of the same session so
// that a wallet opened through the keystore service is visible to the
// others.
func NewServices(
	repoManager ports.RepoManager,
	explorerService explorer.Service,
	priceService ports.PriceService,
	gasService ports.GasService,
	crawlerService crawler.Service,
	chainID *big.Int,
	debounceInterval time.Duration,
) *Services {
	session := newWalletSession()
	debouncer := debounce.New(debounceInterval)

	return &Services{
		Keystore: NewKeystoreService(repoManager, session),
		Account: NewAccountService(
			repoManager, explorerService, priceService, crawlerService, session,
		),
		Transaction: NewTransactionService(
			repoManager, explorerService, priceService, gasService,
			session, chainID, debouncer,
		),
		Portfolio: NewPortfolioService(explorerService, priceService),
	}
}
