package application

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/etherdeck-network/etherdeck-daemon/internal/core/ports"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/circuitbreaker"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/crawler"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/explorer"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/hdvault"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/mathutil"
)

// AccountService orchestrates the addresses of the open wallet: loading them
// with balances and countervalues, deriving new ones, aliasing, deletion and
// spot price synchronization. Every mutation runs the consistency guard
// before touching storage.
type AccountService interface {
	ListAddresses(ctx context.Context) ([]AddressInfo, error)
	GenerateAddress(ctx context.Context, password string) (AddressInfo, error)
	EditAlias(ctx context.Context, address, alias string) error
	DeleteAddress(ctx context.Context, address string) error
	SyncPrice(ctx context.Context) ([]AddressInfo, error)
	ApplySpotPrice(price decimal.Decimal) []AddressInfo
	ApplyBalance(address string, balance *big.Int) []AddressInfo
}

type accountService struct {
	repoManager     ports.RepoManager
	explorerService explorer.Service
	priceService    ports.PriceService
	crawlerService  crawler.Service
	session         *walletSession

	explorerCB *gobreaker.CircuitBreaker
	priceCB    *gobreaker.CircuitBreaker
}

// NewAccountService returns an AccountService using the provided providers
// and sharing the session with the other services. Addresses derived through
// it are registered on the crawler so their balances get watched.
func NewAccountService(
	repoManager ports.RepoManager,
	explorerService explorer.Service,
	priceService ports.PriceService,
	crawlerService crawler.Service,
	session *walletSession,
) AccountService {
	return &accountService{
		repoManager:     repoManager,
		explorerService: explorerService,
		priceService:    priceService,
		crawlerService:  crawlerService,
		session:         session,
		explorerCB:      circuitbreaker.NewCircuitBreaker("explorer"),
		priceCB:         circuitbreaker.NewCircuitBreaker("price"),
	}
}

func (a *accountService) ListAddresses(ctx context.Context) ([]AddressInfo, error) {
	a.session.lock.RLock()
	if a.session.vault == nil {
		a.session.lock.RUnlock()
		return nil, ErrWalletNotInitialized
	}
	serializedVault := a.session.serializedVault
	vaultAddresses := a.session.vault.Addresses()
	a.session.lock.RUnlock()

	// surface only the addresses both derived by the vault and confirmed
	// written to storage
	repo := a.repoManager.KeystoreRepository()
	keystore, err := repo.GetCurrentKeystore(ctx)
	if err != nil {
		return nil, err
	}

	addresses := vaultAddresses
	aliases := map[string]string{}
	if keystore != nil {
		addresses = intersect(vaultAddresses, keystore.Addresses)
		aliases = keystore.AliasByAddress
	}

	price, err := a.getEthPrice(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]AddressInfo, 0, len(addresses))
	ethAmounts := make([]decimal.Decimal, 0, len(addresses))
	for _, addr := range addresses {
		balance, err := a.getBalance(addr)
		if err != nil {
			return nil, err
		}
		ethAmount := mathutil.WeiToEth(balance)
		infos = append(infos, AddressInfo{
			Address:    addr,
			Alias:      aliases[addr],
			EthAmount:  ethAmount,
			FiatAmount: mathutil.Fiat(ethAmount, price),
		})
		ethAmounts = append(ethAmounts, ethAmount)
	}
	for i, share := range mathutil.Percentages(ethAmounts) {
		infos[i].Percentage = share
	}

	a.session.lock.Lock()
	defer a.session.lock.Unlock()

	// storage may have changed underneath the balance fetches; discard the
	// result instead of publishing a stale view
	if a.session.vault == nil || a.session.serializedVault != serializedVault {
		return nil, ErrWalletNotInitialized
	}
	a.session.addresses = infos
	a.session.spotPrice = price

	return a.session.copyAddresses(), nil
}

func (a *accountService) GenerateAddress(
	ctx context.Context, password string,
) (AddressInfo, error) {
	a.session.lock.Lock()
	defer a.session.lock.Unlock()

	repo := a.repoManager.KeystoreRepository()
	if err := a.session.checkConsistency(ctx, repo); err != nil {
		return AddressInfo{}, err
	}

	derivedKey, err := a.session.vault.DeriveKey(password)
	if err != nil {
		if err == hdvault.ErrIncorrectPassword {
			return AddressInfo{}, ErrIncorrectPassword
		}
		return AddressInfo{}, err
	}

	derived, err := a.session.vault.DeriveNextAddresses(derivedKey, 1)
	if err != nil {
		return AddressInfo{}, err
	}
	newAddress := derived[0]

	serializedVault, err := a.session.vault.Serialize()
	if err != nil {
		return AddressInfo{}, err
	}

	hash, err := repo.GetActiveHash(ctx)
	if err != nil {
		return AddressInfo{}, err
	}
	keystore, err := repo.GetKeystore(ctx, hash)
	if err != nil {
		return AddressInfo{}, err
	}
	if keystore == nil {
		return AddressInfo{}, ErrWalletNotInitialized
	}

	keystore.EncryptedVault = serializedVault
	if err := keystore.AddAddress(newAddress); err != nil {
		return AddressInfo{}, err
	}
	if err := repo.PutKeystore(ctx, hash, keystore); err != nil {
		return AddressInfo{}, err
	}

	// in-memory and persisted copies are updated together
	a.session.serializedVault = serializedVault
	info := AddressInfo{Address: newAddress}
	a.session.addresses = append(a.session.addresses, info)

	if a.crawlerService != nil {
		a.crawlerService.AddObservable(&crawler.AddressObservable{Address: newAddress})
	}

	log.WithField("address", newAddress).Info("new address derived")
	return info, nil
}

func (a *accountService) EditAlias(ctx context.Context, address, alias string) error {
	a.session.lock.Lock()
	defer a.session.lock.Unlock()

	repo := a.repoManager.KeystoreRepository()
	if err := a.session.checkConsistency(ctx, repo); err != nil {
		return err
	}

	hash, err := repo.GetActiveHash(ctx)
	if err != nil {
		return err
	}
	keystore, err := repo.GetKeystore(ctx, hash)
	if err != nil {
		return err
	}
	if keystore == nil {
		return ErrWalletNotInitialized
	}

	if err := keystore.SetAlias(address, alias); err != nil {
		return err
	}
	if err := repo.PutKeystore(ctx, hash, keystore); err != nil {
		return err
	}

	for i := range a.session.addresses {
		if a.session.addresses[i].Address == address {
			a.session.addresses[i].Alias = alias
		}
	}
	return nil
}

func (a *accountService) DeleteAddress(ctx context.Context, address string) error {
	a.session.lock.Lock()
	defer a.session.lock.Unlock()

	repo := a.repoManager.KeystoreRepository()
	if err := a.session.checkConsistency(ctx, repo); err != nil {
		return err
	}

	hash, err := repo.GetActiveHash(ctx)
	if err != nil {
		return err
	}
	keystore, err := repo.GetKeystore(ctx, hash)
	if err != nil {
		return err
	}
	if keystore == nil {
		return ErrWalletNotInitialized
	}

	if err := keystore.RemoveAddress(address); err != nil {
		return err
	}
	if err := repo.PutKeystore(ctx, hash, keystore); err != nil {
		return err
	}

	remaining := make([]AddressInfo, 0, len(a.session.addresses))
	ethAmounts := make([]decimal.Decimal, 0, len(a.session.addresses))
	for _, info := range a.session.addresses {
		if info.Address == address {
			continue
		}
		remaining = append(remaining, info)
		ethAmounts = append(ethAmounts, info.EthAmount)
	}
	for i, share := range mathutil.Percentages(ethAmounts) {
		remaining[i].Percentage = share
	}
	a.session.addresses = remaining

	return nil
}

func (a *accountService) SyncPrice(ctx context.Context) ([]AddressInfo, error) {
	price, err := a.getEthPrice(ctx)
	if err != nil {
		return nil, err
	}

	infos := a.ApplySpotPrice(price)
	if infos == nil {
		return nil, ErrWalletNotInitialized
	}
	return infos, nil
}

// ApplySpotPrice recomputes the fiat countervalues of the loaded addresses at
// the given spot price, as pushed by a streaming price feed. It returns nil
// when no wallet is open.
func (a *accountService) ApplySpotPrice(price decimal.Decimal) []AddressInfo {
	a.session.lock.Lock()
	defer a.session.lock.Unlock()

	if a.session.vault == nil {
		return nil
	}

	a.session.spotPrice = price
	for i := range a.session.addresses {
		a.session.addresses[i].FiatAmount = mathutil.Fiat(
			a.session.addresses[i].EthAmount, price,
		)
	}
	return a.session.copyAddresses()
}

// ApplyBalance updates the loaded balance of an address with an observed
// chain balance in wei, revaluing its countervalue at the last known spot
// price and redistributing the percentages. It returns nil when no wallet is
// open or the address is not loaded.
func (a *accountService) ApplyBalance(address string, balance *big.Int) []AddressInfo {
	a.session.lock.Lock()
	defer a.session.lock.Unlock()

	if a.session.vault == nil || balance == nil {
		return nil
	}

	found := false
	ethAmounts := make([]decimal.Decimal, 0, len(a.session.addresses))
	for i := range a.session.addresses {
		if a.session.addresses[i].Address == address {
			ethAmount := mathutil.WeiToEth(balance)
			a.session.addresses[i].EthAmount = ethAmount
			a.session.addresses[i].FiatAmount = mathutil.Fiat(ethAmount, a.session.spotPrice)
			found = true
		}
		ethAmounts = append(ethAmounts, a.session.addresses[i].EthAmount)
	}
	if !found {
		return nil
	}

	for i, share := range mathutil.Percentages(ethAmounts) {
		a.session.addresses[i].Percentage = share
	}
	return a.session.copyAddresses()
}

func (a *accountService) getBalance(address string) (wei *big.Int, err error) {
	res, err := a.explorerCB.Execute(func() (interface{}, error) {
		return a.explorerService.GetBalance(address, "latest")
	})
	if err != nil {
		log.WithError(err).Warn("balance fetch failed")
		return nil, ErrProviderUnavailable
	}
	return res.(*big.Int), nil
}

func (a *accountService) getEthPrice(ctx context.Context) (decimal.Decimal, error) {
	res, err := a.priceCB.Execute(func() (interface{}, error) {
		return a.priceService.GetEthPrice(ctx)
	})
	if err != nil {
		log.WithError(err).Warn("price fetch failed")
		return decimal.Zero, ErrProviderUnavailable
	}
	return res.(decimal.Decimal), nil
}

// intersect returns the elements of base also present in allowed, preserving
// the order of base.
func intersect(base, allowed []string) []string {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, addr := range allowed {
		allowedSet[addr] = struct{}{}
	}

	result := make([]string, 0, len(base))
	for _, addr := range base {
		if _, ok := allowedSet[addr]; ok {
			result = append(result, addr)
		}
	}
	return result
}
