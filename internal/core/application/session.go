package application

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/etherdeck-network/etherdeck-daemon/internal/core/domain"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/hdvault"
)

// walletSession is the in-memory state of the single open wallet. Every
// mutation of the session or of the persisted record it mirrors goes through
// the services holding it, under its lock: the two copies can only diverge
// when a second agent writes storage directly, which is exactly what the
// consistency guard catches.
type walletSession struct {
	lock *sync.RWMutex

	vault           *hdvault.Vault
	serializedVault string
	addresses       []AddressInfo
	txState         TransactionState
	// spotPrice is the last fiat price seen, used to value pushed balance
	// observations without an extra provider round trip
	spotPrice decimal.Decimal
}

func newWalletSession() *walletSession {
	return &walletSession{lock: &sync.RWMutex{}}
}

func (s *walletSession) setVault(vault *hdvault.Vault, serializedVault string) {
	s.vault = vault
	s.serializedVault = serializedVault
	s.addresses = nil
	s.txState = TransactionState{}
}

func (s *walletSession) clear() {
	s.vault = nil
	s.serializedVault = ""
	s.addresses = nil
	s.txState = TransactionState{}
}

// checkConsistency compares the in-memory serialized vault with the one of
// the persisted record referenced by the active hash, re-reading fresh
// storage state. Divergence or absence of either copy fails with
// ErrWalletNotInitialized and the caller must not mutate anything.
// Callers must hold the session lock.
func (s *walletSession) checkConsistency(
	ctx context.Context, repo domain.KeystoreRepository,
) error {
	if s.vault == nil || len(s.serializedVault) <= 0 {
		return ErrWalletNotInitialized
	}

	current, err := repo.GetCurrentKeystore(ctx)
	if err != nil || current == nil {
		return ErrWalletNotInitialized
	}
	if current.EncryptedVault != s.serializedVault {
		return ErrWalletNotInitialized
	}
	return nil
}

func (s *walletSession) copyAddresses() []AddressInfo {
	addresses := make([]AddressInfo, len(s.addresses))
	copy(addresses, s.addresses)
	return addresses
}
