package inmemory

import (
	"context"
	"sync"

	"github.com/etherdeck-network/etherdeck-daemon/internal/core/domain"
)

type keystoreRepositoryImpl struct {
	activeHash string
	keystores  map[string]*domain.Keystore
	lock       *sync.RWMutex
}

func NewKeystoreRepositoryImpl() domain.KeystoreRepository {
	return &keystoreRepositoryImpl{
		keystores: map[string]*domain.Keystore{},
		lock:      &sync.RWMutex{},
	}
}

func (r *keystoreRepositoryImpl) GetActiveHash(ctx context.Context) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.activeHash, nil
}

func (r *keystoreRepositoryImpl) SetActiveHash(ctx context.Context, hash string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.activeHash = hash
	return nil
}

func (r *keystoreRepositoryImpl) GetKeystore(
	ctx context.Context, hash string,
) (*domain.Keystore, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if len(hash) <= 0 {
		return nil, domain.ErrNullKeystoreHash
	}
	return copyKeystore(r.keystores[hash]), nil
}

func (r *keystoreRepositoryImpl) PutKeystore(
	ctx context.Context, hash string, keystore *domain.Keystore,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if len(hash) <= 0 {
		return domain.ErrNullKeystoreHash
	}
	r.keystores[hash] = copyKeystore(keystore)
	return nil
}

func (r *keystoreRepositoryImpl) GetCurrentKeystore(
	ctx context.Context,
) (*domain.Keystore, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if len(r.activeHash) <= 0 {
		return nil, nil
	}
	return copyKeystore(r.keystores[r.activeHash]), nil
}

// copyKeystore returns a deep copy so that callers never share state with the
// stored record.
func copyKeystore(keystore *domain.Keystore) *domain.Keystore {
	if keystore == nil {
		return nil
	}

	addresses := make([]string, len(keystore.Addresses))
	copy(addresses, keystore.Addresses)

	aliases := make(map[string]string, len(keystore.AliasByAddress))
	for addr, alias := range keystore.AliasByAddress {
		aliases[addr] = alias
	}

	nonces := make(map[string]uint64, len(keystore.NonceByAddress))
	for addr, nonce := range keystore.NonceByAddress {
		nonces[addr] = nonce
	}

	return &domain.Keystore{
		EncryptedVault: keystore.EncryptedVault,
		Addresses:      addresses,
		AliasByAddress: aliases,
		NonceByAddress: nonces,
	}
}
