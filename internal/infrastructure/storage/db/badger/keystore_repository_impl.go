package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"

	"github.com/etherdeck-network/etherdeck-daemon/internal/core/domain"
)

// activePointerKey is the fixed key of the single record holding the hash of
// the currently open keystore.
const activePointerKey = "active"

type activePointer struct {
	Hash string
}

type keystoreRepositoryImpl struct {
	store *badgerhold.Store
}

func newKeystoreRepositoryImpl(store *badgerhold.Store) domain.KeystoreRepository {
	return &keystoreRepositoryImpl{store}
}

func (r *keystoreRepositoryImpl) GetActiveHash(ctx context.Context) (string, error) {
	var pointer activePointer
	if err := r.store.Get(activePointerKey, &pointer); err != nil {
		if err == badgerhold.ErrNotFound {
			return "", nil
		}
		return "", err
	}
	return pointer.Hash, nil
}

func (r *keystoreRepositoryImpl) SetActiveHash(ctx context.Context, hash string) error {
	return r.store.Upsert(activePointerKey, &activePointer{Hash: hash})
}

func (r *keystoreRepositoryImpl) GetKeystore(
	ctx context.Context, hash string,
) (*domain.Keystore, error) {
	if len(hash) <= 0 {
		return nil, domain.ErrNullKeystoreHash
	}

	var keystore domain.Keystore
	if err := r.store.Get(hash, &keystore); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &keystore, nil
}

func (r *keystoreRepositoryImpl) PutKeystore(
	ctx context.Context, hash string, keystore *domain.Keystore,
) error {
	if len(hash) <= 0 {
		return domain.ErrNullKeystoreHash
	}
	return r.store.Upsert(hash, keystore)
}

func (r *keystoreRepositoryImpl) GetCurrentKeystore(
	ctx context.Context,
) (*domain.Keystore, error) {
	hash, err := r.GetActiveHash(ctx)
	if err != nil {
		return nil, err
	}
	if len(hash) <= 0 {
		return nil, nil
	}
	return r.GetKeystore(ctx, hash)
}
