package application

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/etherdeck-network/etherdeck-daemon/internal/core/domain"
	"github.com/etherdeck-network/etherdeck-daemon/internal/core/ports"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/hdvault"
)

// KeystoreService orchestrates the lifecycle of the single open wallet:
// generation, restore, rehydration at startup and close.
type KeystoreService interface {
	// GenerateWallet creates a brand new vault from the password, mnemonic
	// and derivation path, persists its record keyed by the identity hash and
	// opens it. It returns the identity hash of the new wallet.
	GenerateWallet(ctx context.Context, password, mnemonic, hdPath string) (string, error)
	// RestoreWallet re-opens a previously generated wallet. It fails with
	// ErrWalletAlreadyOpen if any wallet is open, with ErrWalletNotFound if
	// no record exists for the password and mnemonic pair.
	RestoreWallet(ctx context.Context, password, mnemonic, hdPath string) error
	// LoadWallet rehydrates the in-memory session from a persisted serialized
	// vault, typically at application start.
	LoadWallet(ctx context.Context, serializedVault string) error
	// CloseWallet clears the active pointer, keeping the record for a future
	// restore. It always succeeds.
	CloseWallet(ctx context.Context) error
	// IsOpen returns whether a wallet is currently open in the session.
	IsOpen() bool
}

type keystoreService struct {
	repoManager ports.RepoManager
	session     *walletSession

	// latestOp makes duplicate lifecycle intents last-intent-wins: a run
	// whose id is no longer the latest discards its result.
	latestOp uuid.UUID
}

// NewKeystoreService returns a KeystoreService backed by the given storage
// and sharing the provided session with the other services.
func NewKeystoreService(
	repoManager ports.RepoManager, session *walletSession,
) KeystoreService {
	return &keystoreService{
		repoManager: repoManager,
		session:     session,
	}
}

func (k *keystoreService) GenerateWallet(
	ctx context.Context, password, mnemonic, hdPath string,
) (string, error) {
	op := k.beginOp()

	vault, err := hdvault.NewVault(hdvault.NewVaultOpts{
		Password: password,
		Mnemonic: mnemonic,
		HDPath:   hdPath,
	})
	if err != nil {
		log.WithError(err).Debug("vault creation failed")
		return "", ErrWalletInitialization
	}

	serializedVault, err := vault.Serialize()
	if err != nil {
		return "", ErrWalletInitialization
	}
	keystore, err := domain.NewKeystore(serializedVault)
	if err != nil {
		return "", ErrWalletInitialization
	}
	hash := hdvault.HashIdentity(password, mnemonic)

	k.session.lock.Lock()
	defer k.session.lock.Unlock()

	if !k.isLatestOp(op) {
		return "", ErrOperationSuperseded
	}

	repo := k.repoManager.KeystoreRepository()
	if err := repo.PutKeystore(ctx, hash, keystore); err != nil {
		return "", err
	}
	if err := repo.SetActiveHash(ctx, hash); err != nil {
		return "", err
	}
	k.session.setVault(vault, serializedVault)

	log.Info("wallet generated and opened")
	return hash, nil
}

func (k *keystoreService) RestoreWallet(
	ctx context.Context, password, mnemonic, hdPath string,
) error {
	op := k.beginOp()
	hash := hdvault.HashIdentity(password, mnemonic)

	k.session.lock.Lock()
	defer k.session.lock.Unlock()

	repo := k.repoManager.KeystoreRepository()

	activeHash, err := repo.GetActiveHash(ctx)
	if err != nil {
		return err
	}
	// a wallet is open, no matter whether it is the requested one
	if len(activeHash) > 0 {
		return ErrWalletAlreadyOpen
	}

	keystore, err := repo.GetKeystore(ctx, hash)
	if err != nil {
		return err
	}
	if keystore == nil {
		return ErrWalletNotFound
	}

	vault, err := hdvault.Deserialize(keystore.EncryptedVault)
	if err != nil {
		return ErrWalletInitialization
	}

	if !k.isLatestOp(op) {
		return ErrOperationSuperseded
	}

	if err := repo.SetActiveHash(ctx, hash); err != nil {
		return err
	}
	k.session.setVault(vault, keystore.EncryptedVault)

	log.Info("wallet restored")
	return nil
}

func (k *keystoreService) LoadWallet(
	ctx context.Context, serializedVault string,
) error {
	if len(serializedVault) <= 0 {
		return ErrWalletNotInitialized
	}

	vault, err := hdvault.Deserialize(serializedVault)
	if err != nil {
		return ErrWalletInitialization
	}

	k.session.lock.Lock()
	defer k.session.lock.Unlock()

	k.session.setVault(vault, serializedVault)
	return nil
}

func (k *keystoreService) CloseWallet(ctx context.Context) error {
	op := k.beginOp()

	k.session.lock.Lock()
	defer k.session.lock.Unlock()

	if !k.isLatestOp(op) {
		return ErrOperationSuperseded
	}

	repo := k.repoManager.KeystoreRepository()
	if err := repo.SetActiveHash(ctx, ""); err != nil {
		return err
	}
	k.session.clear()

	log.Info("wallet closed")
	return nil
}

func (k *keystoreService) IsOpen() bool {
	k.session.lock.RLock()
	defer k.session.lock.RUnlock()

	return k.session.vault != nil
}

func (k *keystoreService) beginOp() uuid.UUID {
	k.session.lock.Lock()
	defer k.session.lock.Unlock()

	k.latestOp = uuid.New()
	return k.latestOp
}

// isLatestOp must be called with the session lock held.
func (k *keystoreService) isLatestOp(op uuid.UUID) bool {
	return k.latestOp == op
}
