package inmemory

import (
	"github.com/etherdeck-network/etherdeck-daemon/internal/core/domain"
	"github.com/etherdeck-network/etherdeck-daemon/internal/core/ports"
)

// RepoManager is a volatile storage backend, useful for testing the
// application layer without a database on disk.
type RepoManager struct {
	keystoreRepository domain.KeystoreRepository
}

func NewRepoManager() ports.RepoManager {
	return &RepoManager{
		keystoreRepository: NewKeystoreRepositoryImpl(),
	}
}

func (d *RepoManager) KeystoreRepository() domain.KeystoreRepository {
	return d.keystoreRepository
}

func (d *RepoManager) Close() {}
