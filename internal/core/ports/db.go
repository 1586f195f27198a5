package ports

import (
	"github.com/etherdeck-network/etherdeck-daemon/internal/core/domain"
)

// RepoManager gives access to the storage backend holding the persisted
// keystore records.
type RepoManager interface {
	KeystoreRepository() domain.KeystoreRepository

	Close()
}
