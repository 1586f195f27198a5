package dbbadger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/timshannon/badgerhold/v4"

	"github.com/etherdeck-network/etherdeck-daemon/internal/core/domain"
	"github.com/etherdeck-network/etherdeck-daemon/internal/core/ports"
)

// repoManager holds the badgerhold store backing the persisted keystore
// records.
type repoManager struct {
	store        *badgerhold.Store
	keystoreRepo domain.KeystoreRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// It expects a base data dir and an optional logger.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var keystoreDir string
	if len(baseDbDir) > 0 {
		keystoreDir = filepath.Join(baseDbDir, "keystore")
	}

	store, err := createDb(keystoreDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening keystore db: %w", err)
	}

	return &repoManager{
		store:        store,
		keystoreRepo: newKeystoreRepositoryImpl(store),
	}, nil
}

func (d *repoManager) KeystoreRepository() domain.KeystoreRepository {
	return d.keystoreRepo
}

func (d *repoManager) Close() {
	d.store.Close()
}

// JSONEncode is a custom JSON based encoder for badger
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer

	en := json.NewEncoder(&buff)

	err := en.Encode(value)
	if err != nil {
		return nil, err
	}

	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger
func JSONDecode(data []byte, value interface{}) error {
	var buff bytes.Buffer
	de := json.NewDecoder(&buff)

	_, err := buff.Write(data)
	if err != nil {
		return err
	}

	return de.Decode(value)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
