// Package hdvault wraps the creation, encryption at rest and address
// derivation of a hierarchical deterministic Ethereum wallet. The seed is
// kept encrypted with a password-derived key and is only decrypted in memory
// for the duration of a single derivation or signing operation.
package hdvault

import (
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultDerivationPath is the BIP44 path for the first Ethereum account.
const DefaultDerivationPath = "m/44'/60'/0'/0"

// Vault is an HD wallet whose seed is encrypted at rest. All mutating
// operations require a DerivedKey produced by DeriveKey on the same vault.
type Vault struct {
	encryptedSeed string
	hdPath        string
	nextIndex     uint32
	addresses     []string
}

// DerivedKey is the password-derived symmetric key of a vault. It carries a
// fingerprint binding it to the vault it was derived from.
type DerivedKey struct {
	key         []byte
	fingerprint string
}

// NewVaultOpts is the struct given to NewVault method
type NewVaultOpts struct {
	Password string
	Mnemonic string
	HDPath   string
}

func (o NewVaultOpts) validate() error {
	if len(o.Password) <= 0 {
		return ErrNullPassword
	}
	if len(o.Mnemonic) <= 0 {
		return ErrNullMnemonic
	}
	if len(o.HDPath) > 0 {
		if _, err := accounts.ParseDerivationPath(o.HDPath); err != nil {
			return ErrInvalidDerivationPath
		}
	}
	return nil
}

// NewVault validates the mnemonic, derives its seed and returns a new Vault
// holding the seed encrypted with the provided password. The derivation path
// defaults to DefaultDerivationPath when empty.
func NewVault(opts NewVaultOpts) (*Vault, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	seed, err := seedFromMnemonic(opts.Mnemonic)
	if err != nil {
		return nil, err
	}

	hdPath := opts.HDPath
	if len(hdPath) <= 0 {
		hdPath = DefaultDerivationPath
	}

	encryptedSeed, err := Encrypt(EncryptOpts{
		PlainText: seed,
		Password:  opts.Password,
	})
	if err != nil {
		return nil, err
	}

	return &Vault{
		encryptedSeed: encryptedSeed,
		hdPath:        hdPath,
		addresses:     []string{},
	}, nil
}

// DeriveKey derives the vault's symmetric key from the password and verifies
// it against the encrypted seed. It returns ErrIncorrectPassword if the
// password does not match the one the vault was created with.
func (v *Vault) DeriveKey(password string) (DerivedKey, error) {
	if len(password) <= 0 {
		return DerivedKey{}, ErrNullPassword
	}

	data, err := base64.StdEncoding.DecodeString(v.encryptedSeed)
	if err != nil || len(data) <= saltSize {
		return DerivedKey{}, ErrInvalidCypherText
	}
	salt := data[len(data)-saltSize:]

	key, _, err := deriveCypherKey([]byte(password), salt)
	if err != nil {
		return DerivedKey{}, err
	}
	// verify the key by attempting to open the seed
	if _, err := openWithKey(key, data[:len(data)-saltSize]); err != nil {
		return DerivedKey{}, err
	}

	return DerivedKey{key: key, fingerprint: v.fingerprint()}, nil
}

// DeriveNextAddresses appends count new addresses to the vault, derived at
// the vault's HD path starting from the next unused index. It returns the
// newly derived addresses in derivation order.
func (v *Vault) DeriveNextAddresses(dk DerivedKey, count int) ([]string, error) {
	if count <= 0 {
		return nil, ErrInvalidAddressCount
	}
	if err := v.checkKey(dk); err != nil {
		return nil, err
	}

	seed, err := v.decryptSeed(dk)
	if err != nil {
		return nil, err
	}

	derived := make([]string, 0, count)
	for i := 0; i < count; i++ {
		index := v.nextIndex + uint32(i)
		privateKey, err := v.privateKeyAtIndex(seed, index)
		if err != nil {
			return nil, err
		}
		addr := crypto.PubkeyToAddress(privateKey.PublicKey).Hex()
		derived = append(derived, addr)
	}

	v.addresses = append(v.addresses, derived...)
	v.nextIndex += uint32(count)
	return derived, nil
}

// PrivateKey returns the ECDSA private key controlling the provided address.
// The address must have been derived by this vault.
func (v *Vault) PrivateKey(dk DerivedKey, address string) (*ecdsa.PrivateKey, error) {
	if err := v.checkKey(dk); err != nil {
		return nil, err
	}

	target := common.HexToAddress(address)
	index := -1
	for i, addr := range v.addresses {
		if common.HexToAddress(addr) == target {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, ErrAddressNotDerived
	}

	seed, err := v.decryptSeed(dk)
	if err != nil {
		return nil, err
	}
	return v.privateKeyAtIndex(seed, uint32(index))
}

// Addresses returns a copy of all the addresses derived by the vault, in
// derivation order.
func (v *Vault) Addresses() []string {
	addresses := make([]string, len(v.addresses))
	copy(addresses, v.addresses)
	return addresses
}

// HDPath returns the vault's derivation path.
func (v *Vault) HDPath() string {
	return v.hdPath
}

type serializedVault struct {
	EncryptedSeed string   `json:"encrypted_seed"`
	HDPath        string   `json:"hd_path"`
	NextIndex     uint32   `json:"next_index"`
	Addresses     []string `json:"addresses"`
}

// Serialize returns the vault as an opaque string safe to persist. The seed
// is stored only in its encrypted form.
func (v *Vault) Serialize() (string, error) {
	buf, err := json.Marshal(serializedVault{
		EncryptedSeed: v.encryptedSeed,
		HDPath:        v.hdPath,
		NextIndex:     v.nextIndex,
		Addresses:     v.addresses,
	})
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// Deserialize parses a string produced by Serialize back into a Vault. The
// returned vault lists the same addresses in the same order and verifies the
// same password as the serialized one.
func Deserialize(s string) (*Vault, error) {
	if len(s) <= 0 {
		return nil, ErrInvalidSerializedVault
	}
	var sv serializedVault
	if err := json.Unmarshal([]byte(s), &sv); err != nil {
		return nil, ErrInvalidSerializedVault
	}
	if len(sv.EncryptedSeed) <= 0 || len(sv.HDPath) <= 0 {
		return nil, ErrInvalidSerializedVault
	}
	if _, err := accounts.ParseDerivationPath(sv.HDPath); err != nil {
		return nil, ErrInvalidSerializedVault
	}
	addresses := sv.Addresses
	if addresses == nil {
		addresses = []string{}
	}
	return &Vault{
		encryptedSeed: sv.EncryptedSeed,
		hdPath:        sv.HDPath,
		nextIndex:     sv.NextIndex,
		addresses:     addresses,
	}, nil
}

// HashIdentity returns the one-way identity hash of a password and mnemonic
// pair, used to key the persisted keystore records. It is not invertible to
// recover either input.
func HashIdentity(password, mnemonic string) string {
	return hex.EncodeToString(btcutil.Hash160([]byte(password + " " + mnemonic)))
}

func (v *Vault) fingerprint() string {
	return hex.EncodeToString(btcutil.Hash160([]byte(v.encryptedSeed)))
}

func (v *Vault) checkKey(dk DerivedKey) error {
	if len(dk.key) <= 0 || dk.fingerprint != v.fingerprint() {
		return ErrForeignDerivedKey
	}
	return nil
}

func (v *Vault) decryptSeed(dk DerivedKey) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(v.encryptedSeed)
	if err != nil || len(data) <= saltSize {
		return nil, ErrInvalidCypherText
	}
	return openWithKey(dk.key, data[:len(data)-saltSize])
}

func (v *Vault) privateKeyAtIndex(seed []byte, index uint32) (*ecdsa.PrivateKey, error) {
	masterKey, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}

	path, err := accounts.ParseDerivationPath(v.hdPath)
	if err != nil {
		return nil, ErrInvalidDerivationPath
	}

	key := masterKey
	for _, n := range append(path, index) {
		key, err = key.Derive(n)
		if err != nil {
			return nil, fmt.Errorf("deriving child key: %w", err)
		}
	}

	privateKey, err := key.ECPrivKey()
	if err != nil {
		return nil, err
	}
	return privateKey.ToECDSA(), nil
}
