package domain

// Keystore is the persisted record of an HD wallet, keyed by the one-way
// identity hash of its password and seed phrase. It holds the encrypted vault
// blob, every address ever derived for it in derivation order, and the
// app-local alias and transaction counter of each address.
type Keystore struct {
	EncryptedVault string
	Addresses      []string
	AliasByAddress map[string]string
	NonceByAddress map[string]uint64
}

// NewKeystore returns a Keystore wrapping the provided serialized vault with
// no derived addresses.
func NewKeystore(encryptedVault string) (*Keystore, error) {
	if len(encryptedVault) <= 0 {
		return nil, ErrNullSerializedVault
	}
	return &Keystore{
		EncryptedVault: encryptedVault,
		Addresses:      []string{},
		AliasByAddress: map[string]string{},
		NonceByAddress: map[string]uint64{},
	}, nil
}

// HasAddress returns whether the address belongs to the record.
func (k *Keystore) HasAddress(address string) bool {
	for _, addr := range k.Addresses {
		if addr == address {
			return true
		}
	}
	return false
}

// AddAddress appends a newly derived address to the record and initializes
// its transaction counter to zero.
func (k *Keystore) AddAddress(address string) error {
	if k.HasAddress(address) {
		return ErrAddressAlreadyDerived
	}
	k.Addresses = append(k.Addresses, address)
	k.NonceByAddress[address] = 0
	return nil
}

// SetAlias updates the display name of an address of the record.
func (k *Keystore) SetAlias(address, alias string) error {
	if !k.HasAddress(address) {
		return ErrAddressNotFound
	}
	k.AliasByAddress[address] = alias
	return nil
}

// RemoveAddress removes an address from the record along with its alias and
// transaction counter, keeping alias and nonce keys a subset of the address
// list.
func (k *Keystore) RemoveAddress(address string) error {
	index := -1
	for i, addr := range k.Addresses {
		if addr == address {
			index = i
			break
		}
	}
	if index < 0 {
		return ErrAddressNotFound
	}

	k.Addresses = append(k.Addresses[:index], k.Addresses[index+1:]...)
	delete(k.AliasByAddress, address)
	delete(k.NonceByAddress, address)
	return nil
}

// NonceOf returns the app-local transaction counter of an address.
func (k *Keystore) NonceOf(address string) (uint64, error) {
	nonce, ok := k.NonceByAddress[address]
	if !ok {
		return 0, ErrAddressNotFound
	}
	return nonce, nil
}

// IncrementNonce advances the transaction counter of an address by exactly
// one. It is meant to be called once per accepted transaction submission.
func (k *Keystore) IncrementNonce(address string) error {
	nonce, ok := k.NonceByAddress[address]
	if !ok {
		return ErrAddressNotFound
	}
	k.NonceByAddress[address] = nonce + 1
	return nil
}
