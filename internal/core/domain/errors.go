package domain

import "errors"

var (
	// ErrNullKeystoreHash ...
	ErrNullKeystoreHash = errors.New("keystore hash must not be null")
	// ErrNullSerializedVault ...
	ErrNullSerializedVault = errors.New("serialized vault must not be null")
	// ErrAddressNotFound is thrown when the referenced address is not part of
	// the persisted keystore record
	ErrAddressNotFound = errors.New("address does not exist")
	// ErrAddressAlreadyDerived ...
	ErrAddressAlreadyDerived = errors.New("address was already derived")
)
