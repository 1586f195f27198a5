package hdvault

import "errors"

var (
	// ErrNullPassword ...
	ErrNullPassword = errors.New("password must not be null")
	// ErrNullMnemonic ...
	ErrNullMnemonic = errors.New("mnemonic must not be null")
	// ErrNullPlainText ...
	ErrNullPlainText = errors.New("text to encrypt must not be null")
	// ErrNullCypherText ...
	ErrNullCypherText = errors.New("cypher to decrypt must not be null")
	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")
	// ErrInvalidCypherText ...
	ErrInvalidCypherText = errors.New("cypher must be in base64 format")
	// ErrInvalidDerivationPath ...
	ErrInvalidDerivationPath = errors.New("invalid derivation path")
	// ErrInvalidSerializedVault ...
	ErrInvalidSerializedVault = errors.New("serialized vault is malformed")
	// ErrIncorrectPassword is returned when the derived key fails the vault's
	// verifier, ie. the password cannot decrypt the seed.
	ErrIncorrectPassword = errors.New("password is incorrect")
	// ErrForeignDerivedKey is returned when a derived key produced for another
	// vault is used to derive addresses on this one.
	ErrForeignDerivedKey = errors.New("derived key does not belong to this vault")
	// ErrAddressNotDerived ...
	ErrAddressNotDerived = errors.New("address was not derived by this vault")
	// ErrInvalidAddressCount ...
	ErrInvalidAddressCount = errors.New("number of addresses to derive must be positive")
)
