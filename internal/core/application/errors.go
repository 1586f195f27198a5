package application

import "errors"

var (
	// ErrWalletInitialization is returned when the vault cannot be created
	// from the provided password, mnemonic and derivation path.
	ErrWalletInitialization = errors.New("wallet could not be initialized")
	// ErrWalletNotInitialized is returned when an operation requires an open
	// wallet, or when the consistency guard detects a divergence between the
	// in-memory vault and the persisted one.
	ErrWalletNotInitialized = errors.New("wallet not initialized")
	// ErrWalletAlreadyOpen is returned when attempting to restore a wallet
	// while another one is open.
	ErrWalletAlreadyOpen = errors.New("wallet is already open, close it first")
	// ErrWalletNotFound ...
	ErrWalletNotFound = errors.New("wallet does not exist")
	// ErrIncorrectPassword is returned when the password fails the vault's
	// verifier. Distinguished from ErrWalletNotInitialized so the caller can
	// prompt for the password again rather than treat the wallet as missing.
	ErrIncorrectPassword = errors.New("password is incorrect")
	// ErrProviderUnavailable is the error returned when an external provider
	// call fails
	ErrProviderUnavailable = errors.New("service is unavailable, try again later")
	// ErrTransactionFailed is returned when signing or submission fails. The
	// nonce is never advanced in that case.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrOperationSuperseded is returned to a lifecycle operation whose
	// result got discarded because a newer one started meanwhile.
	ErrOperationSuperseded = errors.New("operation superseded by a newer one")
	// ErrNoSendInProgress ...
	ErrNoSendInProgress = errors.New("no transaction in progress")
)

// Status codes surfaced to the presentation layer alongside the message of
// the error they map. They are part of the external contract and must not be
// renumbered.
const (
	StatusOK = iota
	StatusWalletInitialization
	StatusWalletNotInitialized
	StatusWalletAlreadyOpen
	StatusWalletNotFound
	StatusAddressNotFound
	StatusIncorrectPassword
	StatusProviderUnavailable
	StatusTransactionFailed
	StatusOperationSuperseded
	StatusInternalError
)
