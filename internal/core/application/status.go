package application

import (
	"errors"

	"github.com/etherdeck-network/etherdeck-daemon/internal/core/domain"
)

// Status is the {code, message} pair every orchestration failure is
// converted into at the service boundary. Raw errors never reach the
// presentation layer.
type Status struct {
	Code    int
	Message string
}

// StatusOf maps an error returned by any service entry point to its stable
// status code and human-readable message.
func StatusOf(err error) Status {
	if err == nil {
		return Status{Code: StatusOK, Message: "ok"}
	}

	code := StatusInternalError
	switch {
	case errors.Is(err, ErrWalletInitialization):
		code = StatusWalletInitialization
	case errors.Is(err, ErrWalletNotInitialized):
		code = StatusWalletNotInitialized
	case errors.Is(err, ErrWalletAlreadyOpen):
		code = StatusWalletAlreadyOpen
	case errors.Is(err, ErrWalletNotFound):
		code = StatusWalletNotFound
	case errors.Is(err, domain.ErrAddressNotFound):
		code = StatusAddressNotFound
	case errors.Is(err, ErrIncorrectPassword):
		code = StatusIncorrectPassword
	case errors.Is(err, ErrProviderUnavailable):
		code = StatusProviderUnavailable
	case errors.Is(err, ErrTransactionFailed):
		code = StatusTransactionFailed
	case errors.Is(err, ErrOperationSuperseded):
		code = StatusOperationSuperseded
	}

	return Status{Code: code, Message: err.Error()}
}
