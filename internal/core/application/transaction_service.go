package application

import (
	"context"
	"encoding/hex"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/etherdeck-network/etherdeck-daemon/internal/core/ports"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/circuitbreaker"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/debounce"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/explorer"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/hdvault"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/mathutil"
)

// ethTransferGasLimit is the fixed gas cost of a plain value transfer.
const ethTransferGasLimit = uint64(21000)

// TransactionService assembles, signs and submits transactions from the open
// wallet, tracking a per-address nonce so that sequential sends from this
// app never collide.
type TransactionService interface {
	// PrepareSend starts a new transaction: it loads the gas price bounds
	// from the gas provider, defaults the selection to the medium estimate
	// and moves the state machine to awaiting password confirmation.
	PrepareSend(ctx context.Context, fromAddress, toAddress string) (TransactionState, error)
	// SetGasPrice sets the user's gas price choice, clamped to the bounds
	// loaded by PrepareSend, and returns the applied value.
	SetGasPrice(gasPrice decimal.Decimal) (decimal.Decimal, error)
	// SetEthAmount updates the amount to send in ether; the fiat countervalue
	// is recomputed after the debounce quiet period.
	SetEthAmount(ctx context.Context, amount decimal.Decimal) error
	// SetFiatAmount updates the amount to send in fiat; the ether amount is
	// recomputed after the debounce quiet period.
	SetFiatAmount(ctx context.Context, amount decimal.Decimal) error
	// SendTransaction verifies the password, resolves the nonce, signs and
	// broadcasts the in-progress transaction. It returns the accepted
	// transaction hash.
	SendTransaction(ctx context.Context, fromAddress, toAddress, password string) (string, error)
	// TransactionState returns a snapshot of the in-progress transaction.
	TransactionState() TransactionState
	// TransactionHistory returns the confirmed transaction history of an
	// address as reported by the explorer.
	TransactionHistory(ctx context.Context, address string, opts explorer.TxQueryOpts) ([]explorer.Transaction, error)
	// ChainNonce returns the chain-reported transaction count of an address.
	// It is informational only: the app-local counter stays the signing
	// source of truth.
	ChainNonce(ctx context.Context, address string) (uint64, error)
}

type transactionService struct {
	repoManager     ports.RepoManager
	explorerService explorer.Service
	priceService    ports.PriceService
	gasService      ports.GasService
	session         *walletSession
	chainID         *big.Int
	debouncer       *debounce.Debouncer

	explorerCB *gobreaker.CircuitBreaker
	priceCB    *gobreaker.CircuitBreaker
	gasCB      *gobreaker.CircuitBreaker
}

// NewTransactionService returns a TransactionService signing for the chain
// with the given id and sharing the session with the other services.
func NewTransactionService(
	repoManager ports.RepoManager,
	explorerService explorer.Service,
	priceService ports.PriceService,
	gasService ports.GasService,
	session *walletSession,
	chainID *big.Int,
	debouncer *debounce.Debouncer,
) TransactionService {
	return &transactionService{
		repoManager:     repoManager,
		explorerService: explorerService,
		priceService:    priceService,
		gasService:      gasService,
		session:         session,
		chainID:         chainID,
		debouncer:       debouncer,
		explorerCB:      circuitbreaker.NewCircuitBreaker("explorer"),
		priceCB:         circuitbreaker.NewCircuitBreaker("price"),
		gasCB:           circuitbreaker.NewCircuitBreaker("gas"),
	}
}

func (t *transactionService) PrepareSend(
	ctx context.Context, fromAddress, toAddress string,
) (TransactionState, error) {
	res, err := t.gasCB.Execute(func() (interface{}, error) {
		return t.gasService.GetGasInfo(ctx)
	})
	if err != nil {
		log.WithError(err).Warn("gas info fetch failed")
		return TransactionState{}, ErrProviderUnavailable
	}
	gasInfo := res.(ports.GasInfo)

	t.session.lock.Lock()
	defer t.session.lock.Unlock()

	if t.session.vault == nil {
		return TransactionState{}, ErrWalletNotInitialized
	}

	t.session.txState = TransactionState{
		FromAddress:  fromAddress,
		ToAddress:    toAddress,
		LowGasPrice:  gasInfo.LowGasPrice,
		HighGasPrice: gasInfo.HighGasPrice,
		GasPrice:     gasInfo.MediumGasPrice,
		Status:       SendAwaitingPassword,
	}
	return t.session.txState, nil
}

func (t *transactionService) SetGasPrice(gasPrice decimal.Decimal) (decimal.Decimal, error) {
	t.session.lock.Lock()
	defer t.session.lock.Unlock()

	if t.session.txState.Status != SendAwaitingPassword {
		return decimal.Zero, ErrNoSendInProgress
	}

	// clamp to the provider's bounds
	if gasPrice.LessThan(t.session.txState.LowGasPrice) {
		gasPrice = t.session.txState.LowGasPrice
	}
	if gasPrice.GreaterThan(t.session.txState.HighGasPrice) {
		gasPrice = t.session.txState.HighGasPrice
	}
	t.session.txState.GasPrice = gasPrice

	return gasPrice, nil
}

func (t *transactionService) SetEthAmount(ctx context.Context, amount decimal.Decimal) error {
	t.session.lock.Lock()
	if t.session.txState.Status != SendAwaitingPassword {
		t.session.lock.Unlock()
		return ErrNoSendInProgress
	}
	t.session.txState.EthAmount = amount
	t.session.lock.Unlock()

	// rapid edits collapse into a single conversion of the most recent value
	t.debouncer.Do(func() {
		price, err := t.getEthPrice(ctx)
		if err != nil {
			return
		}
		t.session.lock.Lock()
		defer t.session.lock.Unlock()
		t.session.txState.FiatAmount = mathutil.Fiat(t.session.txState.EthAmount, price)
	})
	return nil
}

func (t *transactionService) SetFiatAmount(ctx context.Context, amount decimal.Decimal) error {
	t.session.lock.Lock()
	if t.session.txState.Status != SendAwaitingPassword {
		t.session.lock.Unlock()
		return ErrNoSendInProgress
	}
	t.session.txState.FiatAmount = amount
	t.session.lock.Unlock()

	t.debouncer.Do(func() {
		price, err := t.getEthPrice(ctx)
		if err != nil {
			return
		}
		t.session.lock.Lock()
		defer t.session.lock.Unlock()
		t.session.txState.EthAmount = mathutil.FiatToEth(t.session.txState.FiatAmount, price)
	})
	return nil
}

func (t *transactionService) SendTransaction(
	ctx context.Context, fromAddress, toAddress, password string,
) (string, error) {
	t.session.lock.Lock()

	if t.session.vault == nil {
		t.session.lock.Unlock()
		return "", ErrWalletNotInitialized
	}
	// admission gate: a send must have been prepared, and a send that is
	// already signing or submitting keeps the gate closed so overlapping
	// calls can never sign with the same nonce
	if t.session.txState.Status != SendAwaitingPassword {
		t.session.lock.Unlock()
		return "", ErrNoSendInProgress
	}
	t.session.txState.Status = SendSigning

	// the password is verified on every send, never cached: signing is the
	// highest-value action of the system
	derivedKey, err := t.session.vault.DeriveKey(password)
	if err != nil {
		t.rejectLocked()
		t.session.lock.Unlock()
		if err == hdvault.ErrIncorrectPassword {
			return "", ErrIncorrectPassword
		}
		return "", ErrTransactionFailed
	}

	repo := t.repoManager.KeystoreRepository()
	if err := t.session.checkConsistency(ctx, repo); err != nil {
		t.rejectLocked()
		t.session.lock.Unlock()
		return "", err
	}

	hash, err := repo.GetActiveHash(ctx)
	if err != nil || len(hash) <= 0 {
		t.rejectLocked()
		t.session.lock.Unlock()
		return "", ErrWalletNotInitialized
	}
	keystore, err := repo.GetKeystore(ctx, hash)
	if err != nil || keystore == nil {
		t.rejectLocked()
		t.session.lock.Unlock()
		return "", ErrWalletNotInitialized
	}

	nonce, err := keystore.NonceOf(fromAddress)
	if err != nil {
		t.rejectLocked()
		t.session.lock.Unlock()
		return "", err
	}

	amount := mathutil.EthToWei(t.session.txState.EthAmount)
	gasPrice := t.session.txState.GasPrice.BigInt()

	rawTx, err := t.signTransfer(derivedKey, fromAddress, toAddress, amount, gasPrice, nonce)
	if err != nil {
		t.rejectLocked()
		t.session.lock.Unlock()
		log.WithError(err).Warn("transaction signing failed")
		return "", ErrTransactionFailed
	}

	t.session.txState.Status = SendSubmitting
	t.session.lock.Unlock()

	txHash, err := t.broadcast(rawTx)
	if err != nil {
		t.session.lock.Lock()
		t.rejectLocked()
		t.session.lock.Unlock()
		log.WithError(err).Warn("transaction submission failed")
		return "", ErrTransactionFailed
	}

	t.session.lock.Lock()
	defer t.session.lock.Unlock()

	// the nonce advances exactly once per accepted submission, on fresh
	// storage state since the broadcast suspended the operation
	keystore, err = repo.GetKeystore(ctx, hash)
	if err != nil || keystore == nil {
		return "", ErrWalletNotInitialized
	}
	if err := keystore.IncrementNonce(fromAddress); err != nil {
		return "", err
	}
	if err := repo.PutKeystore(ctx, hash, keystore); err != nil {
		return "", err
	}

	t.session.txState.Status = SendConfirmed
	t.session.txState.TxHash = txHash

	log.WithField("hash", txHash).Info("transaction submitted")
	return txHash, nil
}

func (t *transactionService) TransactionState() TransactionState {
	t.session.lock.RLock()
	defer t.session.lock.RUnlock()

	return t.session.txState
}

func (t *transactionService) TransactionHistory(
	ctx context.Context, address string, opts explorer.TxQueryOpts,
) ([]explorer.Transaction, error) {
	res, err := t.explorerCB.Execute(func() (interface{}, error) {
		return t.explorerService.GetTransactions(address, opts)
	})
	if err != nil {
		log.WithError(err).Warn("transaction history fetch failed")
		return nil, ErrProviderUnavailable
	}
	return res.([]explorer.Transaction), nil
}

func (t *transactionService) ChainNonce(ctx context.Context, address string) (uint64, error) {
	res, err := t.explorerCB.Execute(func() (interface{}, error) {
		return t.explorerService.GetTransactionCount(address)
	})
	if err != nil {
		return 0, ErrProviderUnavailable
	}
	return res.(uint64), nil
}

// rejectLocked moves the state machine to rejected. Callers must hold the
// session lock.
func (t *transactionService) rejectLocked() {
	t.session.txState.Status = SendRejected
}

func (t *transactionService) signTransfer(
	derivedKey hdvault.DerivedKey,
	fromAddress, toAddress string,
	amount, gasPrice *big.Int,
	nonce uint64,
) (string, error) {
	privateKey, err := t.session.vault.PrivateKey(derivedKey, fromAddress)
	if err != nil {
		return "", err
	}

	tx := types.NewTransaction(
		nonce,
		common.HexToAddress(toAddress),
		amount,
		ethTransferGasLimit,
		gasPrice,
		nil,
	)
	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(t.chainID), privateKey)
	if err != nil {
		return "", err
	}

	rawTx, err := signedTx.MarshalBinary()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(rawTx), nil
}

func (t *transactionService) broadcast(rawTx string) (string, error) {
	res, err := t.explorerCB.Execute(func() (interface{}, error) {
		return t.explorerService.BroadcastTransaction(rawTx)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func (t *transactionService) getEthPrice(ctx context.Context) (decimal.Decimal, error) {
	res, err := t.priceCB.Execute(func() (interface{}, error) {
		return t.priceService.GetEthPrice(ctx)
	})
	if err != nil {
		log.WithError(err).Warn("price fetch failed")
		return decimal.Zero, ErrProviderUnavailable
	}
	return res.(decimal.Decimal), nil
}
