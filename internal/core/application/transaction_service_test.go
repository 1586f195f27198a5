package application_test

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/etherdeck-network/etherdeck-daemon/internal/core/application"
	"github.com/etherdeck-network/etherdeck-daemon/internal/core/domain"
	"github.com/etherdeck-network/etherdeck-daemon/internal/core/ports"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/explorer"
)

const testRecipient = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"

func gweiToWei(gwei int64) decimal.Decimal {
	return decimal.NewFromInt(gwei).Mul(decimal.NewFromInt(1000000000))
}

func stubGasInfo(env *testEnv) {
	env.gas.On("GetGasInfo", mock.Anything).Return(ports.GasInfo{
		LowGasPrice:    gweiToWei(10),
		MediumGasPrice: gweiToWei(20),
		HighGasPrice:   gweiToWei(30),
	}, nil)
}

func TestPrepareSend(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	stubGasInfo(env)

	addresses := openWalletWithAddresses(t, env, 1)

	state, err := env.services.Transaction.PrepareSend(
		ctx, addresses[0], testRecipient,
	)
	require.NoError(t, err)
	require.Equal(t, application.SendAwaitingPassword, state.Status)
	require.True(t, state.GasPrice.Equal(gweiToWei(20)))
	require.True(t, state.LowGasPrice.Equal(gweiToWei(10)))
	require.True(t, state.HighGasPrice.Equal(gweiToWei(30)))
}

func TestPrepareSendWalletClosed(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	stubGasInfo(env)

	_, err := env.services.Transaction.PrepareSend(ctx, "0xabc", testRecipient)
	require.EqualError(t, err, application.ErrWalletNotInitialized.Error())
}

func TestSetGasPriceClamped(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	stubGasInfo(env)
	addresses := openWalletWithAddresses(t, env, 1)

	_, err := env.services.Transaction.PrepareSend(ctx, addresses[0], testRecipient)
	require.NoError(t, err)

	applied, err := env.services.Transaction.SetGasPrice(gweiToWei(5))
	require.NoError(t, err)
	require.True(t, applied.Equal(gweiToWei(10)))

	applied, err = env.services.Transaction.SetGasPrice(gweiToWei(100))
	require.NoError(t, err)
	require.True(t, applied.Equal(gweiToWei(30)))

	applied, err = env.services.Transaction.SetGasPrice(gweiToWei(25))
	require.NoError(t, err)
	require.True(t, applied.Equal(gweiToWei(25)))
}

func TestSetGasPriceWithoutSendInProgress(t *testing.T) {
	env := newTestEnv()

	_, err := env.services.Transaction.SetGasPrice(gweiToWei(20))
	require.EqualError(t, err, application.ErrNoSendInProgress.Error())
}

func TestSetAmountsConverted(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	stubGasInfo(env)
	env.price.On("GetEthPrice", mock.Anything).Return(decimal.NewFromInt(2000), nil)

	addresses := openWalletWithAddresses(t, env, 1)

	_, err := env.services.Transaction.PrepareSend(ctx, addresses[0], testRecipient)
	require.NoError(t, err)

	err = env.services.Transaction.SetEthAmount(ctx, decimal.NewFromFloat(1.5))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		state := env.services.Transaction.TransactionState()
		return state.FiatAmount.Equal(decimal.NewFromInt(3000))
	}, time.Second, 10*time.Millisecond)

	err = env.services.Transaction.SetFiatAmount(ctx, decimal.NewFromInt(1000))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		state := env.services.Transaction.TransactionState()
		return state.EthAmount.Equal(decimal.NewFromFloat(0.5))
	}, time.Second, 10*time.Millisecond)
}

func TestSendTransaction(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	stubGasInfo(env)
	env.explorer.On("BroadcastTransaction", mock.Anything).Return("0xdeadbeef", nil)

	addresses := openWalletWithAddresses(t, env, 1)
	from := addresses[0]

	_, err := env.services.Transaction.PrepareSend(ctx, from, testRecipient)
	require.NoError(t, err)
	err = env.services.Transaction.SetEthAmount(ctx, decimal.NewFromFloat(0.5))
	require.NoError(t, err)

	txHash, err := env.services.Transaction.SendTransaction(
		ctx, from, testRecipient, testPassword,
	)
	require.NoError(t, err)
	require.Equal(t, "0xdeadbeef", txHash)

	state := env.services.Transaction.TransactionState()
	require.Equal(t, application.SendConfirmed, state.Status)
	require.Equal(t, "0xdeadbeef", state.TxHash)

	// the submitted payload is a valid transfer signed by the sender
	rawTx, err := hex.DecodeString(env.explorer.broadcastedRawTx())
	require.NoError(t, err)
	tx := &types.Transaction{}
	require.NoError(t, tx.UnmarshalBinary(rawTx))
	require.Equal(t, uint64(0), tx.Nonce())
	require.Equal(t, uint64(21000), tx.Gas())
	require.Equal(t, common.HexToAddress(testRecipient), *tx.To())
	require.Equal(t, "500000000000000000", tx.Value().String())
	require.Equal(t, gweiToWei(20).BigInt(), tx.GasPrice())

	sender, err := types.Sender(types.NewEIP155Signer(big.NewInt(1)), tx)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(from), sender)

	// the persisted counter advanced exactly once
	keystore, err := env.repoManager.KeystoreRepository().GetCurrentKeystore(ctx)
	require.NoError(t, err)
	nonce, err := keystore.NonceOf(from)
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce)

	// a second transfer signs with the advanced counter
	_, err = env.services.Transaction.PrepareSend(ctx, from, testRecipient)
	require.NoError(t, err)
	_, err = env.services.Transaction.SendTransaction(
		ctx, from, testRecipient, testPassword,
	)
	require.NoError(t, err)

	rawTx, err = hex.DecodeString(env.explorer.broadcastedRawTx())
	require.NoError(t, err)
	require.NoError(t, tx.UnmarshalBinary(rawTx))
	require.Equal(t, uint64(1), tx.Nonce())
}

func TestSendTransactionWithoutPrepare(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	addresses := openWalletWithAddresses(t, env, 1)

	_, err := env.services.Transaction.SendTransaction(
		ctx, addresses[0], testRecipient, testPassword,
	)
	require.EqualError(t, err, application.ErrNoSendInProgress.Error())
	env.explorer.AssertNotCalled(t, "BroadcastTransaction", mock.Anything)
}

func TestSendTransactionRejectsOverlappingSend(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	stubGasInfo(env)
	env.explorer.On("BroadcastTransaction", mock.Anything).
		Run(func(mock.Arguments) { time.Sleep(300 * time.Millisecond) }).
		Return("0xdeadbeef", nil)

	addresses := openWalletWithAddresses(t, env, 1)
	from := addresses[0]

	_, err := env.services.Transaction.PrepareSend(ctx, from, testRecipient)
	require.NoError(t, err)

	firstDone := make(chan error, 1)
	go func() {
		_, err := env.services.Transaction.SendTransaction(
			ctx, from, testRecipient, testPassword,
		)
		firstDone <- err
	}()

	// wait until the first send is stalled in the broadcast
	require.Eventually(t, func() bool {
		return env.services.Transaction.TransactionState().Status ==
			application.SendSubmitting
	}, time.Second, 10*time.Millisecond)

	_, err = env.services.Transaction.SendTransaction(
		ctx, from, testRecipient, testPassword,
	)
	require.EqualError(t, err, application.ErrNoSendInProgress.Error())

	require.NoError(t, <-firstDone)

	// exactly one submission was signed, with the counter advanced once
	env.explorer.AssertNumberOfCalls(t, "BroadcastTransaction", 1)
	rawTx, err := hex.DecodeString(env.explorer.broadcastedRawTx())
	require.NoError(t, err)
	tx := &types.Transaction{}
	require.NoError(t, tx.UnmarshalBinary(rawTx))
	require.Equal(t, uint64(0), tx.Nonce())

	keystore, err := env.repoManager.KeystoreRepository().GetCurrentKeystore(ctx)
	require.NoError(t, err)
	nonce, err := keystore.NonceOf(from)
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce)
}

func TestSendTransactionWrongPassword(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	stubGasInfo(env)

	addresses := openWalletWithAddresses(t, env, 1)
	from := addresses[0]

	_, err := env.services.Transaction.PrepareSend(ctx, from, testRecipient)
	require.NoError(t, err)

	_, err = env.services.Transaction.SendTransaction(
		ctx, from, testRecipient, "wrongPassword",
	)
	require.EqualError(t, err, application.ErrIncorrectPassword.Error())

	state := env.services.Transaction.TransactionState()
	require.Equal(t, application.SendRejected, state.Status)
	env.explorer.AssertNotCalled(t, "BroadcastTransaction", mock.Anything)

	keystore, err := env.repoManager.KeystoreRepository().GetCurrentKeystore(ctx)
	require.NoError(t, err)
	nonce, err := keystore.NonceOf(from)
	require.NoError(t, err)
	require.Zero(t, nonce)
}

func TestSendTransactionBroadcastFailure(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	stubGasInfo(env)
	env.explorer.On("BroadcastTransaction", mock.Anything).
		Return("", errors.New("nonce too low"))

	addresses := openWalletWithAddresses(t, env, 1)
	from := addresses[0]

	_, err := env.services.Transaction.PrepareSend(ctx, from, testRecipient)
	require.NoError(t, err)

	_, err = env.services.Transaction.SendTransaction(
		ctx, from, testRecipient, testPassword,
	)
	require.EqualError(t, err, application.ErrTransactionFailed.Error())

	state := env.services.Transaction.TransactionState()
	require.Equal(t, application.SendRejected, state.Status)

	// a rejected submission never advances the counter
	keystore, err := env.repoManager.KeystoreRepository().GetCurrentKeystore(ctx)
	require.NoError(t, err)
	nonce, err := keystore.NonceOf(from)
	require.NoError(t, err)
	require.Zero(t, nonce)
}

func TestSendTransactionUnknownSender(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	stubGasInfo(env)

	addresses := openWalletWithAddresses(t, env, 1)

	_, err := env.services.Transaction.PrepareSend(ctx, addresses[0], testRecipient)
	require.NoError(t, err)

	_, err = env.services.Transaction.SendTransaction(
		ctx, testRecipient, testRecipient, testPassword,
	)
	require.EqualError(t, err, domain.ErrAddressNotFound.Error())
}

func TestTransactionHistory(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	history := []explorer.Transaction{
		{Hash: "0x01", From: "0xaa", To: "0xbb", Success: true},
		{Hash: "0x02", From: "0xbb", To: "0xaa", Success: false},
	}
	env.explorer.On("GetTransactions", "0xaa", mock.Anything).Return(history, nil)

	txs, err := env.services.Transaction.TransactionHistory(
		ctx, "0xaa", explorer.TxQueryOpts{},
	)
	require.NoError(t, err)
	require.Equal(t, history, txs)
}

func TestChainNonce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.explorer.On("GetTransactionCount", "0xaa").Return(uint64(7), nil)

	nonce, err := env.services.Transaction.ChainNonce(ctx, "0xaa")
	require.NoError(t, err)
	require.Equal(t, uint64(7), nonce)
}
