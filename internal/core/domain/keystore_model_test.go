package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/etherdeck-network/etherdeck-daemon/internal/core/domain"
)

var (
	addr1 = "0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2"
	addr2 = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
)

func TestNewKeystore(t *testing.T) {
	t.Parallel()

	keystore, err := domain.NewKeystore("serialized vault")
	require.NoError(t, err)
	require.Empty(t, keystore.Addresses)
	require.Empty(t, keystore.AliasByAddress)
	require.Empty(t, keystore.NonceByAddress)

	keystore, err = domain.NewKeystore("")
	require.Nil(t, keystore)
	require.EqualError(t, err, domain.ErrNullSerializedVault.Error())
}

func TestAddAddress(t *testing.T) {
	t.Parallel()

	keystore, err := domain.NewKeystore("serialized vault")
	require.NoError(t, err)

	require.NoError(t, keystore.AddAddress(addr1))
	require.NoError(t, keystore.AddAddress(addr2))
	require.Equal(t, []string{addr1, addr2}, keystore.Addresses)

	nonce, err := keystore.NonceOf(addr1)
	require.NoError(t, err)
	require.Zero(t, nonce)

	err = keystore.AddAddress(addr1)
	require.EqualError(t, err, domain.ErrAddressAlreadyDerived.Error())
}

func TestSetAlias(t *testing.T) {
	t.Parallel()

	keystore, err := domain.NewKeystore("serialized vault")
	require.NoError(t, err)
	require.NoError(t, keystore.AddAddress(addr1))

	require.NoError(t, keystore.SetAlias(addr1, "Savings"))
	require.Equal(t, "Savings", keystore.AliasByAddress[addr1])

	err = keystore.SetAlias(addr2, "Savings")
	require.EqualError(t, err, domain.ErrAddressNotFound.Error())
}

func TestRemoveAddress(t *testing.T) {
	t.Parallel()

	keystore, err := domain.NewKeystore("serialized vault")
	require.NoError(t, err)
	require.NoError(t, keystore.AddAddress(addr1))
	require.NoError(t, keystore.AddAddress(addr2))
	require.NoError(t, keystore.SetAlias(addr1, "Savings"))

	require.NoError(t, keystore.RemoveAddress(addr1))
	require.Equal(t, []string{addr2}, keystore.Addresses)
	require.NotContains(t, keystore.AliasByAddress, addr1)
	require.NotContains(t, keystore.NonceByAddress, addr1)

	err = keystore.RemoveAddress(addr1)
	require.EqualError(t, err, domain.ErrAddressNotFound.Error())
}

func TestIncrementNonce(t *testing.T) {
	t.Parallel()

	keystore, err := domain.NewKeystore("serialized vault")
	require.NoError(t, err)
	require.NoError(t, keystore.AddAddress(addr1))

	require.NoError(t, keystore.IncrementNonce(addr1))
	require.NoError(t, keystore.IncrementNonce(addr1))

	nonce, err := keystore.NonceOf(addr1)
	require.NoError(t, err)
	require.Equal(t, uint64(2), nonce)

	err = keystore.IncrementNonce(addr2)
	require.EqualError(t, err, domain.ErrAddressNotFound.Error())

	_, err = keystore.NonceOf(addr2)
	require.EqualError(t, err, domain.ErrAddressNotFound.Error())
}
