package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known development key (hardhat account #0).
const (
	devKey     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestFromPrivateKey(t *testing.T) {
	acct, err := FromPrivateKey(devKey)
	require.NoError(t, err)
	assert.Equal(t, devAddress, acct.Address())
	assert.True(t, acct.CanSign())
	assert.Equal(t, devKey, acct.PrivateKeyHex())

	noPrefix, err := FromPrivateKey(devKey[2:])
	require.NoError(t, err)
	assert.Equal(t, devAddress, noPrefix.Address())
}

func TestFromPrivateKeyRejectsGarbage(t *testing.T) {
	_, err := FromPrivateKey("0x1234")
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestFromAddressChecksums(t *testing.T) {
	acct, err := FromAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	require.NoError(t, err)
	assert.Equal(t, devAddress, acct.Address())
	assert.False(t, acct.CanSign())
	assert.Empty(t, acct.PrivateKeyHex())

	_, err = FromAddress("not-an-address")
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	assert.NotEqual(t, a.Address(), b.Address())

	again, err := FromPrivateKey(a.PrivateKeyHex())
	require.NoError(t, err)
	assert.Equal(t, a.Address(), again.Address())
}
