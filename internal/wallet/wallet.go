// Package wallet stands in for a browser wallet provider: it yields the
// connected address either from a private key or from a bare address.
package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrInvalidKey     = errors.New("invalid private key")
	ErrInvalidAddress = errors.New("invalid wallet address")
)

// Account is a connected wallet.
type Account struct {
	address common.Address
	key     *ecdsa.PrivateKey
}

// FromPrivateKey derives the account from a hex-encoded secp256k1 key,
// with or without the 0x prefix.
func FromPrivateKey(hexKey string) (*Account, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return &Account{address: crypto.PubkeyToAddress(key.PublicKey), key: key}, nil
}

// FromAddress wraps a watch-only address.
func FromAddress(addr string) (*Account, error) {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return &Account{address: common.HexToAddress(addr)}, nil
}

// Generate creates a fresh random account.
func Generate() (*Account, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &Account{address: crypto.PubkeyToAddress(key.PublicKey), key: key}, nil
}

// Address returns the EIP-55 checksummed address.
func (a *Account) Address() string {
	return a.address.Hex()
}

// CanSign reports whether the account holds a private key.
func (a *Account) CanSign() bool {
	return a.key != nil
}

// PrivateKeyHex returns the 0x-prefixed private key, or "" for watch-only accounts.
func (a *Account) PrivateKeyHex() string {
	if a.key == nil {
		return ""
	}
	return "0x" + common.Bytes2Hex(crypto.FromECDSA(a.key))
}
