// Package collection serves the read-only NFT collection metadata the
// storefront renders next to the claim action.
package collection

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
)

const (
	ipfsScheme  = "ipfs://"
	ipfsGateway = "https://ipfs.io/ipfs/"

	DefaultChain = "sepolia"
)

// explorers maps a chain name to its block explorer base URL.
var explorers = map[string]string{
	"ethereum": "https://etherscan.io",
	"mainnet":  "https://etherscan.io",
	"sepolia":  "https://sepolia.etherscan.io",
	"holesky":  "https://holesky.etherscan.io",
	"polygon":  "https://polygonscan.com",
	"base":     "https://basescan.org",
	"arbitrum": "https://arbiscan.io",
	"optimism": "https://optimistic.etherscan.io",
}

// Config is the static collection description, normally loaded from env.
type Config struct {
	ContractAddress string
	Name            string
	Description     string
	Image           string
	Chain           string
	MaxSupply       uint64
	ClaimPriceWei   string
	RoyaltyBps      uint32
}

// Info is the API view of the collection.
type Info struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Image           string `json:"image,omitempty"`
	ContractAddress string `json:"contractAddress,omitempty"`
	Chain           string `json:"chain"`
	ExplorerURL     string `json:"explorerUrl,omitempty"`
	MaxSupply       uint64 `json:"maxSupply,omitempty"`
	ClaimPriceWei   string `json:"claimPriceWei"`
	ClaimPrice      string `json:"claimPrice"`
	RoyaltyPercent  string `json:"royaltyPercent,omitempty"`
}

// Build validates cfg and derives the display fields. The contract address
// is normalized to its EIP-55 checksum form.
func Build(cfg Config) (*Info, error) {
	chain := strings.ToLower(strings.TrimSpace(cfg.Chain))
	if chain == "" {
		chain = DefaultChain
	}

	info := &Info{
		Name:        strings.TrimSpace(cfg.Name),
		Description: strings.TrimSpace(cfg.Description),
		Image:       ResolveImage(cfg.Image),
		Chain:       chain,
		MaxSupply:   cfg.MaxSupply,
	}

	if addr := strings.TrimSpace(cfg.ContractAddress); addr != "" {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid contract address %q", addr)
		}
		info.ContractAddress = common.HexToAddress(addr).Hex()
		info.ExplorerURL = ExplorerURL(chain, info.ContractAddress)
	}

	wei := big.NewInt(0)
	if raw := strings.TrimSpace(cfg.ClaimPriceWei); raw != "" {
		if _, ok := wei.SetString(raw, 10); !ok || wei.Sign() < 0 {
			return nil, fmt.Errorf("invalid claim price %q: want a non-negative integer in wei", raw)
		}
	}
	info.ClaimPriceWei = wei.String()
	info.ClaimPrice = FormatEther(wei) + " ETH"

	if cfg.RoyaltyBps > 10_000 {
		return nil, fmt.Errorf("royalty %d bps exceeds 100%%", cfg.RoyaltyBps)
	}
	if cfg.RoyaltyBps > 0 {
		info.RoyaltyPercent = new(big.Rat).SetFrac64(int64(cfg.RoyaltyBps), 100).FloatString(2)
		info.RoyaltyPercent = trimDecimal(info.RoyaltyPercent) + "%"
	}
	return info, nil
}

// ResolveImage rewrites ipfs:// URIs to the public HTTP gateway.
func ResolveImage(uri string) string {
	uri = strings.TrimSpace(uri)
	if strings.HasPrefix(uri, ipfsScheme) {
		return ipfsGateway + strings.TrimPrefix(uri, ipfsScheme)
	}
	return uri
}

// ExplorerURL links to the token page for address, or "" for unknown chains.
func ExplorerURL(chain, address string) string {
	base, ok := explorers[strings.ToLower(chain)]
	if !ok || address == "" {
		return ""
	}
	return base + "/token/" + address
}

// FormatEther renders a wei amount in ether without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	r := new(big.Rat).SetFrac(wei, big.NewInt(params.Ether))
	return trimDecimal(r.FloatString(18))
}

func trimDecimal(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
