// Package chain names the blockchains the settlement engine can move funds on.
package chain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedChain is returned for identifiers that do not name a known chain
var ErrUnsupportedChain = errors.New("unsupported chain")

// Family groups chains that share an address format and transaction encoding
type Family string

const (
	FamilyEVM     Family = "evm"
	FamilyBitcoin Family = "bitcoin"
	FamilySolana  Family = "solana"
	FamilyTON     Family = "ton"
)

// Chain is the canonical chain identifier stored on wallets and operations
type Chain string

const (
	Ethereum  Chain = "ethereum"
	BSC       Chain = "bsc"
	Polygon   Chain = "polygon"
	Arbitrum  Chain = "arbitrum"
	Optimism  Chain = "optimism"
	Avalanche Chain = "avalanche"
	Bitcoin   Chain = "bitcoin"
	Solana    Chain = "solana"
	TON       Chain = "ton"
)

type chainInfo struct {
	family       Family
	chainID      int64
	nativeSymbol string
}

var registry = map[Chain]chainInfo{
	Ethereum:  {FamilyEVM, 1, "ETH"},
	BSC:       {FamilyEVM, 56, "BNB"},
	Polygon:   {FamilyEVM, 137, "MATIC"},
	Arbitrum:  {FamilyEVM, 42161, "ETH"},
	Optimism:  {FamilyEVM, 10, "ETH"},
	Avalanche: {FamilyEVM, 43114, "AVAX"},
	Bitcoin:   {FamilyBitcoin, 0, "BTC"},
	Solana:    {FamilySolana, 0, "SOL"},
	TON:       {FamilyTON, 0, "TON"},
}

var aliases = map[string]Chain{
	"eth":       Ethereum,
	"ethereum":  Ethereum,
	"bsc":       BSC,
	"bnb":       BSC,
	"binance":   BSC,
	"polygon":   Polygon,
	"matic":     Polygon,
	"arbitrum":  Arbitrum,
	"arb":       Arbitrum,
	"optimism":  Optimism,
	"op":        Optimism,
	"avalanche": Avalanche,
	"avax":      Avalanche,
	"bitcoin":   Bitcoin,
	"btc":       Bitcoin,
	"solana":    Solana,
	"sol":       Solana,
	"ton":       TON,
}

// Normalize maps a user supplied chain name or alias to its canonical Chain
func Normalize(name string) (Chain, error) {
	c, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedChain, name)
	}
	return c, nil
}

// Family returns the chain family, or an empty Family for unknown chains
func (c Chain) Family() Family {
	return registry[c].family
}

// IsEVM reports whether the chain uses Ethereum transactions and addresses
func (c Chain) IsEVM() bool {
	return c.Family() == FamilyEVM
}

// DefaultChainID returns the EIP-155 chain id of an EVM chain, zero otherwise
func (c Chain) DefaultChainID() int64 {
	return registry[c].chainID
}

// NativeSymbol returns the ticker of the chain's gas asset
func (c Chain) NativeSymbol() string {
	return registry[c].nativeSymbol
}

// Valid reports whether c is a known canonical chain
func (c Chain) Valid() bool {
	_, ok := registry[c]
	return ok
}

func (c Chain) String() string {
	return string(c)
}

// All returns every supported chain
func All() []Chain {
	return []Chain{Ethereum, BSC, Polygon, Arbitrum, Optimism, Avalanche, Bitcoin, Solana, TON}
}
