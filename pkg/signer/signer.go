// Package signer decodes client-signed transactions and recovers who signed them.
//
// EVM transactions are verified cryptographically. Bitcoin and Solana
// transactions only get structural checks: the envelope must deserialize and
// carry non-zero signature material, but signatures are not verified.
package signer

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/chainsafe/wallet-settlement/pkg/address"
	"github.com/chainsafe/wallet-settlement/pkg/chain"
)

var (
	ErrMalformedTransaction   = errors.New("malformed signed transaction")
	ErrInvalidSignature       = errors.New("invalid transaction signature")
	ErrUnprotectedTransaction = errors.New("transaction is not replay protected (pre-EIP-155)")
	ErrChainIDMismatch        = errors.New("transaction chain id does not match requested chain")
	ErrSignerMismatch         = errors.New("transaction signer does not match claimed address")
)

// Envelope is the transient view of a signed transaction. It never holds key material.
type Envelope struct {
	Chain   chain.Chain
	From    string
	To      string
	Value   *big.Int
	Nonce   uint64
	TxHash  string
	ChainID *big.Int
	// HasCallData is true when an EVM transaction carries calldata (contract call)
	HasCallData bool
}

// Parser decodes signed transactions for every supported chain family
type Parser struct {
	chainIDs map[chain.Chain]int64
}

// NewParser creates a Parser. chainIDs overrides the default EIP-155 chain id
// per chain; chains missing from the map use chain.DefaultChainID.
func NewParser(chainIDs map[chain.Chain]int64) *Parser {
	ids := make(map[chain.Chain]int64, len(chainIDs))
	for c, id := range chainIDs {
		ids[c] = id
	}
	return &Parser{chainIDs: ids}
}

func (p *Parser) expectedChainID(c chain.Chain) int64 {
	if id, ok := p.chainIDs[c]; ok && id != 0 {
		return id
	}
	return c.DefaultChainID()
}

// Parse decodes raw for chain c and recovers its signer where the family allows it
func (p *Parser) Parse(c chain.Chain, raw string) (*Envelope, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedTransaction)
	}

	switch c.Family() {
	case chain.FamilyEVM:
		b, err := decodeHex(raw)
		if err != nil {
			return nil, err
		}
		env, err := parseEVM(b, p.expectedChainID(c))
		if err != nil {
			return nil, err
		}
		env.Chain = c
		return env, nil
	case chain.FamilyBitcoin:
		b, err := decodeHex(raw)
		if err != nil {
			return nil, err
		}
		env, err := parseBitcoin(b)
		if err != nil {
			return nil, err
		}
		env.Chain = c
		return env, nil
	case chain.FamilySolana:
		env, err := parseSolanaEncoded(raw)
		if err != nil {
			return nil, err
		}
		env.Chain = c
		return env, nil
	default:
		return nil, fmt.Errorf("%w: %q", chain.ErrUnsupportedChain, c)
	}
}

// ParseAndVerify parses raw and checks that the recovered signer equals expectedFrom.
// Bitcoin transactions do not expose a signer and skip the comparison.
func (p *Parser) ParseAndVerify(c chain.Chain, raw, expectedFrom string) (*Envelope, error) {
	env, err := p.Parse(c, raw)
	if err != nil {
		return nil, err
	}
	if env.From == "" {
		return env, nil
	}
	if !address.Equal(c, env.From, expectedFrom) {
		return nil, fmt.Errorf("%w: recovered %s, claimed %s", ErrSignerMismatch, env.From, expectedFrom)
	}
	return env, nil
}

func decodeHex(raw string) ([]byte, error) {
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex: %v", ErrMalformedTransaction, err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedTransaction)
	}
	return b, nil
}

func allZero(b []byte) bool {
	for _, x := range b {
		if x != 0 {
			return false
		}
	}
	return true
}
