// Package address validates wallet addresses per chain family without network calls.
package address

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/chainsafe/wallet-settlement/pkg/chain"
)

// ErrInvalidAddress is returned when an address does not match its chain's format
var ErrInvalidAddress = errors.New("invalid address")

const (
	bitcoinMinLen = 26
	bitcoinMaxLen = 62
	solanaMinLen  = 32
	solanaMaxLen  = 44
)

var (
	evmPattern    = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	tonPattern    = regexp.MustCompile(`^0:[0-9a-fA-F]{64}$`)
	base58Pattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]+$`)
)

// Validate checks that addr is well formed for chain c
func Validate(c chain.Chain, addr string) error {
	switch c.Family() {
	case chain.FamilyEVM:
		return validateEVM(addr)
	case chain.FamilyBitcoin:
		return validateBitcoin(addr)
	case chain.FamilySolana:
		return validateSolana(addr)
	case chain.FamilyTON:
		return validateTON(addr)
	default:
		return fmt.Errorf("%w: %q", chain.ErrUnsupportedChain, c)
	}
}

// Equal compares two addresses of chain c. EVM addresses compare case-insensitively.
func Equal(c chain.Chain, a, b string) bool {
	if c.IsEVM() {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidAddress, fmt.Sprintf(format, args...))
}

// validateEVM accepts 0x-prefixed 20-byte hex in any letter case. No EIP-55
// checksum is enforced; signer recovery compares case-insensitively.
func validateEVM(addr string) error {
	if !evmPattern.MatchString(addr) {
		return invalid("expected 0x followed by 40 hex characters")
	}
	return nil
}

// validateBitcoin checks prefix and length only. Legacy and bech32 checksums
// are left to the wallet that signs the transaction.
func validateBitcoin(addr string) error {
	if !strings.HasPrefix(addr, "bc1") && !strings.HasPrefix(addr, "1") && !strings.HasPrefix(addr, "3") {
		return invalid("bitcoin address must start with bc1, 1 or 3")
	}
	if len(addr) < bitcoinMinLen || len(addr) > bitcoinMaxLen {
		return invalid("bitcoin address length must be between %d and %d", bitcoinMinLen, bitcoinMaxLen)
	}
	return nil
}

func validateSolana(addr string) error {
	if len(addr) < solanaMinLen || len(addr) > solanaMaxLen {
		return invalid("solana address length must be between %d and %d", solanaMinLen, solanaMaxLen)
	}
	if !base58Pattern.MatchString(addr) {
		return invalid("solana address must be base58")
	}
	return nil
}

func validateTON(addr string) error {
	if !tonPattern.MatchString(addr) {
		return invalid("expected 0: followed by 64 hex characters")
	}
	return nil
}
