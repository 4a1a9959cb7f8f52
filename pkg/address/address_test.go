package address

import (
	"bytes"
	"crypto/rand"
	"errors"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/chainsafe/wallet-settlement/pkg/chain"
)

func mustBitcoinAddresses(t *testing.T) []string {
	t.Helper()

	hash := bytes.Repeat([]byte{0x42}, 20)
	p2pkh, err := btcutil.NewAddressPubKeyHash(hash, &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("p2pkh: %v", err)
	}
	p2sh, err := btcutil.NewAddressScriptHashFromHash(hash, &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("p2sh: %v", err)
	}
	p2wpkh, err := btcutil.NewAddressWitnessPubKeyHash(hash, &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("p2wpkh: %v", err)
	}
	return []string{p2pkh.EncodeAddress(), p2sh.EncodeAddress(), p2wpkh.EncodeAddress()}
}

func randomSolanaAddress(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return base58.Encode(key)
}

func TestValidate_Accepts(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	checksummed := crypto.PubkeyToAddress(key.PublicKey).Hex()

	valid := map[chain.Chain][]string{
		chain.Ethereum: {checksummed, strings.ToLower(checksummed), "0x" + strings.ToUpper(checksummed[2:])},
		chain.Polygon:  {"0x0000000000000000000000000000000000000000"},
		chain.Bitcoin:  mustBitcoinAddresses(t),
		chain.Solana:   {randomSolanaAddress(t), "11111111111111111111111111111111"},
		chain.TON:      {"0:" + strings.Repeat("ab", 32)},
	}

	for c, addrs := range valid {
		for _, addr := range addrs {
			if err := Validate(c, addr); err != nil {
				t.Fatalf("Validate(%s, %q) failed: %v", c, addr, err)
			}
			// an accepted address must re-validate identically
			if err := Validate(c, addr); err != nil {
				t.Fatalf("re-validation of %q failed: %v", addr, err)
			}
		}
	}
}

// Validation is format-only: strings that fit a chain's shape pass even when
// their checksum or key length would not.
func TestValidate_FormatOnly(t *testing.T) {
	valid := map[chain.Chain][]string{
		chain.Ethereum: {"0xAbCdEf0123456789aBcDeF0123456789AbCdEf01"},
		chain.Bitcoin: {
			"3" + strings.Repeat("A", 33),
			"1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNb",
			"bc1" + strings.Repeat("q", 23),
		},
		chain.Solana: {
			"1" + strings.Repeat("2", 34),
			strings.Repeat("z", 44),
			strings.Repeat("2", 32),
		},
	}
	for c, addrs := range valid {
		for _, addr := range addrs {
			if err := Validate(c, addr); err != nil {
				t.Fatalf("Validate(%s, %q) failed: %v", c, addr, err)
			}
		}
	}
}

func TestValidate_Rejects(t *testing.T) {
	invalid := map[chain.Chain][]string{
		chain.Ethereum: {
			"",
			"0x123",
			"742d35Cc6634C0532925a3b844Bc9e7595f0bEb0",
			"0x742d35Cc6634C0532925a3b844Bc9e7595f0bEbZ",
			"0x742d35cc6634c0532925a3b844bc9e7595f0beb0ff",
		},
		chain.Bitcoin: {
			"",
			"2NBFNJTktNa7GZusGbDbGKRZTxdK9VVez3n",
			"1short",
			"bc1" + strings.Repeat("q", 70),
			"3" + strings.Repeat("A", 24),
			"tb1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq",
		},
		chain.Solana: {
			"",
			"0OIl" + strings.Repeat("1", 40),
			strings.Repeat("2", 31),
			strings.Repeat("z", 45),
		},
		chain.TON: {
			"",
			"0:" + strings.Repeat("ab", 31),
			"-1:" + strings.Repeat("ab", 32),
			"EQ" + strings.Repeat("A", 46),
		},
	}
	for c, addrs := range invalid {
		for _, addr := range addrs {
			err := Validate(c, addr)
			if !errors.Is(err, ErrInvalidAddress) {
				t.Fatalf("Validate(%s, %q) = %v, want ErrInvalidAddress", c, addr, err)
			}
		}
	}
}

func TestValidate_UnsupportedChain(t *testing.T) {
	if err := Validate(chain.Chain("near"), "alice.near"); !errors.Is(err, chain.ErrUnsupportedChain) {
		t.Fatalf("expected ErrUnsupportedChain, got %v", err)
	}
}

func TestEqual(t *testing.T) {
	if !Equal(chain.Ethereum, "0xABCdef0000000000000000000000000000000000", "0xabcdef0000000000000000000000000000000000") {
		t.Fatal("EVM addresses must compare case-insensitively")
	}
	if Equal(chain.Solana, "AbC", "abc") {
		t.Fatal("solana addresses are case sensitive")
	}
}
