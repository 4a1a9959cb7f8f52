package signer

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/chainsafe/wallet-settlement/pkg/chain"
)

// eip155Fixture is the signed example transaction from EIP-155
// (nonce 9, 20 gwei, 21000 gas, 1 ether to 0x3535..35, chain id 1).
const (
	eip155Fixture = "0xf86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a76400008025a028ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276a067cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83"
	eip155Key     = "4646464646464646464646464646464646464646464646464646464646464646"
)

func fixtureSigner(t *testing.T) common.Address {
	t.Helper()
	key, err := crypto.HexToECDSA(eip155Key)
	if err != nil {
		t.Fatalf("HexToECDSA: %v", err)
	}
	return crypto.PubkeyToAddress(key.PublicKey)
}

func signLegacy(t *testing.T, key *ecdsa.PrivateKey, chainID int64, data []byte) string {
	t.Helper()
	to := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tx := types.NewTransaction(3, to, big.NewInt(1_000), 21000, big.NewInt(1_000_000_000), data)
	signed, err := types.SignTx(tx, types.NewEIP155Signer(big.NewInt(chainID)), key)
	if err != nil {
		t.Fatalf("SignTx: %v", err)
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	return "0x" + hex.EncodeToString(raw)
}

func TestParseEVM_EIP155Fixture(t *testing.T) {
	p := NewParser(nil)

	env, err := p.Parse(chain.Ethereum, eip155Fixture)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if want := fixtureSigner(t).Hex(); env.From != want {
		t.Fatalf("recovered %s, want %s", env.From, want)
	}
	if env.To != common.HexToAddress("0x3535353535353535353535353535353535353535").Hex() {
		t.Fatalf("unexpected to %s", env.To)
	}
	if env.Nonce != 9 {
		t.Fatalf("unexpected nonce %d", env.Nonce)
	}
	if env.Value.String() != "1000000000000000000" {
		t.Fatalf("unexpected value %s", env.Value)
	}
	if env.ChainID.Int64() != 1 {
		t.Fatalf("unexpected chain id %s", env.ChainID)
	}

	raw, _ := hex.DecodeString(strings.TrimPrefix(eip155Fixture, "0x"))
	if env.TxHash != crypto.Keccak256Hash(raw).Hex() {
		t.Fatalf("unexpected tx hash %s", env.TxHash)
	}
}

func TestParseEVM_MatchesGoEthereumSender(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	raw := signLegacy(t, key, 137, []byte{0xa9, 0x05, 0x9c, 0xbb})

	env, err := NewParser(nil).Parse(chain.Polygon, raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if env.From != crypto.PubkeyToAddress(key.PublicKey).Hex() {
		t.Fatalf("recovered %s, want %s", env.From, crypto.PubkeyToAddress(key.PublicKey).Hex())
	}
	if !env.HasCallData {
		t.Fatal("expected calldata flag")
	}
}

func TestParseEVM_BitFlipNeverRecoversOriginal(t *testing.T) {
	original := fixtureSigner(t).Hex()
	raw, _ := hex.DecodeString(strings.TrimPrefix(eip155Fixture, "0x"))

	var tx legacyTx
	if err := rlp.DecodeBytes(raw, &tx); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}

	p := NewParser(nil)
	for _, field := range []string{"r", "s"} {
		for bit := 0; bit < 256; bit++ {
			mutated := tx
			if field == "r" {
				mutated.R = new(big.Int).Xor(tx.R, new(big.Int).Lsh(big.NewInt(1), uint(bit)))
			} else {
				mutated.S = new(big.Int).Xor(tx.S, new(big.Int).Lsh(big.NewInt(1), uint(bit)))
			}
			encoded, err := rlp.EncodeToBytes(&mutated)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}

			env, err := p.Parse(chain.Ethereum, hex.EncodeToString(encoded))
			if err == nil && env.From == original {
				t.Fatalf("flipping %s bit %d still recovered the original signer", field, bit)
			}
		}
	}
}

func TestParseEVM_TypedTransaction(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	to := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(42161),
		Nonce:     7,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(100),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(5),
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(42161)), key)
	if err != nil {
		t.Fatalf("SignTx: %v", err)
	}
	raw, _ := signed.MarshalBinary()

	env, err := NewParser(nil).Parse(chain.Arbitrum, hex.EncodeToString(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if env.From != crypto.PubkeyToAddress(key.PublicKey).Hex() {
		t.Fatalf("unexpected signer %s", env.From)
	}
	if env.TxHash != signed.Hash().Hex() {
		t.Fatalf("unexpected hash %s", env.TxHash)
	}
	if env.Nonce != 7 || env.To != to.Hex() {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestParseEVM_Rejections(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	homestead, err := types.SignTx(
		types.NewTransaction(0, common.Address{}, big.NewInt(1), 21000, big.NewInt(1), nil),
		types.HomesteadSigner{}, key,
	)
	if err != nil {
		t.Fatalf("SignTx: %v", err)
	}
	homesteadRaw, _ := homestead.MarshalBinary()

	cases := []struct {
		name  string
		chain chain.Chain
		raw   string
		want  error
	}{
		{"invalid hex", chain.Ethereum, "0xzz", ErrMalformedTransaction},
		{"empty", chain.Ethereum, "", ErrMalformedTransaction},
		{"empty list", chain.Ethereum, "0xc0", ErrMalformedTransaction},
		{"rlp string", chain.Ethereum, "0x83010203", ErrMalformedTransaction},
		{"trailing bytes", chain.Ethereum, eip155Fixture + "00", ErrMalformedTransaction},
		{"pre-eip155", chain.Ethereum, hex.EncodeToString(homesteadRaw), ErrUnprotectedTransaction},
		{"wrong chain", chain.Polygon, eip155Fixture, ErrChainIDMismatch},
		{"unsupported", chain.Chain("near"), eip155Fixture, chain.ErrUnsupportedChain},
	}

	p := NewParser(nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Parse(tc.chain, tc.raw)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParser_ConfiguredChainID(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	// a local devnet posing as ethereum
	raw := signLegacy(t, key, 31337, nil)

	if _, err := NewParser(nil).Parse(chain.Ethereum, raw); !errors.Is(err, ErrChainIDMismatch) {
		t.Fatalf("expected chain id mismatch, got %v", err)
	}
	if _, err := NewParser(map[chain.Chain]int64{chain.Ethereum: 31337}).Parse(chain.Ethereum, raw); err != nil {
		t.Fatalf("expected configured chain id to be accepted: %v", err)
	}
}

func TestParseAndVerify_SignerMismatch(t *testing.T) {
	p := NewParser(nil)
	signer := fixtureSigner(t)

	if _, err := p.ParseAndVerify(chain.Ethereum, eip155Fixture, strings.ToLower(signer.Hex())); err != nil {
		t.Fatalf("expected lower-case claim to match: %v", err)
	}

	_, err := p.ParseAndVerify(chain.Ethereum, eip155Fixture, "0x000000000000000000000000000000000000dEaD")
	if !errors.Is(err, ErrSignerMismatch) {
		t.Fatalf("expected ErrSignerMismatch, got %v", err)
	}
}

func bitcoinTx(t *testing.T, sigScript []byte) (string, string) {
	t.Helper()

	addr, err := btcutil.NewAddressPubKeyHash(bytes.Repeat([]byte{0x11}, 20), &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("address: %v", err)
	}
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		t.Fatalf("PayToAddrScript: %v", err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 1}, sigScript, nil))
	tx.AddTxOut(wire.NewTxOut(50_000, pkScript))

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	return hex.EncodeToString(buf.Bytes()), addr.EncodeAddress()
}

func TestParseBitcoin(t *testing.T) {
	raw, to := bitcoinTx(t, bytes.Repeat([]byte{0x30}, 72))

	env, err := NewParser(nil).ParseAndVerify(chain.Bitcoin, raw, "bc1qany")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if env.To != to {
		t.Fatalf("unexpected destination %s, want %s", env.To, to)
	}
	if env.Value.Int64() != 50_000 {
		t.Fatalf("unexpected value %s", env.Value)
	}
	if len(env.TxHash) != 64 {
		t.Fatalf("unexpected tx hash %q", env.TxHash)
	}

	unsigned, _ := bitcoinTx(t, nil)
	if _, err := NewParser(nil).Parse(chain.Bitcoin, unsigned); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for unsigned input, got %v", err)
	}

	zeroed, _ := bitcoinTx(t, make([]byte, 72))
	if _, err := NewParser(nil).Parse(chain.Bitcoin, zeroed); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for zeroed script, got %v", err)
	}

	if _, err := NewParser(nil).Parse(chain.Bitcoin, "0100"); !errors.Is(err, ErrMalformedTransaction) {
		t.Fatalf("expected ErrMalformedTransaction, got %v", err)
	}
}

func solanaTx(sig []byte, payer []byte) []byte {
	var b bytes.Buffer
	b.WriteByte(1)
	b.Write(sig)
	b.Write([]byte{1, 0, 1})
	b.WriteByte(2)
	b.Write(payer)
	b.Write(bytes.Repeat([]byte{0x09}, 32))
	b.Write(bytes.Repeat([]byte{0x07}, 32))
	b.WriteByte(0)
	return b.Bytes()
}

func TestParseSolana(t *testing.T) {
	sig := bytes.Repeat([]byte{0x5a}, 64)
	payer := bytes.Repeat([]byte{0x21}, 32)
	raw := solanaTx(sig, payer)

	for name, encoded := range map[string]string{
		"base58": base58.Encode(raw),
		"base64": base64.StdEncoding.EncodeToString(raw),
	} {
		t.Run(name, func(t *testing.T) {
			env, err := NewParser(nil).ParseAndVerify(chain.Solana, encoded, base58.Encode(payer))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if env.TxHash != base58.Encode(sig) {
				t.Fatalf("unexpected tx hash %s", env.TxHash)
			}
		})
	}

	_, err := NewParser(nil).ParseAndVerify(chain.Solana, base58.Encode(raw), base58.Encode(bytes.Repeat([]byte{0x22}, 32)))
	if !errors.Is(err, ErrSignerMismatch) {
		t.Fatalf("expected ErrSignerMismatch, got %v", err)
	}

	zeroSig := solanaTx(make([]byte, 64), payer)
	if _, err := NewParser(nil).Parse(chain.Solana, base58.Encode(zeroSig)); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	if _, err := NewParser(nil).Parse(chain.Solana, base58.Encode(raw[:100])); !errors.Is(err, ErrMalformedTransaction) {
		t.Fatalf("expected ErrMalformedTransaction, got %v", err)
	}
}

func TestParseSolana_VersionedMessage(t *testing.T) {
	sig := bytes.Repeat([]byte{0x5b}, 64)
	payer := bytes.Repeat([]byte{0x31}, 32)

	var b bytes.Buffer
	b.WriteByte(1)
	b.Write(sig)
	b.WriteByte(0x80) // v0 prefix
	b.Write([]byte{1, 0, 1})
	b.WriteByte(2)
	b.Write(payer)
	b.Write(bytes.Repeat([]byte{0x09}, 32))
	b.Write(bytes.Repeat([]byte{0x07}, 32))
	b.WriteByte(0) // instructions
	b.WriteByte(0) // address table lookups

	env, err := NewParser(nil).ParseAndVerify(chain.Solana, base58.Encode(b.Bytes()), base58.Encode(payer))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if env.From != base58.Encode(payer) || env.TxHash != base58.Encode(sig) {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestParseSolana_HeaderSignatureMismatch(t *testing.T) {
	raw := solanaTx(bytes.Repeat([]byte{0x5a}, 64), bytes.Repeat([]byte{0x21}, 32))
	raw[1+64] = 2 // header claims two signers, one signature present

	_, err := NewParser(nil).Parse(chain.Solana, base58.Encode(raw))
	if !errors.Is(err, ErrInvalidSignature) && !errors.Is(err, ErrMalformedTransaction) {
		t.Fatalf("expected the transaction to be rejected, got %v", err)
	}
}
