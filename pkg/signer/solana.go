package signer

import (
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcutil/base58"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// parseSolanaEncoded accepts base58 (wallet adapters) or base64 (RPC) encodings.
// Padding and the characters 0, O, I, l only exist in base64, so any string the
// base58 decoder rejects is read as base64.
func parseSolanaEncoded(raw string) (*Envelope, error) {
	if b := base58.Decode(raw); len(b) > 0 {
		return parseSolana(b)
	}
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(b) == 0 {
		return nil, fmt.Errorf("%w: payload is neither base58 nor base64", ErrMalformedTransaction)
	}
	return parseSolana(b)
}

// parseSolana decodes a legacy or v0 transaction and returns its fee payer.
// Signatures are checked for presence only.
func parseSolana(raw []byte) (*Envelope, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
	}

	numSigs := len(tx.Signatures)
	if numSigs == 0 {
		return nil, fmt.Errorf("%w: no signatures", ErrInvalidSignature)
	}
	for i, sig := range tx.Signatures {
		if sig == (solana.Signature{}) {
			return nil, fmt.Errorf("%w: signature %d is empty", ErrInvalidSignature, i)
		}
	}
	if required := int(tx.Message.Header.NumRequiredSignatures); required != numSigs {
		return nil, fmt.Errorf("%w: header requires %d signatures, found %d", ErrInvalidSignature, required, numSigs)
	}
	if len(tx.Message.AccountKeys) < numSigs {
		return nil, fmt.Errorf("%w: %d account keys for %d signers", ErrMalformedTransaction, len(tx.Message.AccountKeys), numSigs)
	}

	return &Envelope{
		From:   tx.Message.AccountKeys[0].String(),
		Value:  new(big.Int),
		TxHash: tx.Signatures[0].String(),
	}, nil
}
