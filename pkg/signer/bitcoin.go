package signer

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// minBitcoinTxLen is the smallest serialized transaction that can hold one
// input, one output and signature material.
const minBitcoinTxLen = 60

// parseBitcoin deserializes a signed transaction and checks every input carries
// a non-zero scriptSig or witness. Signatures are not verified.
func parseBitcoin(raw []byte) (*Envelope, error) {
	if len(raw) < minBitcoinTxLen {
		return nil, fmt.Errorf("%w: %d bytes is below the minimum transaction size", ErrMalformedTransaction, len(raw))
	}

	var tx wire.MsgTx
	r := bytes.NewReader(raw)
	if err := tx.Deserialize(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedTransaction, r.Len())
	}
	if len(tx.TxIn) == 0 || len(tx.TxOut) == 0 {
		return nil, fmt.Errorf("%w: transaction needs inputs and outputs", ErrMalformedTransaction)
	}

	for i, in := range tx.TxIn {
		if !inputSigned(in) {
			return nil, fmt.Errorf("%w: input %d has no signature material", ErrInvalidSignature, i)
		}
	}

	first := tx.TxOut[0]
	env := &Envelope{
		Value:  big.NewInt(first.Value),
		TxHash: tx.TxHash().String(),
	}
	if _, addrs, _, err := txscript.ExtractPkScriptAddrs(first.PkScript, &chaincfg.MainNetParams); err == nil && len(addrs) > 0 {
		env.To = addrs[0].EncodeAddress()
	}
	return env, nil
}

func inputSigned(in *wire.TxIn) bool {
	if len(in.SignatureScript) > 0 && !allZero(in.SignatureScript) {
		return true
	}
	for _, item := range in.Witness {
		if len(item) > 0 && !allZero(item) {
			return true
		}
	}
	return false
}
