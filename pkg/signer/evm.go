package signer

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// legacyTx is the 9-field RLP list of a legacy or EIP-155 transaction
type legacyTx struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       *common.Address `rlp:"nil"`
	Value    *big.Int
	Data     []byte
	V        *big.Int
	R        *big.Int
	S        *big.Int
}

var (
	big35 = big.NewInt(35)
	big2  = big.NewInt(2)
)

// parseEVM dispatches on the envelope: typed transactions start with a byte <= 0x7f,
// legacy transactions are an RLP list (>= 0xc0).
func parseEVM(raw []byte, expectedChainID int64) (*Envelope, error) {
	if raw[0] <= 0x7f {
		return parseTypedEVM(raw, expectedChainID)
	}
	return parseLegacyEVM(raw, expectedChainID)
}

func parseLegacyEVM(raw []byte, expectedChainID int64) (*Envelope, error) {
	var tx legacyTx
	if err := rlp.DecodeBytes(raw, &tx); err != nil {
		return nil, fmt.Errorf("%w: rlp: %v", ErrMalformedTransaction, err)
	}
	if tx.V == nil || tx.R == nil || tx.S == nil || tx.GasPrice == nil || tx.Value == nil {
		return nil, fmt.Errorf("%w: missing fields", ErrMalformedTransaction)
	}

	if tx.V.IsUint64() && (tx.V.Uint64() == 27 || tx.V.Uint64() == 28) {
		return nil, ErrUnprotectedTransaction
	}
	if tx.V.Cmp(big35) < 0 {
		return nil, fmt.Errorf("%w: v=%s", ErrInvalidSignature, tx.V)
	}

	// v = chain_id*2 + 35 + recovery_id
	offset := new(big.Int).Sub(tx.V, big35)
	chainID, recID := new(big.Int).QuoRem(offset, big2, new(big.Int))
	if expectedChainID != 0 && chainID.Cmp(big.NewInt(expectedChainID)) != 0 {
		return nil, fmt.Errorf("%w: got %s, want %d", ErrChainIDMismatch, chainID, expectedChainID)
	}

	v := byte(recID.Uint64())
	if !crypto.ValidateSignatureValues(v, tx.R, tx.S, true) {
		return nil, fmt.Errorf("%w: r/s out of range", ErrInvalidSignature)
	}

	unsigned, err := rlp.EncodeToBytes([]any{
		tx.Nonce,
		tx.GasPrice,
		tx.Gas,
		tx.To,
		tx.Value,
		tx.Data,
		chainID,
		uint(0),
		uint(0),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: re-encode: %v", ErrMalformedTransaction, err)
	}
	digest := crypto.Keccak256(unsigned)

	sig := make([]byte, crypto.SignatureLength)
	tx.R.FillBytes(sig[0:32])
	tx.S.FillBytes(sig[32:64])
	sig[crypto.RecoveryIDOffset] = v

	pub, err := crypto.Ecrecover(digest, sig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(pub) != 65 || pub[0] != 4 {
		return nil, fmt.Errorf("%w: unexpected public key encoding", ErrInvalidSignature)
	}
	from := common.BytesToAddress(crypto.Keccak256(pub[1:])[12:])

	env := &Envelope{
		From:        from.Hex(),
		Value:       tx.Value,
		Nonce:       tx.Nonce,
		TxHash:      crypto.Keccak256Hash(raw).Hex(),
		ChainID:     chainID,
		HasCallData: len(tx.Data) > 0,
	}
	if tx.To != nil {
		env.To = tx.To.Hex()
	}
	return env, nil
}

// parseTypedEVM handles EIP-2718 envelopes (access list, dynamic fee, blob).
// All of them are replay protected by construction.
func parseTypedEVM(raw []byte, expectedChainID int64) (*Envelope, error) {
	var tx types.Transaction
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
	}

	chainID := tx.ChainId()
	if expectedChainID != 0 && chainID.Cmp(big.NewInt(expectedChainID)) != 0 {
		return nil, fmt.Errorf("%w: got %s, want %d", ErrChainIDMismatch, chainID, expectedChainID)
	}

	from, err := types.Sender(types.LatestSignerForChainID(chainID), &tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	env := &Envelope{
		From:        from.Hex(),
		Value:       tx.Value(),
		Nonce:       tx.Nonce(),
		TxHash:      tx.Hash().Hex(),
		ChainID:     chainID,
		HasCallData: len(tx.Data()) > 0,
	}
	if to := tx.To(); to != nil {
		env.To = to.Hex()
	}
	return env, nil
}
