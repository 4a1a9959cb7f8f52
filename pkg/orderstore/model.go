package orderstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/chainsafe/wallet-settlement/pkg/chain"
	"github.com/chainsafe/wallet-settlement/pkg/order"
)

// IdempotencyIndex is the partial unique index over (user_id, idempotency_key)
const IdempotencyIndex = "operations_user_idempotency_key_uidx"

// OperationDao maps to the 'operations' table in PostgreSQL.
type OperationDao struct {
	bun.BaseModel `bun:"table:operations,alias:op"`

	ID       uuid.UUID `bun:"id,pk,type:uuid"`
	TenantID uuid.UUID `bun:"tenant_id,notnull,type:uuid"`
	UserID   uuid.UUID `bun:"user_id,notnull,type:uuid"`
	WalletID uuid.UUID `bun:"wallet_id,type:uuid"`
	Kind     string    `bun:"kind,notnull,type:varchar(20)"`
	Status   string    `bun:"status,notnull,type:varchar(30)"`

	SourceChain        string          `bun:"source_chain,notnull,type:varchar(20)"`
	DestinationChain   string          `bun:"destination_chain,type:varchar(20)"`
	SourceAddress      string          `bun:"source_address,notnull,type:varchar(128)"`
	DestinationAddress string          `bun:"destination_address,notnull,type:varchar(128)"`
	TokenSymbol        string          `bun:"token_symbol,notnull,type:varchar(20)"`
	Amount             decimal.Decimal `bun:"amount,notnull,type:numeric(38,18)"`
	AmountUSD          decimal.Decimal `bun:"amount_usd,notnull,type:numeric(38,18)"`

	SignedTx            string  `bun:"signed_tx,type:text"`
	SourceTxHash        *string `bun:"source_tx_hash,type:varchar(128)"`
	DestTxHash          *string `bun:"dest_tx_hash,type:varchar(128)"`
	SourceConfirmations int64   `bun:"source_confirmations,notnull,default:0"`
	DestConfirmations   int64   `bun:"dest_confirmations,notnull,default:0"`

	RiskLevel            string     `bun:"risk_level,notnull,type:varchar(20)"`
	RequiresManualReview bool       `bun:"requires_manual_review,notnull"`
	BridgeProvider       string     `bun:"bridge_provider,type:varchar(50)"`
	PayoutAccountID      *uuid.UUID `bun:"payout_account_id,type:uuid"`
	IdempotencyKey       *string    `bun:"idempotency_key,type:varchar(128)"`
	FailureReason        string     `bun:"failure_reason,type:text"`

	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	CompletedAt *time.Time `bun:"completed_at"`
}

func toOperationDao(op *order.Operation) *OperationDao {
	return &OperationDao{
		ID:                   op.ID,
		TenantID:             op.TenantID,
		UserID:               op.UserID,
		WalletID:             op.WalletID,
		Kind:                 string(op.Kind),
		Status:               string(op.Status),
		SourceChain:          string(op.SourceChain),
		DestinationChain:     string(op.DestinationChain),
		SourceAddress:        op.SourceAddress,
		DestinationAddress:   op.DestinationAddress,
		TokenSymbol:          op.TokenSymbol,
		Amount:               op.Amount,
		AmountUSD:            op.AmountUSD,
		SignedTx:             op.SignedTx,
		SourceTxHash:         op.SourceTxHash,
		DestTxHash:           op.DestTxHash,
		SourceConfirmations:  int64(op.SourceConfirmations),
		DestConfirmations:    int64(op.DestConfirmations),
		RiskLevel:            op.RiskLevel,
		RequiresManualReview: op.RequiresManualReview,
		BridgeProvider:       op.BridgeProvider,
		PayoutAccountID:      op.PayoutAccountID,
		IdempotencyKey:       op.IdempotencyKey,
		FailureReason:        op.FailureReason,
		CreatedAt:            op.CreatedAt,
		UpdatedAt:            op.UpdatedAt,
		CompletedAt:          op.CompletedAt,
	}
}

func toOperation(dao *OperationDao) *order.Operation {
	return &order.Operation{
		ID:                   dao.ID,
		TenantID:             dao.TenantID,
		UserID:               dao.UserID,
		WalletID:             dao.WalletID,
		Kind:                 order.Kind(dao.Kind),
		Status:               order.Status(dao.Status),
		SourceChain:          chain.Chain(dao.SourceChain),
		DestinationChain:     chain.Chain(dao.DestinationChain),
		SourceAddress:        dao.SourceAddress,
		DestinationAddress:   dao.DestinationAddress,
		TokenSymbol:          dao.TokenSymbol,
		Amount:               dao.Amount,
		AmountUSD:            dao.AmountUSD,
		SignedTx:             dao.SignedTx,
		SourceTxHash:         dao.SourceTxHash,
		DestTxHash:           dao.DestTxHash,
		SourceConfirmations:  uint64(dao.SourceConfirmations),
		DestConfirmations:    uint64(dao.DestConfirmations),
		RiskLevel:            dao.RiskLevel,
		RequiresManualReview: dao.RequiresManualReview,
		BridgeProvider:       dao.BridgeProvider,
		PayoutAccountID:      dao.PayoutAccountID,
		IdempotencyKey:       dao.IdempotencyKey,
		FailureReason:        dao.FailureReason,
		CreatedAt:            dao.CreatedAt,
		UpdatedAt:            dao.UpdatedAt,
		CompletedAt:          dao.CompletedAt,
	}
}
