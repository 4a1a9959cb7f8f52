// Package admission runs the checks every money-moving request passes before
// an operation row exists: address format, signer recovery, the wallet lock,
// pricing and risk. Creation happens under a per-user lock so the rolling
// usage read and the insert cannot interleave with a concurrent request.
package admission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/internal/metrics"
	"github.com/chainsafe/wallet-settlement/pkg/address"
	apperrors "github.com/chainsafe/wallet-settlement/pkg/app/errors"
	"github.com/chainsafe/wallet-settlement/pkg/audit"
	"github.com/chainsafe/wallet-settlement/pkg/chain"
	"github.com/chainsafe/wallet-settlement/pkg/keylock"
	"github.com/chainsafe/wallet-settlement/pkg/order"
	"github.com/chainsafe/wallet-settlement/pkg/pricing"
	"github.com/chainsafe/wallet-settlement/pkg/risk"
	"github.com/chainsafe/wallet-settlement/pkg/signer"
	"github.com/chainsafe/wallet-settlement/pkg/unlock"
	"github.com/chainsafe/wallet-settlement/pkg/user"
	"github.com/chainsafe/wallet-settlement/pkg/userstore"
)

// weiDecimals converts a native EVM amount to wei
const weiDecimals = 18

// lockWait bounds how long a request queues behind another request of the same user
const lockWait = 5 * time.Second

var (
	ErrWalletNotOwned     = errors.New("wallet does not belong to caller")
	ErrWalletMismatch     = errors.New("wallet does not match the requested chain and address")
	ErrRecipientMismatch  = errors.New("signed transaction recipient does not match to_address")
	ErrAmountMismatch     = errors.New("signed transaction value does not match amount")
	ErrInvalidAmount      = errors.New("amount must be a positive decimal")
	ErrReviewNotSupported = errors.New("operation requires manual review")
)

// WalletStore resolves the wallet funds move out of
type WalletStore interface {
	GetWallet(ctx context.Context, opts ...userstore.QueryOption) (*user.Wallet, error)
}

// TxParser recovers the signer of a client-signed transaction
type TxParser interface {
	ParseAndVerify(c chain.Chain, raw, expectedFrom string) (*signer.Envelope, error)
}

// UnlockVerifier checks the wallet lock capability token
type UnlockVerifier interface {
	Verify(ctx context.Context, userID, walletID uuid.UUID, token string) (bool, error)
}

// RiskEvaluator decides whether an operation may proceed
type RiskEvaluator interface {
	Evaluate(ctx context.Context, req *risk.Request) (*risk.Decision, error)
}

// OperationStore persists admitted operations
type OperationStore interface {
	CreateOperation(ctx context.Context, op *order.Operation) error
	GetByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*order.Operation, error)
}

// Request is a money-moving request as received from a client
type Request struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Kind     order.Kind

	// WalletID selects the source wallet. When nil the wallet is looked up
	// by SourceChain and FromAddress.
	WalletID         uuid.UUID
	SourceChain      chain.Chain
	DestinationChain chain.Chain
	FromAddress      string
	ToAddress        string
	TokenSymbol      string
	Amount           string

	SignedTx    string
	UnlockToken string

	// CheckRecipient requires a plain value transfer to pay Amount to ToAddress
	CheckRecipient  bool
	IdempotencyKey  string
	PayoutAccountID *uuid.UUID
	BridgeProvider  string
}

// Result is an admitted operation
type Result struct {
	Operation *order.Operation
	Decision  *risk.Decision
	// Replayed is true when the idempotency key matched an existing operation
	Replayed bool
}

// Pipeline admits operations
type Pipeline struct {
	wallets WalletStore
	parser  TxParser
	unlock  UnlockVerifier
	prices  pricing.Oracle
	risk    RiskEvaluator
	store   OperationStore
	locker  keylock.Locker
	audit   audit.Recorder
	logger  *zap.Logger
}

// New creates an admission Pipeline
func New(
	wallets WalletStore,
	parser TxParser,
	unlockVerifier UnlockVerifier,
	prices pricing.Oracle,
	evaluator RiskEvaluator,
	store OperationStore,
	locker keylock.Locker,
	recorder audit.Recorder,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		wallets: wallets,
		parser:  parser,
		unlock:  unlockVerifier,
		prices:  prices,
		risk:    evaluator,
		store:   store,
		locker:  locker,
		audit:   recorder,
		logger:  logger,
	}
}

// Admit validates req and creates its operation. Every failure is returned as
// an app error carrying the HTTP category.
func (p *Pipeline) Admit(ctx context.Context, req *Request) (*Result, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, apperrors.BadRequestError(ErrInvalidAmount, "amount must be a positive number")
	}
	if err := address.Validate(req.SourceChain, req.FromAddress); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid source address")
	}
	if err := address.Validate(req.DestinationChain, req.ToAddress); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid destination address")
	}

	wallet, err := p.sourceWallet(ctx, req)
	if err != nil {
		return nil, err
	}

	env, err := p.parser.ParseAndVerify(req.SourceChain, req.SignedTx, req.FromAddress)
	if err != nil {
		if errors.Is(err, signer.ErrSignerMismatch) {
			return nil, apperrors.BadRequestError(err, "signed transaction was not signed by the source address")
		}
		return nil, apperrors.BadRequestError(err, "invalid signed transaction")
	}
	if req.CheckRecipient && env.To != "" && !env.HasCallData && !address.Equal(req.SourceChain, env.To, req.ToAddress) {
		return nil, apperrors.BadRequestError(ErrRecipientMismatch, "signed transaction does not pay to_address")
	}
	if req.CheckRecipient && req.SourceChain.IsEVM() && !env.HasCallData && env.Value != nil &&
		amount.Shift(weiDecimals).BigInt().Cmp(env.Value) != 0 {
		return nil, apperrors.BadRequestError(ErrAmountMismatch, "signed transaction value does not match amount")
	}

	ok, err := p.unlock.Verify(ctx, req.UserID, wallet.ID, req.UnlockToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify unlock token: %w", err)
	}
	if !ok {
		return nil, apperrors.UnAuthorizedError(unlock.ErrTokenInvalid, "wallet is locked, unlock it and retry")
	}

	amountUSD, err := p.prices.USDValue(ctx, req.TokenSymbol, amount)
	if err != nil {
		if errors.Is(err, pricing.ErrUnknownToken) {
			return nil, apperrors.BadRequestError(err, fmt.Sprintf("token %s is not supported", req.TokenSymbol))
		}
		return nil, fmt.Errorf("failed to price operation: %w", err)
	}

	lctx, cancel := context.WithTimeout(ctx, lockWait)
	release, err := p.locker.Lock(lctx, keylock.UserKey(req.UserID))
	cancel()
	if err != nil {
		if errors.Is(err, keylock.ErrNotAcquired) {
			return nil, apperrors.ConflictError(err, "another request for this account is in progress, retry shortly")
		}
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	defer release()

	if existing, err := p.replay(ctx, req); err != nil || existing != nil {
		return existing, err
	}

	decision, err := p.risk.Evaluate(ctx, &risk.Request{
		UserID:          req.UserID,
		WalletID:        wallet.ID,
		Kind:            req.Kind,
		Chain:           req.SourceChain,
		ToAddress:       req.ToAddress,
		AmountUSD:       amountUSD,
		PayoutAccountID: req.PayoutAccountID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate risk: %w", err)
	}
	if !decision.Allow {
		return nil, apperrors.RiskRejectedError(errors.New(decision.Reason), decision.Reason, decision.Suggestion)
	}
	// bridges broadcast at creation and have no review state to park in
	if decision.RequiresManualReview && req.Kind == order.KindBridge {
		return nil, apperrors.RiskRejectedError(ErrReviewNotSupported,
			"transfer requires manual review", "Reduce the amount or use a withdrawal instead")
	}

	op := &order.Operation{
		ID:                   uuid.New(),
		TenantID:             req.TenantID,
		UserID:               req.UserID,
		WalletID:             wallet.ID,
		Kind:                 req.Kind,
		Status:               order.InitialStatus(req.Kind, decision.RequiresManualReview),
		SourceChain:          req.SourceChain,
		DestinationChain:     req.DestinationChain,
		SourceAddress:        req.FromAddress,
		DestinationAddress:   req.ToAddress,
		TokenSymbol:          req.TokenSymbol,
		Amount:               amount,
		AmountUSD:            amountUSD,
		SignedTx:             req.SignedTx,
		RiskLevel:            string(decision.Level),
		RequiresManualReview: decision.RequiresManualReview,
		BridgeProvider:       req.BridgeProvider,
		PayoutAccountID:      req.PayoutAccountID,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		op.IdempotencyKey = &key
	}

	if err := p.store.CreateOperation(ctx, op); err != nil {
		if errors.Is(err, order.ErrDuplicateIdempotencyKey) {
			// lost a race with another instance that does not share our lock
			existing, rerr := p.replay(ctx, req)
			if rerr != nil || existing != nil {
				return existing, rerr
			}
		}
		return nil, fmt.Errorf("failed to create operation: %w", err)
	}

	metrics.OperationsCreated.WithLabelValues(string(op.Kind), string(op.Status)).Inc()
	err = p.audit.Record(ctx, &audit.Event{
		Type:         audit.EventOperationCreated,
		ResourceType: string(op.Kind),
		ResourceID:   op.ID.String(),
		UserID:       op.UserID,
		Metadata: map[string]any{
			"status":      string(op.Status),
			"chain":       string(op.SourceChain),
			"amount_usd":  op.AmountUSD.String(),
			"risk_level":  op.RiskLevel,
			"tx_signer":   env.From,
			"tx_nonce":    env.Nonce,
			"review_rule": decision.Rule,
		},
	})
	if err != nil {
		p.logger.Warn("failed to audit operation creation", zap.String("operation_id", op.ID.String()), zap.Error(err))
	}

	return &Result{Operation: op, Decision: decision}, nil
}

// sourceWallet resolves and authorizes the wallet the request spends from
func (p *Pipeline) sourceWallet(ctx context.Context, req *Request) (*user.Wallet, error) {
	var opts []userstore.QueryOption
	if req.WalletID != uuid.Nil {
		opts = append(opts, userstore.WithID(req.WalletID))
	} else {
		opts = append(opts, userstore.WithAddress(req.SourceChain, req.FromAddress))
	}

	wallet, err := p.wallets.GetWallet(ctx, opts...)
	if err != nil {
		if errors.Is(err, userstore.ErrWalletNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "wallet not found")
		}
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	if wallet.UserID != req.UserID {
		return nil, apperrors.ForbiddenError(ErrWalletNotOwned, "wallet does not belong to caller")
	}
	if wallet.Chain != req.SourceChain || !address.Equal(wallet.Chain, wallet.Address, req.FromAddress) {
		return nil, apperrors.BadRequestError(ErrWalletMismatch, "from_address does not match the wallet")
	}
	return wallet, nil
}

func (p *Pipeline) replay(ctx context.Context, req *Request) (*Result, error) {
	if req.IdempotencyKey == "" {
		return nil, nil
	}
	existing, err := p.store.GetByIdempotencyKey(ctx, req.UserID, req.IdempotencyKey)
	if err != nil {
		if errors.Is(err, order.ErrOperationNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	if existing.Kind != req.Kind && !(isWithdrawal(existing.Kind) && isWithdrawal(req.Kind)) {
		return nil, apperrors.ConflictError(order.ErrDuplicateIdempotencyKey, "idempotency key was used for a different operation")
	}
	p.logger.Info("Idempotent replay",
		zap.String("operation_id", existing.ID.String()),
		zap.String("user_id", req.UserID.String()))
	return &Result{Operation: existing, Replayed: true}, nil
}

func isWithdrawal(k order.Kind) bool {
	return k == order.KindWithdrawal || k == order.KindOfframp
}
