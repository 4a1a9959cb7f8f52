// Package risk decides whether a money-movement request may proceed.
package risk

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chainsafe/wallet-settlement/pkg/chain"
	"github.com/chainsafe/wallet-settlement/pkg/config"
	"github.com/chainsafe/wallet-settlement/pkg/order"
	"github.com/chainsafe/wallet-settlement/pkg/user"
)

// Level is the coarse risk classification stored on operations
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Rule names, recorded on every decision
const (
	RuleTierLimit     = "tier_daily_limit"
	RulePayoutAccount = "payout_account_verified"
	RuleKYCThreshold  = "kyc_threshold"
	RuleNearLimit     = "near_tier_limit"
)

// Request describes an outbound operation to evaluate
type Request struct {
	UserID          uuid.UUID
	WalletID        uuid.UUID
	Kind            order.Kind
	Chain           chain.Chain
	ToAddress       string
	AmountUSD       decimal.Decimal
	PayoutAccountID *uuid.UUID
}

// Decision is the outcome of an evaluation. A denial always carries a reason
// and a suggestion the user can act on.
type Decision struct {
	Allow                bool
	Level                Level
	RequiresManualReview bool
	Reason               string
	Suggestion           string
	Rule                 string
	// UsedUSD is the rolling window usage before this request
	UsedUSD decimal.Decimal
}

// Limits are the configured thresholds the rules apply
type Limits struct {
	TierLimits   map[user.Tier]decimal.Decimal
	KYCThreshold decimal.Decimal
	// ReviewRatio is the share of the tier limit above which orders are parked for review
	ReviewRatio decimal.Decimal
	Window      time.Duration
}

// DefaultLimits returns the USD/day limits per KYC tier used when nothing is configured
func DefaultLimits() Limits {
	return Limits{
		TierLimits: map[user.Tier]decimal.Decimal{
			user.TierUnverified: decimal.Zero,
			user.TierBasic:      decimal.NewFromInt(1000),
			user.TierStandard:   decimal.NewFromInt(10000),
			user.TierPremium:    decimal.NewFromInt(100000),
		},
		KYCThreshold: decimal.NewFromInt(1000),
		ReviewRatio:  decimal.RequireFromString("0.8"),
		Window:       24 * time.Hour,
	}
}

// LimitsFromConfig parses risk limits from configuration
func LimitsFromConfig(cfg config.RiskConfig) (Limits, error) {
	limits := DefaultLimits()
	for tier, raw := range cfg.TierLimits {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return Limits{}, fmt.Errorf("invalid limit for tier %s: %w", tier, err)
		}
		limits.TierLimits[user.Tier(tier)] = v
	}
	if cfg.KYCThresholdUSD != "" {
		v, err := decimal.NewFromString(cfg.KYCThresholdUSD)
		if err != nil {
			return Limits{}, fmt.Errorf("invalid kyc threshold: %w", err)
		}
		limits.KYCThreshold = v
	}
	if cfg.ReviewRatio != "" {
		v, err := decimal.NewFromString(cfg.ReviewRatio)
		if err != nil {
			return Limits{}, fmt.Errorf("invalid review ratio: %w", err)
		}
		limits.ReviewRatio = v
	}
	if cfg.Window > 0 {
		limits.Window = cfg.Window
	}
	return limits, nil
}

// ErrUnknownTier is returned when a profile's tier has no configured limit
var ErrUnknownTier = errors.New("no limit configured for tier")
