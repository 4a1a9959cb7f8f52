package risk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chainsafe/wallet-settlement/internal/metrics"
	"github.com/chainsafe/wallet-settlement/pkg/audit"
	"github.com/chainsafe/wallet-settlement/pkg/user"
	"github.com/chainsafe/wallet-settlement/pkg/userstore"
)

// ProfileReader loads a user's verification state
type ProfileReader interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*user.Profile, error)
}

// PayoutAccountReader loads fiat payout accounts
type PayoutAccountReader interface {
	GetPayoutAccount(ctx context.Context, id uuid.UUID) (*user.PayoutAccount, error)
}

// UsageReader returns the USD value a user moved out since a point in time.
// Implementations must compute the aggregate in the database.
type UsageReader interface {
	RollingOutflowUSD(ctx context.Context, userID uuid.UUID, since time.Time) (decimal.Decimal, error)
}

type evaluation struct {
	req     *Request
	profile *user.Profile
	limit   decimal.Decimal
	used    decimal.Decimal
}

type rule struct {
	name  string
	check func(ctx context.Context, e *evaluation) (*Decision, error)
}

// Engine evaluates ordered rules; the first failing rule decides the outcome.
// Callers serialize evaluations per user so the rolling usage read and the
// subsequent order insert cannot interleave with a concurrent request.
type Engine struct {
	profiles ProfileReader
	accounts PayoutAccountReader
	usage    UsageReader
	audit    audit.Recorder
	limits   Limits
	now      func() time.Time
	rules    []rule
}

// NewEngine creates a risk engine
func NewEngine(
	profiles ProfileReader,
	accounts PayoutAccountReader,
	usage UsageReader,
	recorder audit.Recorder,
	limits Limits,
) *Engine {
	e := &Engine{
		profiles: profiles,
		accounts: accounts,
		usage:    usage,
		audit:    recorder,
		limits:   limits,
		now:      time.Now,
	}
	e.rules = []rule{
		{RuleTierLimit, e.checkTierLimit},
		{RulePayoutAccount, e.checkPayoutAccount},
		{RuleKYCThreshold, e.checkKYCThreshold},
	}
	return e
}

// Evaluate runs the rules against req and records the decision. If the
// decision cannot be recorded the request is refused with an error.
func (e *Engine) Evaluate(ctx context.Context, req *Request) (*Decision, error) {
	if req.AmountUSD.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative")
	}

	ev, err := e.load(ctx, req)
	if err != nil {
		return nil, err
	}

	decision, err := e.decide(ctx, ev)
	if err != nil {
		return nil, err
	}
	decision.UsedUSD = ev.used

	err = e.audit.RecordDecision(ctx, &audit.Decision{
		UserID:               req.UserID,
		WalletID:             req.WalletID,
		Operation:            string(req.Kind),
		Chain:                string(req.Chain),
		AmountUSD:            req.AmountUSD,
		Allow:                decision.Allow,
		RequiresManualReview: decision.RequiresManualReview,
		RiskLevel:            string(decision.Level),
		Rule:                 decision.Rule,
		Reason:               decision.Reason,
		Suggestion:           decision.Suggestion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record risk decision: %w", err)
	}

	outcome := "allow"
	switch {
	case !decision.Allow:
		outcome = "deny"
	case decision.RequiresManualReview:
		outcome = "review"
	}
	metrics.RiskDecisions.WithLabelValues(string(req.Kind), outcome, decision.Rule).Inc()

	return decision, nil
}

func (e *Engine) load(ctx context.Context, req *Request) (*evaluation, error) {
	profile, err := e.profiles.GetProfile(ctx, req.UserID)
	if err != nil {
		if !errors.Is(err, userstore.ErrProfileNotFound) {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		// users without a compliance profile are treated as unverified
		profile = user.NewProfile(req.UserID, uuid.Nil)
	}

	limit, ok := e.limits.TierLimits[profile.Tier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTier, profile.Tier)
	}

	used, err := e.usage.RollingOutflowUSD(ctx, req.UserID, e.now().Add(-e.limits.Window))
	if err != nil {
		return nil, fmt.Errorf("failed to load rolling usage: %w", err)
	}

	return &evaluation{req: req, profile: profile, limit: limit, used: used}, nil
}

func (e *Engine) decide(ctx context.Context, ev *evaluation) (*Decision, error) {
	for _, r := range e.rules {
		d, err := r.check(ctx, ev)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.name, err)
		}
		if d != nil {
			d.Rule = r.name
			return d, nil
		}
	}

	total := ev.used.Add(ev.req.AmountUSD)
	reviewAt := ev.limit.Mul(e.limits.ReviewRatio)
	if ev.limit.IsPositive() && total.GreaterThanOrEqual(reviewAt) {
		return &Decision{
			Allow:                true,
			Level:                LevelHigh,
			RequiresManualReview: true,
			Reason: fmt.Sprintf("Amount brings daily usage to $%s of the $%s %s tier limit",
				total.StringFixed(2), ev.limit.StringFixed(2), ev.profile.Tier),
			Rule: RuleNearLimit,
		}, nil
	}

	level := LevelLow
	if ev.req.AmountUSD.GreaterThan(e.limits.KYCThreshold.Div(decimal.NewFromInt(2))) {
		level = LevelMedium
	}
	return &Decision{Allow: true, Level: level}, nil
}

func (e *Engine) checkTierLimit(_ context.Context, ev *evaluation) (*Decision, error) {
	total := ev.used.Add(ev.req.AmountUSD)
	if total.LessThanOrEqual(ev.limit) {
		return nil, nil
	}
	remaining := decimal.Max(ev.limit.Sub(ev.used), decimal.Zero)
	return &Decision{
		Allow: false,
		Level: LevelHigh,
		Reason: fmt.Sprintf("Daily limit of $%s for %s tier exceeded (remaining $%s)",
			ev.limit.StringFixed(2), ev.profile.Tier, remaining.StringFixed(2)),
		Suggestion: "Complete KYC verification to increase your limit",
	}, nil
}

func (e *Engine) checkPayoutAccount(ctx context.Context, ev *evaluation) (*Decision, error) {
	if ev.req.PayoutAccountID == nil {
		return nil, nil
	}
	deny := &Decision{
		Allow:      false,
		Level:      LevelHigh,
		Reason:     "Payout account is not verified",
		Suggestion: "Verify your bank account before withdrawing to it",
	}

	account, err := e.accounts.GetPayoutAccount(ctx, *ev.req.PayoutAccountID)
	if err != nil {
		if errors.Is(err, userstore.ErrPayoutAccountNotFound) {
			return deny, nil
		}
		return nil, err
	}
	if account.UserID != ev.req.UserID || !account.Verified {
		return deny, nil
	}
	return nil, nil
}

func (e *Engine) checkKYCThreshold(_ context.Context, ev *evaluation) (*Decision, error) {
	if !ev.req.AmountUSD.GreaterThan(e.limits.KYCThreshold) || ev.profile.KYCStatus == user.KYCApproved {
		return nil, nil
	}
	return &Decision{
		Allow: false,
		Level: LevelHigh,
		Reason: fmt.Sprintf("KYC approval is required for amounts above $%s",
			e.limits.KYCThreshold.StringFixed(2)),
		Suggestion: "Complete KYC verification",
	}, nil
}
